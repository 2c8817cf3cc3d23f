package config

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var bareKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Emit serializes t as a TOML document.
//
// Output is canonical: at every level, scalar and list entries come first,
// sorted by key, followed by one [dotted.header] section per nested table,
// also sorted by key. Sections are separated by exactly one blank line and the
// document ends with a single newline. Tables held inside lists are written as
// inline tables. Emitting the same Table always yields the same bytes.
func Emit(t Table) (string, error) {
	var sections [][]string
	if err := emitTable(&sections, nil, t); err != nil {
		return "", err
	}

	var b strings.Builder
	for i, section := range sections {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, line := range section {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	if b.Len() == 0 {
		return "\n", nil
	}
	return b.String(), nil
}

func emitTable(sections *[][]string, prefix []string, t Table) error {
	scalars, tables := partition(t)

	var section []string
	if len(prefix) > 0 {
		section = append(section, "["+formatPath(prefix)+"]")
	}
	for _, k := range scalars {
		path := append(prefix[:len(prefix):len(prefix)], k)
		formatted, err := formatValue(path, t[k])
		if err != nil {
			return err
		}
		section = append(section, formatKey(k)+" = "+formatted)
	}
	if len(section) > 0 {
		*sections = append(*sections, section)
	}

	for _, k := range tables {
		path := append(prefix[:len(prefix):len(prefix)], k)
		if err := emitTable(sections, path, t[k].(Table)); err != nil {
			return err
		}
	}
	return nil
}

// partition splits the keys of t into leaf entries and nested tables, each
// sorted bytewise.
func partition(t Table) (scalars, tables []string) {
	for k, v := range t {
		if _, ok := v.(Table); ok {
			tables = append(tables, k)
		} else {
			scalars = append(scalars, k)
		}
	}
	sort.Strings(scalars)
	sort.Strings(tables)
	return scalars, tables
}

func formatPath(path []string) string {
	parts := make([]string, len(path))
	for i, seg := range path {
		parts[i] = formatKey(seg)
	}
	return strings.Join(parts, ".")
}

// formatKey writes a key segment bare when it only uses [A-Za-z0-9_-] and
// quoted otherwise. This is the inverse of the key grammar Parse accepts.
func formatKey(k string) string {
	if bareKey.MatchString(k) {
		return k
	}
	return quote(k)
}

func formatValue(path []string, v Value) (string, error) {
	switch val := v.(type) {
	case String:
		return quote(string(val)), nil
	case Bool:
		return strconv.FormatBool(bool(val)), nil
	case Int:
		return strconv.FormatInt(int64(val), 10), nil
	case Float:
		return formatFloat(float64(val)), nil
	case DateTime:
		return val.String(), nil
	case List:
		items := make([]string, len(val))
		for i, item := range val {
			s, err := formatValue(path, item)
			if err != nil {
				return "", err
			}
			items[i] = s
		}
		return "[" + strings.Join(items, ", ") + "]", nil
	case Table:
		return formatInline(path, val)
	}
	return "", &UnsupportedValueError{Path: path, Value: v}
}

func formatInline(path []string, t Table) (string, error) {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	items := make([]string, len(keys))
	for i, k := range keys {
		s, err := formatValue(append(path[:len(path):len(path)], k), t[k])
		if err != nil {
			return "", err
		}
		items[i] = formatKey(k) + " = " + s
	}
	if len(items) == 0 {
		return "{}", nil
	}
	return "{" + strings.Join(items, ", ") + "}", nil
}

// formatFloat uses the shortest decimal that round-trips, always keeping a
// fraction or exponent so the literal reads back as a float.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// quote writes s as a TOML basic string.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
