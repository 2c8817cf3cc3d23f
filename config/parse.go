package config

import (
	"errors"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Parse decodes a TOML document into a Table.
//
// Values keep their TOML types: quoted strings become String, integers Int,
// floats Float, dates and times DateTime, arrays List and tables (including
// inline tables and arrays of tables) Table. Malformed input, including a key
// or table defined twice, fails with a *ParseError.
func Parse(text string) (Table, error) {
	var raw map[string]any
	if err := toml.Unmarshal([]byte(text), &raw); err != nil {
		return nil, newParseError(err)
	}
	return FromMap(raw)
}

func newParseError(err error) *ParseError {
	perr := &ParseError{Err: err}

	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		perr.Line, perr.Column = derr.Position()
		perr.Msg = derr.Error()
		perr.Context = derr.String()
	} else {
		perr.Msg = err.Error()
	}
	perr.Msg = strings.TrimPrefix(perr.Msg, "toml: ")
	return perr
}

// FromMap converts a map of plain Go values, as produced by TOML and YAML
// decoders, into a Table. Values that are already of a Value type are kept.
func FromMap(m map[string]any) (Table, error) {
	return fromMap(nil, m)
}

func fromMap(path []string, m map[string]any) (Table, error) {
	out := make(Table, len(m))
	for k, raw := range m {
		v, err := fromNative(append(path[:len(path):len(path)], k), raw)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func fromNative(path []string, raw any) (Value, error) {
	switch v := raw.(type) {
	case Value:
		return v, nil
	case string:
		return String(v), nil
	case bool:
		return Bool(v), nil
	case int64:
		return Int(v), nil
	case int:
		return Int(v), nil
	case float64:
		return Float(v), nil
	case time.Time:
		return DateTime{Flavor: OffsetDateTime, Time: v}, nil
	case toml.LocalDate:
		return DateTime{Flavor: LocalDate, Time: localDate(v)}, nil
	case toml.LocalTime:
		return DateTime{Flavor: LocalTime, Time: localTime(time.Time{}, v)}, nil
	case toml.LocalDateTime:
		return DateTime{Flavor: LocalDateTime, Time: localTime(localDate(v.LocalDate), v.LocalTime)}, nil
	case []any:
		list := make(List, len(v))
		for i, item := range v {
			elem, err := fromNative(path, item)
			if err != nil {
				return nil, err
			}
			list[i] = elem
		}
		return list, nil
	case []map[string]any:
		list := make(List, len(v))
		for i, item := range v {
			tbl, err := fromMap(path, item)
			if err != nil {
				return nil, err
			}
			list[i] = tbl
		}
		return list, nil
	case map[string]any:
		return fromMap(path, v)
	}
	return nil, &UnsupportedValueError{Path: path, Value: raw}
}

func localDate(d toml.LocalDate) time.Time {
	return time.Date(int(d.Year), time.Month(d.Month), int(d.Day), 0, 0, 0, 0, time.UTC)
}

func localTime(day time.Time, t toml.LocalTime) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		int(t.Hour), int(t.Minute), int(t.Second), int(t.Nanosecond), time.UTC)
}
