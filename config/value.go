package config

import (
	"fmt"
	"math"
	"time"
)

// Value is a single configuration value. The set of implementations is closed:
// String, Bool, Int, Float, DateTime, List and Table. Code that consumes a
// Value switches over exactly these types.
type Value interface {
	// Kind reports which variant the value holds.
	Kind() Kind

	sealed()
}

// Kind identifies a Value variant.
type Kind int

const (
	KindString Kind = iota + 1
	KindBool
	KindInt
	KindFloat
	KindDateTime
	KindList
	KindTable
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDateTime:
		return "datetime"
	case KindList:
		return "list"
	case KindTable:
		return "table"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type (
	String string
	Bool   bool
	Int    int64
	Float  float64
	List   []Value
	// Table maps keys to values. Nested tables are owned by their parent.
	Table map[string]Value
)

// DateTimeKind distinguishes the four TOML date/time flavours, which differ in
// how they are written back out.
type DateTimeKind int

const (
	LocalDate DateTimeKind = iota + 1
	LocalTime
	LocalDateTime
	OffsetDateTime
)

// DateTime is a calendar date, a time of day, or both. Local kinds carry their
// fields in UTC with no offset meaning; LocalTime uses the zero date.
type DateTime struct {
	Flavor DateTimeKind
	Time time.Time
}

const (
	layoutDate          = "2006-01-02"
	layoutTime          = "15:04:05.999999999"
	layoutLocalDateTime = "2006-01-02T15:04:05.999999999"
)

// String renders d in its RFC 3339 form, which is also its TOML literal.
func (d DateTime) String() string {
	switch d.Flavor {
	case LocalDate:
		return d.Time.Format(layoutDate)
	case LocalTime:
		return d.Time.Format(layoutTime)
	case LocalDateTime:
		return d.Time.Format(layoutLocalDateTime)
	default:
		return d.Time.Format(time.RFC3339Nano)
	}
}

func (String) Kind() Kind   { return KindString }
func (Bool) Kind() Kind     { return KindBool }
func (Int) Kind() Kind      { return KindInt }
func (Float) Kind() Kind    { return KindFloat }
func (DateTime) Kind() Kind { return KindDateTime }
func (List) Kind() Kind     { return KindList }
func (Table) Kind() Kind    { return KindTable }

func (String) sealed()   {}
func (Bool) sealed()     {}
func (Int) sealed()      {}
func (Float) sealed()    {}
func (DateTime) sealed() {}
func (List) sealed()     {}
func (Table) sealed()    {}

// Clone returns a deep copy of t.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v Value) Value {
	switch val := v.(type) {
	case Table:
		return val.Clone()
	case List:
		if val == nil {
			return List(nil)
		}
		out := make(List, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Lookup walks a dotted path of already-split segments.
func (t Table) Lookup(path ...string) (Value, bool) {
	var cur Value = t
	for _, seg := range path {
		tbl, ok := cur.(Table)
		if !ok {
			return nil, false
		}
		cur, ok = tbl[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Equal reports whether a and b are structurally equal. NaN floats compare
// equal to each other so that documents containing nan round-trip.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Int:
		y, ok := b.(Int)
		return ok && x == y
	case Float:
		y, ok := b.(Float)
		if !ok {
			return false
		}
		if math.IsNaN(float64(x)) || math.IsNaN(float64(y)) {
			return math.IsNaN(float64(x)) && math.IsNaN(float64(y))
		}
		return x == y
	case DateTime:
		y, ok := b.(DateTime)
		if !ok || x.Flavor != y.Flavor {
			return false
		}
		if x.Flavor == OffsetDateTime {
			return x.Time.Equal(y.Time)
		}
		// local kinds only mean their written fields
		return x.String() == y.String()
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Table:
		y, ok := b.(Table)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	}
	return false
}

// Map converts t to plain Go values (string, bool, int64, float64,
// time.Time, []any, map[string]any) for decoders that work on untyped maps.
func (t Table) Map() map[string]any {
	out := make(map[string]any, len(t))
	for k, v := range t {
		out[k] = native(v)
	}
	return out
}

func native(v Value) any {
	switch val := v.(type) {
	case String:
		return string(val)
	case Bool:
		return bool(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case DateTime:
		return val.Time
	case List:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = native(item)
		}
		return out
	case Table:
		return val.Map()
	}
	return nil
}
