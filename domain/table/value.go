package table

import (
	"strconv"
)

// ValueKind tags the variant held by a Value
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindNumber
	KindText
)

// String returns the kind name used in logs
func (k ValueKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "null"
	}
}

// Value is a single cell: a number, a piece of text, or nothing
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
}

// Null is the absent value
var Null = Value{}

// Number creates a numeric value
func Number(n float64) Value {
	return Value{Kind: KindNumber, Num: n}
}

// Text creates a text value; empty text is treated as missing
func Text(s string) Value {
	if s == "" {
		return Null
	}
	return Value{Kind: KindText, Str: s}
}

// IsNull reports whether the cell is empty
func (v Value) IsNull() bool { return v.Kind == KindNull }

// IsNumber reports whether the cell holds a number
func (v Value) IsNumber() bool { return v.Kind == KindNumber }

// IsText reports whether the cell holds text
func (v Value) IsText() bool { return v.Kind == KindText }

// String renders the value for delimited output; null renders empty
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return FormatNumber(v.Num)
	case KindText:
		return v.Str
	default:
		return ""
	}
}

// FormatNumber prints a float in its shortest form, keeping a trailing ".0"
// on integral values so numeric columns stay visibly numeric.
func FormatNumber(n float64) string {
	s := strconv.FormatFloat(n, 'f', -1, 64)
	for i := 0; i < len(s); i++ {
		if s[i] == '.' || s[i] == 'e' || s[i] == 'N' || s[i] == 'I' {
			return s
		}
	}
	return s + ".0"
}
