package navjs

import "fmt"

// Kind identifies the literal type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a JavaScript literal as found in generated navigation files.
type Value struct {
	Kind   Kind
	Str    string
	Num    float64
	Bool   bool
	Items  []Value
	Fields []Field
	Line   int
}

// Field is one key/value pair of an object literal, in source order.
type Field struct {
	Key   string
	Value Value
}

func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// Get returns the object field named key.
func (v Value) Get(key string) (Value, bool) {
	for _, f := range v.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Int returns the value as an integer if it is a whole number.
func (v Value) Int() (int, error) {
	if v.Kind != KindNumber {
		return 0, fmt.Errorf("line %d: expected number, got %s", v.Line, v.Kind)
	}
	n := int(v.Num)
	if float64(n) != v.Num {
		return 0, fmt.Errorf("line %d: expected integer, got %v", v.Line, v.Num)
	}
	return n, nil
}
