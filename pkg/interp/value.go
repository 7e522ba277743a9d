package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/daimatz/minijvm/pkg/descriptor"
)

// Value is a typed runtime value on the operand stack, in a local slot, or
// passed as a call argument.
//
// The payload is int32 for int, short, byte, char and boolean; int64 for
// long; float32 and float64 for float and double; string for
// java.lang.String; nil for null; otherwise an opaque reference owned by the
// runtime.
type Value struct {
	Type    descriptor.Type
	Payload any
}

// IntValue creates an int Value.
func IntValue(v int32) Value {
	return Value{Type: descriptor.Int, Payload: v}
}

// LongValue creates a long Value.
func LongValue(v int64) Value {
	return Value{Type: descriptor.Long, Payload: v}
}

// StringValue creates a java.lang.String Value.
func StringValue(s string) Value {
	return Value{Type: descriptor.String, Payload: s}
}

// RefValue creates a reference Value of the given type.
func RefValue(t descriptor.Type, ref any) Value {
	return Value{Type: t, Payload: ref}
}

// NullValue creates a null reference typed java.lang.Object.
func NullValue() Value {
	return Value{Type: descriptor.Object}
}

// DefaultValue returns the zero value of a field of type t.
func DefaultValue(t descriptor.Type) Value {
	switch t.Kind {
	case descriptor.KindByte, descriptor.KindChar, descriptor.KindShort, descriptor.KindInt, descriptor.KindBoolean:
		return Value{Type: t, Payload: int32(0)}
	case descriptor.KindLong:
		return Value{Type: t, Payload: int64(0)}
	case descriptor.KindFloat:
		return Value{Type: t, Payload: float32(0)}
	case descriptor.KindDouble:
		return Value{Type: t, Payload: float64(0)}
	}
	return Value{Type: t}
}

// IsNull reports whether v is a null reference.
func (v Value) IsNull() bool {
	return v.Payload == nil
}

// Int returns the payload of an int-like value.
func (v Value) Int() (int32, bool) {
	switch v.Type.Kind {
	case descriptor.KindByte, descriptor.KindChar, descriptor.KindShort, descriptor.KindInt, descriptor.KindBoolean:
		i, ok := v.Payload.(int32)
		return i, ok
	}
	return 0, false
}

// String formats v the way java.io.PrintStream prints it.
func (v Value) String() string {
	if v.Payload == nil {
		return "null"
	}
	switch v.Type.Kind {
	case descriptor.KindBoolean:
		if i, _ := v.Payload.(int32); i != 0 {
			return "true"
		}
		return "false"
	case descriptor.KindChar:
		if i, ok := v.Payload.(int32); ok {
			return string(rune(uint16(i)))
		}
	}
	switch p := v.Payload.(type) {
	case string:
		return p
	case int32:
		return strconv.FormatInt(int64(p), 10)
	case int64:
		return strconv.FormatInt(p, 10)
	case float32:
		return formatFloat(float64(p), 32)
	case float64:
		return formatFloat(p, 64)
	case fmt.Stringer:
		return p.String()
	}
	return fmt.Sprint(v.Payload)
}

func formatFloat(f float64, bits int) string {
	s := strconv.FormatFloat(f, 'f', -1, bits)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}
