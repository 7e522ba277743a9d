// Package descriptor parses JVM field and method descriptors into a
// structured type model.
package descriptor

import (
	"fmt"
	"strings"
)

// Kind identifies the shape of a Type.
type Kind uint8

const (
	KindByte Kind = iota + 1
	KindChar
	KindDouble
	KindFloat
	KindInt
	KindLong
	KindShort
	KindBoolean
	KindReference
	KindArray
	KindVoid
)

var kindNames = map[Kind]string{
	KindByte:      "byte",
	KindChar:      "char",
	KindDouble:    "double",
	KindFloat:     "float",
	KindInt:       "int",
	KindLong:      "long",
	KindShort:     "short",
	KindBoolean:   "boolean",
	KindReference: "reference",
	KindArray:     "array",
	KindVoid:      "void",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// maxArrayDimensions is the JVM limit on array type dimensions.
const maxArrayDimensions = 255

// Type is a parsed field type (or the void return type of a method).
type Type struct {
	Kind Kind
	// ClassName is the dotted class name of a reference type.
	ClassName string
	// Elem is the component type of an array type.
	Elem *Type
}

// Frequently used types.
var (
	Byte    = Type{Kind: KindByte}
	Char    = Type{Kind: KindChar}
	Double  = Type{Kind: KindDouble}
	Float   = Type{Kind: KindFloat}
	Int     = Type{Kind: KindInt}
	Long    = Type{Kind: KindLong}
	Short   = Type{Kind: KindShort}
	Boolean = Type{Kind: KindBoolean}
	Void    = Type{Kind: KindVoid}

	Object = Reference("java.lang.Object")
	String = Reference("java.lang.String")
)

var primitiveCodes = map[byte]Type{
	'B': Byte,
	'C': Char,
	'D': Double,
	'F': Float,
	'I': Int,
	'J': Long,
	'S': Short,
	'Z': Boolean,
}

// Reference returns a reference type for the given class name. Both the
// dotted ("java.lang.String") and internal ("java/lang/String") forms are
// accepted.
func Reference(className string) Type {
	return Type{Kind: KindReference, ClassName: strings.ReplaceAll(className, "/", ".")}
}

// ArrayOf returns an array type with the given element type.
func ArrayOf(elem Type) Type {
	e := elem
	return Type{Kind: KindArray, Elem: &e}
}

// IsPrimitive reports whether t is one of the eight primitive types.
func (t Type) IsPrimitive() bool {
	switch t.Kind {
	case KindByte, KindChar, KindDouble, KindFloat, KindInt, KindLong, KindShort, KindBoolean:
		return true
	}
	return false
}

// IsReference reports whether values of t are references (class or array).
func (t Type) IsReference() bool {
	return t.Kind == KindReference || t.Kind == KindArray
}

// IsWide reports whether t occupies two local variable slots.
func (t Type) IsWide() bool {
	return t.Kind == KindLong || t.Kind == KindDouble
}

// Dimensions returns the array depth of t, 0 for non-array types.
func (t Type) Dimensions() int {
	n := 0
	for cur := t; cur.Kind == KindArray && cur.Elem != nil; cur = *cur.Elem {
		n++
	}
	return n
}

// InternalName returns the slash-separated class name of a reference type.
func (t Type) InternalName() string {
	return strings.ReplaceAll(t.ClassName, ".", "/")
}

// Equal reports whether t and u denote the same type.
func (t Type) Equal(u Type) bool {
	if t.Kind != u.Kind || t.ClassName != u.ClassName {
		return false
	}
	if t.Kind != KindArray {
		return true
	}
	if t.Elem == nil || u.Elem == nil {
		return t.Elem == u.Elem
	}
	return t.Elem.Equal(*u.Elem)
}

// Descriptor re-encodes t in descriptor syntax.
func (t Type) Descriptor() string {
	switch t.Kind {
	case KindReference:
		return "L" + t.InternalName() + ";"
	case KindArray:
		if t.Elem == nil {
			return "["
		}
		return "[" + t.Elem.Descriptor()
	case KindVoid:
		return "V"
	}
	for code, p := range primitiveCodes {
		if p.Kind == t.Kind {
			return string(code)
		}
	}
	return "?"
}

// String returns the source-level spelling of t, e.g. "int[][]".
func (t Type) String() string {
	switch t.Kind {
	case KindReference:
		return t.ClassName
	case KindArray:
		if t.Elem == nil {
			return "?[]"
		}
		return t.Elem.String() + "[]"
	}
	return t.Kind.String()
}

// Method is a parsed method descriptor.
type Method struct {
	Params []Type
	Return Type
}

// ParamSlots returns the number of local variable slots used by the
// parameters, counting long and double as two.
func (m Method) ParamSlots() int {
	n := 0
	for _, p := range m.Params {
		n++
		if p.IsWide() {
			n++
		}
	}
	return n
}

// IsVoid reports whether the method returns nothing.
func (m Method) IsVoid() bool {
	return m.Return.Kind == KindVoid
}

// Descriptor re-encodes m in descriptor syntax.
func (m Method) Descriptor() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for _, p := range m.Params {
		sb.WriteString(p.Descriptor())
	}
	sb.WriteByte(')')
	sb.WriteString(m.Return.Descriptor())
	return sb.String()
}

func (m Method) String() string {
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.String()
	}
	return m.Return.String() + " (" + strings.Join(params, ", ") + ")"
}

// MalformedDescriptorError reports a descriptor that does not match the
// descriptor grammar.
type MalformedDescriptorError struct {
	Descriptor string
	Pos        int
	Reason     string
}

func (e *MalformedDescriptorError) Error() string {
	return fmt.Sprintf("malformed descriptor %q at %d: %s", e.Descriptor, e.Pos, e.Reason)
}

// ParseField parses a field descriptor such as "I", "Ljava/lang/String;" or "[[I".
func ParseField(s string) (Type, error) {
	p := &parser{src: s}
	t, err := p.fieldType()
	if err != nil {
		return Type{}, err
	}
	if p.pos != len(s) {
		return Type{}, p.fail("trailing characters")
	}
	return t, nil
}

// ParseMethod parses a method descriptor such as "(ILjava/lang/String;)V".
func ParseMethod(s string) (Method, error) {
	p := &parser{src: s}
	if !p.consume('(') {
		return Method{}, p.fail("expected '('")
	}
	params := []Type{}
	for {
		if p.eof() {
			return Method{}, p.fail("unterminated parameter list")
		}
		if p.consume(')') {
			break
		}
		t, err := p.fieldType()
		if err != nil {
			return Method{}, err
		}
		params = append(params, t)
	}
	if p.eof() {
		return Method{}, p.fail("missing return type")
	}
	var ret Type
	if p.consume('V') {
		ret = Void
	} else {
		t, err := p.fieldType()
		if err != nil {
			return Method{}, err
		}
		ret = t
	}
	if !p.eof() {
		return Method{}, p.fail("trailing characters")
	}
	return Method{Params: params, Return: ret}, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) consume(c byte) bool {
	if !p.eof() && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) fail(reason string) error {
	return &MalformedDescriptorError{Descriptor: p.src, Pos: p.pos, Reason: reason}
}

func (p *parser) fieldType() (Type, error) {
	if p.eof() {
		return Type{}, p.fail("expected field type")
	}

	c := p.src[p.pos]
	if prim, ok := primitiveCodes[c]; ok {
		p.pos++
		return prim, nil
	}

	switch c {
	case 'L':
		start := p.pos + 1
		end := strings.IndexByte(p.src[start:], ';')
		if end < 0 {
			return Type{}, p.fail("unterminated reference type")
		}
		if end == 0 {
			return Type{}, p.fail("empty class name")
		}
		p.pos = start + end + 1
		return Reference(p.src[start : start+end]), nil

	case '[':
		dims := 0
		for p.consume('[') {
			dims++
		}
		if dims > maxArrayDimensions {
			return Type{}, p.fail("too many array dimensions")
		}
		if p.eof() {
			return Type{}, p.fail("array without element type")
		}
		elem, err := p.fieldType()
		if err != nil {
			return Type{}, err
		}
		for i := 0; i < dims; i++ {
			elem = ArrayOf(elem)
		}
		return elem, nil
	}

	return Type{}, p.fail(fmt.Sprintf("unknown type code '%c'", c))
}
