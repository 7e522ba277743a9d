package classfile

// MethodInfo represents a method in a class file.
type MethodInfo struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	Attributes  []AttributeInfo
	Code        *CodeAttribute
}

// IsStatic reports whether the method is declared static.
func (m *MethodInfo) IsStatic() bool {
	return m.AccessFlags&uint16(AccStatic) != 0
}

// IsNative reports whether the method is declared native.
func (m *MethodInfo) IsNative() bool {
	return m.AccessFlags&uint16(AccNative) != 0
}

// FieldInfo represents a field in a class file.
type FieldInfo struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	Attributes  []AttributeInfo
}

// IsStatic reports whether the field is declared static.
func (f *FieldInfo) IsStatic() bool {
	return f.AccessFlags&uint16(AccStatic) != 0
}

// AttributeInfo represents a raw attribute.
type AttributeInfo struct {
	Name string
	Data []byte
}

// ExceptionHandler represents an entry in the exception table.
type ExceptionHandler struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

// CodeAttribute represents the Code attribute of a method, with its
// bytecode already decoded into instructions.
type CodeAttribute struct {
	MaxStack          uint16
	MaxLocals         uint16
	Instructions      []Instruction
	ExceptionHandlers []ExceptionHandler
}
