package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/tliron/commonlog"
	parser "github.com/wreulicke/classfile-parser"
)

var log = commonlog.GetLogger("minijvm.classfile")

// ParseFile opens and parses a .class file from the given path.
func ParseFile(path string) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a .class file from the given reader and returns a ClassFile.
func Parse(r io.Reader) (*ClassFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading class file: %w", err)
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("reading magic number: %w", io.ErrUnexpectedEOF)
	}

	magic := binary.BigEndian.Uint32(data[:4])
	if magic != Magic {
		return nil, &InvalidMagicError{Magic: magic}
	}

	decoded, err := parser.New(bytes.NewReader(data)).Parse()
	if err != nil {
		return nil, fmt.Errorf("decoding class file: %w", err)
	}

	cp := decoded.ConstantPool
	raw := RawClass{
		Magic:        magic,
		MinorVersion: uint16(decoded.MinorVersion),
		MajorVersion: uint16(decoded.MajorVersion),
		ConstantPool: NewConstantPool(convertConstants(cp)),
		AccessFlags:  uint16(decoded.AccessFlags),
		ThisClass:    uint16(decoded.ThisClass),
		SuperClass:   uint16(decoded.SuperClass),
	}
	for _, idx := range decoded.Interfaces {
		raw.Interfaces = append(raw.Interfaces, uint16(idx))
	}

	for i, f := range decoded.Fields {
		name, err := f.Name(cp)
		if err != nil {
			return nil, fmt.Errorf("resolving field %d name: %w", i, err)
		}
		desc, err := f.Descriptor(cp)
		if err != nil {
			return nil, fmt.Errorf("resolving field %d descriptor: %w", i, err)
		}
		raw.Fields = append(raw.Fields, FieldInfo{
			AccessFlags: uint16(f.AccessFlags),
			Name:        name,
			Descriptor:  desc,
		})
	}

	for i, m := range decoded.Methods {
		name, err := m.Name(cp)
		if err != nil {
			return nil, fmt.Errorf("resolving method %d name: %w", i, err)
		}
		desc, err := m.Descriptor(cp)
		if err != nil {
			return nil, fmt.Errorf("resolving method %d descriptor: %w", i, err)
		}
		mi := MethodInfo{
			AccessFlags: uint16(m.AccessFlags),
			Name:        name,
			Descriptor:  desc,
		}
		if codeAttr := m.Code(); codeAttr != nil {
			insns, err := DecodeCode(codeAttr.Codes)
			if err != nil {
				return nil, fmt.Errorf("decoding code of %s%s: %w", name, desc, err)
			}
			mi.Code = &CodeAttribute{
				MaxStack:     uint16(codeAttr.MaxStack),
				MaxLocals:    uint16(codeAttr.MaxLocals),
				Instructions: insns,
			}
			mi.Attributes = append(mi.Attributes, AttributeInfo{Name: "Code", Data: codeAttr.Codes})
		}
		raw.Methods = append(raw.Methods, mi)
	}

	if sf := decoded.SourceFile(); sf != nil {
		if utf8 := cp.LookupUtf8(sf.SourcefileIndex); utf8 != nil {
			raw.Attributes = append(raw.Attributes, AttributeInfo{Name: "SourceFile", Data: []byte(utf8.String())})
		}
	}

	cf, err := New(raw)
	if err != nil {
		return nil, err
	}
	log.Debugf("parsed %s: %d constants, %d fields, %d methods",
		cf.Name(), cf.ConstantPool().Size(), len(cf.Fields()), len(cf.Methods()))
	return cf, nil
}

// convertConstants maps decoded entries onto the sealed Constant types.
// Index i of the result is pool index i+1, matching the decoder's layout.
func convertConstants(cp *parser.ConstantPool) []Constant {
	entries := make([]Constant, len(cp.Constants))
	for i, c := range cp.Constants {
		if c == nil {
			continue
		}
		switch v := c.(type) {
		case *parser.ConstantUtf8:
			entries[i] = &ConstantUtf8{Value: v.String()}
		case *parser.ConstantInteger:
			entries[i] = &ConstantInteger{Value: int32(v.Bytes)}
		case *parser.ConstantFloat:
			entries[i] = &ConstantFloat{Value: math.Float32frombits(uint32(v.Bytes))}
		case *parser.ConstantLong:
			entries[i] = &ConstantLong{Value: int64(v.HighBytes)<<32 | int64(v.LowBytes)}
		case *parser.ConstantClass:
			entries[i] = &ConstantClass{NameIndex: uint16(v.NameIndex)}
		case *parser.ConstantString:
			entries[i] = &ConstantString{StringIndex: uint16(v.StringIndex)}
		case *parser.ConstantFieldref:
			entries[i] = &ConstantFieldref{ClassIndex: uint16(v.ClassIndex), NameAndTypeIndex: uint16(v.NameAndTypeIndex)}
		case *parser.ConstantMethodref:
			entries[i] = &ConstantMethodref{ClassIndex: uint16(v.ClassIndex), NameAndTypeIndex: uint16(v.NameAndTypeIndex)}
		case *parser.ConstantInterfaceMethodref:
			entries[i] = &ConstantInterfaceMethodref{ClassIndex: uint16(v.ClassIndex), NameAndTypeIndex: uint16(v.NameAndTypeIndex)}
		case *parser.ConstantNameAndType:
			entries[i] = &ConstantNameAndType{NameIndex: uint16(v.NameIndex), DescriptorIndex: uint16(v.DescriptorIndex)}
		case *parser.ConstantInvokeDynamic:
			entries[i] = &ConstantInvokeDynamic{
				BootstrapMethodAttrIndex: uint16(v.BootstrapMethodAttrIndex),
				NameAndTypeIndex:         uint16(v.NameAndTypeIndex),
			}
		default:
			log.Debugf("constant pool index %d: %T kept as unsupported", i+1, c)
			entries[i] = &ConstantUnsupported{}
		}
	}
	return entries
}
