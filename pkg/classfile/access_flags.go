package classfile

import "strings"

// AccessFlag is a single access or property bit.
type AccessFlag uint16

// Class access flags
const (
	AccPublic     AccessFlag = 0x0001
	AccFinal      AccessFlag = 0x0010
	AccSuper      AccessFlag = 0x0020
	AccInterface  AccessFlag = 0x0200
	AccAbstract   AccessFlag = 0x0400
	AccSynthetic  AccessFlag = 0x1000
	AccAnnotation AccessFlag = 0x2000
	AccEnum       AccessFlag = 0x4000
	AccModule     AccessFlag = 0x8000
)

// Field and method access flags
const (
	AccPrivate      AccessFlag = 0x0002
	AccProtected    AccessFlag = 0x0004
	AccStatic       AccessFlag = 0x0008
	AccSynchronized AccessFlag = 0x0020
	AccNative       AccessFlag = 0x0100
)

var classFlagNames = []struct {
	flag AccessFlag
	name string
}{
	{AccPublic, "public"},
	{AccFinal, "final"},
	{AccSuper, "super"},
	{AccInterface, "interface"},
	{AccAbstract, "abstract"},
	{AccSynthetic, "synthetic"},
	{AccAnnotation, "annotation"},
	{AccEnum, "enum"},
	{AccModule, "module"},
}

// AccessFlags is the decoded set of class access flags.
type AccessFlags []AccessFlag

// DecodeAccessFlags returns the class flags whose bit is set in bits.
func DecodeAccessFlags(bits uint16) AccessFlags {
	flags := AccessFlags{}
	for _, f := range classFlagNames {
		if bits&uint16(f.flag) != 0 {
			flags = append(flags, f.flag)
		}
	}
	return flags
}

// Has reports whether flag is in the set.
func (fs AccessFlags) Has(flag AccessFlag) bool {
	for _, f := range fs {
		if f == flag {
			return true
		}
	}
	return false
}

// Names returns the flag names, e.g. ["public", "super"].
func (fs AccessFlags) Names() []string {
	names := make([]string, 0, len(fs))
	for _, f := range fs {
		for _, n := range classFlagNames {
			if n.flag == f {
				names = append(names, n.name)
			}
		}
	}
	return names
}

func (fs AccessFlags) String() string {
	return strings.Join(fs.Names(), " ")
}
