package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/daimatz/minijvm/pkg/classfile"
)

// printClass writes a javap-like summary of cf.
func printClass(w io.Writer, cf *classfile.ClassFile) error {
	major, minor := cf.Version()
	fmt.Fprintf(w, "class %s", cf.Name())
	if super, ok := cf.SuperClassName(); ok {
		fmt.Fprintf(w, " extends %s", super)
	}
	ifaces, err := cf.InterfaceNames()
	if err != nil {
		return err
	}
	if len(ifaces) > 0 {
		fmt.Fprintf(w, " implements %s", strings.Join(ifaces, ", "))
	}
	fmt.Fprintf(w, "\n  version: %d.%d\n  flags: %s\n", major, minor, cf.AccessFlags())

	for _, f := range cf.Fields() {
		fmt.Fprintf(w, "\n  field %s %s\n    flags: %s\n", f.Name, f.Descriptor, memberFlags(f.AccessFlags))
	}
	for _, m := range cf.Methods() {
		fmt.Fprintf(w, "\n  method %s%s\n    flags: %s\n", m.Name, m.Descriptor, memberFlags(m.AccessFlags))
		if m.Code == nil {
			continue
		}
		fmt.Fprintf(w, "    stack=%d, locals=%d\n", m.Code.MaxStack, m.Code.MaxLocals)
		for i, in := range m.Code.Instructions {
			fmt.Fprintf(w, "    %4d: %s\n", i, in)
		}
	}
	return nil
}

var memberFlagNames = []struct {
	flag classfile.AccessFlag
	name string
}{
	{classfile.AccPublic, "public"},
	{classfile.AccPrivate, "private"},
	{classfile.AccProtected, "protected"},
	{classfile.AccStatic, "static"},
	{classfile.AccFinal, "final"},
	{classfile.AccSynchronized, "synchronized"},
	{classfile.AccNative, "native"},
	{classfile.AccAbstract, "abstract"},
	{classfile.AccSynthetic, "synthetic"},
}

func memberFlags(bits uint16) string {
	var names []string
	for _, f := range memberFlagNames {
		if bits&uint16(f.flag) != 0 {
			names = append(names, f.name)
		}
	}
	return strings.Join(names, " ")
}
