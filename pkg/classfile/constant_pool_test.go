package classfile

import (
	"errors"
	"testing"
)

// samplePool builds:
//
//	#1 Utf8 "Hello"
//	#2 Class #1
//	#3 Utf8 "out"
//	#4 Utf8 "Ljava/io/PrintStream;"
//	#5 NameAndType #3:#4
//	#6 Fieldref #2.#5
//	#7 Long 42
//	#8 (unusable)
//	#9 String #1
func samplePool() *ConstantPool {
	return NewConstantPool([]Constant{
		&ConstantUtf8{Value: "Hello"},
		&ConstantClass{NameIndex: 1},
		&ConstantUtf8{Value: "out"},
		&ConstantUtf8{Value: "Ljava/io/PrintStream;"},
		&ConstantNameAndType{NameIndex: 3, DescriptorIndex: 4},
		&ConstantFieldref{ClassIndex: 2, NameAndTypeIndex: 5},
		&ConstantLong{Value: 42},
		nil,
		&ConstantString{StringIndex: 1},
	})
}

func TestConstantPoolGet(t *testing.T) {
	pool := samplePool()

	if pool.Size() != 9 {
		t.Fatalf("Size: got %d, want 9", pool.Size())
	}

	t.Run("first and last index", func(t *testing.T) {
		c, err := pool.Get(1)
		if err != nil {
			t.Fatalf("Get(1): %v", err)
		}
		if c.Tag() != TagUtf8 {
			t.Errorf("Get(1) tag: got %v, want Utf8", c.Tag())
		}
		c, err = pool.Get(9)
		if err != nil {
			t.Fatalf("Get(9): %v", err)
		}
		if c.Tag() != TagString {
			t.Errorf("Get(9) tag: got %v, want String", c.Tag())
		}
	})

	invalid := []struct {
		name  string
		index uint16
	}{
		{"zero", 0},
		{"size+1", 10},
		{"far out", 0xFFFF},
		{"second slot of long", 8},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pool.Get(tt.index)
			var ice *InvalidConstantIndexError
			if !errors.As(err, &ice) {
				t.Fatalf("Get(%d): got %v, want InvalidConstantIndexError", tt.index, err)
			}
			if ice.Index != tt.index {
				t.Errorf("error index: got %d, want %d", ice.Index, tt.index)
			}
		})
	}
}

func TestConstantPoolTypedAccessors(t *testing.T) {
	pool := samplePool()

	fref, err := pool.Fieldref(6)
	if err != nil {
		t.Fatalf("Fieldref(6): %v", err)
	}
	if fref.ClassIndex != 2 || fref.NameAndTypeIndex != 5 {
		t.Errorf("Fieldref(6): got %+v", fref)
	}

	nat, err := pool.NameAndType(fref.NameAndTypeIndex)
	if err != nil {
		t.Fatalf("NameAndType: %v", err)
	}
	name, err := pool.Utf8(nat.NameIndex)
	if err != nil {
		t.Fatalf("Utf8: %v", err)
	}
	if name.Value != "out" {
		t.Errorf("field name: got %q, want %q", name.Value, "out")
	}

	str, err := pool.String(9)
	if err != nil {
		t.Fatalf("String(9): %v", err)
	}
	if str.StringIndex != 1 {
		t.Errorf("String(9).StringIndex: got %d, want 1", str.StringIndex)
	}
}

func TestConstantTypeMismatch(t *testing.T) {
	pool := samplePool()

	tests := []struct {
		name     string
		call     func() error
		index    uint16
		expected Tag
		actual   Tag
	}{
		{
			name:     "fieldref on utf8",
			call:     func() error { _, err := pool.Fieldref(1); return err },
			index:    1,
			expected: TagFieldref,
			actual:   TagUtf8,
		},
		{
			name:     "class on fieldref",
			call:     func() error { _, err := pool.Class(6); return err },
			index:    6,
			expected: TagClass,
			actual:   TagFieldref,
		},
		{
			name:     "methodref on fieldref",
			call:     func() error { _, err := pool.Methodref(6); return err },
			index:    6,
			expected: TagMethodref,
			actual:   TagFieldref,
		},
		{
			name:     "integer on long",
			call:     func() error { _, err := pool.Integer(7); return err },
			index:    7,
			expected: TagInteger,
			actual:   TagLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var ctm *ConstantTypeMismatchError
			if !errors.As(err, &ctm) {
				t.Fatalf("got %v, want ConstantTypeMismatchError", err)
			}
			if ctm.Index != tt.index || ctm.Expected != tt.expected || ctm.Actual != tt.actual {
				t.Errorf("got %+v, want index=%d expected=%v actual=%v", ctm, tt.index, tt.expected, tt.actual)
			}
		})
	}
}

func TestConstantPoolIsACopy(t *testing.T) {
	entries := []Constant{&ConstantUtf8{Value: "a"}}
	pool := NewConstantPool(entries)
	entries[0] = &ConstantUtf8{Value: "b"}

	got, err := pool.Utf8(1)
	if err != nil {
		t.Fatalf("Utf8(1): %v", err)
	}
	if got.Value != "a" {
		t.Errorf("pool changed after caller mutated its slice: got %q", got.Value)
	}
}

func TestTagString(t *testing.T) {
	if TagNameAndType.String() != "NameAndType" {
		t.Errorf("got %q", TagNameAndType.String())
	}
	if Tag(99).String() != "Tag(99)" {
		t.Errorf("got %q", Tag(99).String())
	}
}
