package native

import (
	"bytes"
	"testing"
)

func TestPrintStream(t *testing.T) {
	t.Run("println appends newline", func(t *testing.T) {
		var buf bytes.Buffer
		ps := NewPrintStream("out", &buf)
		if err := ps.Println("hello"); err != nil {
			t.Fatalf("Println: %v", err)
		}
		if got := buf.String(); got != "hello\n" {
			t.Errorf("got %q, want %q", got, "hello\n")
		}
	})

	t.Run("print writes verbatim", func(t *testing.T) {
		var buf bytes.Buffer
		ps := NewPrintStream("out", &buf)
		ps.Print("a")
		ps.Print("b")
		ps.Println("")
		if got := buf.String(); got != "ab\n" {
			t.Errorf("got %q, want %q", got, "ab\n")
		}
	})

	t.Run("string form", func(t *testing.T) {
		ps := NewPrintStream("err", &bytes.Buffer{})
		if got := ps.String(); got != "java.io.PrintStream@err" {
			t.Errorf("String: got %q", got)
		}
	})
}

func TestIntegerValueOf(t *testing.T) {
	tests := []struct {
		name   string
		value  int32
		shared bool
	}{
		{"zero", 0, true},
		{"low bound", -128, true},
		{"high bound", 127, true},
		{"below cache", -129, false},
		{"above cache", 128, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := IntegerValueOf(tt.value)
			b := IntegerValueOf(tt.value)
			if a.IntValue() != tt.value {
				t.Errorf("IntValue: got %d, want %d", a.IntValue(), tt.value)
			}
			if (a == b) != tt.shared {
				t.Errorf("shared instance: got %v, want %v", a == b, tt.shared)
			}
		})
	}
}

func TestIntegerString(t *testing.T) {
	if got := IntegerValueOf(-42).String(); got != "-42" {
		t.Errorf("String: got %q, want %q", got, "-42")
	}
}
