package native

import (
	"io"
	"sync"
)

// PrintStream is the host side of a java.io.PrintStream. Writes from
// concurrent frames are serialized.
type PrintStream struct {
	Name   string
	Writer io.Writer

	mu sync.Mutex
}

// NewPrintStream creates a PrintStream writing to w.
func NewPrintStream(name string, w io.Writer) *PrintStream {
	return &PrintStream{Name: name, Writer: w}
}

// Print writes s without a line terminator.
func (ps *PrintStream) Print(s string) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	_, err := io.WriteString(ps.Writer, s)
	return err
}

// Println writes s followed by a newline.
func (ps *PrintStream) Println(s string) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	_, err := io.WriteString(ps.Writer, s+"\n")
	return err
}

func (ps *PrintStream) String() string {
	return "java.io.PrintStream@" + ps.Name
}
