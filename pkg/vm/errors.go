package vm

import "fmt"

// MethodNotFoundError is returned when a method is not declared by a class
// or any of its superclasses.
type MethodNotFoundError struct {
	Class      string
	Name       string
	Descriptor string
}

func (e *MethodNotFoundError) Error() string {
	return fmt.Sprintf("method not found: %s.%s%s", e.Class, e.Name, e.Descriptor)
}

// NoCodeError is returned when invoking an abstract or native method that
// has no registered host implementation.
type NoCodeError struct {
	Class  string
	Method string
}

func (e *NoCodeError) Error() string {
	return fmt.Sprintf("%s.%s has no Code attribute", e.Class, e.Method)
}

// NullReceiverError is returned when an instance method is invoked on null.
type NullReceiverError struct {
	Method string
}

func (e *NullReceiverError) Error() string {
	return fmt.Sprintf("NullPointerException: cannot invoke %s on null", e.Method)
}

// FrameDepthError is returned when nested calls exceed the frame limit.
type FrameDepthError struct {
	Limit int
}

func (e *FrameDepthError) Error() string {
	return fmt.Sprintf("stack overflow: frame depth exceeded %d", e.Limit)
}
