package vm

import "fmt"

// ErrorKind tells a script that did not parse from one that threw.
type ErrorKind uint8

const (
	ErrorSyntax ErrorKind = iota + 1
	ErrorThrown
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorSyntax:
		return "syntax error"
	case ErrorThrown:
		return "uncaught exception"
	}
	return "error"
}

// RuntimeError is a failure inside the script.
type RuntimeError struct {
	Kind    ErrorKind
	Message string
	// Stack is the engine's rendering with the script location, when known.
	Stack string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
