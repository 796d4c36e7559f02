package diag

import (
	"errors"
	"fmt"
	"strings"

	"mako/internal/source"
)

// Kind classifies a fatal compile failure.
type Kind uint8

const (
	KindUnknown Kind = iota
	// LoadError: a module file could not be read.
	LoadError
	// ParseError: module text is not valid syntax.
	ParseError
	// TransformError: a normalization or interop stage rejected the module.
	TransformError
	// ResolutionError: an import specifier maps to no file.
	ResolutionError
	// EmitError: a tree could not be serialized.
	EmitError
	// WriteError: the bundle could not be written.
	WriteError
)

func (k Kind) String() string {
	switch k {
	case LoadError:
		return "LoadError"
	case ParseError:
		return "ParseError"
	case TransformError:
		return "TransformError"
	case ResolutionError:
		return "ResolutionError"
	case EmitError:
		return "EmitError"
	case WriteError:
		return "WriteError"
	}
	return "Error"
}

// Error is the fatal error every compile stage returns. Module holds the
// canonical id of the module being processed; Importer and Specifier are set
// for resolution failures.
type Error struct {
	Kind      Kind
	Code      Code
	Module    string
	Importer  string
	Specifier string
	Path      string // output path for WriteError
	Span      source.Span
	HasSpan   bool
	Msg       string
	Err       error
}

func (e *Error) Error() string {
	var sb strings.Builder
	switch e.Kind {
	case ResolutionError:
		fmt.Fprintf(&sb, "cannot resolve %q", e.Specifier)
		if e.Importer != "" {
			fmt.Fprintf(&sb, " imported by %s", e.Importer)
		}
	case WriteError:
		fmt.Fprintf(&sb, "cannot write %s", e.Path)
	default:
		sb.WriteString(e.Module)
	}
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Diagnostic converts the error into a Diagnostic for rendering.
func (e *Error) Diagnostic() Diagnostic {
	d := New(SevError, e.Code, e.Span, e.Kind.String()+": "+e.Error())
	d.NoSpan = !e.HasSpan
	d.Path = e.Module
	if e.Kind == WriteError {
		d.Path = e.Path
	}
	return d
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// AsError unwraps err into *Error.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func NewLoadError(module string, err error) *Error {
	return &Error{Kind: LoadError, Code: IOLoadFile, Module: module, Msg: "cannot load module", Err: err}
}

func NewParseError(module string, span source.Span, msg string) *Error {
	return &Error{Kind: ParseError, Code: SynParse, Module: module, Span: span, HasSpan: true, Msg: msg}
}

func NewTransformError(module string, code Code, msg string) *Error {
	return &Error{Kind: TransformError, Code: code, Module: module, Msg: msg}
}

func NewResolutionError(importer, specifier string, err error) *Error {
	return &Error{Kind: ResolutionError, Code: ResUnresolved, Module: importer, Importer: importer, Specifier: specifier, Err: err}
}

func NewEmitError(module string, code Code, err error) *Error {
	return &Error{Kind: EmitError, Code: code, Module: module, Err: err}
}

func NewWriteError(path string, code Code, err error) *Error {
	return &Error{Kind: WriteError, Code: code, Path: path, Err: err}
}

// At attaches a primary span.
func (e *Error) At(span source.Span) *Error {
	e.Span = span
	e.HasSpan = true
	return e
}
