package selector

import (
	"errors"
	"fmt"
)

// ErrorKind classifies selection failures.
type ErrorKind int

const (
	ErrProcessing ErrorKind = iota
	ErrMalformedSelector
	ErrInvalidMode
	ErrLineOutOfRange
	ErrInvertedRange
	ErrInvalidLineRange
	ErrFunctionNotFound
	ErrClassNotFound
	ErrMethodNotFound
	ErrParse
	ErrSectionNotFound
	ErrEmptyPattern
	ErrInvalidPattern
	ErrNoPatternMatch
	ErrPathFileType
	ErrEmptyPath
	ErrInvalidIndex
	ErrInvalidPath
	ErrExpectedArray
	ErrExpectedObject
	ErrIndexOutOfRange
	ErrKeyNotFound
	ErrJSONParse
	ErrYAMLParse
	ErrYAMLUnsupported
	ErrASTFileType
	ErrSectionFileType
)

var errorKindNames = map[ErrorKind]string{
	ErrProcessing:        "selector processing error",
	ErrMalformedSelector: "malformed selector",
	ErrInvalidMode:       "invalid mode",
	ErrLineOutOfRange:    "line out of range",
	ErrInvertedRange:     "empty or inverted range",
	ErrInvalidLineRange:  "invalid line range",
	ErrFunctionNotFound:  "function not found",
	ErrClassNotFound:     "class not found",
	ErrMethodNotFound:    "method not found",
	ErrParse:             "parse error",
	ErrSectionNotFound:   "markdown section not found",
	ErrEmptyPattern:      "empty regex pattern",
	ErrInvalidPattern:    "invalid regex pattern",
	ErrNoPatternMatch:    "no lines matched pattern",
	ErrPathFileType:      "path selector requires a JSON or YAML file",
	ErrEmptyPath:         "empty path expression",
	ErrInvalidIndex:      "invalid array index",
	ErrInvalidPath:       "invalid path expression",
	ErrExpectedArray:     "expected array",
	ErrExpectedObject:    "expected object",
	ErrIndexOutOfRange:   "array index out of range",
	ErrKeyNotFound:       "key not found",
	ErrJSONParse:         "failed to parse JSON",
	ErrYAMLParse:         "failed to parse YAML",
	ErrYAMLUnsupported:   "missing YAML support",
	ErrASTFileType:       "AST selectors require a Python file",
	ErrSectionFileType:   "section selector requires a Markdown file",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Error is the single error type returned by selection. Message is the
// human-readable text shown to users.
type Error struct {
	Kind     ErrorKind
	Selector string // offending selector as kind:value, empty when not tied to one
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is, or wraps, a selection error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}
