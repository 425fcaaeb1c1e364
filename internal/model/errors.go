package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SourceLocation pinpoints a position in a schema or data source file.
type SourceLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// SourceContext carries a short window of source around an error location:
// a ParseError carries line/column plus a 5-line source window around the
// failure.
type SourceContext struct {
	Lines     []string `json:"lines"`      // up to 5 lines, centered on the error
	ErrorLine int      `json:"error_line"` // index into Lines of the failing line
}

// ExtractSourceContext builds a 5-line window (2 lines before, the error
// line, 2 lines after) around location.Line. Grounded on
// compiler/errors/context.go's extractSourceContext, narrowed from a 7-line
// to a 5-line window.
func ExtractSourceContext(location SourceLocation, source string) SourceContext {
	lines := strings.Split(source, "\n")
	if location.Line < 1 || location.Line > len(lines) {
		return SourceContext{}
	}
	idx := location.Line - 1
	start := idx - 2
	if start < 0 {
		start = 0
	}
	end := idx + 3
	if end > len(lines) {
		end = len(lines)
	}
	return SourceContext{
		Lines:     append([]string(nil), lines[start:end]...),
		ErrorLine: idx - start,
	}
}

// ParseError reports malformed schema/data input: bad tokens, truncated
// buffers, varint overflow, invalid pointer types, out-of-bounds offsets, a
// missing root type, or a grammar mismatch.
type ParseError struct {
	Phase    string // "lexer", "parser", "codec"
	Message  string
	Location SourceLocation
	Context  SourceContext
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", e.Location.File, e.Location.Line, e.Location.Column, e.Phase, e.Message)
}

// MarshalJSON implements json.Marshaler.
func (e *ParseError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Phase    string         `json:"phase"`
		Message  string         `json:"message"`
		Location SourceLocation `json:"location"`
		Context  SourceContext  `json:"context"`
	}{e.Phase, e.Message, e.Location, e.Context})
}

// SerializationError reports an unknown root/embedded type or an
// unrepresentable value encountered while encoding.
type SerializationError struct {
	Message string
}

func (e *SerializationError) Error() string { return "serialization error: " + e.Message }

// ValidationError is the base kind for schema/data validation failures.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return "validation error: " + e.Message }

// TypeValidationError reports a value that does not satisfy its declared
// type (range check, wrong scalar kind, etc).
type TypeValidationError struct {
	Field   string
	Message string
}

func (e *TypeValidationError) Error() string {
	return fmt.Sprintf("type validation error on %q: %s", e.Field, e.Message)
}

// SchemaValidationError reports a structural problem with a schema itself:
// a duplicate field number/ordinal, or missing required metadata (name,
// ordinal, file_id, root_type).
type SchemaValidationError struct {
	Message string
}

func (e *SchemaValidationError) Error() string { return "schema validation error: " + e.Message }

// InvalidValueError reports a Value constructed from a nonsense raw shape,
// e.g. a Map without both key and value.
type InvalidValueError struct {
	Reason string
}

func (e *InvalidValueError) Error() string { return "invalid value: " + e.Reason }

// TypeCoercionError reports a narrowing conversion that did not succeed,
// e.g. a non-numeric string coerced to an integer.
type TypeCoercionError struct {
	From, To string
	Value    string
}

func (e *TypeCoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %q from %s to %s", e.Value, e.From, e.To)
}

// FileNotFoundError and InvalidArgumentError are boundary errors raised by
// the CLI layer, kept in the core's error taxonomy so CLI code can
// type-switch on them uniformly with parser/codec errors.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string { return "file not found: " + e.Path }

type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string { return "invalid argument: " + e.Message }
