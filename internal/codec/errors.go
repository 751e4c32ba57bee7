package codec

import (
	"bytes"
	"errors"
	"fmt"
)

// SyntaxError reports input that does not follow the record grammar.
type SyntaxError struct {
	Offset int // byte offset into the document
	Line   int // 1-based
	Column int // 1-based, in bytes
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// FieldError reports a record whose fields are missing or cannot be
// converted to the domain type.
type FieldError struct {
	Record string // "user", "product", "order", "order item"
	Index  int    // position of the record in its array
	Field  string
	Msg    string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s[%d].%s: %s", e.Record, e.Index, e.Field, e.Msg)
}

// IsSyntaxError returns true if err is or wraps a *SyntaxError.
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

// IsFieldError returns true if err is or wraps a *FieldError.
func IsFieldError(err error) bool {
	var fe *FieldError
	return errors.As(err, &fe)
}

// errAt builds a SyntaxError for src[off].
func errAt(src []byte, off int, format string, args ...any) *SyntaxError {
	if off > len(src) {
		off = len(src)
	}
	line := 1 + bytes.Count(src[:off], []byte{'\n'})
	col := off + 1
	if nl := bytes.LastIndexByte(src[:off], '\n'); nl >= 0 {
		col = off - nl
	}
	return &SyntaxError{
		Offset: off,
		Line:   line,
		Column: col,
		Msg:    fmt.Sprintf(format, args...),
	}
}
