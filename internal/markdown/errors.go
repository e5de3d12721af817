package markdown

import (
	"errors"
	"fmt"
)

var (
	// ErrFrontMatterUnterminated reports an opening delimiter without a
	// matching closing line.
	ErrFrontMatterUnterminated = errors.New("markdown: front matter not terminated")
	// ErrFrontMatterInvalid reports metadata that does not decode as
	// well-formed key/value assignments.
	ErrFrontMatterInvalid = errors.New("markdown: front matter invalid")
)

// ParseError describes a malformed metadata block. Path points at the source
// document and Line at the offending line within it; Line is zero when the
// decoder could not attribute the failure to a specific line.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	switch {
	case e.Path != "" && e.Line > 0:
		return fmt.Sprintf("markdown parse %s:%d: %v", e.Path, e.Line, e.Err)
	case e.Path != "":
		return fmt.Sprintf("markdown parse %s: %v", e.Path, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("markdown parse line %d: %v", e.Line, e.Err)
	default:
		return fmt.Sprintf("markdown parse: %v", e.Err)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err (or anything it wraps) is a ParseError.
func IsParseError(err error) bool {
	var perr *ParseError
	return errors.As(err, &perr)
}

// ParseErrorLine extracts the line number from a ParseError, zero otherwise.
func ParseErrorLine(err error) int {
	var perr *ParseError
	if errors.As(err, &perr) {
		return perr.Line
	}
	return 0
}
