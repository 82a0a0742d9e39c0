package irdump

import (
	"errors"
	"fmt"
)

// ErrMalformedDump is the sentinel wrapped by every *FormatError.
var ErrMalformedDump = errors.New("irdump: malformed dump")

// FormatError reports the first position at which a document stopped
// matching the dump grammar.
type FormatError struct {
	Offset   int    // byte offset into the input
	Line     int    // 1-based
	Column   int    // 1-based, in bytes
	Expected string // literal or pattern that failed to match
	Found    string // input at Offset, truncated
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("irdump: line %d, column %d (offset %d): expected %s, found %q",
		e.Line, e.Column, e.Offset, e.Expected, e.Found)
}

func (e *FormatError) Unwrap() error {
	return ErrMalformedDump
}
