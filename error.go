// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdiag

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors wrapped by a ParseError, to allow callers to distinguish
// grammar faults without parsing the rendered message.
var (
	// ErrNestingTooDeep reports that the input exceeded the configured
	// maximum nesting depth of objects and arrays.
	ErrNestingTooDeep = errors.New("nesting too deep")

	// ErrDuplicateKey reports a repeated object key when the parser is
	// configured to reject duplicates.
	ErrDuplicateKey = errors.New("duplicate object key")

	// ErrTrailingContent reports additional non-whitespace input after a
	// complete top-level value.
	ErrTrailingContent = errors.New("trailing content after value")
)

// ParseError is the concrete type of errors reported by the parser.
// The rendered message always includes the line and column of the fault and
// a description of what went wrong; when Src is set it also includes the
// offending source line with a caret marking the column.
type ParseError struct {
	Pos      Pos    // the position of the offending token or character
	Expected string // what the grammar wanted here, e.g. `"," or "}"`
	Found    string // what was actually seen, e.g. `string "b"`
	Src      []byte // the complete source input, if known
	Err      error  // the underlying cause, if any
}

// Error satisfies the error interface.
func (e *ParseError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "at %s: ", e.Pos)
	switch {
	case e.Expected != "":
		fmt.Fprintf(&sb, "expected %s, found %s", e.Expected, e.Found)
	case e.Err != nil:
		if le, ok := e.Err.(*LexError); ok {
			sb.WriteString(le.msg) // the position is already rendered above
		} else {
			sb.WriteString(e.Err.Error())
		}
	default:
		sb.WriteString("invalid input")
	}
	if e.Src != nil {
		sb.WriteByte('\n')
		sb.WriteString(Snippet(e.Src, e.Pos))
	}
	return sb.String()
}

// Unwrap supports error wrapping.
func (e *ParseError) Unwrap() error { return e.Err }

// Snippet returns a two-line excerpt of src around pos: the source line
// containing pos rendered verbatim, and below it a marker line with a caret
// under the column pos describes. The position may point one past the end of
// its line, as it does for faults at the end of input.
func Snippet(src []byte, pos Pos) string {
	off := min(max(pos.Offset, 0), len(src))
	start := bytes.LastIndexByte(src[:off], '\n') + 1
	end := bytes.IndexByte(src[off:], '\n')
	if end < 0 {
		end = len(src)
	} else {
		end += off
	}
	line := src[start:end]

	var sb strings.Builder
	sb.Write(line)
	sb.WriteByte('\n')

	// Pad the marker line one rune at a time so the caret stays aligned for
	// multibyte input, preserving tabs so tab stops keep their width.
	col := 1
	for _, r := range string(line) {
		if col >= pos.Column {
			break
		}
		if r == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
		col++
	}
	for ; col < pos.Column; col++ {
		sb.WriteByte(' ')
	}
	sb.WriteByte('^')
	return sb.String()
}
