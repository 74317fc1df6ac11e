// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdiag

import "fmt"

// A Pos describes the location of a single character of source text.
type Pos struct {
	Line   int // line number, 1-based
	Column int // column number within the line, in runes, 1-based
	Offset int // byte offset from the start of the input, 0-based
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

// A Span describes a contiguous span of source input by byte offset.
type Span struct {
	Pos int // the start offset, 0-based
	End int // the end offset, 0-based (noninclusive)
}

// A Location describes the complete location of a range of source text,
// including line and column positions.
type Location struct {
	Span
	First, Last Pos
}
