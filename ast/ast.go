// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package ast defines an abstract syntax tree for JSON values,
// and a parser that constructs syntax trees from JSON source.
package ast

import (
	"strconv"
	"strings"

	"github.com/creachadair/jdiag"
)

// A Value is an arbitrary JSON value.
type Value interface {
	// Span reports the location of the value in its source input.
	Span() jdiag.Span

	// JSON renders the value as compact JSON text.
	JSON() string
}

// A Datum is a Value with a text representation.
type Datum interface {
	Value
	Text() string
}

func newSpan(pos, end int) jdiag.Span { return jdiag.Span{Pos: pos, End: end} }

// An Object is a collection of key-value members. Keys are unique: when a
// key occurs more than once in the source, the last occurrence's value is
// retained, at the position where the key first appeared.
type Object struct {
	pos, end int
	Members  []*Member
}

// Span satisfies the Value interface.
func (o *Object) Span() jdiag.Span { return newSpan(o.pos, o.end) }

// JSON satisfies the Value interface.
func (o *Object) JSON() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, m := range o.Members {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(m.JSON())
	}
	sb.WriteByte('}')
	return sb.String()
}

// Find returns the member of o with the given key, or nil.
func (o *Object) Find(key string) *Member {
	for _, m := range o.Members {
		if m.Key == key {
			return m
		}
	}
	return nil
}

// A Member is a single key-value pair belonging to an Object. The key is
// stored in decoded form, with quotation marks removed and escapes resolved.
type Member struct {
	pos, end int

	Key   string
	Value Value
}

// Span satisfies the Value interface.
func (m *Member) Span() jdiag.Span { return newSpan(m.pos, m.end) }

// JSON satisfies the Value interface.
func (m *Member) JSON() string { return jdiag.Quote(m.Key) + ":" + m.Value.JSON() }

// An Array is a sequence of values.
type Array struct {
	pos, end int

	Values []Value
}

// Span satisfies the Value interface.
func (a *Array) Span() jdiag.Span { return newSpan(a.pos, a.end) }

// JSON satisfies the Value interface.
func (a *Array) JSON() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range a.Values {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(v.JSON())
	}
	sb.WriteByte(']')
	return sb.String()
}

type datum struct {
	pos, end int
	text     []byte
}

// Span satisfies the Value interface.
func (d datum) Span() jdiag.Span { return newSpan(d.pos, d.end) }

// JSON satisfies the Value interface.
func (d datum) JSON() string { return string(d.text) }

// Text satisfies the Datum interface.
func (d datum) Text() string { return string(d.text) }

// An Integer is an integer value. The raw lexeme is retained, so values too
// large for int64 are not silently rounded; Text reports them exactly.
type Integer struct{ datum }

// Int64 returns the value of z as an int64.
// It panics if the value overflows the int64 range.
func (z Integer) Int64() int64 {
	v, err := strconv.ParseInt(string(z.text), 10, 64)
	if err != nil {
		panic(err)
	}
	return v
}

// A Number is a floating-point value. The value reported by Float64 is the
// nearest IEEE-754 double; the raw lexeme is retained via Text.
type Number struct{ datum }

// Float64 returns the value of n as a float64.
func (n Number) Float64() float64 {
	v, err := strconv.ParseFloat(string(n.text), 64)
	if err != nil {
		panic(err)
	}
	return v
}

// A Bool is a Boolean constant, true or false.
type Bool struct {
	datum
	value bool
}

// Value reports the truth value of b.
func (b Bool) Value() bool { return b.value }

// A String is a string value.
type String struct{ datum }

// Unescape returns the decoded content of s, with the enclosing quotation
// marks removed and escape sequences resolved. It panics if the underlying
// text is not a valid JSON string encoding, which cannot happen for values
// built by the parser.
func (s String) Unescape() string {
	dec, err := jdiag.Unquote(string(s.text))
	if err != nil {
		panic(err)
	}
	return string(dec)
}

// Null represents the null constant.
type Null struct{ datum }
