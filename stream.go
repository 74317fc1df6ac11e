// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdiag

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// DefaultMaxDepth is the nesting depth limit applied to a new Stream.
const DefaultMaxDepth = 1000

// valueLabel describes the tokens that may begin a value.
const valueLabel = "a value (object, array, string, number, true, false, or null)"

// An Anchor represents a location in source text. The methods of an Anchor
// will report the location, token type, and contents of the anchor.
type Anchor interface {
	Token() Token       // Returns the token type of the anchor
	Text() []byte       // Returns a view of the raw (undecoded) text of the anchor
	Copy() []byte       // Returns a copy of the raw text of the anchor
	Location() Location // Returns the full location of the anchor
}

// A Handler handles events from parsing an input stream.  If a method reports
// an error, parsing stops and that error is returned to the caller.
// The parser ensures objects and arrays are correctly balanced.
//
// The Anchor argument to a Handler method is only valid for the duration of
// that method call. If the method needs to retain information about the
// location after it returns, it must copy the relevant data.
type Handler interface {
	// Begin a new object, whose open brace is at loc.
	BeginObject(loc Anchor) error

	// End the most-recently-opened object, whose close brace is at loc.
	EndObject(loc Anchor) error

	// Begin a new array, whose open bracket is at loc.
	BeginArray(loc Anchor) error

	// End the most-recently-opened array, whose close bracket is at loc.
	EndArray(loc Anchor) error

	// Begin a new object member, whose key is at loc.  The text of the key is
	// still quoted; the handler is responsible for unescaping key values if the
	// plain string is required (see jdiag.Unquote).
	BeginMember(loc Anchor) error

	// End the current object member giving the location and type of the token
	// that terminated the member (either Comma or RBrace).
	EndMember(loc Anchor) error

	// Report a data value at the given location. The type of the value can be
	// recovered from the token. String tokens are quoted.
	Value(loc Anchor) error

	// EndOfInput reports the end of the input stream.
	EndOfInput(loc Anchor)
}

// Stream is a grammar parser that consumes input and delivers events to a
// Handler corresponding with the structure of the input. Any fault in the
// input terminates the parse with a *ParseError locating the fault.
type Stream struct {
	s        *Scanner
	maxDepth int  // nesting depth limit for objects and arrays
	dupKeys  bool // reject duplicate object keys

	depth int
}

// NewStream constructs a new Stream that consumes input from r.
func NewStream(r io.Reader) *Stream { return NewStreamWithScanner(NewScanner(r)) }

// NewStreamWithScanner constructs a new Stream that consumes input from s.
func NewStreamWithScanner(s *Scanner) *Stream {
	return &Stream{s: s, maxDepth: DefaultMaxDepth}
}

// SetMaxDepth sets the maximum permitted nesting depth of objects and
// arrays. Input nested more deeply fails with a ParseError wrapping
// [ErrNestingTooDeep]. A value n <= 0 removes the limit; a new Stream starts
// with [DefaultMaxDepth].
func (s *Stream) SetMaxDepth(n int) { s.maxDepth = n }

// RejectDuplicateKeys configures the parser to reject (true) or accept
// (false) objects containing the same key more than once. The default is to
// accept them; how repeats combine is then up to the Handler.
func (s *Stream) RejectDuplicateKeys(ok bool) { s.dupKeys = ok }

func (s *Stream) recoverParseError(errp *error) {
	if serr := recover(); serr != nil {
		switch err := serr.(type) {
		case *ParseError:
			*errp = err
		case handlerError:
			*errp = err.error
		default:
			panic(serr)
		}
	}
}

// Parse parses the input stream and delivers events to h until either an error
// occurs or the input is exhausted. In case of a syntax error, the returned
// error has type [*ParseError].
func (s *Stream) Parse(h Handler) (err error) {
	defer s.recoverParseError(&err)

	for {
		if err := s.nextToken(); err == io.EOF {
			h.EndOfInput(s.s)
			return nil
		} else if err != nil {
			s.failScan(err, nil)
		}
		s.parseElement(h)
	}
}

// ParseOne parses a single value from the input stream and delivers events to
// h until the value is complete or an error occurs. If no further value is
// available from the input, ParseOne returns io.EOF. In case of a syntax
// error, the returned error has type [*ParseError].
func (s *Stream) ParseOne(h Handler) (err error) {
	defer s.recoverParseError(&err)

	if err := s.nextToken(); err == io.EOF {
		h.EndOfInput(s.s)
		return io.EOF
	} else if err != nil {
		s.failScan(err, nil)
	}
	s.parseElement(h)
	return nil
}

// parseElement consumes a single value of any type.
// Precondition: token != Invalid.
func (s *Stream) parseElement(h Handler) {
	switch tok := s.s.Token(); tok {
	case LBrace:
		s.push()
		s.checkError(h.BeginObject(s.s))
		s.parseMembers(h)
		s.require(RBrace)
		s.checkError(h.EndObject(s.s))
		s.depth--
	case LSquare:
		s.push()
		s.checkError(h.BeginArray(s.s))
		s.parseElements(h)
		s.require(RSquare)
		s.checkError(h.EndArray(s.s))
		s.depth--
	case Integer, Number, String, True, False, Null:
		s.checkError(h.Value(s.s))
	default:
		s.wrongToken(valueLabel)
	}
}

// parseMembers consumes zero or more key:value object members.
// Precondition: token == LBrace.
// Postcondition: token == RBrace.
func (s *Stream) parseMembers(h Handler) {
	var seen map[string]bool
	if s.dupKeys {
		seen = make(map[string]bool)
	}
	tok := s.advance(RBrace, String)
	if tok == RBrace {
		return // end of object
	}
	for {
		// Parse a single member: "key": value
		s.checkKey(seen)
		s.checkError(h.BeginMember(s.s))
		s.advance(Colon)
		s.advance()
		s.parseElement(h)

		// Check whether we have more members (",") or are done ("}").
		tok := s.advance(Comma, RBrace)
		s.checkError(h.EndMember(s.s))
		if tok == RBrace {
			return // end of object
		}
		s.advance(String) // advance to next key
	}
}

// parseElements consumes zero or more comma-separated array values.
// Precondition: token == LSquare.
// Postcondition: token == RSquare.
func (s *Stream) parseElements(h Handler) {
	if tok := s.advance(); tok == RSquare {
		return // end of array
	}
	s.parseElement(h)
	for {
		tok := s.advance(Comma, RSquare)
		if tok == RSquare {
			return // end of array
		}
		s.advance()
		s.parseElement(h)
	}
}

// push records entry into an object or array, enforcing the depth limit at
// the opening bracket.
func (s *Stream) push() {
	s.depth++
	if s.maxDepth > 0 && s.depth > s.maxDepth {
		panic(&ParseError{
			Pos: s.s.Location().First,
			Err: fmt.Errorf("%w (limit %d)", ErrNestingTooDeep, s.maxDepth),
		})
	}
}

// checkKey records the current object key in seen, and fails if it was
// already present. A nil map disables the check.
// Precondition: token == String.
func (s *Stream) checkKey(seen map[string]bool) {
	if seen == nil {
		return
	}
	key, err := Unquote(string(s.s.Text()))
	if err != nil {
		panic(&ParseError{Pos: s.s.Location().First, Err: err})
	}
	if seen[string(key)] {
		panic(&ParseError{
			Pos: s.s.Location().First,
			Err: fmt.Errorf("%w %q", ErrDuplicateKey, key),
		})
	}
	seen[string(key)] = true
}

func (s *Stream) nextToken() error {
	if s.s.Next() {
		return nil
	}
	if err := s.s.Err(); err != nil {
		return err
	}
	return io.EOF
}

// advance moves to the next token of the input. If tokens is non-empty, the
// new current token must be one of them, or the parse fails.
func (s *Stream) advance(tokens ...Token) Token {
	if err := s.nextToken(); err != nil {
		s.failScan(err, tokens)
	}
	tok := s.s.Token()
	if len(tokens) != 0 && !slices.Contains(tokens, tok) {
		s.wrongToken(expLabel(tokens))
	}
	return tok
}

func (s *Stream) require(token Token) {
	if tok := s.s.Token(); tok != token {
		s.wrongToken(token.String())
	}
}

// failScan converts an error from the scanner into a ParseError and panics.
// Lexical errors keep their own position and message; end of input becomes
// an expected-vs-found report against the tokens the grammar wanted.
func (s *Stream) failScan(err error, tokens []Token) {
	if err == io.EOF {
		panic(&ParseError{
			Pos:      s.s.Location().Last,
			Expected: expLabel(tokens),
			Found:    "end of input",
			Err:      io.ErrUnexpectedEOF,
		})
	}
	var le *LexError
	if errors.As(err, &le) {
		panic(&ParseError{Pos: le.Pos, Err: err})
	}
	panic(&ParseError{Pos: s.s.Location().Last, Err: err})
}

func (s *Stream) wrongToken(expected string) {
	panic(&ParseError{
		Pos:      s.s.Location().First,
		Expected: expected,
		Found:    Describe(s.s),
	})
}

func (s *Stream) checkError(err error) {
	if err != nil {
		panic(handlerError{err})
	}
}

type handlerError struct{ error }

func (h handlerError) Unwrap() error { return h.error }

// Describe returns a human-readable description of the current token of a,
// including a truncated copy of its text for strings and numbers.
func Describe(a Anchor) string {
	switch tok := a.Token(); tok {
	case String, Integer, Number:
		return fmt.Sprintf("%v %s", tok, truncate(a.Text(), 20))
	default:
		return tok.String()
	}
}

// truncate returns text as a string, shortened to at most n bytes plus an
// ellipsis at a rune boundary.
func truncate(text []byte, n int) string {
	if len(text) <= n {
		return string(text)
	}
	for n > 0 && text[n]&0xc0 == 0x80 {
		n--
	}
	return string(text[:n]) + "..."
}

// expLabel makes a human-readable summary string for the given token types.
// An empty set stands for a position where a value is expected.
func expLabel(tokens []Token) string {
	if len(tokens) == 0 {
		return valueLabel
	}
	if len(tokens) == 1 {
		return tokens[0].String()
	}
	last := len(tokens) - 1
	ss := make([]string, last)
	for i, tok := range tokens[:last] {
		ss[i] = tok.String()
	}
	return strings.Join(ss, ", ") + " or " + tokens[last].String()
}
