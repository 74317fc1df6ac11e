// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdiag

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go4.org/mem"
)

// Token is the type of a lexical token in the JSON grammar.
type Token byte

// Constants defining the valid Token values.
const (
	Invalid Token = iota // invalid token
	LBrace               // left brace "{"
	RBrace               // right brace "}"
	LSquare              // left square bracket "["
	RSquare              // right square bracket "]"
	Comma                // comma ","
	Colon                // colon ":"
	Integer              // number: integer with no fraction or exponent
	Number               // number with fraction and/or exponent
	String               // quoted string
	True                 // constant: true
	False                // constant: false
	Null                 // constant: null
)

var tokenStr = [...]string{
	Invalid: "invalid token",
	LBrace:  `"{"`,
	RBrace:  `"}"`,
	LSquare: `"["`,
	RSquare: `"]"`,
	Comma:   `","`,
	Colon:   `":"`,
	Integer: "integer",
	Number:  "number",
	String:  "string",
	True:    "true",
	False:   "false",
	Null:    "null",
}

func (t Token) String() string {
	v := int(t)
	if v >= len(tokenStr) {
		return tokenStr[Invalid]
	}
	return tokenStr[v]
}

// A LexKind classifies the lexical errors reported by a Scanner.
type LexKind int

// Constants defining the valid LexKind values.
const (
	UnexpectedCharacter LexKind = iota // a character that cannot begin or continue a token
	UnterminatedString                 // end of input inside a string value
	InvalidEscape                      // an unrecognized or incomplete string escape
	MalformedNumber                    // a number violating the JSON numeric grammar
	UnknownLiteral                     // a bareword other than true, false, or null
)

var lexKindStr = [...]string{
	UnexpectedCharacter: "unexpected character",
	UnterminatedString:  "unterminated string",
	InvalidEscape:       "invalid escape",
	MalformedNumber:     "malformed number",
	UnknownLiteral:      "unknown literal",
}

func (k LexKind) String() string {
	if int(k) >= len(lexKindStr) {
		return "lexical error"
	}
	return lexKindStr[k]
}

// A LexError reports a violation of the lexical grammar of JSON at a
// specific position of the input.
type LexError struct {
	Kind LexKind // the class of lexical fault
	Pos  Pos     // the position of the offending character

	msg string
}

// Error satisfies the error interface.
func (e *LexError) Error() string { return fmt.Sprintf("at %s: %s", e.Pos, e.msg) }

// A Scanner reads lexical tokens from an input stream.  Each call to Next
// advances the scanner to the next token, or reports an error.
type Scanner struct {
	r    *bufio.Reader
	buf  bytes.Buffer // current token
	tbuf [][]byte     // allocation pool for Copy
	tok  Token
	err  error

	pos, end int // start and end offsets of current token
	last     int // size in bytes of last-read input rune

	// Apparent line and column offsets (0-based; columns count runes)
	pline, pcol int
	eline, ecol int
}

// NewScanner constructs a new lexical scanner that consumes input from r.
func NewScanner(r io.Reader) *Scanner {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Scanner{r: br}
}

// Next advances s to the next token of the input and reports whether a token
// is available. When Next reports false, Err reports io.EOF if the input was
// fully consumed, or the error that ended the scan.
func (s *Scanner) Next() bool {
	s.buf.Reset()
	s.err = nil
	s.tok = Invalid
	s.pos, s.pline, s.pcol = s.end, s.eline, s.ecol

	for {
		ch, err := s.rune()
		if err != nil {
			s.setErr(err)
			return false
		}

		// Discard whitespace.
		if isSpace(ch) {
			if ch == '\n' {
				s.eline++
				s.ecol = 0
			}
			s.pos, s.pline, s.pcol = s.end, s.eline, s.ecol
			continue
		}

		// Handle punctuation.
		if t, ok := selfDelim(ch); ok {
			s.buf.WriteRune(ch)
			s.tok = t
			return true
		}

		// Handle numbers.
		if isNumStart(ch) {
			return s.ok(s.scanNumber(ch))
		}

		// Handle string values.
		if ch == '"' {
			return s.ok(s.scanString(ch))
		}

		// Handle constants: true, false, null
		var want mem.RO
		switch ch {
		case 't':
			s.tok = True
			want = mem.S("true")
		case 'f':
			s.tok = False
			want = mem.S("false")
		case 'n':
			s.tok = Null
			want = mem.S("null")
		default:
			return s.ok(s.fail(UnexpectedCharacter, "unexpected character %q", ch))
		}
		if err := s.scanName(ch); err != nil {
			return s.ok(err)
		} else if got := mem.B(s.buf.Bytes()); !got.Equal(want) {
			return s.ok(s.failLiteral(want))
		}
		return true // OK, token is already set
	}
}

// Token returns the type of the current token.
func (s *Scanner) Token() Token { return s.tok }

// Err returns the error that ended the most recent scan, or nil.
// At the end of input, Err reports io.EOF.
func (s *Scanner) Err() error { return s.err }

// Text returns the undecoded text of the current token.  The return value is
// only valid until the next call of Next. The caller must copy the contents of
// the returned slice if it is needed beyond that.
func (s *Scanner) Text() []byte { return s.buf.Bytes() }

// Copy returns a copy of the undecoded text of the current token.
func (s *Scanner) Copy() []byte { return s.copyOf(s.buf.Bytes()) }

// Span returns the location span of the current token.
func (s *Scanner) Span() Span { return Span{Pos: s.pos, End: s.end} }

// Location returns the complete location of the current token.
func (s *Scanner) Location() Location {
	return Location{
		Span:  s.Span(),
		First: Pos{Line: s.pline + 1, Column: s.pcol + 1, Offset: s.pos},
		Last:  Pos{Line: s.eline + 1, Column: s.ecol + 1, Offset: s.end},
	}
}

// Unescape decodes the current token as a string value. It panics if the
// current token is not of type String.
func (s *Scanner) Unescape() string {
	if s.tok != String {
		panic("token is not a string")
	}
	dec, err := Unquote(s.buf.String())
	if err != nil {
		panic(err)
	}
	return string(dec)
}

// Int64 decodes the current token as an int64. It panics if the current token
// is not of type Integer, or if its value overflows int64.
func (s *Scanner) Int64() int64 {
	if s.tok != Integer {
		panic("token is not an integer")
	}
	v, err := strconv.ParseInt(s.buf.String(), 10, 64)
	if err != nil {
		panic(err)
	}
	return v
}

// Float64 decodes the current token as a float64. It panics if the current
// token is not of type Integer or Number.
func (s *Scanner) Float64() float64 {
	if s.tok != Integer && s.tok != Number {
		panic("token is not a number")
	}
	v, err := strconv.ParseFloat(s.buf.String(), 64)
	if err != nil {
		panic(err)
	}
	return v
}

func (s *Scanner) scanString(open rune) error {
	s.buf.WriteRune(open)
	var esc bool
	for {
		ch, err := s.rune()
		if err == io.EOF {
			return s.fail(UnterminatedString, "unterminated string")
		} else if err != nil {
			return s.setErr(err)
		} else if ch == open && !esc {
			s.buf.WriteRune(ch)
			s.tok = String
			return nil
		}
		if esc {
			// We are awaiting the completion of a \-escape.
			switch ch {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
				s.buf.WriteByte(byte(ch))
			case 'u':
				s.buf.WriteByte(byte(ch))
				if err := s.readHex4(); err != nil {
					return err
				}
			default:
				return s.fail(InvalidEscape, "invalid escape %q", ch)
			}
			esc = false
		} else if ch < ' ' {
			return s.fail(UnexpectedCharacter, "unescaped control %q in string", ch)
		} else {
			s.buf.WriteRune(ch)
			esc = ch == '\\'
		}
	}
}

func (s *Scanner) scanNumber(start rune) error {
	s.buf.WriteRune(start)

	if start == '-' {
		// If there is a leading sign, we need at least one digit.
		// Otherwise, we already have one in start.
		ch, err := s.require(isDigit, "a digit")
		if err != nil {
			return err
		}
		s.buf.WriteRune(ch)
	}

	// Consume the remainder of an integer.
	_, ch, err := s.readWhile(isDigit)
	if err != nil {
		if err == io.EOF {
			if p, ok := extraLeadingZero(s.buf.Bytes()); ok {
				return s.failAt(MalformedNumber, s.tokenPos(p), "extra leading zero")
			}
			s.tok = Integer
			return nil
		}
		return s.setErr(err)
	}

	// Check for extra leading zeroes, which are disallowed by the JSON spec.
	// That is: 0.12 is OK, 01.2 is not.
	if p, ok := extraLeadingZero(s.buf.Bytes()); ok {
		return s.failAt(MalformedNumber, s.tokenPos(p), "extra leading zero")
	}

	// If a decimal point follows, consume a fractional part.
	var isFloat bool
	if ch == '.' {
		s.buf.WriteRune(ch)
		var nr int
		nr, ch, err = s.readWhile(isDigit)
		if err != nil && err != io.EOF {
			return s.setErr(err)
		} else if nr == 0 {
			return s.fail(MalformedNumber, "no digits after decimal point")
		}
		s.tok = Number
		isFloat = true
	}

	// If an exponent follows, consume it.
	if ch != 'E' && ch != 'e' {
		s.unrune()
		if isFloat {
			s.tok = Number
		} else {
			s.tok = Integer
		}
		return nil
	}

	s.buf.WriteRune(ch)
	ch, err = s.require(isExpStart, "a sign or digit")
	if err != nil {
		return err
	}
	s.buf.WriteRune(ch)
	nr, _, err := s.readWhile(isDigit)
	if nr == 0 && (ch == '-' || ch == '+') {
		// It's OK to have no digits if the previous rune was not a sign,
		// otherwise we have to have at least one.
		return s.fail(MalformedNumber, "missing exponent digits")
	} else if err == io.EOF {
		s.tok = Number
		return nil
	} else if err != nil {
		return s.setErr(err)
	}
	s.unrune()
	s.tok = Number
	return nil
}

func (s *Scanner) scanName(first rune) error {
	s.buf.WriteRune(first)
	_, _, err := s.readWhile(isNameRune)
	if err == io.EOF {
		return nil
	} else if err != nil {
		return s.setErr(err)
	}
	s.unrune()
	return nil
}

func (s *Scanner) rune() (rune, error) {
	ch, nb, err := s.r.ReadRune()
	s.last = nb
	s.end += nb
	if nb > 0 {
		s.ecol++
	}
	return ch, err
}

func (s *Scanner) unrune() {
	if s.last > 0 {
		s.end -= s.last
		s.ecol--
		s.last = 0
		s.r.UnreadRune()
	}
}

// require reads a single rune matching f from the input, or reports a
// malformed number mentioning the desired label.
func (s *Scanner) require(f func(rune) bool, label string) (rune, error) {
	ch, err := s.rune()
	if err == io.EOF {
		return 0, s.fail(MalformedNumber, "want %s at end of input", label)
	} else if err != nil {
		return 0, s.setErr(err)
	} else if !f(ch) {
		s.unrune()
		return 0, s.fail(MalformedNumber, "got %q, want %s", ch, label)
	}
	return ch, nil
}

// readWhile consumes runes matching f from the input until EOF or until a rune
// not matching f is found. The first non-matching rune (if any) is returned.
// It is the caller's responsibility to unread this rune, if desired.
// The int reports the number of runes consumed.
func (s *Scanner) readWhile(f func(rune) bool) (int, rune, error) {
	var nr int
	for {
		ch, err := s.rune()
		if err != nil {
			return nr, 0, err
		} else if !f(ch) {
			return nr, ch, nil
		}
		s.buf.WriteRune(ch)
		nr++
	}
}

// readHex4 reads exactly 4 hexadecimal digits from the input.
func (s *Scanner) readHex4() error {
	for i := 0; i < 4; i++ {
		ch, err := s.rune()
		if err == io.EOF {
			return s.fail(InvalidEscape, "incomplete Unicode escape")
		} else if err != nil {
			return s.setErr(err)
		} else if !isHexDigit(ch) {
			return s.fail(InvalidEscape, "not a hex digit: %q", ch)
		}
		s.buf.WriteRune(ch)
	}
	return nil
}

// errPos returns the position of the character that triggered a lexical
// error: the last-consumed rune if one is still pending, otherwise the next
// unconsumed position (which is the end of input when the input is spent).
func (s *Scanner) errPos() Pos {
	if s.last > 0 {
		return Pos{Line: s.eline + 1, Column: s.ecol, Offset: s.end - s.last}
	}
	return Pos{Line: s.eline + 1, Column: s.ecol + 1, Offset: s.end}
}

// tokenPos returns the position of the byte at offset i within the current
// token. Valid only for tokens that cannot span lines or contain multibyte
// runes, such as numbers and barewords.
func (s *Scanner) tokenPos(i int) Pos {
	return Pos{Line: s.pline + 1, Column: s.pcol + 1 + i, Offset: s.pos + i}
}

func (s *Scanner) setErr(err error) error {
	s.err = err
	return err
}

// ok maps the error from a sub-scanner to the result of Next.
func (s *Scanner) ok(err error) bool { return err == nil }

func (s *Scanner) fail(kind LexKind, msg string, args ...any) error {
	return s.failAt(kind, s.errPos(), msg, args...)
}

func (s *Scanner) failAt(kind LexKind, pos Pos, msg string, args ...any) error {
	return s.setErr(&LexError{Kind: kind, Pos: pos, msg: fmt.Sprintf(msg, args...)})
}

// failLiteral reports a bareword that does not match the constant it appears
// to begin, positioned at the first deviating character.
func (s *Scanner) failLiteral(want mem.RO) error {
	got := s.buf.Bytes()
	i := 0
	for i < len(got) && i < want.Len() && got[i] == want.At(i) {
		i++
	}
	if i >= len(got) {
		return s.failAt(UnknownLiteral, s.tokenPos(i), "truncated %s constant", want.StringCopy())
	}
	return s.failAt(UnknownLiteral, s.tokenPos(i), "unexpected %q in %s constant", got[i], want.StringCopy())
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\r' || ch == '\n' || ch == '\t'
}

func isNumStart(ch rune) bool { return ch == '-' || isDigit(ch) }
func isExpStart(ch rune) bool { return ch == '-' || ch == '+' || isDigit(ch) }
func isDigit(ch rune) bool    { return '0' <= ch && ch <= '9' }
func isNameRune(ch rune) bool { return ch >= 'a' && ch <= 'z' }

func isHexDigit(ch rune) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// extraLeadingZero reports whether the representation of an integer in buf
// has a redundant leading zero, disallowed by the JSON grammar, and if so
// returns the byte offset of the first digit after it.
//
// OK: 0, 0.1, -1.0, -0.1 are all OK.
// Bad: -01, 01.2, -01.0, 00.1.
func extraLeadingZero(buf []byte) (int, bool) {
	i := 0
	if buf[0] == '-' {
		i++ // skip leading sign
	}
	// A leading zero is OK if it is the only digit of the integer part.
	if buf[i] == '0' && i+1 < len(buf) && isDigit(rune(buf[i+1])) {
		return i + 1, true
	}
	return 0, false
}

var self = [...]Token{LBrace, RBrace, LSquare, RSquare, Comma, Colon}

func selfDelim(ch rune) (Token, bool) {
	i := strings.IndexRune("{}[],:", ch)
	if i >= 0 {
		return self[i], true
	}
	return Invalid, false
}

func (s *Scanner) copyOf(text []byte) []byte {
	const bufBlockBytes = 16384

	if len(text) >= bufBlockBytes {
		return append([]byte(nil), text...)
	}

	// Look for a block with space enough to hold a copy of text.
	i := 0
	for i < len(s.tbuf) {
		if len(s.tbuf[i])+len(text) < cap(s.tbuf[i]) {
			break
		}
		i++
	}
	if i == len(s.tbuf) {
		// No block had room; add a new empty one to the arena.
		s.tbuf = append(s.tbuf, make([]byte, 0, bufBlockBytes))
	}
	p := len(s.tbuf[i])
	s.tbuf[i] = append(s.tbuf[i], text...)
	return s.tbuf[i][p : p+len(text)]
}
