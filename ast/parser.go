// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"bytes"
	"errors"
	"io"

	"github.com/creachadair/jdiag"
)

// Parse parses and returns the JSON values from data. In case of error, any
// complete values already parsed are returned along with the error.
func Parse(data []byte) ([]Value, error) {
	vs, err := ParseStream(jdiag.NewStream(bytes.NewReader(data)))
	return vs, withSource(err, data)
}

// ParseSingle parses data as a single JSON value. The value must span the
// whole input: anything other than whitespace after it fails with a
// *jdiag.ParseError wrapping [jdiag.ErrTrailingContent]. On any error the
// returned Value is nil; no partially built value is ever returned.
func ParseSingle(data []byte) (Value, error) {
	st := jdiag.NewStream(bytes.NewReader(data))
	h := new(parseHandler)
	if err := st.ParseOne(h); err == io.EOF {
		return nil, &jdiag.ParseError{
			Pos:      h.end,
			Expected: "a value",
			Found:    "end of input",
			Src:      data,
			Err:      io.ErrUnexpectedEOF,
		}
	} else if err != nil {
		return nil, withSource(err, data)
	}
	if len(h.stk) != 1 {
		return nil, errors.New("incomplete value")
	}

	// A single value must consume the whole input apart from trailing
	// whitespace. Probe for one more token to verify that it does.
	p := new(probeHandler)
	if err := st.ParseOne(p); err != io.EOF {
		pe := &jdiag.ParseError{
			Expected: "end of input",
			Found:    "additional input",
			Src:      data,
			Err:      jdiag.ErrTrailingContent,
		}
		if p.seen {
			pe.Pos, pe.Found = p.pos, p.found
		} else if prev := (*jdiag.ParseError)(nil); errors.As(err, &prev) {
			pe.Pos = prev.Pos
			if prev.Found != "" {
				pe.Found = prev.Found
			}
		}
		return nil, pe
	}
	return h.stk[0], nil
}

// ParseStream parses and returns the JSON values from a stream already
// configured by the caller, for example with a nesting depth limit or
// duplicate key rejection. Errors reported through st carry positions but no
// source excerpt, since the stream does not retain its input.
func ParseStream(st *jdiag.Stream) ([]Value, error) {
	h := new(parseHandler)
	var vs []Value
	for {
		if err := st.ParseOne(h); err == io.EOF {
			return vs, nil
		} else if err != nil {
			return vs, err
		}
		if len(h.stk) != 1 {
			return vs, errors.New("incomplete value")
		}
		vs = append(vs, h.stk[0])
		h.stk = h.stk[:0]
	}
}

// withSource attaches data as the source excerpt of a parse error that does
// not already carry one.
func withSource(err error, data []byte) error {
	var pe *jdiag.ParseError
	if errors.As(err, &pe) && pe.Src == nil {
		pe.Src = data
	}
	return err
}

// errStop aborts the probe for trailing content after its first event.
var errStop = errors.New("stop probe")

// A probeHandler records the position and description of the first token
// event it receives, then stops the parse.
type probeHandler struct {
	seen  bool
	pos   jdiag.Pos
	found string
}

func (p *probeHandler) note(loc jdiag.Anchor) error {
	p.seen = true
	p.pos = loc.Location().First
	p.found = jdiag.Describe(loc)
	return errStop
}

func (p *probeHandler) BeginObject(loc jdiag.Anchor) error { return p.note(loc) }
func (p *probeHandler) EndObject(loc jdiag.Anchor) error   { return p.note(loc) }
func (p *probeHandler) BeginArray(loc jdiag.Anchor) error  { return p.note(loc) }
func (p *probeHandler) EndArray(loc jdiag.Anchor) error    { return p.note(loc) }
func (p *probeHandler) BeginMember(loc jdiag.Anchor) error { return p.note(loc) }
func (p *probeHandler) EndMember(loc jdiag.Anchor) error   { return p.note(loc) }
func (p *probeHandler) Value(loc jdiag.Anchor) error       { return p.note(loc) }
func (p *probeHandler) EndOfInput(loc jdiag.Anchor)        {}

// A parseHandler implements the jdiag.Handler interface to construct
// abstract syntax trees for JSON values.
type parseHandler struct {
	stk  []Value
	tbuf [][]byte
	end  jdiag.Pos // position of the end of input, once seen
}

// intern interns a copy of text and returns a slice of the copy.  Allocations
// are batched to reduce allocation overhead.
func (h *parseHandler) intern(text []byte) []byte {
	const bufBlockBytes = 8192

	if len(text) >= bufBlockBytes {
		return append([]byte(nil), text...)
	}

	i := 0
	for i < len(h.tbuf) {
		if len(h.tbuf[i])+len(text) < cap(h.tbuf[i]) {
			break
		}
		i++
	}
	if i == len(h.tbuf) {
		h.tbuf = append(h.tbuf, make([]byte, 0, bufBlockBytes))
	}
	s := len(h.tbuf[i])
	h.tbuf[i] = append(h.tbuf[i], text...)
	return h.tbuf[i][s : s+len(text)]
}

func (h *parseHandler) reduce() error {
	if len(h.stk) > 1 {
		v := h.pop()
		return h.reduceValue(v)
	}
	return nil
}

func (h *parseHandler) reduceValue(v Value) error {
	if len(h.stk) == 0 {
		// A top-level value; leave it on the stack for the caller.
		h.push(v)
		return nil
	}
	switch prev := h.stk[len(h.stk)-1].(type) {
	case *Member:
		prev.Value = v
	case *Object:
		// already in the object
	case *Array:
		prev.Values = append(prev.Values, v)
	}
	return nil
}

func (h *parseHandler) top() Value { return h.stk[len(h.stk)-1] }

func (h *parseHandler) pop() Value {
	last := h.top()
	h.stk = h.stk[:len(h.stk)-1]
	return last
}

func (h *parseHandler) push(v Value) { h.stk = append(h.stk, v) }

func (h *parseHandler) BeginObject(loc jdiag.Anchor) error {
	h.push(&Object{pos: loc.Location().Span.Pos})
	return nil
}

func (h *parseHandler) EndObject(loc jdiag.Anchor) error {
	h.top().(*Object).end = loc.Location().Span.End
	return h.reduce()
}

func (h *parseHandler) BeginArray(loc jdiag.Anchor) error {
	h.push(&Array{pos: loc.Location().Span.Pos})
	return nil
}

func (h *parseHandler) EndArray(loc jdiag.Anchor) error {
	h.top().(*Array).end = loc.Location().Span.End
	return h.reduce()
}

func (h *parseHandler) BeginMember(loc jdiag.Anchor) error {
	key, err := jdiag.Unquote(string(loc.Text()))
	if err != nil {
		return err
	}

	// The object this member belongs to is atop the stack. If the key is
	// already present, reuse its member so the value about to be parsed
	// replaces the earlier one (last write wins). Otherwise add a pointer to
	// the new member into the collection eagerly, so that when reducing the
	// stack after the value is known, we don't have to reduce multiple times.
	obj := h.top().(*Object)
	if m := obj.Find(string(key)); m != nil {
		h.push(m)
		return nil
	}
	m := &Member{pos: loc.Location().Span.Pos, Key: string(key)}
	obj.Members = append(obj.Members, m)
	h.push(m)
	return nil
}

func (h *parseHandler) EndMember(loc jdiag.Anchor) error {
	if m, ok := h.top().(*Member); ok {
		m.end = loc.Location().Span.Pos // the terminator is not part of the member
	}
	return h.reduce()
}

func (h *parseHandler) Value(loc jdiag.Anchor) error {
	span := loc.Location().Span
	d := datum{pos: span.Pos, end: span.End, text: h.intern(loc.Text())}
	switch loc.Token() {
	case jdiag.String:
		return h.reduceValue(String{datum: d})
	case jdiag.Integer:
		return h.reduceValue(Integer{datum: d})
	case jdiag.Number:
		return h.reduceValue(Number{datum: d})
	case jdiag.True, jdiag.False:
		return h.reduceValue(Bool{datum: d, value: loc.Token() == jdiag.True})
	case jdiag.Null:
		return h.reduceValue(Null{datum: d})
	default:
		panic("unexpected value token")
	}
}

func (h *parseHandler) EndOfInput(loc jdiag.Anchor) { h.end = loc.Location().Last }
