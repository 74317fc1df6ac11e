// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdiag_test

import (
	"strings"
	"testing"

	"github.com/creachadair/jdiag"
	"github.com/google/go-cmp/cmp"
)

func TestSnippet(t *testing.T) {
	tests := []struct {
		name string
		src  string
		pos  jdiag.Pos
		want string
	}{
		{"FirstColumn", `{]`, jdiag.Pos{Line: 1, Column: 2, Offset: 1},
			"{]\n ^"},

		{"MiddleLine", "{\n  \"a\" 1\n}", jdiag.Pos{Line: 2, Column: 7, Offset: 8},
			"  \"a\" 1\n      ^"},

		{"EndOfInput", `"unterminated`, jdiag.Pos{Line: 1, Column: 14, Offset: 13},
			"\"unterminated\n             ^"},

		{"PointsAtNewline", "[1,\n2]", jdiag.Pos{Line: 1, Column: 4, Offset: 3},
			"[1,\n   ^"},

		// Tabs in the excerpt are preserved in the marker line so the caret
		// stays under the offending column at any tab width.
		{"TabIndent", "{\n\t\"a\" 1\n}", jdiag.Pos{Line: 2, Column: 6, Offset: 7},
			"\t\"a\" 1\n\t    ^"},

		// Columns count runes, so the caret is aligned for multibyte text.
		{"Multibyte", `{"π": x}`, jdiag.Pos{Line: 1, Column: 7, Offset: 7},
			"{\"π\": x}\n      ^"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := jdiag.Snippet([]byte(test.src), test.pos)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Snippet: (-want, +got)\n%s", diff)
			}
		})
	}
}

func TestParseErrorRendering(t *testing.T) {
	src := []byte(`{"a": 1 "b": 2}`)
	pe := &jdiag.ParseError{
		Pos:      jdiag.Pos{Line: 1, Column: 9, Offset: 8},
		Expected: `"," or "}"`,
		Found:    `string "b"`,
		Src:      src,
	}
	want := strings.Join([]string{
		`at 1:9: expected "," or "}", found string "b"`,
		`{"a": 1 "b": 2}`,
		`        ^`,
	}, "\n")
	if diff := cmp.Diff(want, pe.Error()); diff != "" {
		t.Errorf("Error: (-want, +got)\n%s", diff)
	}
}

func TestQuoteUnquote(t *testing.T) {
	tests := []struct {
		plain, quoted string
	}{
		{"", `""`},
		{"simple", `"simple"`},
		{"a\tb\nc", `"a\tb\nc"`},
		{`say "hi"`, `"say \"hi\""`},
		{`back\slash`, `"back\\slash"`},
		{"\x01", `"\u0001"`},
		{"\u2028", `"\u2028"`}, // kept escaped so output can embed in JavaScript
		{"π r²", `"π r²"`},
	}
	for _, test := range tests {
		if got := jdiag.Quote(test.plain); got != test.quoted {
			t.Errorf("Quote %q: got %#q, want %#q", test.plain, got, test.quoted)
		}
		dec, err := jdiag.Unquote(test.quoted)
		if err != nil {
			t.Errorf("Unquote %#q: unexpected error: %v", test.quoted, err)
		} else if string(dec) != test.plain {
			t.Errorf("Unquote %#q: got %q, want %q", test.quoted, dec, test.plain)
		}
	}
}

func TestUnquoteErrors(t *testing.T) {
	tests := []string{
		`no quotes`,
		`"one side`,
		`"bad \x escape"`,
		`"truncated \`,
		`"short \u12"`,
	}
	for _, test := range tests {
		if dec, err := jdiag.Unquote(test); err == nil {
			t.Errorf("Unquote %#q: got %q, want error", test, dec)
		}
	}
}
