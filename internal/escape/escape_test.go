// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape_test

import (
	"testing"

	"github.com/creachadair/jdiag/internal/escape"

	"go4.org/mem"
)

func TestUnquote(t *testing.T) {
	tests := []struct {
		input string // quotation marks already removed
		want  string
	}{
		{"", ""},
		{"no escapes here", "no escapes here"},
		{`\"\\\/`, `"\/`},
		{`\b\f\n\r\t`, "\b\f\n\r\t"},
		{`tab\there`, "tab\there"},
		{`AZ`, "AZ"},
		{`étude`, "étude"},
		{`𝄞`, "\U0001d11e"},
		{`\ud834`, "�"},
		{`multi \n escape \t run`, "multi \n escape \t run"},
	}
	for _, test := range tests {
		got, err := escape.Unquote(mem.S(test.input))
		if err != nil {
			t.Errorf("Unquote %#q: unexpected error: %v", test.input, err)
		} else if string(got) != test.want {
			t.Errorf("Unquote %#q: got %q, want %q", test.input, got, test.want)
		}
	}
}

func TestUnquoteErrors(t *testing.T) {
	tests := []string{
		`\`,         // incomplete escape sequence
		`ends in \`, // ditto
		`\q`,        // unrecognized escape
		`\u`,        // incomplete Unicode escape
		`\u12`,      // ditto
		`\u12gf`,    // invalid hex digit
	}
	for _, test := range tests {
		if got, err := escape.Unquote(mem.S(test)); err == nil {
			t.Errorf("Unquote %#q: got %q, want error", test, got)
		}
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"", `""`},
		{"plain", `"plain"`},
		{"a\tb", `"a\tb"`},
		{"say \"hi\"", `"say \"hi\""`},
		{"line\nbreak", `"line\nbreak"`},
		{"\x00\x1f", `"\u0000\u001f"`},
		{"\u2028\u2029", `"\u2028\u2029"`},
		{"\ufffd", `"\ufffd"`},
		{"数字", `"数字"`},
	}
	for _, test := range tests {
		if got := escape.Quote(mem.S(test.input)); string(got) != test.want {
			t.Errorf("Quote %q: got %#q, want %#q", test.input, got, test.want)
		}
	}
}
