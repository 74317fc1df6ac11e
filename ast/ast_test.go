// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package ast_test

import (
	"testing"

	"github.com/creachadair/jdiag/ast"
	"github.com/creachadair/mds/mtest"
)

func mustParse(t *testing.T, input string) ast.Value {
	t.Helper()
	v, err := ast.ParseSingle([]byte(input))
	if err != nil {
		t.Fatalf("ParseSingle %#q failed: %v", input, err)
	}
	return v
}

func TestValueAccess(t *testing.T) {
	v := mustParse(t, `{"s": "a\tb", "z": -15, "f": 2.5, "t": true, "n": null}`)
	obj := v.(*ast.Object)

	if got := obj.Find("s").Value.(ast.String).Unescape(); got != "a\tb" {
		t.Errorf("Unescape: got %q, want %q", got, "a\tb")
	}
	if got := obj.Find("z").Value.(ast.Integer).Int64(); got != -15 {
		t.Errorf("Int64: got %d, want -15", got)
	}
	if got := obj.Find("f").Value.(ast.Number).Float64(); got != 2.5 {
		t.Errorf("Float64: got %v, want 2.5", got)
	}
	if got := obj.Find("t").Value.(ast.Bool).Value(); !got {
		t.Error("Bool: got false, want true")
	}
	if _, ok := obj.Find("n").Value.(ast.Null); !ok {
		t.Errorf("Value of n is %T, not null", obj.Find("n").Value)
	}
	if m := obj.Find("nonesuch"); m != nil {
		t.Errorf("Find nonesuch: got %v, want nil", m)
	}
}

func TestIntegerPrecision(t *testing.T) {
	// Values in range convert exactly.
	v := mustParse(t, `9007199254740993`) // 2^53 + 1, not representable in float64
	z := v.(ast.Integer)
	if got := z.Int64(); got != 9007199254740993 {
		t.Errorf("Int64: got %d, want 9007199254740993", got)
	}

	// Out-of-range values still parse, keep their lexeme, and only fail on
	// conversion.
	big := mustParse(t, `9223372036854775808`).(ast.Integer) // math.MaxInt64 + 1
	if got := big.Text(); got != "9223372036854775808" {
		t.Errorf("Text: got %q, want the original lexeme", got)
	}
	mtest.MustPanic(t, func() { big.Int64() })
}

func TestUnescapeSurrogates(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"\ud834\udd1e"`, "\U0001d11e"}, // a paired surrogate combines
		{`"\ud800"`, "�"},               // an unpaired high surrogate does not
		{`"\udd1e"`, "�"},               // nor does a bare low surrogate
		{`"\ud834x"`, "�x"},
	}
	for _, test := range tests {
		s := mustParse(t, test.input).(ast.String)
		if got := s.Unescape(); got != test.want {
			t.Errorf("Unescape %#q: got %q, want %q", test.input, got, test.want)
		}
	}
}

func TestSpans(t *testing.T) {
	const input = `{"a": [1, 25], "b": "xyz"}`

	obj := mustParse(t, input).(*ast.Object)
	checkSpan := func(v ast.Value, text string) {
		t.Helper()
		sp := v.Span()
		if sp.Pos < 0 || sp.End > len(input) || sp.Pos >= sp.End {
			t.Errorf("Bad span %+v for %q", sp, text)
			return
		}
		if got := input[sp.Pos:sp.End]; got != text {
			t.Errorf("Span %+v: got %#q, want %#q", sp, got, text)
		}
	}
	checkSpan(obj, input)
	arr := obj.Find("a").Value.(*ast.Array)
	checkSpan(arr, `[1, 25]`)
	checkSpan(arr.Values[0], `1`)
	checkSpan(arr.Values[1], `25`)
	checkSpan(obj.Find("b").Value, `"xyz"`)
}
