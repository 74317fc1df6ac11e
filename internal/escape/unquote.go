// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package escape handles quoting and unquoting of JSON strings.
package escape

import (
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

// Unquote decodes a byte slice containing the JSON encoding of a string. The
// input must have the enclosing double quotation marks already removed.
//
// Escape sequences are replaced with their unescaped equivalents. A \uXXXX
// escape encoding a high surrogate combines with an immediately following
// low surrogate escape; an unpaired surrogate half decodes to the Unicode
// replacement rune. Unquote reports an error for an incomplete or
// unrecognized escape sequence.
func Unquote(src mem.RO) ([]byte, error) {
	dec := make([]byte, 0, src.Len())
	i := mem.IndexByte(src, '\\')
	if i < 0 {
		dec = mem.Append(dec, src)
		return dec, nil
	}

	putByte := func(bs ...byte) { dec = append(dec, bs...) }
	putRune := func(r rune) {
		var buf [6]byte
		n := utf8.EncodeRune(buf[:], r)
		dec = append(dec, buf[:n]...)
	}
	for src.Len() != 0 {
		dec = mem.Append(dec, src.SliceTo(i))

		// Decode the next rune after the escape to figure out what to
		// substitute.
		src = src.SliceFrom(i + 1)
		if src.Len() == 0 {
			return nil, errors.New("incomplete escape sequence")
		}
		r, n := mem.DecodeRune(src)
		if n == 0 {
			n++
		}

		src = src.SliceFrom(n)
		switch r {
		case '"', '\\', '/':
			putByte(byte(r))
		case 'b':
			putByte('\b')
		case 'f':
			putByte('\f')
		case 'n':
			putByte('\n')
		case 'r':
			putByte('\r')
		case 't':
			putByte('\t')
		case 'u':
			v, err := parseHex4(src)
			if err != nil {
				return nil, err
			}
			src = src.SliceFrom(4)
			if utf16.IsSurrogate(rune(v)) {
				r, rest := combineSurrogate(rune(v), src)
				putRune(r)
				src = rest
			} else {
				putRune(rune(v))
			}
		default:
			return nil, fmt.Errorf("invalid escape %q", r)
		}

		// Look for the next escape sequence, and if one is not found we can blit
		// the rest of the input and go home.
		i = mem.IndexByte(src, '\\')
		if i < 0 {
			dec = mem.Append(dec, src)
			break
		}
	}
	return dec, nil
}

// combineSurrogate resolves a surrogate half r1 decoded from a \u escape.
// If src begins with a \uXXXX escape whose value pairs with r1, the combined
// rune and the input after the second escape are returned; otherwise r1 is
// unpaired and decodes to utf8.RuneError with src unconsumed.
func combineSurrogate(r1 rune, src mem.RO) (rune, mem.RO) {
	if src.Len() < 6 || src.At(0) != '\\' || src.At(1) != 'u' {
		return utf8.RuneError, src
	}
	v, err := parseHex4(src.SliceFrom(2))
	if err != nil {
		return utf8.RuneError, src
	}
	if r := utf16.DecodeRune(r1, rune(v)); r != utf8.RuneError {
		return r, src.SliceFrom(6)
	}
	return utf8.RuneError, src
}

// parseHex4 decodes exactly 4 hexadecimal digits from the front of data.
func parseHex4(data mem.RO) (int64, error) {
	if data.Len() < 4 {
		return 0, errors.New("incomplete Unicode escape")
	}
	var v int64
	for i := 0; i < 4; i++ {
		b := data.At(i)
		v <<= 4
		if '0' <= b && b <= '9' {
			v += int64(b - '0')
		} else if 'a' <= b && b <= 'f' {
			v += int64(b - 'a' + 10)
		} else if 'A' <= b && b <= 'F' {
			v += int64(b - 'A' + 10)
		} else {
			return 0, fmt.Errorf("invalid hex digit %q", b)
		}
	}
	return v, nil
}
