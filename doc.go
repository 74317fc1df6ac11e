// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jdiag implements a JSON scanner and parser whose distinguishing
// concern is diagnostic quality: a malformed input is reported with the line
// and column of the offending character, what the grammar expected there,
// what was found instead, and an excerpt of the source line with a caret
// marking the fault.
//
// The grammar is strict RFC 8259 JSON: no comments, no trailing commas, no
// unquoted keys.
//
// # Scanning
//
// The Scanner type implements a lexical scanner for JSON.  Construct a
// scanner from an io.Reader and call its Next method to iterate over the
// stream:
//
//	s := jdiag.NewScanner(input)
//	for s.Next() {
//	   log.Printf("Next token: %v at %v", s.Token(), s.Location().First)
//	}
//
// When Next reports false, Err reports io.EOF if the input was fully
// consumed. Any other error is an I/O error or a *LexError describing a
// lexical fault and its position:
//
//	if s.Err() != io.EOF {
//	   log.Fatalf("Scanning failed: %v", s.Err())
//	}
//
// # Streaming
//
// The Stream type implements an event-driven grammar parser for JSON.  The
// parser works by calling methods on a Handler value to report the structure
// of the input. In case of error, parsing is terminated and an error of
// concrete type *jdiag.ParseError is returned.
//
// Construct a Stream from an io.Reader, and call its Parse method. Parse
// returns nil if the input was fully processed without error. If a Handler
// method reports an error, parsing stops and that error is returned.
//
//	s := jdiag.NewStream(input)
//	if err := s.Parse(handler); err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//
// To parse a single value from the front of the input, call ParseOne. This
// method returns io.EOF if no further values are available:
//
//	if err := s.ParseOne(handle); err == io.EOF {
//	   log.Print("No more input")
//	} else if err != nil {
//	   log.Printf("ParseOne failed: %v", err)
//	}
//
// A Stream rejects input whose objects and arrays nest more deeply than a
// configurable limit (SetMaxDepth), and can optionally reject objects that
// repeat a key (RejectDuplicateKeys).
//
// # Handlers
//
// The Handler interface accepts parser events from a Stream. The methods of
// a handler correspond to the syntax of JSON values:
//
//	JSON type  | Methods                   | Description
//	---------- | ------------------------- | ---------------------------------
//	object     | BeginObject, EndObject    | { ... }
//	array      | BeginArray, EndArray      | [ ... ]
//	member     | BeginMember, EndMember    | "key": value
//	value      | Value                     | true, false, null, number, string
//	--         | EndOfInput                | end of input
//
// Each method is passed an Anchor value that can be used to retrieve location
// and type information. See the comments on the Handler type for the meaning
// of each method's anchor value. The Anchor passed to a handler method is only
// valid for the duration of that method call; the handler must copy any data
// it needs to retain beyond the lifetime of the call.
//
// The parser ensures that corresponding Begin and End methods are correctly
// paired, or that a ParseError is reported.
//
// # Values
//
// To parse input into a value tree rather than handling events, use the ast
// subpackage:
//
//	v, err := ast.ParseSingle(data)
//
// Errors returned by ast.ParseSingle and ast.Parse render a complete
// diagnostic, including the source excerpt, with no further context needed:
//
//	at 2:10: expected "," or "}", found string "b"
//	  "a": 1 "b": 2
//	         ^
package jdiag
