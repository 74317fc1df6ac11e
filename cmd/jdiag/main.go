// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Program jdiag checks that its inputs are valid JSON, and reports a
// compiler-style diagnostic with a line, column, and source excerpt for each
// input that is not.
//
// Usage:
//
//	jdiag [-q] [path...]
//
// With no paths, input is read from stdin. A path of "-" also names stdin.
// Valid inputs are re-encoded compactly to stdout unless -q is set. The exit
// status is nonzero if any input failed to parse.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/creachadair/jdiag/ast"
	"github.com/pkg/errors"
)

var quiet = flag.Bool("q", false, "Do not print values, only diagnostics")

func main() {
	log.SetFlags(0)
	log.SetPrefix("jdiag: ")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{"-"}
	}

	ok := true
	for _, path := range paths {
		if err := check(path); err != nil {
			ok = false
			log.Printf("%s: %v", name(path), err)
		}
	}
	if !ok {
		os.Exit(1)
	}
}

func check(path string) error {
	data, err := load(path)
	if err != nil {
		return err
	}
	v, err := ast.ParseSingle(data)
	if err != nil {
		return err
	}
	if !*quiet {
		fmt.Println(v.JSON())
	}
	return nil
}

func load(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return data, errors.Wrap(err, "read stdin")
	}
	data, err := os.ReadFile(path)
	return data, errors.Wrap(err, "read input")
}

func name(path string) string {
	if path == "-" {
		return "(stdin)"
	}
	return path
}
