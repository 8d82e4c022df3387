// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

// Package query parses one textual client query into a tagged command value
// with typed parameters. The parser is pure: text in, command out, no I/O.
// Every failure is a *ParseError naming the offending token or missing
// field; the server reports these as BAD_REQUEST and keeps the session.
package query

import (
	"bufio"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ParseError is a recoverable query failure.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return e.Reason
}

type stateFn func() (stateFn, error)

// lexer splits a query on whitespace. A pair of unescaped double quotes
// groups a token that may contain spaces; "" is a valid empty token. \" and
// \\ are the only escapes.
type lexer struct {
	s       *bufio.Scanner
	tokens  []string
	content string

	emit bool // force emit, even if content is empty (e.g. "" as input)

	prevState stateFn
}

var escapedChars = map[string]string{
	`\`: `\`,
	`"`: `"`,
}

func lexQuery(input string) ([]string, error) {
	s := bufio.NewScanner(strings.NewReader(input))
	s.Split(bufio.ScanRunes)
	l := lexer{s: s}

	if err := l.run(); err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}

	return l.tokens, nil
}

func (l *lexer) run() (err error) {
	for state := l.lexOutside; state != nil && err == nil; {
		curr := state
		state, err = curr()
		l.prevState = curr
	}

	return err
}

// lexOutside is the starting state, scanning for the start of a quoted
// string or regular tokens.
func (l *lexer) lexOutside() (stateFn, error) {
	emitContent := func() {
		if len(l.content) > 0 || l.emit {
			l.tokens = append(l.tokens, l.content)
			l.content = ""
			l.emit = false
		}
	}

	for l.s.Scan() {
		switch token := l.s.Text(); token {
		case `\`:
			return l.lexEscape, nil
		case `"`:
			return l.lexQuote, nil
		default:
			r, _ := utf8.DecodeRuneInString(token)
			if unicode.IsSpace(r) {
				emitContent()
				return l.lexOutside, nil
			}

			l.content += token
		}
	}

	emitContent()

	return nil, nil
}

// lexQuote scans for the terminating quote.
func (l *lexer) lexQuote() (stateFn, error) {
	for l.s.Scan() {
		switch token := l.s.Text(); token {
		case `\`:
			return l.lexEscape, nil
		case `"`:
			l.emit = true
			return l.lexOutside, nil
		default:
			l.content += token
		}
	}

	// hit EOF before the closing quote
	return nil, errors.New(`missing terminal "`)
}

func (l *lexer) lexEscape() (stateFn, error) {
	if !l.s.Scan() {
		return nil, errors.New("expected escape character")
	}

	token := l.s.Text()
	if v, ok := escapedChars[token]; ok {
		l.content += v
		return l.prevState, nil
	}

	return nil, errors.Errorf("unexpected escaped character: %v", token)
}
