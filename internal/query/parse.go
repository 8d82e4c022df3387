// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandia-minimega/provdb/internal/store"
)

// keywords recognized inside a command body. A traffic block runs until one
// of these or the end of the query.
var keywords = map[string]bool{
	"FIO":         true,
	"IP":          true,
	"DATE":        true,
	"TRAFFIC_IN":  true,
	"TRAFFIC_OUT": true,
	"SET":         true,
	"START_DATE":  true,
	"END_DATE":    true,
	"END":         true,
}

func parseErrorf(format string, args ...interface{}) error {
	return &ParseError{Reason: fmt.Sprintf(format, args...)}
}

// Parse turns one query line into a command. Keyword matching is
// case-insensitive; named parameters may appear in any order but each at
// most once. Empty or whitespace-only input yields the Unknown kind, which
// the handler rejects.
func Parse(input string) (*Command, error) {
	tokens, err := lexQuery(input)
	if err != nil {
		return nil, err
	}

	cmd := &Command{Kind: Unknown, Original: input}
	if len(tokens) == 0 {
		return cmd, nil
	}

	rest := tokens[1:]

	switch strings.ToUpper(tokens[0]) {
	case "ADD":
		cmd.Kind = Add
		err = parseAdd(cmd, rest)
	case "SELECT":
		cmd.Kind = Select
		err = parseCriteria(cmd, rest, "SELECT", true)
	case "DELETE":
		cmd.Kind = Delete
		err = parseCriteria(cmd, rest, "DELETE", false)
	case "EDIT":
		cmd.Kind = Edit
		err = parseEdit(cmd, rest)
	case "CALCULATE_CHARGES":
		cmd.Kind = CalculateCharges
		err = parseCalc(cmd, rest)
	case "PRINT_ALL":
		cmd.Kind = PrintAll
		err = parseBare(rest)
	case "LOAD":
		cmd.Kind = Load
		err = parseLoad(cmd, rest)
	case "SAVE":
		cmd.Kind = Save
		err = parseSave(cmd, rest)
	case "HELP":
		cmd.Kind = Help
		err = parseBare(rest)
	case "EXIT":
		cmd.Kind = Exit
		err = parseBare(rest)
	default:
		return nil, parseErrorf("unknown command %q", tokens[0])
	}

	if err != nil {
		return nil, err
	}
	return cmd, nil
}

type tokenReader struct {
	tokens []string
	pos    int
}

func (tr *tokenReader) next() (string, bool) {
	if tr.pos >= len(tr.tokens) {
		return "", false
	}

	tok := tr.tokens[tr.pos]
	tr.pos++
	return tok, true
}

// terminal enforces that END was the last token.
func (tr *tokenReader) terminal() error {
	if tok, ok := tr.next(); ok {
		return parseErrorf("unexpected token %q after END", tok)
	}
	return nil
}

// value returns the token following a named parameter, verbatim.
func (tr *tokenReader) value(param string) (string, error) {
	tok, ok := tr.next()
	if !ok {
		return "", parseErrorf("%v missing its value", param)
	}
	return tok, nil
}

func (tr *tokenReader) ipValue(param string) (*store.IP, error) {
	tok, err := tr.value(param)
	if err != nil {
		return nil, err
	}

	ip, err := store.ParseIP(tok)
	if err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}
	return &ip, nil
}

func (tr *tokenReader) dateValue(param string) (*store.Date, error) {
	tok, err := tr.value(param)
	if err != nil {
		return nil, err
	}

	d, err := store.ParseDate(tok)
	if err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}
	return &d, nil
}

// traffic reads exactly 24 non-negative values. A keyword or the end of the
// query before the 24th value is a parse error.
func (tr *tokenReader) traffic(param string) ([]float64, error) {
	vals := make([]float64, 0, store.HoursPerDay)

	for len(vals) < store.HoursPerDay {
		tok, ok := tr.next()
		if !ok || keywords[strings.ToUpper(tok)] {
			return nil, parseErrorf("%v expects %v values, got %v", param, store.HoursPerDay, len(vals))
		}

		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, parseErrorf("%v: bad value %q", param, tok)
		}
		if v < 0 {
			return nil, parseErrorf("%v: negative value %v", param, v)
		}

		vals = append(vals, v)
	}

	return vals, nil
}

func parseAdd(cmd *Command, tokens []string) error {
	tr := &tokenReader{tokens: tokens}
	seen := map[string]bool{}

loop:
	for {
		tok, ok := tr.next()
		if !ok {
			break
		}

		key := strings.ToUpper(tok)
		if keywords[key] && key != "END" && seen[key] {
			return parseErrorf("duplicate parameter %v", key)
		}

		switch key {
		case "FIO":
			v, err := tr.value(key)
			if err != nil {
				return err
			}
			cmd.Name = &v
		case "IP":
			ip, err := tr.ipValue(key)
			if err != nil {
				return err
			}
			cmd.IP = ip
		case "DATE":
			d, err := tr.dateValue(key)
			if err != nil {
				return err
			}
			cmd.Date = d
		case "TRAFFIC_IN":
			vals, err := tr.traffic(key)
			if err != nil {
				return err
			}
			cmd.In = vals
		case "TRAFFIC_OUT":
			vals, err := tr.traffic(key)
			if err != nil {
				return err
			}
			cmd.Out = vals
		case "END":
			if err := tr.terminal(); err != nil {
				return err
			}
			break loop
		default:
			return parseErrorf("unexpected token %q", tok)
		}

		seen[key] = true
	}

	if cmd.Name == nil {
		return parseErrorf("ADD requires FIO")
	}
	if cmd.IP == nil {
		return parseErrorf("ADD requires IP")
	}
	if cmd.Date == nil {
		return parseErrorf("ADD requires DATE")
	}

	return nil
}

// parseCriteria handles SELECT and DELETE bodies: FIO/IP/DATE filters and an
// optional END. SELECT requires at least one filter; DELETE with none
// matches every record.
func parseCriteria(cmd *Command, tokens []string, name string, requireOne bool) error {
	tr := &tokenReader{tokens: tokens}
	seen := map[string]bool{}

loop:
	for {
		tok, ok := tr.next()
		if !ok {
			break
		}

		key := strings.ToUpper(tok)
		if keywords[key] && key != "END" && seen[key] {
			return parseErrorf("duplicate parameter %v", key)
		}

		switch key {
		case "FIO":
			v, err := tr.value(key)
			if err != nil {
				return err
			}
			cmd.Name = &v
		case "IP":
			ip, err := tr.ipValue(key)
			if err != nil {
				return err
			}
			cmd.IP = ip
		case "DATE":
			d, err := tr.dateValue(key)
			if err != nil {
				return err
			}
			cmd.Date = d
		case "END":
			if err := tr.terminal(); err != nil {
				return err
			}
			break loop
		default:
			return parseErrorf("unexpected token %q", tok)
		}

		seen[key] = true
	}

	if requireOne && cmd.Name == nil && cmd.IP == nil && cmd.Date == nil {
		return parseErrorf("%v requires at least one criterion", name)
	}

	return nil
}

func parseEdit(cmd *Command, tokens []string) error {
	tr := &tokenReader{tokens: tokens}
	seen := map[string]bool{}

loop:
	for {
		tok, ok := tr.next()
		if !ok {
			break
		}

		key := strings.ToUpper(tok)
		if keywords[key] && key != "END" && seen[key] {
			return parseErrorf("duplicate parameter %v", key)
		}

		switch key {
		case "FIO":
			v, err := tr.value(key)
			if err != nil {
				return err
			}
			cmd.Name = &v
		case "IP":
			ip, err := tr.ipValue(key)
			if err != nil {
				return err
			}
			cmd.IP = ip
		case "DATE":
			d, err := tr.dateValue(key)
			if err != nil {
				return err
			}
			cmd.Date = d
		case "SET":
			return parseSetClause(cmd, tr)
		case "END":
			if err := tr.terminal(); err != nil {
				return err
			}
			break loop
		default:
			return parseErrorf("unexpected token %q", tok)
		}

		seen[key] = true
	}

	return parseErrorf("EDIT requires a SET clause")
}

// parseSetClause reads the field assignments after SET. The same parameter
// names are legal here as in the criteria, so each phase tracks duplicates
// on its own.
func parseSetClause(cmd *Command, tr *tokenReader) error {
	set := &SetClause{}
	seen := map[string]bool{}

loop:
	for {
		tok, ok := tr.next()
		if !ok {
			break
		}

		key := strings.ToUpper(tok)
		if keywords[key] && key != "END" && seen[key] {
			return parseErrorf("duplicate parameter %v in SET", key)
		}

		switch key {
		case "FIO":
			v, err := tr.value(key)
			if err != nil {
				return err
			}
			set.Name = &v
		case "IP":
			ip, err := tr.ipValue(key)
			if err != nil {
				return err
			}
			set.IP = ip
		case "DATE":
			d, err := tr.dateValue(key)
			if err != nil {
				return err
			}
			set.Date = d
		case "TRAFFIC_IN":
			vals, err := tr.traffic(key)
			if err != nil {
				return err
			}
			set.In = vals
		case "TRAFFIC_OUT":
			vals, err := tr.traffic(key)
			if err != nil {
				return err
			}
			set.Out = vals
		case "END":
			if err := tr.terminal(); err != nil {
				return err
			}
			break loop
		default:
			return parseErrorf("unexpected token %q", tok)
		}

		seen[key] = true
	}

	if set.Name == nil && set.IP == nil && set.Date == nil && set.In == nil && set.Out == nil {
		return parseErrorf("SET must name at least one field")
	}

	cmd.Set = set
	return nil
}

func parseCalc(cmd *Command, tokens []string) error {
	tr := &tokenReader{tokens: tokens}
	seen := map[string]bool{}

loop:
	for {
		tok, ok := tr.next()
		if !ok {
			break
		}

		key := strings.ToUpper(tok)
		if keywords[key] && key != "END" && seen[key] {
			return parseErrorf("duplicate parameter %v", key)
		}

		switch key {
		case "FIO":
			v, err := tr.value(key)
			if err != nil {
				return err
			}
			cmd.Name = &v
		case "IP":
			ip, err := tr.ipValue(key)
			if err != nil {
				return err
			}
			cmd.IP = ip
		case "DATE":
			d, err := tr.dateValue(key)
			if err != nil {
				return err
			}
			cmd.Date = d
		case "START_DATE":
			d, err := tr.dateValue(key)
			if err != nil {
				return err
			}
			cmd.StartDate = d
		case "END_DATE":
			d, err := tr.dateValue(key)
			if err != nil {
				return err
			}
			cmd.EndDate = d
		case "END":
			if err := tr.terminal(); err != nil {
				return err
			}
			break loop
		default:
			return parseErrorf("unexpected token %q", tok)
		}

		seen[key] = true
	}

	if cmd.StartDate == nil {
		return parseErrorf("CALCULATE_CHARGES requires START_DATE")
	}
	if cmd.EndDate == nil {
		return parseErrorf("CALCULATE_CHARGES requires END_DATE")
	}

	return nil
}

// parseBare handles the no-parameter commands, which still accept a
// trailing END.
func parseBare(tokens []string) error {
	tr := &tokenReader{tokens: tokens}

	tok, ok := tr.next()
	if !ok {
		return nil
	}
	if strings.ToUpper(tok) == "END" {
		return tr.terminal()
	}

	return parseErrorf("unexpected token %q", tok)
}

func parseLoad(cmd *Command, tokens []string) error {
	tr := &tokenReader{tokens: tokens}

	// a bare END here is the terminator, not a filename
	tok, ok := tr.next()
	if !ok || strings.ToUpper(tok) == "END" {
		return parseErrorf("LOAD requires a filename")
	}
	cmd.Filename = &tok

	next, ok := tr.next()
	if !ok {
		return nil
	}
	if strings.ToUpper(next) == "END" {
		return tr.terminal()
	}

	return parseErrorf("unexpected token %q", next)
}

func parseSave(cmd *Command, tokens []string) error {
	tr := &tokenReader{tokens: tokens}

	// no filename means the store's current file
	tok, ok := tr.next()
	if !ok {
		return nil
	}
	if strings.ToUpper(tok) == "END" {
		return tr.terminal()
	}
	cmd.Filename = &tok

	next, ok := tr.next()
	if !ok {
		return nil
	}
	if strings.ToUpper(next) == "END" {
		return tr.terminal()
	}

	return parseErrorf("unexpected token %q", next)
}
