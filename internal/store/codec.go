// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package store

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Record text format, shared by files and response bodies:
//
//	<name, read to end of line>
//	<ip as d.d.d.d>
//	<date as DD.MM.YYYY>
//	<24 in-values, whitespace separated>
//	<24 out-values, whitespace separated>
//
// Records in a file are separated by a single blank line. Traffic values are
// written with two decimals and parsed as any readable real.

// errPartial marks end of input in the middle of a record.
var errPartial = errors.New("unexpected end of input inside record")

// WriteRecord writes one record in the text format.
func WriteRecord(w io.Writer, r Record) error {
	if _, err := fmt.Fprintf(w, "%v\n%v\n%v\n", r.Name, r.IP, r.Date); err != nil {
		return errors.Wrap(err, "writing record")
	}

	if err := writeTraffic(w, r.In); err != nil {
		return err
	}
	return writeTraffic(w, r.Out)
}

func writeTraffic(w io.Writer, hours [HoursPerDay]float64) error {
	var b strings.Builder
	for h, v := range hours {
		if h > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%.2f", v)
	}
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "writing record")
}

// ReadRecord reads the next record, skipping leading blank lines. It returns
// io.EOF when the input ends cleanly before a record starts, errPartial when
// it ends inside one, and a *ValidationError when a field fails to parse.
// Anything else is a low-level read error.
func ReadRecord(br *bufio.Reader) (Record, error) {
	var name string

	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return Record{}, errors.Wrap(err, "reading record")
		}

		if strings.TrimSpace(line) == "" {
			if err == io.EOF {
				return Record{}, io.EOF
			}
			continue
		}

		name = strings.TrimRight(line, "\r\n")
		break
	}

	ipLine, err := readField(br)
	if err != nil {
		return Record{}, err
	}
	ip, err := ParseIP(ipLine)
	if err != nil {
		return Record{}, err
	}

	dateLine, err := readField(br)
	if err != nil {
		return Record{}, err
	}
	date, err := ParseDate(dateLine)
	if err != nil {
		return Record{}, err
	}

	inLine, err := readField(br)
	if err != nil {
		return Record{}, err
	}
	in, err := parseTraffic(inLine, "traffic in")
	if err != nil {
		return Record{}, err
	}

	outLine, err := readField(br)
	if err != nil {
		return Record{}, err
	}
	out, err := parseTraffic(outLine, "traffic out")
	if err != nil {
		return Record{}, err
	}

	return NewRecord(name, ip, date, in, out)
}

// readField reads one line of a record body. End of input with nothing on
// the line means the record was cut short.
func readField(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	s := strings.TrimSpace(line)

	if err == io.EOF {
		if s == "" {
			return "", errPartial
		}
		return s, nil
	}
	if err != nil {
		return "", errors.Wrap(err, "reading record")
	}

	return s, nil
}

func parseTraffic(line, field string) ([]float64, error) {
	tokens := strings.Fields(line)
	if len(tokens) != HoursPerDay {
		return nil, &ValidationError{field, fmt.Sprintf("expected %v values, got %v", HoursPerDay, len(tokens))}
	}

	vals := make([]float64, HoursPerDay)
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, &ValidationError{field, fmt.Sprintf("bad value %q", tok)}
		}
		vals[i] = v
	}

	return vals, nil
}
