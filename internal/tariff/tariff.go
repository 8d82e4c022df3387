// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

// Package tariff holds the hourly unit prices used for charge calculation:
// 24 in-rates and 24 out-rates loaded once at startup from a text file. The
// table is immutable after load and needs no locking during request
// processing.
package tariff

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// hoursPerDay matches the record traffic vector length.
const hoursPerDay = 24

// Table is a loaded tariff. The zero value is the unloaded tariff, all
// zeros, which yields zero charges without error.
type Table struct {
	in  [hoursPerDay]float64
	out [hoursPerDay]float64
}

// Load reads a tariff file: 48 whitespace-separated non-negative numbers,
// first 24 in-rates then 24 out-rates, with # comments running to end of
// line. Any deviation fails the load and leaves the receiver untouched.
func (t *Table) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening tariff file")
	}
	defer f.Close()

	var rates []float64

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}

		for _, tok := range strings.Fields(line) {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return errors.Errorf("tariff file %v: bad value %q", path, tok)
			}
			if v < 0 {
				return errors.Errorf("tariff file %v: negative rate %v", path, v)
			}
			if len(rates) == 2*hoursPerDay {
				return errors.Errorf("tariff file %v: more than %v values", path, 2*hoursPerDay)
			}
			rates = append(rates, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "reading tariff file")
	}

	if len(rates) != 2*hoursPerDay {
		return errors.Errorf("tariff file %v: expected %v values, got %v", path, 2*hoursPerDay, len(rates))
	}

	copy(t.in[:], rates[:hoursPerDay])
	copy(t.out[:], rates[hoursPerDay:])
	return nil
}

// In returns the in-rate for hour h in [0, 23].
func (t *Table) In(h int) (float64, error) {
	if h < 0 || h >= hoursPerDay {
		return 0, errors.Errorf("hour %v out of range", h)
	}
	return t.in[h], nil
}

// Out returns the out-rate for hour h in [0, 23].
func (t *Table) Out(h int) (float64, error) {
	if h < 0 || h >= hoursPerDay {
		return 0, errors.Errorf("hour %v out of range", h)
	}
	return t.out[h], nil
}
