// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

// Package store implements the in-memory subscriber record table: the record
// model and its invariants, the text codec used for files and response
// bodies, load/save persistence, search, and charge calculation. The store
// itself does no locking; the server guards one Database with a single
// reader/writer lock for the full span of each request.
package store

import (
	"fmt"
	"strconv"
	"strings"
)

// HoursPerDay is the length of a record's traffic vectors and of each tariff
// rate table.
const HoursPerDay = 24

// ValidationError reports a field value that violates the data model.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %v: %v", e.Field, e.Reason)
}

// IP is a subscriber address, four octets.
type IP [4]byte

// ParseIP parses a dotted quad. Each octet must be a bare decimal 0-255;
// leading zeros are tolerated.
func ParseIP(s string) (IP, error) {
	var ip IP

	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return ip, &ValidationError{"ip", fmt.Sprintf("%q is not a dotted quad", s)}
	}

	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return ip, &ValidationError{"ip", fmt.Sprintf("octet %q out of range", p)}
		}
		ip[i] = byte(n)
	}

	return ip, nil
}

func (ip IP) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", ip[0], ip[1], ip[2], ip[3])
}

// Date is a gregorian calendar day. Year is bounded to [1900, 2100].
type Date struct {
	Day   int
	Month int
	Year  int
}

var daysInMonth = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func isLeap(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// ParseDate parses DD.MM.YYYY. Zero padding of day and month is optional on
// input; String always emits it.
func ParseDate(s string) (Date, error) {
	var d Date

	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return d, &ValidationError{"date", fmt.Sprintf("%q is not DD.MM.YYYY", s)}
	}

	fields := []struct {
		name string
		dst  *int
	}{
		{"day", &d.Day},
		{"month", &d.Month},
		{"year", &d.Year},
	}

	for i, f := range fields {
		n, err := strconv.ParseUint(parts[i], 10, 32)
		if err != nil {
			return Date{}, &ValidationError{"date", fmt.Sprintf("bad %v %q", f.name, parts[i])}
		}
		*f.dst = int(n)
	}

	if d.Year < 1900 || d.Year > 2100 {
		return Date{}, &ValidationError{"date", fmt.Sprintf("year %v outside [1900, 2100]", d.Year)}
	}
	if d.Month < 1 || d.Month > 12 {
		return Date{}, &ValidationError{"date", fmt.Sprintf("month %v outside [1, 12]", d.Month)}
	}

	days := daysInMonth[d.Month]
	if d.Month == 2 && isLeap(d.Year) {
		days++
	}
	if d.Day < 1 || d.Day > days {
		return Date{}, &ValidationError{"date", fmt.Sprintf("day %v outside [1, %v]", d.Day, days)}
	}

	return d, nil
}

func (d Date) String() string {
	return fmt.Sprintf("%02d.%02d.%04d", d.Day, d.Month, d.Year)
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// Record is one subscriber-traffic entry. In and Out hold gigabytes per hour
// slot 0..23. Records are comparable; two records are the same entry exactly
// when they compare equal with ==.
type Record struct {
	Name string
	IP   IP
	Date Date
	In   [HoursPerDay]float64
	Out  [HoursPerDay]float64
}

// NewRecord validates and builds a record. The traffic vectors must each
// carry exactly 24 non-negative values.
func NewRecord(name string, ip IP, date Date, in, out []float64) (Record, error) {
	r := Record{Name: name, IP: ip, Date: date}

	if name == "" {
		return Record{}, &ValidationError{"name", "must not be empty"}
	}

	if len(in) != HoursPerDay {
		return Record{}, &ValidationError{"traffic in", fmt.Sprintf("expected %v values, got %v", HoursPerDay, len(in))}
	}
	if len(out) != HoursPerDay {
		return Record{}, &ValidationError{"traffic out", fmt.Sprintf("expected %v values, got %v", HoursPerDay, len(out))}
	}

	for h, v := range in {
		if v < 0 {
			return Record{}, &ValidationError{"traffic in", fmt.Sprintf("negative value %v at hour %v", v, h)}
		}
		r.In[h] = v
	}
	for h, v := range out {
		if v < 0 {
			return Record{}, &ValidationError{"traffic out", fmt.Sprintf("negative value %v at hour %v", v, h)}
		}
		r.Out[h] = v
	}

	return r, nil
}
