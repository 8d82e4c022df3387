// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package store

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func testRecord(t *testing.T, name string, ip IP, date Date) Record {
	t.Helper()

	in := make([]float64, HoursPerDay)
	out := make([]float64, HoursPerDay)
	for h := 0; h < HoursPerDay; h++ {
		in[h] = float64(h) * 0.5
		out[h] = float64(h) * 0.25
	}

	r, err := NewRecord(name, ip, date, in, out)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestWriteRecordFormat(t *testing.T) {
	r, err := NewRecord("Петров П.П.", IP{10, 20, 30, 40}, Date{5, 9, 2023},
		[]float64{1, 0.5, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2.75},
		make([]float64, HoursPerDay))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteRecord(&buf, r); err != nil {
		t.Fatal(err)
	}

	want := "Петров П.П.\n" +
		"10.20.30.40\n" +
		"05.09.2023\n" +
		"1.00 0.50 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 2.75\n" +
		"0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00 0.00\n"

	if got := buf.String(); got != want {
		t.Errorf("WriteRecord got:\n%v\nwant:\n%v", got, want)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	records := []Record{
		testRecord(t, "Иванов И.И.", IP{192, 168, 1, 1}, Date{1, 1, 2023}),
		testRecord(t, "name without spaces", IP{8, 8, 8, 8}, Date{29, 2, 2024}),
		testRecord(t, "x", IP{0, 0, 0, 0}, Date{31, 12, 2100}),
	}

	var buf bytes.Buffer
	for i, r := range records {
		if i > 0 {
			buf.WriteString("\n")
		}
		if err := WriteRecord(&buf, r); err != nil {
			t.Fatal(err)
		}
	}

	br := bufio.NewReader(&buf)
	for i, want := range records {
		got, err := ReadRecord(br)
		if err != nil {
			t.Fatalf("record %v: %v", i, err)
		}
		if got != want {
			t.Errorf("record %v: got %+v, want %+v", i, got, want)
		}
	}

	if _, err := ReadRecord(br); err != io.EOF {
		t.Errorf("after last record: got %v, want io.EOF", err)
	}
}

func TestReadRecordSkipsBlankLines(t *testing.T) {
	r := testRecord(t, "x", IP{1, 1, 1, 1}, Date{1, 1, 2023})

	var buf bytes.Buffer
	buf.WriteString("\n\n   \n\t\n")
	if err := WriteRecord(&buf, r); err != nil {
		t.Fatal(err)
	}

	got, err := ReadRecord(bufio.NewReader(&buf))
	if err != nil {
		t.Fatal(err)
	}
	if got != r {
		t.Errorf("got %+v, want %+v", got, r)
	}
}

func TestReadRecordCleanEOF(t *testing.T) {
	for _, input := range []string{"", "\n", "  \n\n\t\n", "   "} {
		_, err := ReadRecord(bufio.NewReader(strings.NewReader(input)))
		if err != io.EOF {
			t.Errorf("input %q: got %v, want io.EOF", input, err)
		}
	}
}

func TestReadRecordPartial(t *testing.T) {
	inputs := []string{
		"just a name",
		"name\n1.2.3.4\n",
		"name\n1.2.3.4\n01.01.2023\n",
		"name\n1.2.3.4\n01.01.2023\n" + strings.Repeat("1.0 ", 24) + "\n",
	}

	for _, input := range inputs {
		_, err := ReadRecord(bufio.NewReader(strings.NewReader(input)))
		if !errors.Is(err, errPartial) {
			t.Errorf("input %q: got %v, want errPartial", input, err)
		}
	}
}

func TestReadRecordBadFields(t *testing.T) {
	traffic := strings.Repeat("1.0 ", 24) + "\n"

	tests := []struct {
		name  string
		input string
	}{
		{"bad ip", "name\n1.2.3.999\n01.01.2023\n" + traffic + traffic},
		{"bad date", "name\n1.2.3.4\n31.02.2023\n" + traffic + traffic},
		{"short traffic", "name\n1.2.3.4\n01.01.2023\n1.0 2.0\n" + traffic},
		{"long traffic", "name\n1.2.3.4\n01.01.2023\n" + strings.Repeat("1.0 ", 25) + "\n" + traffic},
		{"junk traffic", "name\n1.2.3.4\n01.01.2023\n" + strings.Repeat("1.0 ", 23) + "zzz\n" + traffic},
		{"negative traffic", "name\n1.2.3.4\n01.01.2023\n" + strings.Repeat("1.0 ", 23) + "-1.0\n" + traffic},
	}

	for _, v := range tests {
		_, err := ReadRecord(bufio.NewReader(strings.NewReader(v.input)))

		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%v: got %v, want ValidationError", v.name, err)
		}
	}
}

func TestReadRecordLastLineNoNewline(t *testing.T) {
	// a record whose final traffic line lacks the trailing newline still reads
	input := "name\n1.2.3.4\n01.01.2023\n" +
		strings.Repeat("1.0 ", 23) + "1.0\n" +
		strings.Repeat("2.0 ", 23) + "2.0"

	got, err := ReadRecord(bufio.NewReader(strings.NewReader(input)))
	if err != nil {
		t.Fatal(err)
	}
	if got.Out[23] != 2.0 {
		t.Errorf("Out[23] got %v, want 2.0", got.Out[23])
	}
}
