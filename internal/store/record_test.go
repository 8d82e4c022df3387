// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package store

import (
	"testing"
)

func TestParseIP(t *testing.T) {
	valid := []struct {
		s    string
		want IP
	}{
		{"0.0.0.0", IP{0, 0, 0, 0}},
		{"255.255.255.255", IP{255, 255, 255, 255}},
		{"192.168.1.1", IP{192, 168, 1, 1}},
		{"10.0.042.5", IP{10, 0, 42, 5}},
	}

	for _, v := range valid {
		got, err := ParseIP(v.s)
		if err != nil {
			t.Errorf("ParseIP(%q): %v", v.s, err)
			continue
		}
		if got != v.want {
			t.Errorf("ParseIP(%q) got %v, want %v", v.s, got, v.want)
		}
	}

	invalid := []string{
		"",
		"1.2.3",
		"1.2.3.4.5",
		"256.1.1.1",
		"1.2.3.256",
		"-1.2.3.4",
		"+1.2.3.4",
		"a.b.c.d",
		"1..2.3",
		"1.2.3.4 ",
	}

	for _, s := range invalid {
		if _, err := ParseIP(s); err == nil {
			t.Errorf("ParseIP(%q) did not error", s)
		}
	}
}

func TestIPString(t *testing.T) {
	ip := IP{192, 168, 0, 7}
	if got := ip.String(); got != "192.168.0.7" {
		t.Errorf("String got %q", got)
	}
}

func TestParseDate(t *testing.T) {
	valid := []struct {
		s    string
		want Date
	}{
		{"01.01.2023", Date{1, 1, 2023}},
		{"31.12.2100", Date{31, 12, 2100}},
		{"01.01.1900", Date{1, 1, 1900}},
		{"1.1.2023", Date{1, 1, 2023}},
		{"29.02.2024", Date{29, 2, 2024}},
		{"29.02.2000", Date{29, 2, 2000}},
		{"28.02.2023", Date{28, 2, 2023}},
		{"31.01.2023", Date{31, 1, 2023}},
		{"30.04.2023", Date{30, 4, 2023}},
	}

	for _, v := range valid {
		got, err := ParseDate(v.s)
		if err != nil {
			t.Errorf("ParseDate(%q): %v", v.s, err)
			continue
		}
		if got != v.want {
			t.Errorf("ParseDate(%q) got %v, want %v", v.s, got, v.want)
		}
	}

	invalid := []string{
		"",
		"01.01",
		"01.01.2023.05",
		"29.02.2023",
		"29.02.1900",
		"29.02.2100",
		"31.04.2023",
		"32.01.2023",
		"00.01.2023",
		"01.00.2023",
		"01.13.2023",
		"01.01.1899",
		"01.01.2101",
		"2023.01.01",
		"01-01-2023",
		"aa.bb.cccc",
		"-1.01.2023",
	}

	for _, s := range invalid {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q) did not error", s)
		}
	}
}

func TestDateString(t *testing.T) {
	d := Date{3, 7, 2023}
	if got := d.String(); got != "03.07.2023" {
		t.Errorf("String got %q, want 03.07.2023", got)
	}
}

func TestDateBefore(t *testing.T) {
	tests := []struct {
		a, b Date
		want bool
	}{
		{Date{1, 1, 2023}, Date{2, 1, 2023}, true},
		{Date{1, 1, 2023}, Date{1, 2, 2023}, true},
		{Date{1, 1, 2023}, Date{1, 1, 2024}, true},
		{Date{31, 12, 2022}, Date{1, 1, 2023}, true},
		{Date{1, 1, 2023}, Date{1, 1, 2023}, false},
		{Date{2, 1, 2023}, Date{1, 1, 2023}, false},
	}

	for _, v := range tests {
		if got := v.a.Before(v.b); got != v.want {
			t.Errorf("%v.Before(%v) got %v, want %v", v.a, v.b, got, v.want)
		}
	}
}

func zeros() []float64 {
	return make([]float64, HoursPerDay)
}

func TestNewRecord(t *testing.T) {
	ip := IP{10, 0, 0, 1}
	date := Date{1, 1, 2023}

	r, err := NewRecord("Иванов И.И.", ip, date, zeros(), zeros())
	if err != nil {
		t.Fatal(err)
	}
	if r.Name != "Иванов И.И." || r.IP != ip || r.Date != date {
		t.Errorf("got %+v", r)
	}

	tests := []struct {
		name    string
		recName string
		in, out []float64
	}{
		{"empty name", "", zeros(), zeros()},
		{"short in", "x", make([]float64, 23), zeros()},
		{"long in", "x", make([]float64, 25), zeros()},
		{"nil in", "x", nil, zeros()},
		{"short out", "x", zeros(), make([]float64, 23)},
		{"negative in", "x", append(zeros()[:23], -1), zeros()},
		{"negative out", "x", zeros(), append(zeros()[:23], -0.01)},
	}

	for _, v := range tests {
		if _, err := NewRecord(v.recName, ip, date, v.in, v.out); err == nil {
			t.Errorf("%v: NewRecord did not error", v.name)
		}
	}
}

func TestRecordComparable(t *testing.T) {
	in := zeros()
	in[5] = 1.25

	a, err := NewRecord("x", IP{1, 2, 3, 4}, Date{1, 1, 2023}, in, zeros())
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewRecord("x", IP{1, 2, 3, 4}, Date{1, 1, 2023}, in, zeros())
	if err != nil {
		t.Fatal(err)
	}

	if a != b {
		t.Error("identical records compare unequal")
	}

	in[5] = 2.5
	c, err := NewRecord("x", IP{1, 2, 3, 4}, Date{1, 1, 2023}, in, zeros())
	if err != nil {
		t.Fatal(err)
	}

	if a == c {
		t.Error("records with different traffic compare equal")
	}

	// the record copied its input vector
	if a.In[5] != 1.25 {
		t.Errorf("record aliases caller slice, In[5] = %v", a.In[5])
	}
}
