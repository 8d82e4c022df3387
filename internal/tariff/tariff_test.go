// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package tariff

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTariff(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tariff.txt")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// fullTariff builds a valid 48-value file with in-rates inRate and
// out-rates outRate.
func fullTariff(inRate, outRate float64) string {
	var b strings.Builder
	b.WriteString("# in-rates\n")
	for i := 0; i < 24; i++ {
		fmt.Fprintf(&b, "%v ", inRate)
	}
	b.WriteString("\n# out-rates\n")
	for i := 0; i < 24; i++ {
		fmt.Fprintf(&b, "%v ", outRate)
	}
	b.WriteString("\n")
	return b.String()
}

func TestLoad(t *testing.T) {
	var tab Table

	path := writeTariff(t, fullTariff(0.50, 0.25))
	if err := tab.Load(path); err != nil {
		t.Fatal(err)
	}

	for h := 0; h < 24; h++ {
		in, err := tab.In(h)
		if err != nil {
			t.Fatal(err)
		}
		if in != 0.50 {
			t.Errorf("In(%v) got %v, want 0.50", h, in)
		}

		out, err := tab.Out(h)
		if err != nil {
			t.Fatal(err)
		}
		if out != 0.25 {
			t.Errorf("Out(%v) got %v, want 0.25", h, out)
		}
	}
}

func TestLoadComments(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 48; i++ {
		fmt.Fprintf(&b, "%v # rate %v\n", float64(i), i)
	}

	var tab Table
	if err := tab.Load(writeTariff(t, b.String())); err != nil {
		t.Fatal(err)
	}

	if in, _ := tab.In(23); in != 23 {
		t.Errorf("In(23) got %v, want 23", in)
	}
	if out, _ := tab.Out(0); out != 24 {
		t.Errorf("Out(0) got %v, want 24", out)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"too few", strings.Repeat("1.0 ", 47)},
		{"too many", strings.Repeat("1.0 ", 49)},
		{"empty", ""},
		{"comments only", "# just\n# comments\n"},
		{"junk token", strings.Repeat("1.0 ", 20) + "banana " + strings.Repeat("1.0 ", 27)},
		{"negative", strings.Repeat("1.0 ", 30) + "-0.5 " + strings.Repeat("1.0 ", 17)},
	}

	for _, v := range tests {
		var tab Table
		if err := tab.Load(writeTariff(t, v.contents)); err == nil {
			t.Errorf("%v: Load did not error", v.name)
		}
	}
}

func TestFailedLoadLeavesTableIntact(t *testing.T) {
	var tab Table

	if err := tab.Load(writeTariff(t, fullTariff(2.0, 3.0))); err != nil {
		t.Fatal(err)
	}

	if err := tab.Load(writeTariff(t, "garbage")); err == nil {
		t.Fatal("Load of garbage did not error")
	}

	if in, _ := tab.In(5); in != 2.0 {
		t.Errorf("In(5) after failed reload got %v, want 2.0", in)
	}
	if out, _ := tab.Out(5); out != 3.0 {
		t.Errorf("Out(5) after failed reload got %v, want 3.0", out)
	}
}

func TestLoadMissingFile(t *testing.T) {
	var tab Table
	if err := tab.Load(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("Load of missing file did not error")
	}
}

func TestZeroValue(t *testing.T) {
	var tab Table

	for h := 0; h < 24; h++ {
		if in, err := tab.In(h); err != nil || in != 0 {
			t.Errorf("In(%v) got %v, %v", h, in, err)
		}
		if out, err := tab.Out(h); err != nil || out != 0 {
			t.Errorf("Out(%v) got %v, %v", h, out, err)
		}
	}
}

func TestHourRange(t *testing.T) {
	var tab Table

	for _, h := range []int{-1, 24, 100} {
		if _, err := tab.In(h); err == nil {
			t.Errorf("In(%v) did not error", h)
		}
		if _, err := tab.Out(h); err == nil {
			t.Errorf("Out(%v) did not error", h)
		}
	}
}
