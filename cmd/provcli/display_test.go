// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sandia-minimega/provdb/internal/store"
	"github.com/sandia-minimega/provdb/pkg/wire"

	"github.com/fatih/color"
)

func mustRecord(t *testing.T, name string, ip store.IP, in, out float64) store.Record {
	t.Helper()

	hourly := func(v float64) []float64 {
		vals := make([]float64, store.HoursPerDay)
		for i := range vals {
			vals[i] = v
		}
		return vals
	}

	r, err := store.NewRecord(name, ip, store.Date{Day: 1, Month: 1, Year: 2023},
		hourly(in), hourly(out))
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestRenderMessage(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	d := &display{out: &buf}

	d.Render([]*wire.Response{{
		Status:      wire.StatusOK,
		Message:     "OK",
		PayloadType: wire.PayloadMessage,
		Body:        "record added (1 records total)\n",
	}})

	out := buf.String()
	if !strings.Contains(out, "200 OK") {
		t.Errorf("missing status line: %q", out)
	}
	if !strings.Contains(out, "record added") {
		t.Errorf("missing body: %q", out)
	}
}

func TestRenderRecordsTable(t *testing.T) {
	color.NoColor = true

	var body bytes.Buffer
	if err := store.WriteRecord(&body, mustRecord(t, "Иванов И.И.", store.IP{10, 0, 0, 1}, 1.0, 0.5)); err != nil {
		t.Fatal(err)
	}
	body.WriteString("\n")
	if err := store.WriteRecord(&body, mustRecord(t, "Петров П.П.", store.IP{10, 0, 0, 2}, 0, 0)); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	d := &display{out: &buf}

	d.Render([]*wire.Response{{
		Status:           wire.StatusOK,
		Message:          "OK",
		RecordsInPayload: 2,
		TotalRecords:     2,
		PayloadType:      wire.PayloadRecords,
		Body:             body.String(),
	}})

	out := buf.String()
	for _, want := range []string{"Иванов И.И.", "Петров П.П.", "10.0.0.1", "01.01.2023", "24.00", "12.00", "2 records"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%v", want, out)
		}
	}
}

func TestRenderEmptyList(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	d := &display{out: &buf}

	d.Render([]*wire.Response{{
		Status:      wire.StatusOK,
		Message:     "OK",
		PayloadType: wire.PayloadRecords,
	}})

	if !strings.Contains(buf.String(), "no records") {
		t.Errorf("got %q", buf.String())
	}
}

func TestRenderRaw(t *testing.T) {
	resp := &wire.Response{
		Status:      wire.StatusBadRequest,
		Message:     "unknown command",
		PayloadType: wire.PayloadError,
		Body:        "query: FROBNICATE\nerror: unknown command\n",
	}

	var buf, tee bytes.Buffer
	d := &display{raw: true, out: &buf, tee: &tee}

	d.Render([]*wire.Response{resp})

	want := string(resp.Marshal())
	if buf.String() != want {
		t.Errorf("raw output:\ngot  %q\nwant %q", buf.String(), want)
	}
	if tee.String() != want {
		t.Errorf("tee output:\ngot  %q\nwant %q", tee.String(), want)
	}
}
