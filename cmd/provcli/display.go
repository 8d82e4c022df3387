// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/sandia-minimega/provdb/internal/store"
	log "github.com/sandia-minimega/provdb/pkg/minilog"
	"github.com/sandia-minimega/provdb/pkg/minipager"
	"github.com/sandia-minimega/provdb/pkg/wire"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// display renders server replies for the terminal. With raw set, or via
// tee, the exact payload bytes are written out instead of (or alongside)
// the rendered form. A pager, when set, takes the record tables; status
// and message lines always print directly.
type display struct {
	raw   bool
	out   io.Writer
	tee   io.Writer
	pager minipager.Pager
}

func statusColor(status wire.Status) *color.Color {
	switch {
	case status >= wire.StatusServerError:
		return color.New(color.FgRed)
	case status >= wire.StatusBadRequest:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

// Render prints one reply, single frame or chunked series.
func (d *display) Render(resps []*wire.Response) {
	for _, resp := range resps {
		if d.tee != nil {
			d.tee.Write(resp.Marshal())
		}
		if d.raw {
			d.out.Write(resp.Marshal())
		}
	}
	if d.raw || len(resps) == 0 {
		return
	}

	first := resps[0]

	printer := statusColor(first.Status)
	printer.Fprintf(d.out, "%v %v\n", int(first.Status), first.Message)

	switch first.PayloadType {
	case wire.PayloadRecords:
		// a chunked series carries one list split across frames
		var body strings.Builder
		for _, resp := range resps {
			if resp.PayloadType == wire.PayloadRecords {
				body.WriteString(resp.Body)
			}
		}
		d.renderRecords(body.String(), first.TotalRecords)
	case wire.PayloadMessage, wire.PayloadError:
		fmt.Fprint(d.out, first.Body)
		if first.Body != "" && !strings.HasSuffix(first.Body, "\n") {
			fmt.Fprintln(d.out)
		}
	}
}

func (d *display) renderRecords(body string, total int) {
	records, err := readRecords(body)
	if err != nil {
		// show the data rather than hide it behind the parse failure
		log.Error("unparseable record payload: %v", err)
		fmt.Fprint(d.out, body)
		return
	}

	if len(records) == 0 {
		fmt.Fprintln(d.out, "no records")
		return
	}

	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)

	table.SetHeader([]string{"Name", "IP", "Date", "In (GB)", "Out (GB)"})
	table.SetAutoWrapText(false)
	table.SetColWidth(50)

	for _, r := range records {
		var in, out float64
		for i := 0; i < store.HoursPerDay; i++ {
			in += r.In[i]
			out += r.Out[i]
		}

		table.Append([]string{
			r.Name,
			r.IP.String(),
			r.Date.String(),
			fmt.Sprintf("%.2f", in),
			fmt.Sprintf("%.2f", out),
		})
	}

	table.Render()

	fmt.Fprintf(&buf, "%v records\n", total)

	if d.pager != nil {
		d.pager.Page(strings.TrimSuffix(buf.String(), "\n"))
		return
	}
	d.out.Write(buf.Bytes())
}

func readRecords(body string) ([]store.Record, error) {
	br := bufio.NewReader(strings.NewReader(body))

	var records []store.Record
	for {
		r, err := store.ReadRecord(br)
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
}
