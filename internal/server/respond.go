// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package server

import (
	"bytes"
	"net"
	"strconv"

	"github.com/sandia-minimega/provdb/internal/store"
	"github.com/sandia-minimega/provdb/pkg/wire"
)

// send writes one response frame.
func (s *Server) send(conn net.Conn, resp *wire.Response) error {
	payload := resp.Marshal()

	if err := wire.WriteFrame(conn, payload); err != nil {
		return err
	}

	metricBytesOut.Add(float64(len(payload)))
	metricResponses.WithLabelValues(strconv.Itoa(int(resp.Status))).Inc()

	return nil
}

// sendRecords serializes a record list, as one frame below the chunk
// threshold and as a MULTI_BEGIN/MULTI_CHUNK*/MULTI_END series at or
// above it. The frames go out back-to-back; a transport failure mid
// series just aborts it.
func (s *Server) sendRecords(conn net.Conn, records []store.Record) error {
	n := len(records)

	if n < s.cfg.ChunkThreshold {
		return s.send(conn, &wire.Response{
			Status:           wire.StatusOK,
			Message:          "OK",
			RecordsInPayload: n,
			TotalRecords:     n,
			PayloadType:      wire.PayloadRecords,
			Body:             recordsBody(records),
		})
	}

	status := wire.StatusMultiBegin
	for sent := 0; sent < n; sent += s.cfg.ChunkSize {
		end := sent + s.cfg.ChunkSize
		if end > n {
			end = n
		}
		chunk := records[sent:end]

		err := s.send(conn, &wire.Response{
			Status:           status,
			Message:          "OK",
			RecordsInPayload: len(chunk),
			TotalRecords:     n,
			PayloadType:      wire.PayloadRecords,
			Body:             recordsBody(chunk),
		})
		if err != nil {
			return err
		}

		status = wire.StatusMultiChunk
	}

	return s.send(conn, &wire.Response{
		Status:       wire.StatusMultiEnd,
		Message:      "OK",
		TotalRecords: n,
		PayloadType:  wire.PayloadNone,
	})
}

// recordsBody renders records in the text format shared with record
// files: five lines each, blank line between records.
func recordsBody(records []store.Record) string {
	var buf bytes.Buffer

	for i, r := range records {
		if i > 0 {
			buf.WriteString("\n")
		}
		store.WriteRecord(&buf, r)
	}

	return buf.String()
}
