// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package wire

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Status is the numeric status code carried in a response header block.
type Status int

const (
	StatusOK          Status = 200
	StatusMultiBegin  Status = 201
	StatusMultiChunk  Status = 202
	StatusMultiEnd    Status = 203
	StatusBadRequest  Status = 400
	StatusNotFound    Status = 404
	StatusServerError Status = 500
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusMultiBegin:
		return "MULTI_BEGIN"
	case StatusMultiChunk:
		return "MULTI_CHUNK"
	case StatusMultiEnd:
		return "MULTI_END"
	case StatusBadRequest:
		return "BAD_REQUEST"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusServerError:
		return "SERVER_ERROR"
	}

	return fmt.Sprintf("Status(%d)", int(s))
}

// PayloadType names the kind of body a response carries.
type PayloadType string

const (
	PayloadRecords PayloadType = "PROVIDER_RECORDS_LIST"
	PayloadMessage PayloadType = "SIMPLE_MESSAGE"
	PayloadError   PayloadType = "ERROR_INFO"
	PayloadNone    PayloadType = "NONE"
)

// dataMarker separates the header block from the body.
const dataMarker = "--DATA_BEGIN--\n"

// Response is one server reply frame. List replies above the chunking
// threshold are transmitted as several frames, MULTI_BEGIN, MULTI_CHUNK*,
// MULTI_END, each one a Response of its own.
type Response struct {
	Status           Status
	Message          string
	RecordsInPayload int
	TotalRecords     int
	PayloadType      PayloadType
	Body             string
}

// Marshal encodes the response as a frame payload: the five header lines,
// the data marker, then the body bytes. Message must be a single line;
// embedded newlines are flattened to keep the header block parseable.
func (r *Response) Marshal() []byte {
	msg := strings.ReplaceAll(r.Message, "\n", " ")

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "STATUS: %d\n", int(r.Status))
	fmt.Fprintf(&buf, "MESSAGE: %s\n", msg)
	fmt.Fprintf(&buf, "RECORDS_IN_PAYLOAD: %d\n", r.RecordsInPayload)
	fmt.Fprintf(&buf, "TOTAL_RECORDS: %d\n", r.TotalRecords)
	fmt.Fprintf(&buf, "PAYLOAD_TYPE: %s\n", r.PayloadType)
	buf.WriteString(dataMarker)
	buf.WriteString(r.Body)

	return buf.Bytes()
}

// ParseResponse decodes a frame payload produced by Marshal. Unknown header
// keys are ignored so that newer servers can add headers without breaking
// older clients; the five known keys and the data marker are required.
func ParseResponse(payload []byte) (*Response, error) {
	i := bytes.Index(payload, []byte(dataMarker))
	if i < 0 {
		return nil, errors.New("response missing data marker")
	}

	headers := payload[:i]
	body := payload[i+len(dataMarker):]

	r := &Response{Body: string(body)}
	seen := map[string]bool{}

	for _, line := range strings.Split(string(headers), "\n") {
		if line == "" {
			continue
		}

		k, v, ok := strings.Cut(line, ":")
		if !ok {
			return nil, errors.Errorf("malformed header line %q", line)
		}
		v = strings.TrimPrefix(v, " ")

		switch k {
		case "STATUS":
			code, err := strconv.Atoi(v)
			if err != nil {
				return nil, errors.Errorf("malformed STATUS %q", v)
			}
			r.Status = Status(code)
		case "MESSAGE":
			r.Message = v
		case "RECORDS_IN_PAYLOAD":
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return nil, errors.Errorf("malformed RECORDS_IN_PAYLOAD %q", v)
			}
			r.RecordsInPayload = n
		case "TOTAL_RECORDS":
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return nil, errors.Errorf("malformed TOTAL_RECORDS %q", v)
			}
			r.TotalRecords = n
		case "PAYLOAD_TYPE":
			r.PayloadType = PayloadType(v)
		default:
			// ignore unknown headers
			continue
		}

		seen[k] = true
	}

	for _, k := range []string{"STATUS", "MESSAGE", "RECORDS_IN_PAYLOAD", "TOTAL_RECORDS", "PAYLOAD_TYPE"} {
		if !seen[k] {
			return nil, errors.Errorf("response missing %v header", k)
		}
	}

	return r, nil
}
