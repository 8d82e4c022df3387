// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

// Package wire implements the framed transport and response format spoken
// between provdb servers and clients. Every application message is a
// big-endian uint32 length prefix followed by exactly that many payload
// bytes. Client payloads are single-line textual queries (or the session
// exit literal); server payloads are a header block, a data marker, and a
// body. See Response for the header block format.
package wire

import (
	"encoding/binary"
	"io"
	"net"
	"time"

	"github.com/pkg/errors"
)

// MaxPayload is the largest payload a frame may declare, in either
// direction. A peer declaring more is a protocol violation and gets its
// connection closed.
const MaxPayload = 1 << 20

// ExitSession is the payload a client sends to end its session without
// expecting a reply.
const ExitSession = "EXIT_CLIENT_SESSION"

var (
	// ErrTooLarge is returned when a frame declares or carries a payload
	// larger than MaxPayload.
	ErrTooLarge = errors.New("frame exceeds max payload size")

	// ErrClosed is returned when the peer closes the connection before or
	// during a frame.
	ErrClosed = errors.New("connection closed")
)

// WriteFrame writes one framed message to conn. Zero-length payloads are
// valid and produce a bare length prefix.
func WriteFrame(conn net.Conn, payload []byte) error {
	if len(payload) > MaxPayload {
		return ErrTooLarge
	}

	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(payload)))

	bufs := net.Buffers{prefix[:]}
	if len(payload) > 0 {
		bufs = append(bufs, payload)
	}

	if _, err := bufs.WriteTo(conn); err != nil {
		return errors.Wrap(err, "writing frame")
	}

	return nil
}

// ReadFrame reads one framed message from conn. A timeout > 0 bounds each
// of the two read legs; zero means block indefinitely. A declared length
// greater than MaxPayload closes the connection and returns ErrTooLarge.
// Orderly peer close before or inside a frame returns ErrClosed.
func ReadFrame(conn net.Conn, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		conn.SetReadDeadline(time.Now().Add(timeout))
	} else {
		conn.SetReadDeadline(time.Time{})
	}

	var prefix [4]byte
	if _, err := io.ReadFull(conn, prefix[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrClosed
		}
		return nil, errors.Wrap(err, "reading frame length")
	}

	n := binary.BigEndian.Uint32(prefix[:])
	if n > MaxPayload {
		conn.Close()
		return nil, ErrTooLarge
	}

	if n == 0 {
		return []byte{}, nil
	}

	if timeout > 0 {
		conn.SetReadDeadline(time.Now().Add(timeout))
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(conn, payload); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrClosed
		}
		return nil, errors.Wrap(err, "reading frame payload")
	}

	return payload, nil
}
