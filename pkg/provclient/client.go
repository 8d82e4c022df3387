// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

// Package provclient implements a client connection to a provdb server. It
// speaks the framed wire protocol and collects single and chunked replies.
package provclient

import (
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"

	log "github.com/sandia-minimega/provdb/pkg/minilog"
	"github.com/sandia-minimega/provdb/pkg/wire"
)

const DefaultTimeout = 10 * time.Second

// Conn is a connection to a provdb server. A Conn is safe for concurrent
// use; queries are serialized so reply frames cannot interleave.
type Conn struct {
	addr string

	conn net.Conn

	// lock so concurrent Runs don't interleave frames
	lock sync.Mutex

	// response wait per frame
	timeout time.Duration
}

// Dial connects to the provdb server at addr. timeout bounds the TCP
// connect and each subsequent response read; zero means DefaultTimeout.
func Dial(addr string, timeout time.Duration) (*Conn, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %v", addr)
	}

	log.Debug("connected to %v", addr)

	return &Conn{
		addr:    addr,
		conn:    conn,
		timeout: timeout,
	}, nil
}

// Addr returns the server address this connection was dialed with.
func (c *Conn) Addr() string {
	return c.addr
}

// Run sends one query and collects the full reply: a single frame for most
// commands, a MULTI_BEGIN/MULTI_CHUNK/MULTI_END series for long record
// lists. Protocol-level failures (status 400/404/500) come back as
// responses; the error return is reserved for transport trouble.
func (c *Conn) Run(query string) ([]*wire.Response, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if err := wire.WriteFrame(c.conn, []byte(query)); err != nil {
		return nil, errors.Wrap(err, "sending query")
	}

	var resps []*wire.Response
	for {
		payload, err := wire.ReadFrame(c.conn, c.timeout)
		if err != nil {
			return resps, errors.Wrap(err, "reading response")
		}

		resp, err := wire.ParseResponse(payload)
		if err != nil {
			return resps, errors.Wrap(err, "parsing response")
		}
		resps = append(resps, resp)

		switch resp.Status {
		case wire.StatusMultiBegin, wire.StatusMultiChunk:
			// more frames follow
		default:
			return resps, nil
		}
	}
}

// Close ends the session, telling the server first so it logs a clean
// disconnect rather than a read error.
func (c *Conn) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	// best effort; the close below is what matters
	wire.WriteFrame(c.conn, []byte(wire.ExitSession))

	return c.conn.Close()
}
