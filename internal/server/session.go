// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package server

import (
	"net"
	"time"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/sandia-minimega/provdb/internal/query"
	log "github.com/sandia-minimega/provdb/pkg/minilog"
	"github.com/sandia-minimega/provdb/pkg/wire"
)

// session serves one client connection until it disconnects, asks to
// leave, or the server shuts down. It runs on a pool worker and owns the
// socket. Transport failures end the session without notifying the peer.
func (s *Server) session(conn net.Conn) {
	remote := conn.RemoteAddr().String()
	sid := "session " + uuid.Must(uuid.NewV4()).String()[:8]
	start := time.Now()

	metricConnsTotal.Inc()
	metricConnsActive.Inc()

	defer func() {
		conn.Close()
		s.untrack(remote)
		metricConnsActive.Dec()
		metricSessionSeconds.Observe(time.Since(start).Seconds())
	}()

	log.Info("client connected: %v (%v)", remote, sid)

	for !s.stopped() {
		payload, err := wire.ReadFrame(conn, s.cfg.SessionTimeout)
		if err != nil {
			var nerr net.Error

			switch {
			case errors.Is(err, wire.ErrClosed):
				log.Info("%v: client disconnected", sid)
			case errors.Is(err, wire.ErrTooLarge):
				log.Warn("%v: oversize frame, closing", sid)
			case errors.As(err, &nerr) && nerr.Timeout():
				log.Warn("%v: receive timeout, closing", sid)
			case s.stopped():
				log.Info("%v: ended by shutdown", sid)
			default:
				log.Error("%v: read: %v", sid, err)
			}

			return
		}

		metricBytesIn.Add(float64(len(payload)))

		line := string(payload)
		if line == wire.ExitSession {
			log.Info("%v: client ended session", sid)
			return
		}

		log.Debug("%v: query: %v", sid, line)

		cmd, err := query.Parse(line)
		if err != nil {
			metricParseErrors.Inc()
			log.Debug("%v: parse error: %v", sid, err)

			if werr := s.send(conn, errorResponse(line, wire.StatusBadRequest, err)); werr != nil {
				log.Warn("%v: write: %v", sid, werr)
				return
			}
			continue
		}

		metricRequests.WithLabelValues(cmd.Kind.String()).Inc()

		// the lock spans handling and reply serialization so the peer
		// sees a consistent snapshot
		var werr error
		if cmd.Kind.Writes() {
			s.rw.Lock()
			werr = s.dispatch(conn, cmd)
			metricRecords.Set(float64(s.db.Len()))
			s.rw.Unlock()
		} else {
			s.rw.RLock()
			werr = s.dispatch(conn, cmd)
			s.rw.RUnlock()
		}

		if werr != nil {
			log.Warn("%v: write: %v", sid, werr)
			return
		}

		if cmd.Kind == query.Exit {
			log.Info("%v: client exited", sid)
			return
		}
	}
}

// dispatch runs the handler for one command and sends its reply, single
// or chunked. The returned error is always a transport failure.
func (s *Server) dispatch(conn net.Conn, cmd *query.Command) error {
	r := s.safeHandle(cmd)
	if r.resp != nil {
		return s.send(conn, r.resp)
	}
	return s.sendRecords(conn, r.records)
}
