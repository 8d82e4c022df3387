// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

// Package server accepts provdb client connections and serves the query
// protocol over them. One worker owns each session for its whole life;
// the record store is the only shared mutable state and sits behind a
// single rw-lock.
package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sandia-minimega/provdb/internal/pool"
	"github.com/sandia-minimega/provdb/internal/sandbox"
	"github.com/sandia-minimega/provdb/internal/store"
	"github.com/sandia-minimega/provdb/internal/tariff"
	log "github.com/sandia-minimega/provdb/pkg/minilog"
)

const (
	DefaultChunkThreshold = 60
	DefaultChunkSize      = 50
)

// logRingSize bounds the in-memory log buffer served on the debug
// endpoint.
const logRingSize = 256

type Config struct {
	// Addr is the listen address, e.g. ":12345". Tests use "127.0.0.1:0".
	Addr string

	// PoolSize is the worker count; see pool.New for clamping.
	PoolSize int

	// SessionTimeout bounds each frame read on a session. Zero means
	// no timeout.
	SessionTimeout time.Duration

	// ChunkThreshold is the record-list size at which replies switch to
	// the multi-frame form; ChunkSize is the records per frame.
	ChunkThreshold int
	ChunkSize      int

	// MetricsAddr serves prometheus metrics and the log ring when set.
	MetricsAddr string

	// AcceptRate limits accepted connections per client IP and second
	// when positive; AcceptBurst is the matching burst allowance.
	AcceptRate  float64
	AcceptBurst int
}

type Server struct {
	cfg Config

	db     *store.Database
	tariff *tariff.Table
	files  *sandbox.Resolver

	// rw guards db, including currentFile, across handler and reply
	// serialization so every reply is a consistent snapshot.
	rw sync.RWMutex

	pool    *pool.Pool
	limiter *ipLimiter

	ln        net.Listener
	metricsLn net.Listener

	// conns tracks live session sockets so Stop can unblock their reads.
	conns     map[string]net.Conn
	connsLock sync.Mutex

	// set once by Stop
	stopping uint64

	wg sync.WaitGroup
}

// New wires a server around its collaborators but does not listen yet.
func New(cfg Config, db *store.Database, tab *tariff.Table, files *sandbox.Resolver) *Server {
	if cfg.ChunkThreshold <= 0 {
		cfg.ChunkThreshold = DefaultChunkThreshold
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.SessionTimeout < 0 {
		cfg.SessionTimeout = 0
	}

	return &Server{
		cfg:     cfg,
		db:      db,
		tariff:  tab,
		files:   files,
		pool:    pool.New(cfg.PoolSize),
		limiter: newIPLimiter(cfg.AcceptRate, cfg.AcceptBurst),
		conns:   make(map[string]net.Conn),
	}
}

// Start binds the listen address and begins accepting in a goroutine.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errors.Wrapf(err, "listening on %v", s.cfg.Addr)
	}
	s.ln = ln

	log.Info("listening on %v (%v workers)", ln.Addr(), s.pool.Size())

	if s.cfg.MetricsAddr != "" {
		if err := s.startMetrics(); err != nil {
			ln.Close()
			return err
		}
	}

	s.wg.Add(1)
	go s.serve()

	return nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// MetricsAddr returns the bound metrics address, or "" when metrics are
// disabled.
func (s *Server) MetricsAddr() string {
	if s.metricsLn == nil {
		return ""
	}
	return s.metricsLn.Addr().String()
}

// Stop closes the listener, tears down live sessions, and drains the
// pool. Safe to call more than once; later calls return immediately.
func (s *Server) Stop() {
	if !atomic.CompareAndSwapUint64(&s.stopping, 0, 1) {
		return
	}

	log.Info("stopping")

	s.ln.Close()
	if s.metricsLn != nil {
		s.metricsLn.Close()
		log.DelLogger("server-ring")
	}
	if s.limiter != nil {
		s.limiter.stop()
	}

	// unblock session reads so the workers can drain
	s.connsLock.Lock()
	for _, conn := range s.conns {
		conn.Close()
	}
	s.connsLock.Unlock()

	s.pool.Stop()
	s.wg.Wait()

	log.Info("stopped")
}

func (s *Server) stopped() bool {
	return atomic.LoadUint64(&s.stopping) != 0
}

// serve is the acceptor loop. It exits when the listener is closed.
func (s *Server) serve() {
	defer s.wg.Done()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if s.stopped() || strings.Contains(err.Error(), "use of closed network connection") {
				return
			}
			log.Error("accept: %v", err)
			continue
		}

		remote := conn.RemoteAddr().String()

		if s.limiter != nil && !s.limiter.allow(remote) {
			log.Warn("rejecting %v: accept rate exceeded", remote)
			metricConnsLimited.Inc()
			conn.Close()
			continue
		}

		s.track(remote, conn)

		if !s.pool.Submit(func() { s.session(conn) }) {
			// pool is stopping; we lost the race with Stop
			s.untrack(remote)
			conn.Close()
			return
		}
	}
}

func (s *Server) track(remote string, conn net.Conn) {
	s.connsLock.Lock()
	defer s.connsLock.Unlock()

	s.conns[remote] = conn
}

func (s *Server) untrack(remote string) {
	s.connsLock.Lock()
	defer s.connsLock.Unlock()

	delete(s.conns, remote)
}

// startMetrics serves /metrics and /debug/logs on a side listener.
func (s *Server) startMetrics() error {
	ln, err := net.Listen("tcp", s.cfg.MetricsAddr)
	if err != nil {
		return errors.Wrapf(err, "listening on metrics address %v", s.cfg.MetricsAddr)
	}
	s.metricsLn = ln

	ring := log.NewRing(logRingSize)
	log.AddLogRing("server-ring", ring, log.INFO)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/debug/logs", func(w http.ResponseWriter, r *http.Request) {
		for _, line := range ring.Dump() {
			w.Write([]byte(line))
		}
	})

	log.Info("metrics on %v", ln.Addr())

	go func() {
		if err := http.Serve(ln, mux); err != nil {
			if !strings.Contains(err.Error(), "use of closed network connection") {
				log.Error("metrics server: %v", err)
			}
		}
	}()

	return nil
}
