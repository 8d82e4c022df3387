// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package server

import (
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"

	log "github.com/sandia-minimega/provdb/pkg/minilog"
)

// how long an idle client IP keeps its token bucket
const limiterTTL = 5 * time.Minute

// ipLimiter rate-limits accepted connections per client IP with token
// buckets. Buckets idle past limiterTTL are dropped so the map cannot
// grow without bound.
type ipLimiter struct {
	rate  rate.Limit
	burst int

	mu      sync.Mutex
	entries map[string]*limiterEntry

	done chan struct{}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newIPLimiter returns nil when r is zero or negative, which disables
// limiting altogether.
func newIPLimiter(r float64, burst int) *ipLimiter {
	if r <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}

	l := &ipLimiter{
		rate:    rate.Limit(r),
		burst:   burst,
		entries: make(map[string]*limiterEntry),
		done:    make(chan struct{}),
	}

	go l.reap()

	return l
}

// allow reports whether a connection from remote (a host:port address)
// may proceed.
func (l *ipLimiter) allow(remote string) bool {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		host = remote
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[host]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.entries[host] = e
	}
	e.lastSeen = time.Now()

	return e.limiter.Allow()
}

func (l *ipLimiter) stop() {
	close(l.done)
}

// reap drops buckets for IPs that have not connected lately.
func (l *ipLimiter) reap() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			now := time.Now()
			removed := 0
			for host, e := range l.entries {
				if now.Sub(e.lastSeen) > limiterTTL {
					delete(l.entries, host)
					removed++
				}
			}
			l.mu.Unlock()

			if removed > 0 {
				log.Debug("dropped %v idle accept limiters", removed)
			}
		case <-l.done:
			return
		}
	}
}
