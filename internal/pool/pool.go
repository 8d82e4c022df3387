// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

// Package pool runs session tasks on a fixed set of workers. Sessions are
// long-lived, so the queue only ever holds connections waiting for a free
// worker.
package pool

import (
	"runtime/debug"
	"sync"

	log "github.com/sandia-minimega/provdb/pkg/minilog"
)

// MaxWorkers caps the configured pool size.
const MaxWorkers = 256

type Task func()

type Pool struct {
	size  int
	tasks chan Task
	wg    sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// New starts size workers. Sizes outside [1, MaxWorkers] are clamped, a
// configured zero runs a single worker.
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	if size > MaxWorkers {
		size = MaxWorkers
	}

	p := &Pool{
		size: size,
		// room for a short accept burst; beyond this Submit blocks
		tasks: make(chan Task, size*4),
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

func (p *Pool) Size() int {
	return p.size
}

// Submit queues a task, blocking while the queue is full. It returns
// false once Stop has been called; the task is not queued.
func (p *Pool) Submit(t Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return false
	}

	p.tasks <- t
	return true
}

// Stop refuses further tasks, lets the workers drain what is already
// queued, and blocks until they have all exited. Safe to call more than
// once.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.tasks)
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for t := range p.tasks {
		p.run(t)
	}
}

// run executes one task, keeping the worker alive if the task panics.
func (p *Pool) run(t Task) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("recovered from task panic: %v\n%v", r, string(debug.Stack()))
		}
	}()

	t()
}
