// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package executor implements the Executor.spawn contract required by
// spec.md §5/§6.3: a way for code running on a foreign goroutine (a
// screen shooter completion, a scene damage notification) to post a
// closure back onto the single wayland dispatch context.
package executor

import (
	"sync"

	"github.com/wl-compositor/wlr-screencopy/util/multiplexer"
)

// Executor serialises arbitrary closures onto whichever goroutine calls Run.
// All screencopy protocol state must only be touched from inside a closure
// passed to Spawn (or from Run's own goroutine before Spawn is ever used).
type Executor struct {
	tasks multiplexer.ManyToOne[func()]

	mu     sync.RWMutex
	closed bool
}

// New creates an Executor with the given task queue depth.
func New(queueDepth int) *Executor {
	if queueDepth < 1 {
		queueDepth = 1
	}
	ch := make(chan func(), queueDepth)
	return &Executor{tasks: multiplexer.NewManyToOne(ch)}
}

// Spawn posts fn to be run on the dispatch goroutine. Safe to call from any
// goroutine, including after the Executor has been stopped (in which case fn
// is silently dropped, mirroring the weak-reference-resolves-to-nothing
// discipline the rest of the package follows).
func (e *Executor) Spawn(fn func()) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return
	}
	_ = e.tasks.Send(fn)
}

// Run drains spawned tasks on the calling goroutine until stop is closed.
// This is the single dispatch context referred to throughout the screencopy
// package's documentation.
func (e *Executor) Run(stop <-chan struct{}) {
	for {
		select {
		case fn := <-e.tasks.Channel():
			fn()
		case <-stop:
			return
		}
	}
}

// Stop marks the executor closed; further Spawn calls are no-ops. Does not
// drain or close the underlying channel so a concurrent Run can exit cleanly
// via its own stop channel instead of racing a channel close against Send.
func (e *Executor) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}
