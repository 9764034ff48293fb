// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package weakref implements the handle-to-slot pattern the screencopy
// engine needs to hold non-owning references across the two async
// boundaries described by the compositor protocol: a screen shooter
// completion callback and a scene damage notification, both of which
// may outlive the Frame or Manager they refer to.
//
// A Handle is cheap to copy and safe to resolve after its target has
// been destroyed: Resolve returns ok=false instead of a stale pointer.
package weakref

import "sync"

// Registry owns a set of live values of type T and hands out Handles that can
// be resolved back to a *T as long as the value hasn't been removed.
type Registry[T any] struct {
	mu    sync.Mutex
	slots map[uint64]*T
	next  uint64
}

// NewRegistry creates an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{slots: make(map[uint64]*T)}
}

// Handle is a non-owning, copyable reference into a Registry. The zero value
// is a valid "null" handle that always resolves to (nil, false).
type Handle[T any] struct {
	id  uint64
	reg *Registry[T]
}

// Insert registers v and returns a Handle that resolves to it until Invalidate
// is called on that handle (or on an equal one returned from the same Insert).
func (r *Registry[T]) Insert(v *T) Handle[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	id := r.next
	r.slots[id] = v
	return Handle[T]{id: id, reg: r}
}

// Resolve returns the live value behind h, or ok=false if h is the zero handle
// or its target has already been invalidated.
func (h Handle[T]) Resolve() (v *T, ok bool) {
	if h.reg == nil {
		return nil, false
	}
	h.reg.mu.Lock()
	defer h.reg.mu.Unlock()
	v, ok = h.reg.slots[h.id]
	return v, ok
}

// Valid reports whether h currently resolves to a live value.
func (h Handle[T]) Valid() bool {
	_, ok := h.Resolve()
	return ok
}

// Invalidate removes h's target from the registry. Safe to call on a zero
// handle or a handle that was already invalidated.
func (h Handle[T]) Invalidate() {
	if h.reg == nil {
		return
	}
	h.reg.mu.Lock()
	defer h.reg.mu.Unlock()
	delete(h.reg.slots, h.id)
}

// Live returns a snapshot slice of every value currently registered, for
// callers that need to report on or iterate all live handles (tool-mode
// stats, REPL inspection) rather than resolve one in particular.
func (r *Registry[T]) Live() []*T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*T, 0, len(r.slots))
	for _, v := range r.slots {
		out = append(out, v)
	}
	return out
}
