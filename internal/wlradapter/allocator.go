// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package wlradapter

import (
	"fmt"

	"github.com/wl-compositor/wlr-screencopy/internal/screencopy"
)

// Allocator implements screencopy.GraphicBufferAllocator. It does no
// allocation of its own: the wire layer is expected to hand it a buffer that
// already satisfies ShmSource (typically a thin wrapper around a
// wl_shm_buffer the client created), and Allocator just narrows it to the
// shape the shooter needs, keeping release for mappedBuffer.Release.
type Allocator struct{}

// NewAllocator returns an Allocator. It carries no state of its own; wlroots
// owns the actual SHM pool lifetime.
func NewAllocator() *Allocator {
	return &Allocator{}
}

func (a *Allocator) BufferFromShm(buffer screencopy.BufferResource, release func()) (screencopy.MappableBuffer, error) {
	src, ok := buffer.(ShmSource)
	if !ok {
		return nil, fmt.Errorf("buffer %T does not expose a write-mappable SHM source", buffer)
	}
	return &mappedBuffer{ShmSource: src, release: release}, nil
}

// mappedBuffer pairs a ShmSource with the release callback the allocator's
// caller must run once it stops needing the mapping.
type mappedBuffer struct {
	ShmSource
	release func()
}

// Release runs the allocator's release callback. Safe to call at most once;
// wlroots' underlying wl_shm_buffer handles the actual unmap.
func (b *mappedBuffer) Release() {
	if b.release != nil {
		b.release()
	}
}
