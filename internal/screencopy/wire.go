// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package screencopy

import "fmt"

// ShmFormat mirrors the wl_shm pixel format enum far enough to express the
// one check this package makes: that a client's buffer is argb8888.
type ShmFormat uint32

const ShmFormatArgb8888 ShmFormat = 0

// FrameErrorCode is one of the wlr_screencopy_frame_v1 wire error codes.
type FrameErrorCode uint32

const (
	FrameErrorAlreadyUsed FrameErrorCode = iota
	FrameErrorInvalidBuffer
	FrameErrorOutOfMemory
)

func (c FrameErrorCode) String() string {
	switch c {
	case FrameErrorAlreadyUsed:
		return "already_used"
	case FrameErrorInvalidBuffer:
		return "invalid_buffer"
	case FrameErrorOutOfMemory:
		return "out_of_memory"
	default:
		return "unknown"
	}
}

// ProtocolError is raised by a request handler to terminate the resource it
// was called on without sending any further events (spec.md §7).
type ProtocolError struct {
	Code    FrameErrorCode
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// BufferResource is the subset of a client-supplied wl_buffer this package
// needs to validate and capture into. The wire layer (out of scope per
// spec.md §1) is expected to adapt a raw wl_buffer resource to this shape.
type BufferResource interface {
	PixelFormat() ShmFormat
	Width() uint32
	Height() uint32
	Stride() uint32
}

// MappableBuffer is a BufferResource that the screen shooter can write pixels
// into directly. GraphicBufferAllocator.BufferFromShm produces these.
type MappableBuffer interface {
	BufferResource
}

// GraphicBufferAllocator adapts a client SHM buffer to something the screen
// shooter can write into (spec.md §6.3). release is the callback for when the
// compositor is done with the buffer.
type GraphicBufferAllocator interface {
	BufferFromShm(buffer BufferResource, release func()) (MappableBuffer, error)
}

// ShooterResultFunc receives the outcome of a capture: a timestamp on
// success, or nil on failure. It may be invoked on any goroutine.
type ShooterResultFunc func(captured *Timestamp)

// ScreenShooter performs the actual pixel readback (spec.md §6.3). Capture
// must eventually invoke cb exactly once.
type ScreenShooter interface {
	Capture(target MappableBuffer, region Rect, cb ShooterResultFunc)
}

// DamageObserver is the callback pair a SurfaceStack delivers scene changes
// through: OnGlobalChange signals "everything may have changed", OnDamage
// signals a specific layer/rect. Either may be invoked on any goroutine.
type DamageObserver struct {
	OnGlobalChange func()
	OnDamage       func(layer int32, rect Rect)
}

// ObserverHandle identifies a previously registered DamageObserver so it can
// be removed again.
type ObserverHandle uint64

// SurfaceStack is the scene's damage-notification source (spec.md §6.3).
type SurfaceStack interface {
	AddObserver(obs DamageObserver) ObserverHandle
	RemoveObserver(h ObserverHandle)
}

// Spawner is the Executor.spawn contract (spec.md §5/§6.3): post fn to run on
// the single wayland dispatch context.
type Spawner interface {
	Spawn(fn func())
}

// FrameEvents is the typed event-sender surface a wire layer exposes for one
// Frame resource (spec.md §6.1). Methods are called only from the dispatch
// context.
type FrameEvents interface {
	SendBuffer(format ShmFormat, width, height, stride uint32)
	SendBufferDone()
	SendFlags(yInvert bool)
	SendDamage(x, y, w, h uint32)
	SendReady(secHi, secLo, nsec uint32)
	SendFailed()
}

// OutputHandle is an opaque, reference-comparable identity for a
// client-visible output, per spec.md §3.
type OutputHandle interface {
	// Extents returns the output's current extents in global coordinates.
	Extents() Rect
}
