// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package screencopy

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/wl-compositor/wlr-screencopy/internal/weakref"
)

// Frame is the per-request capture state machine described in spec.md §4.1.
// A Frame accepts at most one copy/copy_with_damage request and eventually
// emits exactly one of ready/failed, unless a protocol error terminates it
// first.
type Frame struct {
	id  uuid.UUID
	key FrameKey

	stride uint32

	copyCalled bool
	sendDamage bool
	target     MappableBuffer

	manager weakref.Handle[Manager]
	// self is this Frame's own handle in the owning Manager's frame registry.
	// Destroy invalidates it so async completions and CaptureArea.pending
	// resolve to nothing once the client has released the resource.
	self weakref.Handle[Frame]

	events    FrameEvents
	allocator GraphicBufferAllocator
	shooter   ScreenShooter
	exec      Spawner
}

// newFrame constructs a Frame for key, sends the initial buffer/buffer_done
// events, and returns it. Callers (Manager) are responsible for inserting it
// into their frame registry and assigning the resulting handle to f.self.
func newFrame(
	key FrameKey,
	manager weakref.Handle[Manager],
	events FrameEvents,
	allocator GraphicBufferAllocator,
	shooter ScreenShooter,
	exec Spawner,
	sendBufferDone bool,
) *Frame {
	f := &Frame{
		id:        uuid.New(),
		key:       key,
		stride:    key.Region.Size.W * 4,
		manager:   manager,
		events:    events,
		allocator: allocator,
		shooter:   shooter,
		exec:      exec,
	}
	events.SendBuffer(ShmFormatArgb8888, key.Region.Size.W, key.Region.Size.H, f.stride)
	if sendBufferDone {
		events.SendBufferDone()
	}
	return f
}

func (f *Frame) logFields() logrus.Fields {
	return logrus.Fields{"frame": f.id, "region": f.key.Region}
}

// setSelf records the handle by which other components may weakly reference
// this Frame. Must be called once, right after the Frame is registered.
func (f *Frame) setSelf(h weakref.Handle[Frame]) {
	f.self = h
}

// Destroy releases the frame's wire resource. Any in-flight capture callback
// or pending CaptureArea reference becomes a no-op.
func (f *Frame) Destroy() {
	f.self.Invalidate()
}

// PrepareTarget validates and takes ownership of a client-supplied buffer, per
// the table in spec.md §4.1.
func (f *Frame) PrepareTarget(buffer BufferResource) error {
	if f.copyCalled {
		return &ProtocolError{Code: FrameErrorAlreadyUsed, Message: "frame has already been copied into"}
	}
	if buffer.PixelFormat() != ShmFormatArgb8888 {
		return &ProtocolError{
			Code:    FrameErrorInvalidBuffer,
			Message: "buffer pixel format must be argb8888",
		}
	}
	if buffer.Width() != f.key.Region.Size.W || buffer.Height() != f.key.Region.Size.H {
		return &ProtocolError{
			Code:    FrameErrorInvalidBuffer,
			Message: "buffer dimensions do not match the requested region",
		}
	}
	if buffer.Stride() != f.stride {
		return &ProtocolError{
			Code:    FrameErrorInvalidBuffer,
			Message: "buffer stride does not match 4*width",
		}
	}

	target, err := f.allocator.BufferFromShm(buffer, func() {})
	if err != nil {
		fatalf(f.logFields(), "failed to adapt client buffer to a write-mappable buffer: %v", err)
	}

	f.copyCalled = true
	f.target = target
	return nil
}

// Copy implements the copy request: prepare the target then capture
// unconditionally, ignoring any accumulated damage.
func (f *Frame) Copy(buffer BufferResource) error {
	if err := f.PrepareTarget(buffer); err != nil {
		return err
	}
	f.capture(nil)
	return nil
}

// CopyWithDamage implements the copy_with_damage request: prepare the target,
// then either hand the frame to the manager to wait for fresh damage, or
// (if the manager is already gone) capture immediately.
func (f *Frame) CopyWithDamage(buffer BufferResource) error {
	if err := f.PrepareTarget(buffer); err != nil {
		return err
	}
	f.sendDamage = true

	if mgr, ok := f.manager.Resolve(); ok {
		mgr.maybeWaitForDamage(f.key, f.self)
	} else {
		f.capture(nil)
	}
	return nil
}

// capture submits the frame's target to the screen shooter, which always
// captures the frame's whole region. damage is the area CaptureArea
// determined should be reported to the client; nil reports the whole region
// as damaged (distinct from the zero-size sentinel, which callers pass as a
// non-nil Rect with zero size).
func (f *Frame) capture(damage *Rect) {
	if f.target == nil {
		fatalf(f.logFields(), "capture() called without a target; copyCalled=%v", f.copyCalled)
	}

	target := f.target
	f.target = nil

	self := f.self
	f.shooter.Capture(target, f.key.Region, func(captured *Timestamp) {
		f.exec.Spawn(func() {
			if frame, ok := self.Resolve(); ok {
				frame.reportResult(captured, damage)
			}
		})
	})
}

// reportResult emits the terminal event sequence for a completed (or failed)
// capture, per spec.md §4.1.
func (f *Frame) reportResult(capturedTime *Timestamp, damage *Rect) {
	if capturedTime == nil {
		f.events.SendFailed()
		return
	}

	f.events.SendFlags(true) // y_invert, unconditionally per spec.md §9

	if f.sendDamage {
		damageInArea := f.key.Region
		if damage != nil {
			damageInArea = damage.Intersect(f.key.Region)
		}
		local := damageInArea.Translate(f.key.Region.Pos)
		f.events.SendDamage(uint32(local.Pos.X), uint32(local.Pos.Y), local.Size.W, local.Size.H)
	}

	secHi, secLo, nsec := capturedTime.Split()
	f.events.SendReady(secHi, secLo, nsec)
}
