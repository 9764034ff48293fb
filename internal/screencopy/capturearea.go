// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package screencopy

import (
	"github.com/sirupsen/logrus"
	"github.com/wl-compositor/wlr-screencopy/internal/weakref"
)

// CaptureArea accumulates damage for one FrameKey and holds at most one
// pending Frame, enforcing "capture exactly once per damage epoch"
// (spec.md §4.2).
type CaptureArea struct {
	key     FrameKey
	damage  DamageAmount
	pending weakref.Handle[Frame]
}

// newCaptureArea creates an empty CaptureArea for key.
func newCaptureArea(key FrameKey) *CaptureArea {
	return &CaptureArea{key: key}
}

// ApplyDamage folds a scene damage notification into the area and, if that
// leaves it with any accumulated damage, captures the pending frame (if any)
// immediately. A nil damage means "everything changed".
func (a *CaptureArea) ApplyDamage(damage *Rect) {
	if damage == nil || a.damage.IsFull() {
		a.damage = a.damage.MarkFull()
	} else {
		intersection := damage.Intersect(a.key.Region)
		if !intersection.IsZero() {
			a.damage = a.damage.ApplyWithinRegion(intersection)
		}
	}

	if !a.damage.IsNone() {
		a.captureFrame()
	}
}

// AddFrame registers frame as this area's pending capture. Any previously
// pending frame is drained first so at most one frame is ever waiting per
// key (spec.md §4.5 "at most one concurrent capture per key"). If damage has
// already accumulated, the new frame is dispatched immediately too.
func (a *CaptureArea) AddFrame(frame weakref.Handle[Frame]) {
	a.captureFrame()
	a.pending = frame
	if !a.damage.IsNone() {
		a.captureFrame()
	}
}

// captureFrame dispatches the pending frame (if any) against the
// accumulated damage, per the table in spec.md §4.2, and then resets both.
// With no live pending frame only the stale handle is cleared; the damage
// is kept.
func (a *CaptureArea) captureFrame() {
	frame, ok := a.pending.Resolve()
	if !ok {
		// No-op if no pending frame: accumulated damage stays live for
		// whichever frame arrives next, per spec.md §4.2.
		a.pending = weakref.Handle[Frame]{}
		return
	}

	switch {
	case a.damage.IsNone():
		zeroSizeDamage := &Rect{Pos: a.key.Region.Pos}
		frame.capture(zeroSizeDamage)
	case a.damage.IsFull():
		frame.capture(nil)
	default:
		r, _ := a.damage.PartialRect()
		frame.capture(&r)
	}

	a.damage = DamageAmount{}
	a.pending = weakref.Handle[Frame]{}
}

// Close drains any still-pending frame so it is not orphaned, mirroring the
// original's destructor behaviour (spec.md §3 "Lifecycles: CaptureArea").
func (a *CaptureArea) Close() {
	a.captureFrame()
}

func (a *CaptureArea) logFields() logrus.Fields {
	return logrus.Fields{"region": a.key.Region}
}
