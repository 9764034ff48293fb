// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package wlradapter implements the screencopy package's external
// collaborator contracts (spec.md §6.3) on top of github.com/swaywm/go-wlroots,
// the way server.go drives the rest of the compositor. These are thin
// wrappers: the scene graph, the renderer and the SHM allocator itself
// remain wlroots's responsibility, per spec.md §1's scope statement.
package wlradapter

import (
	"github.com/swaywm/go-wlroots/wlroots"
	"github.com/wl-compositor/wlr-screencopy/internal/screencopy"
)

// Output adapts a *wlroots.Output to screencopy.OutputHandle. Two Outputs
// compare equal iff they wrap the same *wlroots.Output pointer, matching the
// reference-equality semantics FrameKey needs (spec.md §3) — and matching how
// server.go itself tracks outputs, by pointer, in Server.outputs.
type Output struct {
	layout *wlroots.OutputLayout
	wlr    *wlroots.Output
}

// NewOutput wraps wlr within layout's coordinate space.
func NewOutput(layout *wlroots.OutputLayout, wlr *wlroots.Output) *Output {
	return &Output{layout: layout, wlr: wlr}
}

// Extents implements screencopy.OutputHandle: the output's current box in
// the shared output layout's global coordinate space, matching
// OutputGlobal::from_or_throw(output).current_config().extents() from
// spec.md §6.3.
func (o *Output) Extents() screencopy.Rect {
	box := o.layout.GetBox(*o.wlr)
	return screencopy.Rect{
		Pos:  screencopy.Point{X: int32(box.X), Y: int32(box.Y)},
		Size: screencopy.Size{W: uint32(box.Width), H: uint32(box.Height)},
	}
}

// WlrOutput returns the wrapped wlroots output, for callers (the frame
// resource binding layer) that need it to look the Output back up when a
// client names it in a capture_output request.
func (o *Output) WlrOutput() *wlroots.Output {
	return o.wlr
}
