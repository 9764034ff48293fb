// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package wlradapter

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/swaywm/go-wlroots/wlroots"
	"github.com/wl-compositor/wlr-screencopy/internal/screencopy"
)

// ShmSource is the minimal SHM surface a buffer needs to expose once the
// wire layer has adapted a raw wl_buffer resource for us: a contiguous,
// already-mapped byte slice alongside the geometry screencopy.BufferResource
// already carries.
type ShmSource interface {
	screencopy.BufferResource
	Data() []byte
}

// ScreenShooter implements screencopy.ScreenShooter on top of a wlroots
// renderer: Capture reads the requested region's pixels back from the
// renderer into the target buffer. The scene is stored alongside but is not
// rendered by Capture.
//
// Capture itself runs synchronously on whatever goroutine calls it; callers
// (Frame.capture) are already responsible for re-entering the dispatch
// context before touching any protocol state, per spec.md §6.3.
type ScreenShooter struct {
	renderer wlroots.Renderer
	scene    *wlroots.Scene
}

// NewScreenShooter builds a ScreenShooter bound to the compositor's single
// renderer and scene graph (Server.renderer / Server.scene).
func NewScreenShooter(renderer wlroots.Renderer, scene *wlroots.Scene) *ScreenShooter {
	return &ScreenShooter{renderer: renderer, scene: scene}
}

// Capture reads region's pixels from the renderer into target's backing
// storage, then reports the result.
func (s *ScreenShooter) Capture(target screencopy.MappableBuffer, region screencopy.Rect, cb screencopy.ShooterResultFunc) {
	src, ok := target.(ShmSource)
	if !ok {
		logrus.Errorln("screencopy: capture target does not expose a mapped SHM destination")
		cb(nil)
		return
	}

	ok2 := s.renderer.ReadPixels(
		wlroots.RendererReadPixelsOptions{
			Format: wlroots.ShmFormat(target.PixelFormat()),
			Stride: target.Stride(),
			X:      uint32(region.Pos.X),
			Y:      uint32(region.Pos.Y),
			Width:  region.Size.W,
			Height: region.Size.H,
			Data:   src.Data(),
		},
	)
	if !ok2 {
		cb(nil)
		return
	}

	ts := screencopy.Timestamp(time.Now().UnixNano())
	cb(&ts)
}
