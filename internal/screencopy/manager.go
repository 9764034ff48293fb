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

// Manager is the per-client wlr_screencopy_manager_v1 object: it owns the
// client's CaptureAreas, lazily subscribes to scene damage, and creates
// Frames on request (spec.md §4.3).
type Manager struct {
	id uuid.UUID

	version  uint32
	maxAreas int

	areas []*CaptureArea

	changeSub   ObserverHandle
	subscribed  bool
	frames      *weakref.Registry[Frame]
	self        weakref.Handle[Manager]

	surfaceStack SurfaceStack
	allocator    GraphicBufferAllocator
	shooter      ScreenShooter
	exec         Spawner
}

// newManager constructs a Manager. Callers (ManagerGlobal) must insert it
// into a Registry[Manager] and call setSelf with the resulting handle before
// the Manager creates any Frame.
func newManager(
	version uint32,
	maxAreas int,
	surfaceStack SurfaceStack,
	allocator GraphicBufferAllocator,
	shooter ScreenShooter,
	exec Spawner,
) *Manager {
	if maxAreas <= 0 {
		maxAreas = 100
	}
	return &Manager{
		id:           uuid.New(),
		version:      version,
		maxAreas:     maxAreas,
		frames:       weakref.NewRegistry[Frame](),
		surfaceStack: surfaceStack,
		allocator:    allocator,
		shooter:      shooter,
		exec:         exec,
	}
}

func (m *Manager) setSelf(h weakref.Handle[Manager]) {
	m.self = h
}

func (m *Manager) logFields() logrus.Fields {
	return logrus.Fields{"manager": m.id, "areas": len(m.areas)}
}

// CaptureOutput implements the capture_output request. The request's
// overlay_cursor argument has no parameter here: it has no effect on the
// capture.
func (m *Manager) CaptureOutput(output OutputHandle, events FrameEvents) *Frame {
	key := FrameKey{Region: output.Extents(), Output: output}
	return m.newFrameForKey(key, events)
}

// CaptureOutputRegion implements the capture_output_region request: the
// requested rect is clipped to the output's extents before constructing the
// Frame, which may leave a zero-sized region (spec.md §4.3, deferred to
// buffer validation per the SPEC_FULL.md §D open-question decision).
func (m *Manager) CaptureOutputRegion(output OutputHandle, events FrameEvents, requested Rect) *Frame {
	intersection := requested.Intersect(output.Extents())
	key := FrameKey{Region: intersection, Output: output}
	return m.newFrameForKey(key, events)
}

func (m *Manager) newFrameForKey(key FrameKey, events FrameEvents) *Frame {
	sendBufferDone := m.version >= 2
	frame := newFrame(key, m.self, events, m.allocator, m.shooter, m.exec, sendBufferDone)
	handle := m.frames.Insert(frame)
	frame.setSelf(handle)
	logrus.WithFields(m.logFields()).WithField("frame", frame.id).Debugln("created screencopy frame")
	return frame
}

// maybeWaitForDamage implements spec.md §4.3's core coalescing decision: a
// frame either joins the CaptureArea for its key (waiting for damage) or, if
// no such area exists yet, is captured immediately and a fresh empty area is
// recorded so that the *next* frame with this key does wait.
func (m *Manager) maybeWaitForDamage(key FrameKey, frame weakref.Handle[Frame]) {
	if !m.subscribed {
		m.subscribe()
	}

	for _, area := range m.areas {
		if area.key == key {
			area.AddFrame(frame)
			return
		}
	}

	if f, ok := frame.Resolve(); ok {
		f.capture(nil)
	}
	m.areas = append(m.areas, newCaptureArea(key))

	if len(m.areas) > m.maxAreas {
		logrus.WithFields(m.logFields()).Warnln("capture area count exceeded limit, wiping area list")
		for _, area := range m.areas {
			area.Close()
		}
		m.areas = nil
	}
}

// subscribe lazily installs the scene damage observer the first time a
// client asks for copy_with_damage, per spec.md §4.5/§9.
func (m *Manager) subscribe() {
	self := m.self
	m.changeSub = m.surfaceStack.AddObserver(DamageObserver{
		OnGlobalChange: func() {
			m.exec.Spawn(func() {
				if mgr, ok := self.Resolve(); ok {
					mgr.dispatchDamage(nil)
				}
			})
		},
		OnDamage: func(_ int32, rect Rect) {
			m.exec.Spawn(func() {
				if mgr, ok := self.Resolve(); ok {
					mgr.dispatchDamage(&rect)
				}
			})
		},
	})
	m.subscribed = true
}

// dispatchDamage applies a scene damage notification to every area. Runs on
// the dispatch context, after the re-entry described in spec.md §5.
func (m *Manager) dispatchDamage(damage *Rect) {
	for _, area := range m.areas {
		area.ApplyDamage(damage)
	}
}

// Destroy tears the manager down: unsubscribe from the scene, then close
// every CaptureArea in order so any still-pending frame is captured rather
// than orphaned (spec.md §4.3 "Teardown").
func (m *Manager) Destroy() {
	if m.subscribed {
		m.surfaceStack.RemoveObserver(m.changeSub)
		m.subscribed = false
	}
	m.self.Invalidate()
	for _, area := range m.areas {
		area.Close()
	}
	m.areas = nil
}

// AreaSnapshot is a point-in-time view of one CaptureArea, used by the
// tool-mode and REPL introspection surfaces (SPEC_FULL.md §C.2/§C.3).
type AreaSnapshot struct {
	Region       Rect
	HasPending   bool
	DamageIsFull bool
	DamageRect   *Rect
}

// Snapshot returns the current state of every CaptureArea. Must be invoked
// from the dispatch context (callers typically route the request through
// Spawner.Spawn and a result channel, per SPEC_FULL.md §C.2).
func (m *Manager) Snapshot() []AreaSnapshot {
	out := make([]AreaSnapshot, 0, len(m.areas))
	for _, area := range m.areas {
		snap := AreaSnapshot{
			Region:       area.key.Region,
			HasPending:   area.pending.Valid(),
			DamageIsFull: area.damage.IsFull(),
		}
		if r, ok := area.damage.PartialRect(); ok {
			snap.DamageRect = &r
		}
		out = append(out, snap)
	}
	return out
}
