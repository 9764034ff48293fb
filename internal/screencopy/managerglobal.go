// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package screencopy

import "github.com/wl-compositor/wlr-screencopy/internal/weakref"

// ProtocolVersion is the wlr_screencopy_manager_v1 version this service
// advertises, per spec.md §4.4/§6.1.
const ProtocolVersion = 3

// ManagerGlobal advertises wlr_screencopy_manager_v1 to clients and builds a
// Manager for each bind (spec.md §4.4).
type ManagerGlobal struct {
	maxAreas     int
	surfaceStack SurfaceStack
	allocator    GraphicBufferAllocator
	shooter      ScreenShooter
	exec         Spawner

	managers *weakref.Registry[Manager]
}

// NewManagerGlobal builds the shared context every bound Manager will use.
// maxAreas <= 0 falls back to the documented default of 100
// (SPEC_FULL.md §C.1).
func NewManagerGlobal(
	maxAreas int,
	surfaceStack SurfaceStack,
	allocator GraphicBufferAllocator,
	shooter ScreenShooter,
	exec Spawner,
) *ManagerGlobal {
	return &ManagerGlobal{
		maxAreas:     maxAreas,
		surfaceStack: surfaceStack,
		allocator:    allocator,
		shooter:      shooter,
		exec:         exec,
		managers:     weakref.NewRegistry[Manager](),
	}
}

// Bind constructs a new Manager for a client connecting to the global.
func (g *ManagerGlobal) Bind() *Manager {
	mgr := newManager(ProtocolVersion, g.maxAreas, g.surfaceStack, g.allocator, g.shooter, g.exec)
	handle := g.managers.Insert(mgr)
	mgr.setSelf(handle)
	return mgr
}

// Snapshot reports every live bound Manager's current areas, for tool-mode
// and REPL introspection (SPEC_FULL.md §C.2/§C.3). Must be invoked from the
// dispatch context, same as Manager.Snapshot.
func (g *ManagerGlobal) Snapshot() []AreaSnapshot {
	var out []AreaSnapshot
	for _, mgr := range g.managers.Live() {
		out = append(out, mgr.Snapshot()...)
	}
	return out
}
