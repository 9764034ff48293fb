// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package wlradapter

import (
	"sync"

	"github.com/wl-compositor/wlr-screencopy/internal/screencopy"
)

// SurfaceStack implements screencopy.SurfaceStack as a mutex-guarded
// subscriber map, the shape framebus's bus.go uses for its own
// subscribe/publish pairing. wlroots gives us no per-rectangle scene damage
// callback in the surface the examples expose, so the driver side
// (NotifyGlobalChange, called once per output frame commit from server.go)
// is a conservative global notification: it always yields correct behaviour
// because global damage is a safe, if coarse, superset of any real damage.
type SurfaceStack struct {
	mu      sync.Mutex
	nextID  screencopy.ObserverHandle
	targets map[screencopy.ObserverHandle]screencopy.DamageObserver
}

// NewSurfaceStack returns an empty SurfaceStack.
func NewSurfaceStack() *SurfaceStack {
	return &SurfaceStack{targets: make(map[screencopy.ObserverHandle]screencopy.DamageObserver)}
}

func (s *SurfaceStack) AddObserver(obs screencopy.DamageObserver) screencopy.ObserverHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.targets[s.nextID] = obs
	return s.nextID
}

func (s *SurfaceStack) RemoveObserver(h screencopy.ObserverHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.targets, h)
}

// NotifyGlobalChange fans OnGlobalChange out to every registered observer.
// Call this once per committed output frame.
func (s *SurfaceStack) NotifyGlobalChange() {
	s.mu.Lock()
	obs := make([]screencopy.DamageObserver, 0, len(s.targets))
	for _, o := range s.targets {
		obs = append(obs, o)
	}
	s.mu.Unlock()

	for _, o := range obs {
		if o.OnGlobalChange != nil {
			o.OnGlobalChange()
		}
	}
}

// NotifyDamage fans a specific layer/rect out to every registered observer,
// for drivers precise enough to report one (unused by server.go today, kept
// for an adapter with finer-grained scene damage tracking to grow into).
func (s *SurfaceStack) NotifyDamage(layer int32, rect screencopy.Rect) {
	s.mu.Lock()
	obs := make([]screencopy.DamageObserver, 0, len(s.targets))
	for _, o := range s.targets {
		obs = append(obs, o)
	}
	s.mu.Unlock()

	for _, o := range obs {
		if o.OnDamage != nil {
			o.OnDamage(layer, rect)
		}
	}
}
