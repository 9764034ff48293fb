// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package screencopy

// FrameKey groups Frames that target the same output region. Two keys are
// equal iff both Region and Output are equal; Output equality is reference
// equality on whatever concrete, comparable OutputHandle the caller used
// (spec.md §3).
type FrameKey struct {
	Region Rect
	Output OutputHandle
}
