// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package screencopy

// Point is a position in global compositor coordinates.
type Point struct {
	X, Y int32
}

// Size is a width/height pair. Zero width or height means empty.
type Size struct {
	W, H uint32
}

// Rect is the {origin, size} pair used throughout the protocol to describe
// output extents, requested regions and damage. A zero-sized Rect is a
// legal value: CaptureArea passes one as the "no damage seen" sentinel when
// it drains a pending frame with no accumulated damage. A whole-region
// capture is expressed with a nil *Rect, not a zero-sized one.
type Rect struct {
	Pos  Point
	Size Size
}

// IsZero reports whether r has no area.
func (r Rect) IsZero() bool {
	return r.Size.W == 0 || r.Size.H == 0
}

// Intersect returns the overlap of r and other. The result IsZero if they do
// not overlap.
func (r Rect) Intersect(other Rect) Rect {
	x1 := max32(r.Pos.X, other.Pos.X)
	y1 := max32(r.Pos.Y, other.Pos.Y)
	x2 := min32(r.Pos.X+int32(r.Size.W), other.Pos.X+int32(other.Size.W))
	y2 := min32(r.Pos.Y+int32(r.Size.H), other.Pos.Y+int32(other.Size.H))

	if x2 <= x1 || y2 <= y1 {
		return Rect{Pos: Point{X: x1, Y: y1}, Size: Size{}}
	}
	return Rect{
		Pos:  Point{X: x1, Y: y1},
		Size: Size{W: uint32(x2 - x1), H: uint32(y2 - y1)},
	}
}

// BoundingRect returns the smallest Rect containing both r and other.
func (r Rect) BoundingRect(other Rect) Rect {
	x1 := min32(r.Pos.X, other.Pos.X)
	y1 := min32(r.Pos.Y, other.Pos.Y)
	x2 := max32(r.Pos.X+int32(r.Size.W), other.Pos.X+int32(other.Size.W))
	y2 := max32(r.Pos.Y+int32(r.Size.H), other.Pos.Y+int32(other.Size.H))
	return Rect{
		Pos:  Point{X: x1, Y: y1},
		Size: Size{W: uint32(x2 - x1), H: uint32(y2 - y1)},
	}
}

// Translate returns r shifted by (-origin.X, -origin.Y), i.e. r expressed in
// coordinates local to origin. Used to turn global damage into the
// region-local coordinates the damage event wants (spec.md §4.1).
func (r Rect) Translate(origin Point) Rect {
	return Rect{
		Pos:  Point{X: r.Pos.X - origin.X, Y: r.Pos.Y - origin.Y},
		Size: r.Size,
	}
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
