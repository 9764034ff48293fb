// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package screencopy

// Timestamp is nanoseconds since the Unix epoch, as returned by the screen
// shooter for a completed capture.
type Timestamp int64

// Split breaks t into the (sec_hi, sec_lo, nsec) triple the ready event wants,
// per spec.md §6.2.
func (t Timestamp) Split() (secHi, secLo, nsec uint32) {
	const nsPerSec = 1_000_000_000
	secs := int64(t) / nsPerSec
	nsec = uint32(int64(t) % nsPerSec)
	secHi = uint32(uint64(secs) >> 32)
	secLo = uint32(uint64(secs) & 0xFFFFFFFF)
	return secHi, secLo, nsec
}
