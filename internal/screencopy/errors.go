// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package screencopy

import "github.com/sirupsen/logrus"

// fatalf reports an internal logic violation that spec.md §7 says must abort
// the process rather than recover locally: calling capture without a
// prepared target, or a buffer-adaptation failure the allocator contract
// promised could not happen.
func fatalf(fields logrus.Fields, format string, args ...any) {
	logrus.WithFields(fields).Panicf(format, args...)
}
