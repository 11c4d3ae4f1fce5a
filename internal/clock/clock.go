// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

// Package clock provides the time source every poll-decide-act loop reads
// through, so the coordinator's and watcher's decision procedures can be
// exercised against simulated time in tests instead of real sleeps.
package clock

import (
	jujuclock "github.com/juju/clock"
)

// Clock is the time source interface; WallClock is the real-time
// implementation and FakeClock (in this package) drives tests.
type Clock = jujuclock.Clock

// Timer is a cancellable, resettable one-shot alarm.
type Timer = jujuclock.Timer

// WallClock is backed by the operating system clock.
var WallClock Clock = jujuclock.WallClock
