// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

// Package errs defines the sentinel error classes the CLI maps to exit
// codes, independent of which concrete backend or oracle produced them.
package errs

import "errors"

var (
	// ErrConfig marks a configuration validation failure (exit code 2).
	ErrConfig = errors.New("configuration error")

	// ErrBackendRead marks a failure to read the DNS backend (exit code 3).
	ErrBackendRead = errors.New("backend read error")

	// ErrBackendWrite marks a failure to write the DNS backend (exit code 3).
	ErrBackendWrite = errors.New("backend write error")

	// ErrHealthProbe marks a health oracle failure.
	ErrHealthProbe = errors.New("health probe error")

	// ErrLeaseParse marks a malformed lease. Nothing in this module returns
	// it: the decision loop and `show` both treat a malformed TXT record as
	// absent (`show` reports it through ShowResult.Malformed).
	ErrLeaseParse = errors.New("lease parse error")

	// ErrWorkerControl marks a failure to start or stop the local worker.
	ErrWorkerControl = errors.New("worker control error")

	// ErrPrecondition marks an operator command refused because of the
	// lease's current state, e.g. `init` without --force against a lease
	// the peer already holds validly (exit code 4).
	ErrPrecondition = errors.New("precondition error")
)
