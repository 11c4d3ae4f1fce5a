// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAuth     = errors.New("dns backend: authentication or authorization failure")
	ErrNetwork  = errors.New("dns backend: transient network or server failure")
	ErrNotFound = errors.New("dns backend: record not found")
	ErrConflict = errors.New("dns backend: conflicting concurrent change")

	ErrUnknownProvider = errors.New("dns backend: unknown provider")
)

// ClassifyError maps a provider SDK error to the backend error taxonomy so
// the coordinator and CLI can treat failures uniformly across providers.
// Providers that return typed errors should prefer matching those directly
// before falling back to this string-based classification.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	switch {
	case containsAny(msg, "AccessDenied", "Unauthorized", "InvalidClientTokenId", "invalid credentials", "403", "401"):
		return fmt.Errorf("%w: %v", ErrAuth, err)
	case containsAny(msg, "NoSuchHostedZone", "NoSuchZone", "not found", "404"):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case containsAny(msg, "conflict", "409", "PriorRequestNotComplete"):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
