// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingLoop struct{}

func (blockingLoop) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

type failingLoop struct{ err error }

func (l failingLoop) Run(context.Context) error { return l.err }

func TestNew_RequiresLoop(t *testing.T) {
	_, err := New(zerolog.Nop(), nil, time.Second)
	require.ErrorIs(t, err, ErrNoLoop)
}

func TestNew_SkipsEndpointsWithoutAddr(t *testing.T) {
	app, err := New(zerolog.Nop(), blockingLoop{}, time.Second,
		Endpoint{Name: "metrics", Addr: ""},
	)
	require.NoError(t, err)
	assert.Empty(t, app.endpoints)
}

func TestRun_CleanCancellationRunsHooksInReverseOrder(t *testing.T) {
	app, err := New(zerolog.Nop(), blockingLoop{}, time.Second)
	require.NoError(t, err)

	var order []string
	app.OnShutdown("first", func(context.Context) error {
		order = append(order, "first")
		return nil
	})
	app.OnShutdown("second", func(context.Context) error {
		order = append(order, "second")
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestRun_LoopFailureSurfacesAndStillRunsHooks(t *testing.T) {
	loopErr := errors.New("loop blew up")
	app, err := New(zerolog.Nop(), failingLoop{err: loopErr}, time.Second)
	require.NoError(t, err)

	var ran atomic.Bool
	app.OnShutdown("cleanup", func(context.Context) error {
		ran.Store(true)
		return nil
	})

	err = app.Run(context.Background())
	require.ErrorIs(t, err, loopErr)
	assert.True(t, ran.Load())
}
