// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

// Package container implements watcher.Controller against the Docker
// Engine API, starting and stopping a single named container.
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

// Controller manages a single named container's lifecycle as the worker
// process mirror target.
type Controller struct {
	docker        *client.Client
	containerName string
}

// New builds a Controller using the Docker client's standard
// environment-based configuration (DOCKER_HOST and friends).
func New(containerName string) (*Controller, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &Controller{docker: cli, containerName: containerName}, nil
}

func (c *Controller) EnsureRunning(ctx context.Context) error {
	info, err := c.docker.ContainerInspect(ctx, c.containerName)
	if err != nil {
		return fmt.Errorf("inspect container %s: %w", c.containerName, err)
	}
	if info.State != nil && info.State.Running {
		return nil
	}
	return c.docker.ContainerStart(ctx, c.containerName, container.StartOptions{})
}

func (c *Controller) EnsureStopped(ctx context.Context, grace time.Duration) error {
	info, err := c.docker.ContainerInspect(ctx, c.containerName)
	if err != nil {
		return fmt.Errorf("inspect container %s: %w", c.containerName, err)
	}
	if info.State == nil || !info.State.Running {
		return nil
	}
	timeoutSecs := int(grace.Seconds())
	return c.docker.ContainerStop(ctx, c.containerName, container.StopOptions{Timeout: &timeoutSecs})
}
