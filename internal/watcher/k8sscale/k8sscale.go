// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

// Package k8sscale implements watcher.Controller by scaling a named
// Deployment between 1 and 0 replicas to mirror the worker's desired
// running state.
package k8sscale

import (
	"context"
	"fmt"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// Controller scales a single Deployment.
type Controller struct {
	client     kubernetes.Interface
	namespace  string
	deployment string
}

// New builds a Controller using the in-cluster service account config,
// since the watcher is expected to run as a pod in the cluster it manages.
func New(namespace, deployment string) (*Controller, error) {
	cfg, err := rest.InClusterConfig()
	if err != nil {
		return nil, fmt.Errorf("load in-cluster config: %w", err)
	}
	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("create kubernetes client: %w", err)
	}
	return &Controller{client: clientset, namespace: namespace, deployment: deployment}, nil
}

func (c *Controller) EnsureRunning(ctx context.Context) error {
	return c.setReplicas(ctx, 1)
}

func (c *Controller) EnsureStopped(ctx context.Context, _ time.Duration) error {
	return c.setReplicas(ctx, 0)
}

func (c *Controller) setReplicas(ctx context.Context, replicas int32) error {
	apps := c.client.AppsV1().Deployments(c.namespace)

	current, err := apps.GetScale(ctx, c.deployment, metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("get scale for %s: %w", c.deployment, err)
	}
	if current.Spec.Replicas == replicas {
		return nil
	}

	current.Spec.Replicas = replicas
	if _, err := apps.UpdateScale(ctx, c.deployment, current, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("update scale for %s: %w", c.deployment, err)
	}
	return nil
}
