// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"time"

	"github.com/mikempw/failover/internal/backend"
	"github.com/mikempw/failover/internal/config"
	"github.com/mikempw/failover/internal/errs"
	"github.com/mikempw/failover/internal/health"
	"github.com/mikempw/failover/internal/lease"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrConfig, err)
	}
	return cfg, nil
}

func buildBackend(cfg *config.Config) (backend.Backend, error) {
	b, err := backend.New(cfg.DNSProvider, backend.Config{
		Zone:               cfg.DNSZone,
		Record:             cfg.DNSRecord,
		TTL:                cfg.DNSTTL,
		Timeout:            10 * time.Second,
		AWSRegion:          cfg.AWSRegion,
		AWSAccessKeyID:     cfg.AWSAccessKeyID,
		AWSSecretAccessKey: cfg.AWSSecretAccessKey,
		DNSAPIToken:        cfg.DNSAPIToken,
		DNSServer:          cfg.DNSServer,
		TSIGKeyName:        cfg.TSIGKeyName,
		TSIGSecret:         cfg.TSIGSecret,
		ScriptWritePath:    cfg.ScriptWritePath,
		ScriptReadPath:     cfg.ScriptReadPath,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: build dns backend: %v", errs.ErrConfig, err)
	}
	return b, nil
}

func buildOracle(cfg *config.Config) health.Oracle {
	switch cfg.HealthMode {
	case config.HealthModeMetrics:
		return &health.MetricOracle{
			URL:        cfg.HealthURL,
			MetricName: cfg.HealthMetric,
			StaleLimit: cfg.HealthStaleCount,
			Timeout:    cfg.HealthTimeout,
		}
	default:
		return &health.TCPOracle{
			Host:    cfg.HealthHost,
			Port:    cfg.HealthPort,
			Timeout: cfg.HealthTimeout,
		}
	}
}

func selfOwner(cfg *config.Config) lease.Owner {
	if cfg.Role == config.RoleDR {
		return lease.OwnerDR
	}
	return lease.OwnerPrimary
}
