// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
)

// Verdict is the three-valued health outcome the coordinator's decision
// procedure consumes.
type Verdict string

const (
	VerdictHealthy   Verdict = "HEALTHY"
	VerdictUnhealthy Verdict = "UNHEALTHY"
	VerdictUnknown   Verdict = "UNKNOWN"
)

// Oracle evaluates whether the currently active site is alive. The
// coordinator calls Check at most once per loop iteration.
type Oracle interface {
	Check(ctx context.Context) Verdict
}

// TCPOracle reports HEALTHY if it can open a TCP connection to Host:Port
// within Timeout; refused or timed-out connections are UNHEALTHY, and any
// other dial failure (e.g. DNS resolution error) is UNKNOWN so a single
// unrelated hiccup doesn't start the failure streak.
type TCPOracle struct {
	Host    string
	Port    int
	Timeout time.Duration
}

func (o *TCPOracle) Check(ctx context.Context) Verdict {
	dialer := net.Dialer{Timeout: o.Timeout}
	addr := net.JoinHostPort(o.Host, strconv.Itoa(o.Port))

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err == nil {
		_ = conn.Close()
		return VerdictHealthy
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return VerdictUnhealthy
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return VerdictUnhealthy
	}
	return VerdictUnknown
}

// MetricOracle fetches a Prometheus text-exposition document over HTTP and
// tracks a single named counter across calls: the active site is
// considered alive as long as that counter keeps advancing. A value that
// fails to advance for StaleLimit consecutive checks is UNHEALTHY; a fetch
// or parse failure is UNKNOWN.
type MetricOracle struct {
	URL        string
	MetricName string
	StaleLimit int
	Timeout    time.Duration
	Client     *http.Client

	mu         sync.Mutex
	lastValue  float64
	haveValue  bool
	staleCount int
}

func (o *MetricOracle) Check(ctx context.Context) Verdict {
	value, ok := o.fetch(ctx)
	if !ok {
		return VerdictUnknown
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.haveValue {
		o.lastValue = value
		o.haveValue = true
		return VerdictHealthy
	}

	if value > o.lastValue {
		o.lastValue = value
		o.staleCount = 0
		return VerdictHealthy
	}

	o.staleCount++
	if o.staleCount < o.StaleLimit {
		return VerdictHealthy
	}
	return VerdictUnhealthy
}

func (o *MetricOracle) fetch(ctx context.Context) (float64, bool) {
	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}

	reqCtx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, o.URL, nil)
	if err != nil {
		return 0, false
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, false
	}

	parser := expfmt.NewTextParser(model.LegacyValidation)
	families, err := parser.TextToMetricFamilies(resp.Body)
	if err != nil {
		return 0, false
	}

	family, ok := families[o.MetricName]
	if !ok || len(family.Metric) == 0 {
		return 0, false
	}

	m := family.Metric[0]
	switch {
	case m.Counter != nil:
		return m.Counter.GetValue(), true
	case m.Gauge != nil:
		return m.Gauge.GetValue(), true
	case m.Untyped != nil:
		return m.Untyped.GetValue(), true
	default:
		return 0, false
	}
}
