// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"strings"
	"time"
)

// Role identifies which half of the active/passive pair this process is.
type Role string

const (
	RolePrimary Role = "primary"
	RoleDR      Role = "dr"
)

// HealthMode selects which health.Oracle implementation the DR role uses.
type HealthMode string

const (
	HealthModeTCP     HealthMode = "tcp"
	HealthModeMetrics HealthMode = "metrics"
)

// Config is the fully parsed, validated runtime configuration.
type Config struct {
	Role Role

	// PrimaryIP and DRIP are the two sites' known addresses, read
	// verbatim from PRIMARY_IP/DR_IP regardless of this process's own
	// Role — Promote and Failback always target one of these two fixed
	// identities, not "whichever site happens to be running them".
	PrimaryIP string
	DRIP      string

	// SelfIP and PeerIP are derived from Role: the address this process
	// writes into the A record when it is (or becomes) active, and the
	// other site's address, respectively.
	SelfIP string
	PeerIP string

	DNSProvider string
	DNSZone     string
	DNSRecord   string
	DNSTTL      time.Duration

	LeaseTTL       time.Duration
	UpdateInterval time.Duration
	FailThreshold  int

	HealthMode       HealthMode
	HealthHost       string
	HealthPort       int
	HealthTimeout    time.Duration
	HealthURL        string
	HealthMetric     string
	HealthStaleCount int

	DNSServer            string
	MyIP                 string
	WatcherInterval      time.Duration
	WatcherGraceSeconds  int
	WorkerControllerKind string
	ContainerName        string
	K8sNamespace         string
	K8sDeployment        string

	ListenAddr  string
	MetricsAddr string

	OTelEnabled        bool
	OTelServiceVersion string
	OTelEnvironment    string
	OTelExporterType   string
	OTelEndpoint       string
	OTelSamplingRate   float64

	RateLimitRequests int
	RateLimitWindow   time.Duration

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	DNSAPIToken        string
	TSIGKeyName        string
	TSIGSecret         string
	ScriptWritePath    string
	ScriptReadPath     string
}

// ValidationError aggregates every configuration violation Load finds,
// rather than failing on the first one encountered.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", strings.Join(e.Fields, "; "))
}

// Load reads every recognized environment variable, applies defaults, and
// validates internal consistency.
func Load() (*Config, error) {
	role := Role(ParseString("ROLE", ""))
	primaryIP := ParseString("PRIMARY_IP", "")
	drIP := ParseString("DR_IP", "")

	cfg := &Config{
		Role:      role,
		PrimaryIP: primaryIP,
		DRIP:      drIP,
		SelfIP:    selfIP(role, primaryIP, drIP),
		PeerIP:    peerIP(role, primaryIP, drIP),

		DNSProvider: ParseString("DNS_PROVIDER", ""),
		DNSZone:     ParseString("DNS_ZONE", ""),
		DNSRecord:   ParseString("DNS_RECORD", ""),
		DNSTTL:      ParseSeconds("DNS_TTL", 30*time.Second),

		LeaseTTL:       ParseSeconds("LEASE_TTL", 60*time.Second),
		UpdateInterval: ParseSeconds("UPDATE_INTERVAL", 10*time.Second),
		FailThreshold:  ParseInt("FAIL_THRESHOLD", 3),

		HealthMode:       HealthMode(ParseString("HEALTH_MODE", "tcp")),
		HealthHost:       ParseString("HEALTH_HOST", ""),
		HealthPort:       ParseInt("HEALTH_PORT", 0),
		HealthTimeout:    ParseSeconds("HEALTH_TIMEOUT", 5*time.Second),
		HealthURL:        ParseString("HEALTH_URL", ""),
		HealthMetric:     ParseString("HEALTH_METRIC", ""),
		HealthStaleCount: ParseInt("HEALTH_STALE_COUNT", 3),

		DNSServer:            ParseString("DNS_SERVER", ""),
		MyIP:                 ParseString("MY_IP", ""),
		WatcherInterval:      ParseSeconds("OTEL_CHECK_INTERVAL", 10*time.Second),
		WatcherGraceSeconds:  ParseInt("WATCHER_GRACE_SECONDS", 30),
		WorkerControllerKind: ParseString("WORKER_CONTROLLER", "container"),
		ContainerName:        ParseString("WORKER_CONTAINER_NAME", ""),
		K8sNamespace:         ParseString("WORKER_K8S_NAMESPACE", ""),
		K8sDeployment:        ParseString("WORKER_K8S_DEPLOYMENT", ""),

		ListenAddr:  ParseString("LISTEN_ADDR", ":9091"),
		MetricsAddr: ParseString("METRICS_ADDR", ":9090"),

		OTelEnabled:        ParseBool("OTEL_ENABLED", false),
		OTelServiceVersion: ParseString("OTEL_SERVICE_VERSION", "dev"),
		OTelEnvironment:    ParseString("OTEL_ENVIRONMENT", "production"),
		OTelExporterType:   ParseString("OTEL_EXPORTER_TYPE", "grpc"),
		OTelEndpoint:       ParseString("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
		OTelSamplingRate:   ParseFloat("OTEL_SAMPLING_RATE", 1.0),

		RateLimitRequests: ParseInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   ParseDuration("RATE_LIMIT_WINDOW", time.Minute),

		AWSRegion:          ParseString("AWS_REGION", ""),
		AWSAccessKeyID:     ParseString("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: ParseString("AWS_SECRET_ACCESS_KEY", ""),
		DNSAPIToken:        ParseString("DNS_API_TOKEN", ""),
		TSIGKeyName:        ParseString("RFC2136_TSIG_KEY_NAME", ""),
		TSIGSecret:         ParseString("RFC2136_TSIG_SECRET", ""),
		ScriptWritePath:    ParseString("SCRIPT_WRITE_PATH", ""),
		ScriptReadPath:     ParseString("SCRIPT_READ_PATH", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// selfIP returns the IP this process writes into the A record: the
// primary site's address when running as primary, the DR site's address
// when running as DR. An unrecognized role yields "", caught separately
// by validate's ROLE check.
func selfIP(role Role, primaryIP, drIP string) string {
	switch role {
	case RoleDR:
		return drIP
	case RolePrimary:
		return primaryIP
	default:
		return ""
	}
}

// peerIP is the other site's address relative to selfIP.
func peerIP(role Role, primaryIP, drIP string) string {
	switch role {
	case RoleDR:
		return primaryIP
	case RolePrimary:
		return drIP
	default:
		return ""
	}
}

func (c *Config) validate() error {
	var fields []string

	switch c.Role {
	case RolePrimary, RoleDR:
	default:
		fields = append(fields, `ROLE must be "primary" or "dr"`)
	}

	if c.DNSProvider == "" {
		fields = append(fields, "DNS_PROVIDER is required")
	}
	if c.DNSZone == "" {
		fields = append(fields, "DNS_ZONE is required")
	}
	if c.DNSRecord == "" {
		fields = append(fields, "DNS_RECORD is required")
	}
	if c.PrimaryIP == "" {
		fields = append(fields, "PRIMARY_IP is required")
	}
	if c.DRIP == "" {
		fields = append(fields, "DR_IP is required")
	}
	if c.UpdateInterval >= c.LeaseTTL {
		fields = append(fields, "UPDATE_INTERVAL must be less than LEASE_TTL")
	}
	if c.FailThreshold < 1 {
		fields = append(fields, "FAIL_THRESHOLD must be at least 1")
	}

	if c.Role == RoleDR {
		switch c.HealthMode {
		case HealthModeTCP:
			if c.HealthHost == "" || c.HealthPort == 0 {
				fields = append(fields, "HEALTH_MODE=tcp requires HEALTH_HOST and HEALTH_PORT")
			}
		case HealthModeMetrics:
			if c.HealthURL == "" || c.HealthMetric == "" {
				fields = append(fields, "HEALTH_MODE=metrics requires HEALTH_URL and HEALTH_METRIC")
			}
		default:
			fields = append(fields, `HEALTH_MODE must be "tcp" or "metrics"`)
		}

		if c.MyIP == "" {
			fields = append(fields, "MY_IP is required for role=dr")
		} else if c.MyIP != c.DRIP {
			fields = append(fields, "MY_IP must equal DR_IP for role=dr")
		}
	}

	if c.OTelEnabled {
		switch c.OTelExporterType {
		case "grpc", "http":
		default:
			fields = append(fields, `OTEL_EXPORTER_TYPE must be "grpc" or "http"`)
		}
	}

	if c.DNSProvider == "script" && (c.ScriptWritePath == "" || c.ScriptReadPath == "") {
		fields = append(fields, "DNS_PROVIDER=script requires SCRIPT_WRITE_PATH and SCRIPT_READ_PATH")
	}
	if c.DNSProvider == "rfc2136" && c.DNSServer == "" {
		fields = append(fields, "DNS_PROVIDER=rfc2136 requires DNS_SERVER")
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Redact returns the sensitive fields of Config masked, for inclusion in
// diagnostic output such as a future `validate --verbose`.
func (c *Config) Redact() map[string]string {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "***redacted***"
	}
	return map[string]string{
		"AWS_SECRET_ACCESS_KEY": mask(c.AWSSecretAccessKey),
		"DNS_API_TOKEN":         mask(c.DNSAPIToken),
		"RFC2136_TSIG_SECRET":   mask(c.TSIGSecret),
	}
}
