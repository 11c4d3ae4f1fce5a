// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

// Package rfc2136 implements the DNS backend contract as an RFC 2136
// dynamic update against an authoritative nameserver, optionally signed
// with TSIG.
package rfc2136

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/mikempw/failover/internal/backend"
)

func init() {
	backend.Register("rfc2136", New)
}

// Client issues dynamic updates and standard queries against a single
// configured server.
type Client struct {
	server     string
	zone       string
	fqdn       string
	tsigName   string
	tsigSecret string
	dnsClient  *dns.Client
}

// New builds an rfc2136 Client. DNSServer is host:port of the
// authoritative server; Zone is the zone apex; Record is the
// fully-qualified name being updated.
func New(cfg backend.Config) (backend.Backend, error) {
	if cfg.DNSServer == "" {
		return nil, fmt.Errorf("rfc2136 backend requires a server address")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		server:     cfg.DNSServer,
		zone:       dns.Fqdn(cfg.Zone),
		fqdn:       dns.Fqdn(cfg.Record),
		tsigName:   cfg.TSIGKeyName,
		tsigSecret: cfg.TSIGSecret,
		dnsClient:  &dns.Client{Net: "tcp", Timeout: timeout},
	}, nil
}

// SetRecords replaces the A and TXT RRsets at fqdn with a single dynamic
// update message, so a partial application is never observed.
func (c *Client) SetRecords(ctx context.Context, req backend.WriteRequest) error {
	ttl := uint32(req.TTL.Seconds())

	aRR, err := dns.NewRR(fmt.Sprintf("%s %d A %s", c.fqdn, ttl, req.IP))
	if err != nil {
		return fmt.Errorf("build A record: %w", err)
	}
	txtValue := fmt.Sprintf("owner=%s exp=%d", req.Owner, req.ExpiresAt.Unix())
	txtRR, err := dns.NewRR(fmt.Sprintf("%s %d TXT %q", c.fqdn, ttl, txtValue))
	if err != nil {
		return fmt.Errorf("build TXT record: %w", err)
	}

	m := new(dns.Msg)
	m.SetUpdate(c.zone)
	m.RemoveRRset([]dns.RR{&dns.A{Hdr: dns.RR_Header{Name: c.fqdn, Rrtype: dns.TypeA, Class: dns.ClassINET}}})
	m.RemoveRRset([]dns.RR{&dns.TXT{Hdr: dns.RR_Header{Name: c.fqdn, Rrtype: dns.TypeTXT, Class: dns.ClassINET}}})
	m.Insert([]dns.RR{aRR, txtRR})

	c.sign(m)

	resp, _, err := c.dnsClient.ExchangeContext(ctx, m, c.server)
	if err != nil {
		return fmt.Errorf("%w: %v", backend.ErrNetwork, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return classifyRcode(resp.Rcode)
	}
	return nil
}

// GetRecords queries the server directly for the current A and TXT
// records, bypassing any resolver cache.
func (c *Client) GetRecords(ctx context.Context) (backend.ReadResult, error) {
	var result backend.ReadResult

	aResp, err := c.query(ctx, dns.TypeA)
	if err != nil {
		return result, err
	}
	for _, rr := range aResp.Answer {
		if a, ok := rr.(*dns.A); ok {
			result.A = a.A.String()
			break
		}
	}

	txtResp, err := c.query(ctx, dns.TypeTXT)
	if err != nil {
		return result, err
	}
	for _, rr := range txtResp.Answer {
		if txt, ok := rr.(*dns.TXT); ok {
			result.TXT = strings.Join(txt.Txt, "")
			break
		}
	}

	return result, nil
}

func (c *Client) query(ctx context.Context, qtype uint16) (*dns.Msg, error) {
	m := new(dns.Msg)
	m.SetQuestion(c.fqdn, qtype)
	resp, _, err := c.dnsClient.ExchangeContext(ctx, m, c.server)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", backend.ErrNetwork, err)
	}
	return resp, nil
}

func (c *Client) sign(m *dns.Msg) {
	if c.tsigName == "" {
		return
	}
	name := dns.Fqdn(c.tsigName)
	m.SetTsig(name, dns.HmacSHA256, 300, time.Now().Unix())
	c.dnsClient.TsigSecret = map[string]string{name: c.tsigSecret}
}

func classifyRcode(rcode int) error {
	switch rcode {
	case dns.RcodeRefused, dns.RcodeNotAuth:
		return fmt.Errorf("%w: server returned %s", backend.ErrAuth, dns.RcodeToString[rcode])
	case dns.RcodeNameError:
		return fmt.Errorf("%w: server returned %s", backend.ErrNotFound, dns.RcodeToString[rcode])
	default:
		return fmt.Errorf("%w: server returned %s", backend.ErrNetwork, dns.RcodeToString[rcode])
	}
}
