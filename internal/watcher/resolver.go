// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

package watcher

import (
	"context"
	"fmt"
	"net"

	"github.com/miekg/dns"
)

// SystemResolver resolves via the host's configured resolver (e.g.
// /etc/resolv.conf), subject to whatever local caching that resolver
// performs.
type SystemResolver struct {
	Resolver *net.Resolver
}

func (r *SystemResolver) Resolve(ctx context.Context, fqdn string) (string, error) {
	resolver := r.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	ips, err := resolver.LookupHost(ctx, fqdn)
	if err != nil {
		return "", err
	}
	if len(ips) == 0 {
		return "", fmt.Errorf("no addresses returned for %s", fqdn)
	}
	return ips[0], nil
}

// DirectResolver queries a specific server directly over DNS, bypassing
// any local resolver cache, so a lease change is observed as soon as the
// record's TTL allows rather than whenever the host cache expires.
type DirectResolver struct {
	Server string
	Client *dns.Client
}

func (r *DirectResolver) Resolve(ctx context.Context, fqdn string) (string, error) {
	client := r.Client
	if client == nil {
		client = &dns.Client{Net: "udp"}
	}

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(fqdn), dns.TypeA)

	resp, _, err := client.ExchangeContext(ctx, m, r.Server)
	if err != nil {
		return "", err
	}
	for _, rr := range resp.Answer {
		if a, ok := rr.(*dns.A); ok {
			return a.A.String(), nil
		}
	}
	return "", fmt.Errorf("no A record for %s", fqdn)
}
