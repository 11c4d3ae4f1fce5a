// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

package rfc2136_test

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikempw/failover/internal/backend"
	"github.com/mikempw/failover/internal/backend/rfc2136"
	"github.com/mikempw/failover/internal/lease"
)

// fakeServer is a minimal RFC 2136-speaking nameserver: it tracks one A and
// one TXT RRset per name and applies dynamic updates verbatim, enough to
// exercise the adapter's wire format without a real nameserver.
type fakeServer struct {
	mu  sync.Mutex
	a   map[string]string
	txt map[string]string
}

func newFakeServer() *fakeServer {
	return &fakeServer{a: map[string]string{}, txt: map[string]string{}}
}

func (f *fakeServer) ServeDNS(w dns.ResponseWriter, r *dns.Msg) {
	m := new(dns.Msg)
	m.SetReply(r)

	if r.Opcode == dns.OpcodeUpdate {
		f.mu.Lock()
		for _, rr := range r.Ns {
			switch v := rr.(type) {
			case *dns.A:
				f.a[v.Hdr.Name] = v.A.String()
			case *dns.TXT:
				f.txt[v.Hdr.Name] = joinTXT(v.Txt)
			}
		}
		f.mu.Unlock()
		m.Rcode = dns.RcodeSuccess
		_ = w.WriteMsg(m)
		return
	}

	if len(r.Question) == 1 {
		q := r.Question[0]
		f.mu.Lock()
		defer f.mu.Unlock()
		switch q.Qtype {
		case dns.TypeA:
			if ip, ok := f.a[q.Name]; ok {
				rr, _ := dns.NewRR(q.Name + " 30 A " + ip)
				m.Answer = append(m.Answer, rr)
			}
		case dns.TypeTXT:
			if v, ok := f.txt[q.Name]; ok {
				rr, _ := dns.NewRR(q.Name + " 30 TXT \"" + v + "\"")
				m.Answer = append(m.Answer, rr)
			}
		}
	}
	_ = w.WriteMsg(m)
}

func joinTXT(parts []string) string {
	out := ""
	for _, p := range parts {
		out += p
	}
	return out
}

func startFakeServer(t *testing.T) (addr string, srv *fakeServer) {
	t.Helper()
	srv = newFakeServer()
	// The adapter talks TCP, and the server's default accept func rejects
	// UPDATE messages, so both are set up to match.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := &dns.Server{
		Listener:      ln,
		Handler:       srv,
		MsgAcceptFunc: func(dns.Header) dns.MsgAcceptAction { return dns.MsgAccept },
	}
	go func() { _ = server.ActivateAndServe() }()
	t.Cleanup(func() { _ = server.Shutdown() })

	return ln.Addr().String(), srv
}

func TestRFC2136_SetAndGetRecords(t *testing.T) {
	addr, _ := startFakeServer(t)

	b, err := rfc2136.New(backend.Config{
		DNSServer: addr,
		Zone:      "example.com",
		Record:    "collector.example.com",
		Timeout:   2 * time.Second,
	})
	require.NoError(t, err)

	ctx := context.Background()
	err = b.SetRecords(ctx, backend.WriteRequest{
		IP:        "192.0.2.10",
		Owner:     lease.OwnerPrimary,
		ExpiresAt: time.Unix(1_700_000_060, 0),
		TTL:       30 * time.Second,
	})
	require.NoError(t, err)

	result, err := b.GetRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.10", result.A)
	assert.Equal(t, "owner=primary exp=1700000060", result.TXT)
}
