// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

// Package cloudflare implements the DNS backend contract against the
// Cloudflare DNS API.
package cloudflare

import (
	"context"
	"fmt"

	cf "github.com/cloudflare/cloudflare-go/v6"
	"github.com/cloudflare/cloudflare-go/v6/dns"
	"github.com/cloudflare/cloudflare-go/v6/option"

	"github.com/mikempw/failover/internal/backend"
)

func init() {
	backend.Register("cloudflare", New)
}

// Client adapts cloudflare-go's v6 client to backend.Backend. Record holds
// the bare record name (e.g. "collector.example.com"); Zone holds the
// Cloudflare zone ID.
type Client struct {
	api    *cf.Client
	zoneID string
	name   string
}

// New builds a cloudflare Client authenticated with an API token.
func New(cfg backend.Config) (backend.Backend, error) {
	if cfg.DNSAPIToken == "" {
		return nil, fmt.Errorf("cloudflare backend requires an API token")
	}
	api := cf.NewClient(option.WithAPIToken(cfg.DNSAPIToken))
	return &Client{api: api, zoneID: cfg.Zone, name: cfg.Record}, nil
}

// SetRecords upserts the A and TXT records, editing in place when a record
// already exists so the record ID (and any other Cloudflare-managed
// metadata) survives across lease renewals.
func (c *Client) SetRecords(ctx context.Context, req backend.WriteRequest) error {
	txtValue := fmt.Sprintf("owner=%s exp=%d", req.Owner, req.ExpiresAt.Unix())
	ttl := dns.TTL(req.TTL.Seconds())

	existingA, existingTXT, err := c.findRecordIDs(ctx)
	if err != nil {
		return err
	}

	if err := c.upsertA(ctx, existingA, req.IP, ttl); err != nil {
		return backend.ClassifyError(err)
	}
	if err := c.upsertTXT(ctx, existingTXT, txtValue, ttl); err != nil {
		return backend.ClassifyError(err)
	}
	return nil
}

func (c *Client) upsertA(ctx context.Context, existingID, ip string, ttl dns.TTL) error {
	body := dns.ARecordParam{
		Type:    cf.F(dns.ARecordTypeA),
		Name:    cf.F(c.name),
		Content: cf.F(ip),
		TTL:     cf.F(ttl),
	}
	var err error
	if existingID != "" {
		_, err = c.api.DNS.Records.Edit(ctx, existingID, dns.RecordEditParams{ZoneID: cf.F(c.zoneID), Body: body})
	} else {
		_, err = c.api.DNS.Records.New(ctx, dns.RecordNewParams{ZoneID: cf.F(c.zoneID), Body: body})
	}
	return err
}

func (c *Client) upsertTXT(ctx context.Context, existingID, value string, ttl dns.TTL) error {
	body := dns.TXTRecordParam{
		Type:    cf.F(dns.TXTRecordTypeTXT),
		Name:    cf.F(c.name),
		Content: cf.F(value),
		TTL:     cf.F(ttl),
	}
	var err error
	if existingID != "" {
		_, err = c.api.DNS.Records.Edit(ctx, existingID, dns.RecordEditParams{ZoneID: cf.F(c.zoneID), Body: body})
	} else {
		_, err = c.api.DNS.Records.New(ctx, dns.RecordNewParams{ZoneID: cf.F(c.zoneID), Body: body})
	}
	return err
}

// GetRecords looks up the current A and TXT values by name.
func (c *Client) GetRecords(ctx context.Context) (backend.ReadResult, error) {
	var result backend.ReadResult

	page, err := c.api.DNS.Records.List(ctx, dns.RecordListParams{
		ZoneID: cf.F(c.zoneID),
		Name:   cf.F(dns.RecordListParamsName{Exact: cf.F(c.name)}),
	})
	if err != nil {
		return result, backend.ClassifyError(err)
	}

	for _, rec := range page.Result {
		switch rec.Type {
		case "A":
			result.A = rec.Content
		case "TXT":
			result.TXT = rec.Content
		}
	}
	return result, nil
}

// findRecordIDs returns the existing A and TXT record IDs for c.name, or
// empty strings if absent.
func (c *Client) findRecordIDs(ctx context.Context) (aID, txtID string, err error) {
	page, err := c.api.DNS.Records.List(ctx, dns.RecordListParams{
		ZoneID: cf.F(c.zoneID),
		Name:   cf.F(dns.RecordListParamsName{Exact: cf.F(c.name)}),
	})
	if err != nil {
		return "", "", backend.ClassifyError(err)
	}

	for _, rec := range page.Result {
		switch rec.Type {
		case "A":
			aID = rec.ID
		case "TXT":
			txtID = rec.ID
		}
	}
	return aID, txtID, nil
}
