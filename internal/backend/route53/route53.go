// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

// Package route53 implements the DNS backend contract against AWS Route 53,
// applying the A and TXT records as a single atomic ChangeResourceRecordSets
// call.
package route53

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"

	"github.com/mikempw/failover/internal/backend"
)

func init() {
	backend.Register("route53", New)
}

// Client adapts the AWS SDK's route53.Client to backend.Backend.
type Client struct {
	api    *route53.Client
	zoneID string
	fqdn   string
}

// New builds a route53 Client from the shared backend configuration. Zone
// is the hosted zone ID; Record is the fully-qualified domain name.
func New(cfg backend.Config) (backend.Backend, error) {
	ctx := context.Background()

	var optFns []func(*awsconfig.LoadOptions) error
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	if cfg.AWSRegion != "" {
		optFns = append(optFns, awsconfig.WithRegion(cfg.AWSRegion))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Client{
		api:    route53.NewFromConfig(awsCfg),
		zoneID: cfg.Zone,
		fqdn:   cfg.Record,
	}, nil
}

// SetRecords upserts the A and TXT records in one change batch so readers
// never observe one without the other.
func (c *Client) SetRecords(ctx context.Context, req backend.WriteRequest) error {
	ttl := int64(req.TTL.Seconds())
	txtValue := fmt.Sprintf("%q", fmt.Sprintf("owner=%s exp=%d", req.Owner, req.ExpiresAt.Unix()))
	ip := req.IP

	_, err := c.api.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: &c.zoneID,
		ChangeBatch: &types.ChangeBatch{
			Comment: aws.String("failoverd lease update"),
			Changes: []types.Change{
				{
					Action: types.ChangeActionUpsert,
					ResourceRecordSet: &types.ResourceRecordSet{
						Name:            &c.fqdn,
						Type:            types.RRTypeA,
						TTL:             &ttl,
						ResourceRecords: []types.ResourceRecord{{Value: &ip}},
					},
				},
				{
					Action: types.ChangeActionUpsert,
					ResourceRecordSet: &types.ResourceRecordSet{
						Name:            &c.fqdn,
						Type:            types.RRTypeTxt,
						TTL:             &ttl,
						ResourceRecords: []types.ResourceRecord{{Value: &txtValue}},
					},
				},
			},
		},
	})
	if err != nil {
		return backend.ClassifyError(err)
	}
	return nil
}

// GetRecords reads the current A and TXT record sets for the configured
// name.
func (c *Client) GetRecords(ctx context.Context) (backend.ReadResult, error) {
	var result backend.ReadResult

	aOut, err := c.api.ListResourceRecordSets(ctx, &route53.ListResourceRecordSetsInput{
		HostedZoneId:    &c.zoneID,
		StartRecordName: &c.fqdn,
		StartRecordType: types.RRTypeA,
		MaxItems:        aws.Int32(1),
	})
	if err != nil {
		return result, backend.ClassifyError(err)
	}
	if rrset := matchRRSet(aOut.ResourceRecordSets, c.fqdn, types.RRTypeA); rrset != nil && len(rrset.ResourceRecords) > 0 {
		result.A = aws.ToString(rrset.ResourceRecords[0].Value)
	}

	txtOut, err := c.api.ListResourceRecordSets(ctx, &route53.ListResourceRecordSetsInput{
		HostedZoneId:    &c.zoneID,
		StartRecordName: &c.fqdn,
		StartRecordType: types.RRTypeTxt,
		MaxItems:        aws.Int32(1),
	})
	if err != nil {
		return result, backend.ClassifyError(err)
	}
	if rrset := matchRRSet(txtOut.ResourceRecordSets, c.fqdn, types.RRTypeTxt); rrset != nil && len(rrset.ResourceRecords) > 0 {
		result.TXT = strings.Trim(aws.ToString(rrset.ResourceRecords[0].Value), `"`)
	}

	return result, nil
}

// matchRRSet finds the record set exactly matching name/rrType, since
// ListResourceRecordSets returns the first set at or after the requested
// start point rather than guaranteeing an exact match.
func matchRRSet(sets []types.ResourceRecordSet, name string, rrType types.RRType) *types.ResourceRecordSet {
	for i := range sets {
		if strings.EqualFold(strings.TrimSuffix(aws.ToString(sets[i].Name), "."), strings.TrimSuffix(name, ".")) && sets[i].Type == rrType {
			return &sets[i]
		}
	}
	return nil
}
