package dns

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/irplatform/ir-backend/internal/domain/consts"
	"github.com/irplatform/ir-backend/internal/infra/config"
)

type Route53API interface {
	ListHostedZonesByName(ctx context.Context, params *route53.ListHostedZonesByNameInput, optFns ...func(*route53.Options)) (*route53.ListHostedZonesByNameOutput, error)
	ChangeResourceRecordSets(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
}

type Route53 struct {
	client       Route53API
	hostedZoneID string
	ttl          int64
}

func NewRoute53(client Route53API, cfg *config.DNSConfig) *Route53 {
	return &Route53{client: client, hostedZoneID: cfg.Route53HostedZone, ttl: int64(cfg.TTL)}
}

func (r *Route53) Name() string {
	return string(consts.DNSProviderRoute53)
}

func (r *Route53) AddRecord(ctx context.Context, domain, name, recordType, value string) error {
	zoneID, err := r.zoneID(ctx, domain)
	if err != nil {
		return recordError(domain, name, recordType, err)
	}

	fqdn := domain
	if name != "@" && name != "" {
		fqdn = name + "." + domain
	}
	if recordType == string(types.RRTypeTxt) {
		value = `"` + value + `"`
	}

	_, err = r.client.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(zoneID),
		ChangeBatch: &types.ChangeBatch{
			Changes: []types.Change{
				{
					Action: types.ChangeActionUpsert,
					ResourceRecordSet: &types.ResourceRecordSet{
						Name:            aws.String(fqdn),
						Type:            types.RRType(recordType),
						TTL:             aws.Int64(r.ttl),
						ResourceRecords: []types.ResourceRecord{{Value: aws.String(value)}},
					},
				},
			},
		},
	})
	if err != nil {
		return recordError(domain, name, recordType, err)
	}

	slog.Info("DNS record created", "provider", r.Name(), "fqdn", fqdn, "type", recordType)
	return nil
}

func (r *Route53) zoneID(ctx context.Context, domain string) (string, error) {
	if r.hostedZoneID != "" {
		return r.hostedZoneID, nil
	}

	res, err := r.client.ListHostedZonesByName(ctx, &route53.ListHostedZonesByNameInput{
		DNSName: aws.String(domain),
	})
	if err != nil {
		return "", err
	}
	for _, hostedZone := range res.HostedZones {
		if aws.ToString(hostedZone.Name) == domain+"." {
			return strings.TrimPrefix(aws.ToString(hostedZone.Id), "/hostedzone/"), nil
		}
	}
	return "", fmt.Errorf("no hosted zone for %s", domain)
}
