package processors

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/irplatform/ir-backend/internal/application/errs"
	"github.com/irplatform/ir-backend/internal/application/events"
	"github.com/irplatform/ir-backend/internal/application/interfaces"
	"github.com/irplatform/ir-backend/internal/domain/consts"
	"github.com/irplatform/ir-backend/internal/domain/entity"
	"github.com/irplatform/ir-backend/internal/infra/dns"
)

// ProvisionCDN fronts an issued subdomain with CloudFront and points the customer's CNAME at it.
type ProvisionCDN struct {
	state         domainState
	certs         interfaces.CertificateStore
	distributions interfaces.DistributionProvisioner
	dnsProvider   interfaces.DNSProvider
}

func NewProvisionCDN(
	txFactory interfaces.TxFactory, certs interfaces.CertificateStore, distributions interfaces.DistributionProvisioner,
	dnsProvider interfaces.DNSProvider, metrics interfaces.Metrics,
) *ProvisionCDN {
	return &ProvisionCDN{
		state:         domainState{txFactory: txFactory, metrics: metrics},
		certs:         certs,
		distributions: distributions,
		dnsProvider:   dnsProvider,
	}
}

func (c *ProvisionCDN) Handle(ctx context.Context, event events.DistributionRequested) error {
	domain, err := c.state.load(ctx, event.Subdomain)
	if err != nil {
		return fmt.Errorf("can't load customer domain %s, %w", event.Subdomain, err)
	}
	switch domain.Status {
	case consts.DomainStatusCloudfrontCreated:
		return nil
	case consts.DomainStatusCertificateIssued:
	default:
		slog.Info("skipping distribution request", "subdomain", domain.Subdomain, "status", domain.Status)
		return nil
	}

	issued, err := c.certs.WaitForCertificate(ctx, domain.CertificateARN)
	if err != nil {
		c.state.fail(ctx, domain.Subdomain, "Certificate validation failed: "+err.Error())
		return err
	}
	if !issued {
		return errs.RetryableError{Err: fmt.Errorf("certificate %s is not issued yet", domain.CertificateARN)}
	}

	dist, err := c.distributions.CreateDistribution(ctx, domain.Subdomain, domain.MappedTo, domain.CertificateARN)
	if err != nil {
		c.state.fail(ctx, domain.Subdomain, "CloudFront distribution failed: "+err.Error())
		return err
	}
	slog.Info("distribution created", "subdomain", domain.Subdomain, "distribution", dist.ID)

	zone := entity.ZoneOf(domain.Subdomain)
	if err = c.dnsProvider.AddRecord(ctx, zone, dns.RelativeName(domain.Subdomain, zone), "CNAME", dist.DomainName); err != nil {
		c.state.fail(ctx, domain.Subdomain, fmt.Sprintf("CNAME to distribution %s failed: %v", dist.ID, err))
		return err
	}

	return c.state.update(ctx, domain.Subdomain, func(_ interfaces.Tx, d *entity.CustomerDomain) error {
		if err := d.TransitionTo(consts.DomainStatusCloudfrontCreated, time.Now()); err != nil {
			return err
		}
		d.DistributionID = dist.ID
		d.CloudfrontDomain = dist.DomainName
		return nil
	})
}

// GiveUp marks the domain failed once the scheduler stops retrying.
func (c *ProvisionCDN) GiveUp(ctx context.Context, event events.DistributionRequested, cause error) {
	c.state.fail(ctx, event.Subdomain, "Distribution provisioning gave up: "+cause.Error())
}
