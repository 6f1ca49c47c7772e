package processors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/irplatform/ir-backend/internal/application/events"
	"github.com/irplatform/ir-backend/internal/application/interfaces"
	"github.com/irplatform/ir-backend/internal/domain/consts"
	"github.com/irplatform/ir-backend/internal/domain/entity"
	"github.com/irplatform/ir-backend/internal/infra/config"
	"github.com/irplatform/ir-backend/internal/infra/storage"
)

// IssueCertificate runs the DNS-01 order for a pending domain and imports the result into ACM.
type IssueCertificate struct {
	cfg       *config.ProvisionConfig
	state     domainState
	issuer    interfaces.CertificateIssuer
	certs     interfaces.CertificateStore
	artifacts interfaces.ArtifactStore
}

func NewIssueCertificate(
	cfg *config.ProvisionConfig, txFactory interfaces.TxFactory, issuer interfaces.CertificateIssuer,
	certs interfaces.CertificateStore, artifacts interfaces.ArtifactStore, metrics interfaces.Metrics,
) *IssueCertificate {
	return &IssueCertificate{
		cfg:       cfg,
		state:     domainState{txFactory: txFactory, metrics: metrics},
		issuer:    issuer,
		certs:     certs,
		artifacts: artifacts,
	}
}

var errNotPending = errors.New("customer domain is not pending")

func (c *IssueCertificate) Handle(ctx context.Context, event events.CertificateRequested) error {
	domain, err := c.claim(ctx, event.Subdomain)
	if errors.Is(err, errNotPending) {
		slog.Info("skipping certificate request", "subdomain", event.Subdomain, "status", domain.Status)
		return nil
	}
	if err != nil {
		return fmt.Errorf("can't claim customer domain %s, %w", event.Subdomain, err)
	}

	if err = c.issue(ctx, domain); err != nil {
		c.state.fail(ctx, domain.Subdomain, "Certificate request failed: "+err.Error())
		return err
	}
	return nil
}

// claim moves a pending domain to dns_validation before the order is placed.
// Only one of several requests for the same subdomain gets past it.
func (c *IssueCertificate) claim(ctx context.Context, subdomain string) (*entity.CustomerDomain, error) {
	var domain entity.CustomerDomain
	err := c.state.update(ctx, subdomain, func(_ interfaces.Tx, d *entity.CustomerDomain) error {
		domain = *d
		if d.Status != consts.DomainStatusPending {
			return errNotPending
		}
		d.DNSValidation = nil
		if err := d.TransitionTo(consts.DomainStatusDNSValidation, time.Now()); err != nil {
			return err
		}
		domain = *d
		return nil
	})
	return &domain, err
}

func (c *IssueCertificate) issue(ctx context.Context, domain *entity.CustomerDomain) error {
	slog.Info("requesting certificate", "subdomain", domain.Subdomain)
	cert, err := c.issuer.Obtain(ctx, interfaces.CertificateRequest{
		Domain:      domain.Subdomain,
		Zone:        entity.ZoneOf(domain.Subdomain),
		OnPublished: c.markValidation(domain.Subdomain),
	})
	if err != nil {
		return err
	}

	arn, err := c.certs.ImportCertificate(ctx, cert)
	if err != nil {
		return err
	}
	slog.Info("certificate imported", "subdomain", domain.Subdomain, "arn", arn)
	c.archive(ctx, domain.Subdomain, cert)

	return c.state.update(ctx, domain.Subdomain, func(tx interfaces.Tx, d *entity.CustomerDomain) error {
		if err := d.TransitionTo(consts.DomainStatusCertificateIssued, time.Now()); err != nil {
			return err
		}
		d.CertificateARN = arn
		if !c.cfg.AutoCreateDistribution {
			return nil
		}
		return tx.Events().InsertEvent(ctx, events.DistributionRequested{Subdomain: d.Subdomain})
	})
}

func (c *IssueCertificate) markValidation(subdomain string) func(context.Context, entity.DNSValidation) error {
	return func(ctx context.Context, validation entity.DNSValidation) error {
		return c.state.update(ctx, subdomain, func(_ interfaces.Tx, d *entity.CustomerDomain) error {
			v := validation
			d.DNSValidation = &v
			return nil
		})
	}
}

// archive keeps a copy of the issued material. ACM already holds the certificate,
// so a failed upload is only logged.
func (c *IssueCertificate) archive(ctx context.Context, subdomain string, cert *interfaces.IssuedCertificate) {
	if c.artifacts == nil {
		return
	}
	objects := map[string][]byte{
		"cert.pem":    cert.Certificate,
		"privkey.pem": cert.PrivateKey,
		"issuer.pem":  cert.IssuerCertificate,
	}
	var errList []error
	for name, body := range objects {
		if err := c.artifacts.Put(ctx, storage.CertificateKey(subdomain, name), body); err != nil {
			errList = append(errList, err)
		}
	}
	if err := errors.Join(errList...); err != nil {
		slog.Error("can't archive certificate", "subdomain", subdomain, "err", err)
	}
}
