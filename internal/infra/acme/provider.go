package acme

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-acme/lego/v4/challenge"
	"github.com/go-acme/lego/v4/challenge/dns01"
	"github.com/irplatform/ir-backend/internal/application/interfaces"
	"github.com/irplatform/ir-backend/internal/domain/entity"
	"github.com/irplatform/ir-backend/internal/infra/dns"
)

// dnsChallengeProvider answers DNS-01 challenges by publishing the TXT record
// through the configured DNS adapter.
type dnsChallengeProvider struct {
	ctx      context.Context
	dns      interfaces.DNSProvider
	req      interfaces.CertificateRequest
	attempts int
	interval time.Duration
}

var (
	_ challenge.Provider        = (*dnsChallengeProvider)(nil)
	_ challenge.ProviderTimeout = (*dnsChallengeProvider)(nil)
)

func (p *dnsChallengeProvider) Present(domain, token, keyAuth string) error {
	info := dns01.GetChallengeInfo(domain, keyAuth)
	fqdn := strings.TrimSuffix(info.FQDN, ".")
	name := dns.RelativeName(fqdn, p.req.Zone)

	if err := p.dns.AddRecord(p.ctx, p.req.Zone, name, "TXT", info.Value); err != nil {
		return err
	}

	if p.req.OnPublished != nil {
		validation := entity.DNSValidation{Name: fqdn, Type: "TXT", Value: info.Value}
		if err := p.req.OnPublished(p.ctx, validation); err != nil {
			return fmt.Errorf("can't record dns validation, %v", err)
		}
	}
	return nil
}

// CleanUp leaves the challenge record in place.
func (p *dnsChallengeProvider) CleanUp(domain, token, keyAuth string) error {
	slog.Debug("leaving dns challenge record in place", "domain", domain)
	return nil
}

// Timeout bounds lego's propagation and authorization polling.
func (p *dnsChallengeProvider) Timeout() (time.Duration, time.Duration) {
	return time.Duration(p.attempts) * p.interval, p.interval
}
