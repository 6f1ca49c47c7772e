package dns

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/irplatform/ir-backend/internal/domain/consts"
	"github.com/irplatform/ir-backend/internal/infra/config"
)

type goDaddyRecord struct {
	Data string `json:"data"`
	TTL  int    `json:"ttl"`
}

// GoDaddy writes records through the GoDaddy v1 domains API.
type GoDaddy struct {
	client *resty.Client
	ttl    int
}

func NewGoDaddy(cfg *config.DNSConfig) *GoDaddy {
	client := resty.New().
		SetBaseURL(cfg.GoDaddyBaseURL).
		SetTimeout(30*time.Second).
		SetHeader("Authorization", fmt.Sprintf("sso-key %s:%s", cfg.GoDaddyAPIKey, cfg.GoDaddySecretKey)).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &GoDaddy{client: client, ttl: cfg.TTL}
}

func (g *GoDaddy) Name() string {
	return string(consts.DNSProviderGoDaddy)
}

func (g *GoDaddy) AddRecord(ctx context.Context, domain, name, recordType, value string) error {
	path := fmt.Sprintf("/v1/domains/%s/records/%s/%s",
		url.PathEscape(domain), url.PathEscape(recordType), url.PathEscape(name))

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody([]goDaddyRecord{{Data: value, TTL: g.ttl}}).
		Put(path)
	if err != nil {
		return recordError(domain, name, recordType, err)
	}
	if resp.IsError() {
		return recordError(domain, name, recordType, fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}

	slog.Info("DNS record created", "provider", g.Name(), "domain", domain, "name", name, "type", recordType)
	return nil
}
