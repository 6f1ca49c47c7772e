package config_test

import (
	"testing"
	"time"

	"github.com/irplatform/ir-backend/internal/infra/config"
	"github.com/stretchr/testify/require"
)

func TestNewACMEConfigDefaults(t *testing.T) {
	cfg := config.NewACMEConfig()

	require.Equal(t, 12, cfg.PollAttempts)
	require.Equal(t, 10*time.Second, cfg.PollInterval)
	require.Equal(t, "acme/account.key", cfg.AccountKeyKey)
}

func TestNewDNSConfigReadsEnv(t *testing.T) {
	t.Setenv("DNS_PROVIDER", "Route53")
	t.Setenv("ROUTE53_HOSTED_ZONE_ID", "Z123")
	t.Setenv("DNS_TTL", "300")

	cfg := config.NewDNSConfig()

	require.Equal(t, "Route53", cfg.Provider)
	require.Equal(t, "Z123", cfg.Route53HostedZone)
	require.Equal(t, 300, cfg.TTL)
}

func TestNewProvisionConfigParsesFlag(t *testing.T) {
	t.Setenv("AUTO_CREATE_DISTRIBUTION", "true")
	t.Setenv("BASE_DOMAIN", "example.net")

	cfg := config.NewProvisionConfig()

	require.True(t, cfg.AutoCreateDistribution)
	require.Equal(t, "example.net", cfg.BaseDomain)
	require.Equal(t, "investor", cfg.SubdomainPrefix)
}
