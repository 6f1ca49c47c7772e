package config

import (
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type ServerConfig struct {
	Addr             string `env:"HTTP_ADDR" envDefault:":8080"`
	CORSAllowOrigins string `env:"CORS_ALLOW_ORIGINS" envDefault:"http://localhost:3000"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
}

func NewServerConfig() *ServerConfig {
	return parse[ServerConfig]("server")
}

type ProvisionConfig struct {
	BaseDomain             string `env:"BASE_DOMAIN" envDefault:"debsom.shop"`
	SubdomainPrefix        string `env:"SUBDOMAIN_PREFIX" envDefault:"investor"`
	AutoCreateDistribution bool   `env:"AUTO_CREATE_DISTRIBUTION" envDefault:"false"`
	CertificateBucket      string `env:"CERT_BUCKET"`
}

func NewProvisionConfig() *ProvisionConfig {
	return parse[ProvisionConfig]("provision")
}

type ACMEConfig struct {
	Email         string        `env:"LETS_ENCRYPT_EMAIL"`
	DirectoryURL  string        `env:"ACME_DIRECTORY_URL" envDefault:"https://acme-v02.api.letsencrypt.org/directory"`
	AccountKey    string        `env:"ACME_ACCOUNT_KEY"`
	PollAttempts  int           `env:"ACME_POLL_ATTEMPTS" envDefault:"12"`
	PollInterval  time.Duration `env:"ACME_POLL_INTERVAL" envDefault:"10s"`
	Nameservers   []string      `env:"ACME_NAMESERVERS" envSeparator:","`
	AccountKeyKey string        `env:"ACME_ACCOUNT_KEY_OBJECT" envDefault:"acme/account.key"`
}

func NewACMEConfig() *ACMEConfig {
	return parse[ACMEConfig]("acme")
}

type DNSConfig struct {
	Provider          string `env:"DNS_PROVIDER" envDefault:"GoDaddy"`
	GoDaddyAPIKey     string `env:"GODADDY_API_KEY"`
	GoDaddySecretKey  string `env:"GODADDY_SECRET_KEY"`
	GoDaddyBaseURL    string `env:"GODADDY_BASE_URL" envDefault:"https://api.godaddy.com"`
	Route53HostedZone string `env:"ROUTE53_HOSTED_ZONE_ID"`
	TTL               int    `env:"DNS_TTL" envDefault:"600"`
}

func NewDNSConfig() *DNSConfig {
	return parse[DNSConfig]("dns")
}

type CertificateConfig struct {
	PollTimeout  time.Duration `env:"CERT_POLL_TIMEOUT" envDefault:"5m"`
	PollInterval time.Duration `env:"CERT_POLL_INTERVAL" envDefault:"15s"`
}

func NewCertificateConfig() *CertificateConfig {
	return parse[CertificateConfig]("certificate")
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`
}

func NewAuthConfig() *AuthConfig {
	cfg := parse[AuthConfig]("auth")
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set, tokens are signed with an empty key")
	}
	return cfg
}

type OutboxConfig struct {
	Limit       int           `env:"OUTBOX_LIMIT" envDefault:"5"`
	Interval    time.Duration `env:"OUTBOX_INTERVAL" envDefault:"5s"`
	MaxAttempts int           `env:"OUTBOX_MAX_ATTEMPTS" envDefault:"20"`
	// Lease must outlive the slowest handler, a certificate order polls for minutes.
	Lease       time.Duration `env:"OUTBOX_LEASE" envDefault:"15m"`
}

func NewOutboxConfig() *OutboxConfig {
	return parse[OutboxConfig]("outbox")
}

func parse[T any](name string) *T {
	var cfg T
	if err := env.Parse(&cfg); err != nil {
		log.Panicf("can't parse %s config: %v", name, err)
	}
	return &cfg
}

// SetupLogger installs a JSON slog handler as the default logger.
func SetupLogger(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}
