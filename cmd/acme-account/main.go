// Command acme-account creates or loads the ACME account key and registers it with the CA.
package main

import (
	"context"
	"log/slog"
	"os"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/irplatform/ir-backend/cmd"
	"github.com/irplatform/ir-backend/internal/infra/acme"
	"github.com/irplatform/ir-backend/internal/infra/config"
	"github.com/irplatform/ir-backend/internal/infra/dns"
	"github.com/irplatform/ir-backend/internal/infra/storage"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	config.SetupLogger(os.Getenv("LOG_LEVEL"))
	ctx := context.Background()

	acmeConfig := config.NewACMEConfig()
	provisionConfig := config.NewProvisionConfig()

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("can't load aws config", "err", err)
		os.Exit(1)
	}
	dnsProvider, err := dns.NewProvider(config.NewDNSConfig(), awsCfg)
	if err != nil {
		slog.Error("can't build dns provider", "err", err)
		os.Exit(1)
	}

	key, err := cmd.AccountKey(ctx, acmeConfig, storage.NewStorage(awsCfg, provisionConfig.CertificateBucket))
	if err != nil {
		slog.Error("can't load acme account key", "err", err)
		os.Exit(1)
	}

	uri, err := acme.NewIssuer(acmeConfig, dnsProvider, key).EnsureAccount(ctx)
	if err != nil {
		slog.Error("can't register acme account", "err", err)
		os.Exit(1)
	}
	slog.Info("acme account ready", "uri", uri, "directory", acmeConfig.DirectoryURL)
}
