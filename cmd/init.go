package cmd

import (
	"context"
	"crypto"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/irplatform/ir-backend/internal/application"
	authCommands "github.com/irplatform/ir-backend/internal/application/commands/auth"
	"github.com/irplatform/ir-backend/internal/application/commands/customerdomain"
	"github.com/irplatform/ir-backend/internal/application/processors"
	"github.com/irplatform/ir-backend/internal/application/query"
	"github.com/irplatform/ir-backend/internal/infra/acme"
	"github.com/irplatform/ir-backend/internal/infra/auth"
	"github.com/irplatform/ir-backend/internal/infra/cdn"
	"github.com/irplatform/ir-backend/internal/infra/certs"
	"github.com/irplatform/ir-backend/internal/infra/config"
	"github.com/irplatform/ir-backend/internal/infra/db/repo"
	"github.com/irplatform/ir-backend/internal/infra/dns"
	"github.com/irplatform/ir-backend/internal/infra/metrics"
	"github.com/irplatform/ir-backend/internal/infra/storage"
	"github.com/irplatform/ir-backend/internal/presentation/rest"
	"github.com/irplatform/ir-backend/internal/presentation/scheduler"
	"github.com/irplatform/ir-backend/pkg/db"
	"github.com/joho/godotenv"
)

func Init() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}

	// Configs
	serverConfig := config.NewServerConfig()
	config.SetupLogger(serverConfig.LogLevel)
	provisionConfig := config.NewProvisionConfig()
	acmeConfig := config.NewACMEConfig()
	dnsConfig := config.NewDNSConfig()
	certConfig := config.NewCertificateConfig()
	authConfig := config.NewAuthConfig()
	outboxConfig := config.NewOutboxConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB
	pool, err := db.NewPool(ctx, db.NewConfig())
	if err != nil {
		log.Panic(err)
	}
	txFactory := repo.NewTxFactory(db.NewUoWFactory(pool))

	// AWS
	awsCfg, err := awsConfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Panic("can't load aws config", err)
	}
	dnsProvider, err := dns.NewProvider(dnsConfig, awsCfg)
	if err != nil {
		log.Panic(err)
	}
	artifacts := storage.NewStorage(awsCfg, provisionConfig.CertificateBucket)
	acmCerts := certs.NewACMCertificates(awsCfg, certConfig)
	distributions := cdn.NewDistributionProvisioner(awsCfg)

	accountKey, err := AccountKey(ctx, acmeConfig, artifacts)
	if err != nil {
		log.Panic(err)
	}
	issuer := acme.NewIssuer(acmeConfig, dnsProvider, accountKey)

	m := metrics.NewMetrics()
	tokens := auth.NewIdentityProvider(authConfig)

	handlers := &application.Handlers{
		Auth:                 authCommands.NewAuth(txFactory, auth.NewBcryptHasher(0), tokens, provisionConfig.SubdomainPrefix),
		CreateCustomerDomain: customerdomain.NewCreateCustomerDomain(txFactory, provisionConfig.BaseDomain, dnsProvider.Name()),
		UpdateCustomerDomain: customerdomain.NewUpdateCustomerDomain(txFactory, m),
		RequestCertificate:   customerdomain.NewRequestCertificate(txFactory, m),
		GetCustomerDomain:    query.NewGetCustomerDomain(txFactory),
		ListCustomerDomains:  query.NewListCustomerDomains(txFactory),
		ListDomainJobs:       query.NewListDomainJobs(txFactory),
		GetUser:              query.NewGetUser(txFactory),
		HealthCheck:          query.NewHealthCheck(pool),
	}
	procs := &application.Processors{
		ProvisionDomain:  processors.NewProvisionDomain(provisionConfig, txFactory, dnsProvider, m),
		IssueCertificate: processors.NewIssueCertificate(provisionConfig, txFactory, issuer, acmCerts, artifacts, m),
		ProvisionCDN:     processors.NewProvisionCDN(txFactory, acmCerts, distributions, dnsProvider, m),
	}

	app := rest.NewApp(serverConfig)
	rest.RegisterHandlers(app, rest.NewServer(handlers, tokens, m.Registry))

	outboxPoller := scheduler.NewOutboxPoller(procs, txFactory, m, outboxConfig)
	pollerDone := make(chan struct{})
	go func() {
		outboxPoller.Start(ctx)
		close(pollerDone)
	}()

	go func() {
		if err := app.Listen(serverConfig.Addr); err != nil {
			log.Panic(err)
		}
	}()

	<-ctx.Done()
	slog.Info("Gracefully shutting down...")
	if err = app.Shutdown(); err != nil {
		slog.Error("error shutting down fiber", "err", err)
	}
	<-pollerDone

	slog.Info("Running cleanup tasks...")
	pool.Close()
	slog.Info("Fiber was successfully shutdown.")
}

// AccountKey prefers ACME_ACCOUNT_KEY and otherwise loads, or creates, the key kept in the artifact bucket.
func AccountKey(ctx context.Context, cfg *config.ACMEConfig, store *storage.Storage) (crypto.PrivateKey, error) {
	if cfg.AccountKey != "" {
		return acme.ParseAccountKey([]byte(cfg.AccountKey))
	}
	key, _, err := acme.LoadOrCreateAccountKey(ctx, store, cfg.AccountKeyKey)
	return key, err
}
