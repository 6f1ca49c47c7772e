package acme

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-acme/lego/v4/certcrypto"
	"github.com/go-acme/lego/v4/certificate"
	"github.com/go-acme/lego/v4/challenge"
	"github.com/go-acme/lego/v4/challenge/dns01"
	"github.com/go-acme/lego/v4/lego"
	"github.com/go-acme/lego/v4/registration"
	"github.com/irplatform/ir-backend/internal/application/interfaces"
	"github.com/irplatform/ir-backend/internal/infra/config"
)

// Issuer obtains certificates from an ACME CA answering DNS-01 challenges.
// Every Obtain call uses its own lego client, so calls may run concurrently.
type Issuer struct {
	cfg           *config.ACMEConfig
	dns           interfaces.DNSProvider
	accountKey    crypto.PrivateKey
	clientFactory clientFactory
}

var _ interfaces.CertificateIssuer = (*Issuer)(nil)

func NewIssuer(cfg *config.ACMEConfig, dnsProvider interfaces.DNSProvider, accountKey crypto.PrivateKey) *Issuer {
	return &Issuer{
		cfg:           cfg,
		dns:           dnsProvider,
		accountKey:    accountKey,
		clientFactory: defaultClientFactory,
	}
}

func (i *Issuer) newClient() (acmeClient, error) {
	if i.accountKey == nil {
		return nil, errors.New("acme account key is not provisioned")
	}
	user := &accountUser{email: i.cfg.Email, key: i.accountKey}

	legoCfg := lego.NewConfig(user)
	legoCfg.CADirURL = i.cfg.DirectoryURL
	legoCfg.Certificate.KeyType = certcrypto.RSA2048

	client, err := i.clientFactory(legoCfg)
	if err != nil {
		return nil, fmt.Errorf("create acme client: %w", err)
	}

	reg, err := client.ResolveAccountByKey()
	if err != nil {
		slog.Info("acme account unknown to the CA, registering", "email", i.cfg.Email)
		reg, err = client.Register(registration.RegisterOptions{TermsOfServiceAgreed: true})
		if err != nil {
			return nil, fmt.Errorf("register account: %w", err)
		}
	}
	user.registration = reg

	return client, nil
}

// EnsureAccount resolves or registers the ACME account and returns its URI.
func (i *Issuer) EnsureAccount(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	client, err := i.newClient()
	if err != nil {
		return "", err
	}
	return client.AccountURI(), nil
}

func (i *Issuer) Obtain(ctx context.Context, req interfaces.CertificateRequest) (*interfaces.IssuedCertificate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client, err := i.newClient()
	if err != nil {
		return nil, err
	}

	provider := &dnsChallengeProvider{
		ctx:      ctx,
		dns:      i.dns,
		req:      req,
		attempts: i.cfg.PollAttempts,
		interval: i.cfg.PollInterval,
	}
	var opts []dns01.ChallengeOption
	if len(i.cfg.Nameservers) > 0 {
		opts = append(opts, dns01.AddRecursiveNameservers(dns01.ParseNameservers(i.cfg.Nameservers)))
	}
	if err = client.SetDNS01Provider(provider, opts...); err != nil {
		return nil, fmt.Errorf("configure dns-01 provider: %w", err)
	}

	slog.Info("requesting certificate", "domain", req.Domain)
	res, err := client.Obtain(certificate.ObtainRequest{
		Domains: []string{req.Domain},
		Bundle:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("obtain certificate: %w", err)
	}
	if len(res.Certificate) == 0 || len(res.PrivateKey) == 0 {
		return nil, errors.New("empty certificate payload received from ACME server")
	}

	return &interfaces.IssuedCertificate{
		Domain:            req.Domain,
		CertURL:           res.CertURL,
		Certificate:       res.Certificate,
		IssuerCertificate: res.IssuerCertificate,
		PrivateKey:        res.PrivateKey,
	}, nil
}

type clientFactory func(*lego.Config) (acmeClient, error)

type acmeClient interface {
	Register(options registration.RegisterOptions) (*registration.Resource, error)
	ResolveAccountByKey() (*registration.Resource, error)
	AccountURI() string
	SetDNS01Provider(provider challenge.Provider, opts ...dns01.ChallengeOption) error
	Obtain(request certificate.ObtainRequest) (*certificate.Resource, error)
}

func defaultClientFactory(cfg *lego.Config) (acmeClient, error) {
	client, err := lego.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &legoClientAdapter{client: client, user: cfg.User}, nil
}

type legoClientAdapter struct {
	client *lego.Client
	user   registration.User
}

func (l *legoClientAdapter) Register(options registration.RegisterOptions) (*registration.Resource, error) {
	return l.client.Registration.Register(options)
}

func (l *legoClientAdapter) ResolveAccountByKey() (*registration.Resource, error) {
	return l.client.Registration.ResolveAccountByKey()
}

func (l *legoClientAdapter) AccountURI() string {
	if reg := l.user.GetRegistration(); reg != nil {
		return reg.URI
	}
	return ""
}

func (l *legoClientAdapter) SetDNS01Provider(provider challenge.Provider, opts ...dns01.ChallengeOption) error {
	return l.client.Challenge.SetDNS01Provider(provider, opts...)
}

func (l *legoClientAdapter) Obtain(request certificate.ObtainRequest) (*certificate.Resource, error) {
	return l.client.Certificate.Obtain(request)
}
