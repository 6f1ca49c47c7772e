package acme

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/go-acme/lego/v4/certcrypto"
	"github.com/go-acme/lego/v4/certificate"
	"github.com/go-acme/lego/v4/challenge"
	"github.com/go-acme/lego/v4/challenge/dns01"
	"github.com/go-acme/lego/v4/lego"
	"github.com/go-acme/lego/v4/registration"
	"github.com/irplatform/ir-backend/internal/application/interfaces"
	"github.com/irplatform/ir-backend/internal/domain/entity"
	"github.com/irplatform/ir-backend/internal/infra/config"
	"github.com/irplatform/ir-backend/internal/infra/storage"
	"github.com/stretchr/testify/require"
)

type record struct {
	domain, name, recordType, value string
}

type fakeDNS struct {
	records []record
	err     error
}

func (f *fakeDNS) Name() string { return "fake" }

func (f *fakeDNS) AddRecord(ctx context.Context, domain, name, recordType, value string) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, record{domain, name, recordType, value})
	return nil
}

type fakeClient struct {
	known      bool
	registered bool
	provider   challenge.Provider
	obtainErr  error
}

func (f *fakeClient) Register(options registration.RegisterOptions) (*registration.Resource, error) {
	f.registered = true
	return &registration.Resource{URI: "https://ca/acct/1"}, nil
}

func (f *fakeClient) ResolveAccountByKey() (*registration.Resource, error) {
	if !f.known {
		return nil, errors.New("account does not exist")
	}
	return &registration.Resource{URI: "https://ca/acct/1"}, nil
}

func (f *fakeClient) AccountURI() string { return "https://ca/acct/1" }

func (f *fakeClient) SetDNS01Provider(provider challenge.Provider, opts ...dns01.ChallengeOption) error {
	f.provider = provider
	return nil
}

func (f *fakeClient) Obtain(request certificate.ObtainRequest) (*certificate.Resource, error) {
	if err := f.provider.Present(request.Domains[0], "token", "key-auth"); err != nil {
		return nil, err
	}
	if f.obtainErr != nil {
		return nil, f.obtainErr
	}
	return &certificate.Resource{
		Domain:            request.Domains[0],
		CertURL:           "https://ca/cert/1",
		Certificate:       []byte("cert"),
		IssuerCertificate: []byte("issuer"),
		PrivateKey:        []byte("key"),
	}, nil
}

func newTestIssuer(t *testing.T, dnsProvider interfaces.DNSProvider, client *fakeClient) *Issuer {
	t.Setenv("LEGO_DISABLE_CNAME_SUPPORT", "true")
	key, err := certcrypto.GeneratePrivateKey(certcrypto.EC256)
	require.NoError(t, err)

	issuer := NewIssuer(&config.ACMEConfig{
		Email:        "ops@debsom.shop",
		DirectoryURL: lego.LEDirectoryStaging,
		PollAttempts: 12,
		PollInterval: 10 * time.Second,
	}, dnsProvider, key)
	issuer.clientFactory = func(*lego.Config) (acmeClient, error) { return client, nil }
	return issuer
}

func TestObtainPublishesChallengeRecordAndReportsIt(t *testing.T) {
	dnsProvider := &fakeDNS{}
	client := &fakeClient{known: true}
	issuer := newTestIssuer(t, dnsProvider, client)

	var published entity.DNSValidation
	cert, err := issuer.Obtain(context.Background(), interfaces.CertificateRequest{
		Domain: "investor.acme.com",
		Zone:   "acme.com",
		OnPublished: func(ctx context.Context, v entity.DNSValidation) error {
			published = v
			return nil
		},
	})
	require.NoError(t, err)

	sum := sha256.Sum256([]byte("key-auth"))
	want := base64.RawURLEncoding.EncodeToString(sum[:])

	require.Equal(t, []record{{"acme.com", "_acme-challenge.investor", "TXT", want}}, dnsProvider.records)
	require.Equal(t, entity.DNSValidation{Name: "_acme-challenge.investor.acme.com", Type: "TXT", Value: want}, published)
	require.Equal(t, []byte("cert"), cert.Certificate)
	require.Equal(t, []byte("issuer"), cert.IssuerCertificate)
	require.Equal(t, "investor.acme.com", cert.Domain)
	require.False(t, client.registered)
}

func TestObtainRegistersUnknownAccount(t *testing.T) {
	client := &fakeClient{known: false}
	issuer := newTestIssuer(t, &fakeDNS{}, client)

	_, err := issuer.Obtain(context.Background(), interfaces.CertificateRequest{Domain: "investor.acme.com", Zone: "acme.com"})

	require.NoError(t, err)
	require.True(t, client.registered)
}

func TestObtainFailsWhenRecordCannotBePublished(t *testing.T) {
	boom := errors.New("DNS record creation failed")
	issuer := newTestIssuer(t, &fakeDNS{err: boom}, &fakeClient{known: true})
	called := false

	_, err := issuer.Obtain(context.Background(), interfaces.CertificateRequest{
		Domain: "investor.acme.com",
		Zone:   "acme.com",
		OnPublished: func(ctx context.Context, v entity.DNSValidation) error {
			called = true
			return nil
		},
	})

	require.True(t, errors.Is(err, boom))
	require.False(t, called)
}

func TestObtainWithoutAccountKeyFails(t *testing.T) {
	issuer := NewIssuer(&config.ACMEConfig{}, &fakeDNS{}, nil)

	_, err := issuer.Obtain(context.Background(), interfaces.CertificateRequest{Domain: "investor.acme.com"})

	require.Error(t, err)
}

func TestProviderTimeoutIsAttemptsTimesInterval(t *testing.T) {
	p := &dnsChallengeProvider{attempts: 12, interval: 10 * time.Second}

	timeout, interval := p.Timeout()

	require.Equal(t, 2*time.Minute, timeout)
	require.Equal(t, 10*time.Second, interval)
}

type memArtifacts struct {
	objects map[string][]byte
}

func (m *memArtifacts) Put(ctx context.Context, key string, body []byte) error {
	m.objects[key] = body
	return nil
}

func (m *memArtifacts) Get(ctx context.Context, key string) ([]byte, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return data, nil
}

func TestLoadOrCreateAccountKeyGeneratesOnceThenReuses(t *testing.T) {
	store := &memArtifacts{objects: map[string][]byte{}}
	ctx := context.Background()

	first, created, err := LoadOrCreateAccountKey(ctx, store, "acme/account.key")
	require.NoError(t, err)
	require.True(t, created)
	require.Contains(t, string(store.objects["acme/account.key"]), "PRIVATE KEY")

	second, created, err := LoadOrCreateAccountKey(ctx, store, "acme/account.key")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, certcrypto.PEMEncode(first), certcrypto.PEMEncode(second))
}
