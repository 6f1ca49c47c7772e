// Package fakes holds recording stand-ins for the provisioning providers.
package fakes

import (
	"context"
	"fmt"
	"sync"

	"github.com/irplatform/ir-backend/internal/application/interfaces"
	"github.com/irplatform/ir-backend/internal/domain/entity"
)

type Metrics struct {
	mu          sync.Mutex
	Transitions []string
	Handled     map[string]int
}

func (m *Metrics) DomainStatusChanged(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Transitions = append(m.Transitions, status)
}

func (m *Metrics) OutboxEventHandled(event, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Handled == nil {
		m.Handled = map[string]int{}
	}
	m.Handled[event+"/"+result]++
}

type Record struct {
	Domain, Name, Type, Value string
}

type DNS struct {
	mu      sync.Mutex
	Records []Record
	Err     error
}

func (d *DNS) Name() string { return "GoDaddy" }

func (d *DNS) AddRecord(_ context.Context, domain, name, recordType, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.Records = append(d.Records, Record{domain, name, recordType, value})
	return nil
}

// Issuer publishes a fixed challenge through OnPublished and hands back a static bundle.
type Issuer struct {
	Err      error
	// Before runs ahead of the challenge, e.g. to cancel the caller's context.
	Before   func()
	Requests []interfaces.CertificateRequest

	mu sync.Mutex
}

func (i *Issuer) Obtain(ctx context.Context, req interfaces.CertificateRequest) (*interfaces.IssuedCertificate, error) {
	i.mu.Lock()
	i.Requests = append(i.Requests, req)
	i.mu.Unlock()
	if i.Before != nil {
		i.Before()
	}
	if req.OnPublished != nil {
		err := req.OnPublished(ctx, entity.DNSValidation{
			Name:  "_acme-challenge." + req.Domain,
			Type:  "TXT",
			Value: "challenge-value",
		})
		if err != nil {
			return nil, err
		}
	}
	if i.Err != nil {
		return nil, i.Err
	}
	return &interfaces.IssuedCertificate{
		Domain:            req.Domain,
		CertURL:           "https://acme.test/cert/1",
		Certificate:       []byte("CERT"),
		IssuerCertificate: []byte("ISSUER"),
		PrivateKey:        []byte("KEY"),
	}, nil
}

type CertificateStore struct {
	ImportErr error
	Issued    bool
	WaitErr   error
	Imported  []*interfaces.IssuedCertificate

	mu sync.Mutex
}

func (c *CertificateStore) ImportCertificate(_ context.Context, cert *interfaces.IssuedCertificate) (string, error) {
	if c.ImportErr != nil {
		return "", c.ImportErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Imported = append(c.Imported, cert)
	return fmt.Sprintf("arn:aws:acm:us-east-1:000000000000:certificate/%d", len(c.Imported)), nil
}

func (c *CertificateStore) WaitForCertificate(context.Context, string) (bool, error) {
	return c.Issued, c.WaitErr
}

type Distributions struct {
	Err     error
	Created []string
}

func (d *Distributions) CreateDistribution(_ context.Context, alias, origin, certificateARN string) (*interfaces.Distribution, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	d.Created = append(d.Created, alias+"->"+origin)
	return &interfaces.Distribution{ID: "E2TEST", DomainName: "d111111abcdef8.cloudfront.net"}, nil
}

type Artifacts struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

func (a *Artifacts) Put(_ context.Context, key string, body []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Objects == nil {
		a.Objects = map[string][]byte{}
	}
	a.Objects[key] = body
	return nil
}

func (a *Artifacts) Get(_ context.Context, key string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	body, ok := a.Objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return body, nil
}
