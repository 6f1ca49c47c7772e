package interfaces

import (
	"context"
	"encoding/json"
	"time"

	"github.com/irplatform/ir-backend/internal/application/consts"
	"github.com/irplatform/ir-backend/internal/domain/entity"
)

type OutboxEvent struct {
	ID        int64
	Event     string
	Key       string
	Status    consts.OutboxStatus
	Attempts  int
	Payload   json.RawMessage
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DNSProvider upserts a single record. name is relative to domain, "@" is the apex.
type DNSProvider interface {
	Name() string
	AddRecord(ctx context.Context, domain, name, recordType, value string) error
}

type CertificateRequest struct {
	Domain string
	// Zone is the customer's domain the challenge record is published in.
	Zone string
	// OnPublished runs once the DNS-01 challenge record is in place.
	OnPublished func(ctx context.Context, validation entity.DNSValidation) error
}

type IssuedCertificate struct {
	Domain            string
	CertURL           string
	Certificate       []byte
	IssuerCertificate []byte
	PrivateKey        []byte
}

type CertificateIssuer interface {
	Obtain(ctx context.Context, req CertificateRequest) (*IssuedCertificate, error)
}

type CertificateStore interface {
	ImportCertificate(ctx context.Context, cert *IssuedCertificate) (string, error)
	WaitForCertificate(ctx context.Context, arn string) (bool, error)
}

type Distribution struct {
	ID         string
	DomainName string
}

type DistributionProvisioner interface {
	CreateDistribution(ctx context.Context, alias, origin, certificateARN string) (*Distribution, error)
}

type ArtifactStore interface {
	Put(ctx context.Context, key string, body []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

type PasswordHasher interface {
	Hash(password string) ([]byte, error)
	Compare(hash []byte, password string) error
}

type Metrics interface {
	DomainStatusChanged(status string)
	OutboxEventHandled(event, result string)
}
