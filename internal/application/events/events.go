package events

import (
	"github.com/google/uuid"
)

// CustomerDomainRequested is written together with a new user and starts provisioning.
type CustomerDomainRequested struct {
	UserID    uuid.UUID
	Subdomain string
}

func (e CustomerDomainRequested) GetType() string {
	return "CustomerDomainRequested"
}

func (e CustomerDomainRequested) GetKey() string {
	return e.Subdomain
}

type CertificateRequested struct {
	Subdomain string
}

func (e CertificateRequested) GetType() string {
	return "CertificateRequested"
}

func (e CertificateRequested) GetKey() string {
	return e.Subdomain
}

type DistributionRequested struct {
	Subdomain string
}

func (e DistributionRequested) GetType() string {
	return "DistributionRequested"
}

func (e DistributionRequested) GetKey() string {
	return e.Subdomain
}
