package application

import (
	"github.com/irplatform/ir-backend/internal/application/commands/auth"
	"github.com/irplatform/ir-backend/internal/application/commands/customerdomain"
	"github.com/irplatform/ir-backend/internal/application/processors"
	"github.com/irplatform/ir-backend/internal/application/query"
)

// Handlers is everything the REST layer calls into.
type Handlers struct {
	*auth.Auth
	CreateCustomerDomain *customerdomain.CreateCustomerDomain
	UpdateCustomerDomain *customerdomain.UpdateCustomerDomain
	RequestCertificate   *customerdomain.RequestCertificate
	GetCustomerDomain    *query.GetCustomerDomain
	ListCustomerDomains  *query.ListCustomerDomains
	ListDomainJobs       *query.ListDomainJobs
	GetUser              *query.GetUser
	HealthCheck          *query.HealthCheck
}

// Processors handle outbox events.
type Processors struct {
	ProvisionDomain  *processors.ProvisionDomain
	IssueCertificate *processors.IssueCertificate
	ProvisionCDN     *processors.ProvisionCDN
}
