package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/irplatform/ir-backend/internal/domain/consts"
)

var ErrInvalidTransition = errors.New("invalid status transition")

type DNSValidation struct {
	Name  string
	Type  string
	Value string
}

type CustomerDomain struct {
	ID                  uuid.UUID
	CompanyName         string
	StockSymbol         string
	CompanyWebsite      string
	Subdomain           string
	MappedTo            string
	CustomerDNSProvider string
	CertificateARN      string
	CloudfrontDomain    string
	DistributionID      string
	Status              consts.DomainStatus
	DNSValidation       *DNSValidation
	ErrorMessage        string
	LastCheckedAt       *time.Time
	UserID              uuid.UUID
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// error is reachable from every status and is handled separately in CanTransition.
var domainTransitions = map[consts.DomainStatus][]consts.DomainStatus{
	consts.DomainStatusPending:           {consts.DomainStatusDNSValidation},
	consts.DomainStatusDNSValidation:     {consts.DomainStatusCertificateIssued},
	consts.DomainStatusCertificateIssued: {consts.DomainStatusCloudfrontCreated},
	consts.DomainStatusCloudfrontCreated: {},
	consts.DomainStatusError:             {consts.DomainStatusPending},
}

func CanTransition(from, to consts.DomainStatus) bool {
	if !to.Valid() {
		return false
	}
	if to == consts.DomainStatusError {
		return true
	}
	for _, allowed := range domainTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TransitionTo moves the record to status to, or returns ErrInvalidTransition.
func (d *CustomerDomain) TransitionTo(to consts.DomainStatus, now time.Time) error {
	if !CanTransition(d.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.Status, to)
	}
	d.Status = to
	if to != consts.DomainStatusError {
		d.ErrorMessage = ""
	}
	d.LastCheckedAt = &now
	d.UpdatedAt = now
	return nil
}

// Fail records msg and moves the record to error.
func (d *CustomerDomain) Fail(msg string, now time.Time) {
	d.Status = consts.DomainStatusError
	d.ErrorMessage = msg
	d.LastCheckedAt = &now
	d.UpdatedAt = now
}

func (d *CustomerDomain) CanRequestCertificate() bool {
	return d.Status == consts.DomainStatusPending || d.Status == consts.DomainStatusError
}

func DeriveSubdomain(prefix, userDomain string) string {
	return prefix + "." + strings.ToLower(strings.TrimSpace(userDomain))
}

func DeriveMappedTo(tickerSymbol, baseDomain string) string {
	return strings.ToLower(strings.TrimSpace(tickerSymbol)) + "." + baseDomain
}

// NewCustomerDomainForUser builds the pending record provisioned right after registration.
func NewCustomerDomainForUser(user *User, prefix, baseDomain, dnsProvider string, now time.Time) *CustomerDomain {
	return &CustomerDomain{
		ID:                  uuid.New(),
		CompanyName:         user.CompanyName,
		StockSymbol:         strings.ToUpper(user.StockTickerSymbol),
		CompanyWebsite:      "https://" + user.Domain,
		Subdomain:           DeriveSubdomain(prefix, user.Domain),
		MappedTo:            DeriveMappedTo(user.StockTickerSymbol, baseDomain),
		CustomerDNSProvider: dnsProvider,
		Status:              consts.DomainStatusPending,
		UserID:              user.ID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// ZoneOf returns the customer's registrable domain a subdomain lives in,
// i.e. the last two labels.
func ZoneOf(subdomain string) string {
	labels := strings.Split(strings.TrimSuffix(subdomain, "."), ".")
	if len(labels) <= 2 {
		return strings.Join(labels, ".")
	}
	return strings.Join(labels[len(labels)-2:], ".")
}
