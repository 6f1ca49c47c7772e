package consts

type DomainStatus string

const (
	DomainStatusPending           DomainStatus = "pending"
	DomainStatusDNSValidation     DomainStatus = "dns_validation"
	DomainStatusCertificateIssued DomainStatus = "certificate_issued"
	DomainStatusCloudfrontCreated DomainStatus = "cloudfront_created"
	DomainStatusError             DomainStatus = "error"
)

func (s DomainStatus) Valid() bool {
	switch s {
	case DomainStatusPending, DomainStatusDNSValidation, DomainStatusCertificateIssued,
		DomainStatusCloudfrontCreated, DomainStatusError:
		return true
	}
	return false
}

type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleCustomer UserRole = "customer"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

type DNSProvider string

const (
	DNSProviderGoDaddy DNSProvider = "GoDaddy"
	DNSProviderRoute53 DNSProvider = "Route53"
)
