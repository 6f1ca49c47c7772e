package dns

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/irplatform/ir-backend/internal/application/interfaces"
	"github.com/irplatform/ir-backend/internal/domain/consts"
	"github.com/irplatform/ir-backend/internal/infra/config"
)

var ErrRecordCreation = errors.New("DNS record creation failed")

// NewProvider picks the record adapter named by DNS_PROVIDER.
func NewProvider(cfg *config.DNSConfig, awsCfg aws.Config) (interfaces.DNSProvider, error) {
	switch consts.DNSProvider(cfg.Provider) {
	case consts.DNSProviderGoDaddy:
		return NewGoDaddy(cfg), nil
	case consts.DNSProviderRoute53:
		return NewRoute53(route53.NewFromConfig(awsCfg), cfg), nil
	}
	return nil, fmt.Errorf("unknown dns provider %q", cfg.Provider)
}

// RelativeName turns fqdn into a record name relative to zone, "@" for the apex.
func RelativeName(fqdn, zone string) string {
	fqdn = strings.TrimSuffix(strings.ToLower(fqdn), ".")
	zone = strings.TrimSuffix(strings.ToLower(zone), ".")
	if fqdn == zone {
		return "@"
	}
	return strings.TrimSuffix(fqdn, "."+zone)
}

func recordError(domain, name, recordType string, err error) error {
	return fmt.Errorf("%w: %s %s.%s: %v", ErrRecordCreation, recordType, name, domain, err)
}
