package certs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	"github.com/aws/aws-sdk-go-v2/service/acm/types"
	"github.com/irplatform/ir-backend/internal/application/interfaces"
	"github.com/irplatform/ir-backend/internal/infra/config"
)

type ACMAPI interface {
	ImportCertificate(ctx context.Context, params *acm.ImportCertificateInput, optFns ...func(*acm.Options)) (*acm.ImportCertificateOutput, error)
	DescribeCertificate(ctx context.Context, params *acm.DescribeCertificateInput, optFns ...func(*acm.Options)) (*acm.DescribeCertificateOutput, error)
}

type ACMCertificates struct {
	client   ACMAPI
	timeout  time.Duration
	interval time.Duration
}

var _ interfaces.CertificateStore = (*ACMCertificates)(nil)

func NewACMCertificates(cfg aws.Config, certCfg *config.CertificateConfig) *ACMCertificates {
	return NewACMCertificatesWithClient(acm.NewFromConfig(cfg, func(o *acm.Options) {
		o.Region = "us-east-1" // region must be us-east-1 for CloudFront certificates
	}), certCfg)
}

func NewACMCertificatesWithClient(client ACMAPI, certCfg *config.CertificateConfig) *ACMCertificates {
	return &ACMCertificates{client: client, timeout: certCfg.PollTimeout, interval: certCfg.PollInterval}
}

// ImportCertificate uploads an externally issued certificate and returns its ARN.
func (a *ACMCertificates) ImportCertificate(ctx context.Context, cert *interfaces.IssuedCertificate) (string, error) {
	input := &acm.ImportCertificateInput{
		Certificate: leafOnly(cert.Certificate),
		PrivateKey:  cert.PrivateKey,
		Tags:        []types.Tag{{Key: aws.String("domain"), Value: aws.String(cert.Domain)}},
	}
	if len(cert.IssuerCertificate) > 0 {
		input.CertificateChain = cert.IssuerCertificate
	}

	res, err := a.client.ImportCertificate(ctx, input)
	if err != nil {
		return "", fmt.Errorf("can't import certificate for %s, %v", cert.Domain, err)
	}
	return aws.ToString(res.CertificateArn), nil
}

// WaitForCertificate polls until the certificate is ISSUED; false means the timeout elapsed first.
func (a *ACMCertificates) WaitForCertificate(ctx context.Context, arn string) (bool, error) {
	deadline := time.Now().Add(a.timeout)
	for {
		res, err := a.client.DescribeCertificate(ctx, &acm.DescribeCertificateInput{CertificateArn: aws.String(arn)})
		if err != nil {
			return false, fmt.Errorf("can't describe certificate %s, %v", arn, err)
		}
		status := res.Certificate.Status
		if status == types.CertificateStatusIssued {
			return true, nil
		}
		slog.Debug("certificate not issued yet", "arn", arn, "status", status)

		if !time.Now().Add(a.interval).Before(deadline) {
			return false, nil
		}

		t := time.NewTimer(a.interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return false, ctx.Err()
		case <-t.C:
		}
	}
}
