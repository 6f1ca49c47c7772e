package cdn

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/irplatform/ir-backend/internal/application/interfaces"
)

type CloudFrontAPI interface {
	CreateDistribution(ctx context.Context, params *cloudfront.CreateDistributionInput, optFns ...func(*cloudfront.Options)) (*cloudfront.CreateDistributionOutput, error)
}

type DistributionProvisioner struct {
	cfClient CloudFrontAPI
	now      func() time.Time
}

var _ interfaces.DistributionProvisioner = (*DistributionProvisioner)(nil)

func NewDistributionProvisioner(awsConfig aws.Config) *DistributionProvisioner {
	return NewDistributionProvisionerWithClient(cloudfront.NewFromConfig(awsConfig))
}

func NewDistributionProvisionerWithClient(client CloudFrontAPI) *DistributionProvisioner {
	return &DistributionProvisioner{cfClient: client, now: time.Now}
}

// CreateDistribution fronts origin with a distribution answering for alias over the given certificate.
func (d *DistributionProvisioner) CreateDistribution(ctx context.Context, alias, origin, certificateARN string) (*interfaces.Distribution, error) {
	res, err := d.cfClient.CreateDistribution(ctx, &cloudfront.CreateDistributionInput{
		DistributionConfig: &types.DistributionConfig{
			CallerReference: aws.String(fmt.Sprintf("%s-%d", alias, d.now().UnixNano())), // must be unique per request
			Comment:         aws.String("Distribution for " + alias),
			Enabled:         aws.Bool(true),

			Origins: &types.Origins{
				Quantity: aws.Int32(1),
				Items: []types.Origin{
					{
						Id:         aws.String(origin),
						DomainName: aws.String(origin),
						CustomOriginConfig: &types.CustomOriginConfig{
							HTTPPort:             aws.Int32(80),
							HTTPSPort:            aws.Int32(443),
							OriginProtocolPolicy: types.OriginProtocolPolicyHttpsOnly,
							OriginSslProtocols: &types.OriginSslProtocols{
								Quantity: aws.Int32(1),
								Items:    []types.SslProtocol{types.SslProtocolTLSv12},
							},
						},
					},
				},
			},

			DefaultCacheBehavior: &types.DefaultCacheBehavior{
				TargetOriginId:       aws.String(origin),
				ViewerProtocolPolicy: types.ViewerProtocolPolicyRedirectToHttps,
				AllowedMethods: &types.AllowedMethods{
					Quantity: aws.Int32(2),
					Items:    []types.Method{types.MethodGet, types.MethodHead},
					CachedMethods: &types.CachedMethods{
						Quantity: aws.Int32(2),
						Items:    []types.Method{types.MethodGet, types.MethodHead},
					},
				},
				ForwardedValues: &types.ForwardedValues{
					QueryString: aws.Bool(false),
					Cookies: &types.CookiePreference{
						Forward: types.ItemSelectionNone,
					},
				},
				TrustedSigners: &types.TrustedSigners{
					Enabled:  aws.Bool(false),
					Quantity: aws.Int32(0),
				},
				MinTTL: aws.Int64(0),
			},

			Aliases: &types.Aliases{
				Quantity: aws.Int32(1),
				Items:    []string{alias},
			},

			ViewerCertificate: &types.ViewerCertificate{
				ACMCertificateArn:      aws.String(certificateARN),
				SSLSupportMethod:       types.SSLSupportMethodSniOnly,
				MinimumProtocolVersion: types.MinimumProtocolVersionTLSv122021,
			},

			HttpVersion:   types.HttpVersionHttp2,
			IsIPV6Enabled: aws.Bool(false),
		},
	})
	if err != nil {
		slog.Error("err creating cloudfront distribution", "alias", alias, "err", err)
		return nil, fmt.Errorf("can't create distribution for %s, %v", alias, err)
	}

	return &interfaces.Distribution{
		ID:         aws.ToString(res.Distribution.Id),
		DomainName: aws.ToString(res.Distribution.DomainName),
	}, nil
}
