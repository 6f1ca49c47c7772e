package cdn_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/irplatform/ir-backend/internal/infra/cdn"
	"github.com/stretchr/testify/require"
)

type fakeCloudFront struct {
	input *cloudfront.CreateDistributionInput
}

func (f *fakeCloudFront) CreateDistribution(ctx context.Context, params *cloudfront.CreateDistributionInput, optFns ...func(*cloudfront.Options)) (*cloudfront.CreateDistributionOutput, error) {
	f.input = params
	return &cloudfront.CreateDistributionOutput{Distribution: &types.Distribution{
		Id:         aws.String("E123"),
		DomainName: aws.String("d111.cloudfront.net"),
	}}, nil
}

func TestCreateDistributionUsesAliasOriginAndCertificate(t *testing.T) {
	fake := &fakeCloudFront{}
	provisioner := cdn.NewDistributionProvisionerWithClient(fake)

	dist, err := provisioner.CreateDistribution(context.Background(), "investor.acme.com", "acme.debsom.shop", "arn:cert")

	require.NoError(t, err)
	require.Equal(t, "E123", dist.ID)
	require.Equal(t, "d111.cloudfront.net", dist.DomainName)

	cfg := fake.input.DistributionConfig
	require.Equal(t, []string{"investor.acme.com"}, cfg.Aliases.Items)
	require.Equal(t, "acme.debsom.shop", aws.ToString(cfg.Origins.Items[0].DomainName))
	require.Equal(t, types.OriginProtocolPolicyHttpsOnly, cfg.Origins.Items[0].CustomOriginConfig.OriginProtocolPolicy)
	require.Equal(t, "arn:cert", aws.ToString(cfg.ViewerCertificate.ACMCertificateArn))
	require.Equal(t, types.ViewerProtocolPolicyRedirectToHttps, cfg.DefaultCacheBehavior.ViewerProtocolPolicy)
	require.NotEmpty(t, aws.ToString(cfg.CallerReference))
}
