package s3io

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// LatestMatching returns the lexically last key under prefix and its size.
func (cl *client) LatestMatching(ctx context.Context, prefix string) (string, int64, error) {
	loi := s3.ListObjectsV2Input{
		Bucket: cl.bucket,
		Prefix: aws.String(prefix),
	}

	var last *types.Object
	for {
		resp, err := cl.client.ListObjectsV2(ctx, &loi)
		if err != nil {
			return "", 0, err
		}
		if n := len(resp.Contents); n > 0 {
			last = &resp.Contents[n-1]
		}
		if !aws.ToBool(resp.IsTruncated) {
			break
		}
		loi.ContinuationToken = resp.NextContinuationToken
	}

	if last == nil {
		return "", 0, &ErrNoMatch{
			msg: fmt.Sprintf("no objects found with prefix: %s", prefix),
		}
	}
	return aws.ToString(last.Key), aws.ToInt64(last.Size), nil
}
