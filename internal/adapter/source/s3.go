package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// objectGetter is the subset of the S3 client the fetcher uses.
type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Fetcher reads the document from an S3 object. Credentials and region
// come from the default AWS configuration chain.
type S3Fetcher struct {
	client objectGetter
	bucket string
	key    string
	logger *slog.Logger
}

// NewS3Fetcher loads the default AWS configuration and creates a fetcher for
// s3://bucket/key.
func NewS3Fetcher(ctx context.Context, bucket, key string, logger *slog.Logger) (*S3Fetcher, error) {
	if bucket == "" || key == "" {
		return nil, errors.New("s3 data URL needs both bucket and key")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &S3Fetcher{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		key:    key,
		logger: logger,
	}, nil
}

func (f *S3Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(f.key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", f.bucket, f.key, err)
	}
	defer out.Body.Close()

	data, err := readDocument(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", f.bucket, f.key, err)
	}

	f.logger.Debug("document fetched", "bucket", f.bucket, "key", f.key, "bytes", len(data))
	return data, nil
}
