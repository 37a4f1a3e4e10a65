package repositories

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ImageStore saves uploaded images and returns the URL they are served from.
type ImageStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// S3PutObjectAPI is the slice of the S3 client used for uploads.
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ImageStore uploads to an S3-compatible bucket.
type S3ImageStore struct {
	client        S3PutObjectAPI
	bucket        string
	publicBaseURL string
}

// S3Options configures NewS3ImageStoreFromEnv.
type S3Options struct {
	Bucket        string
	PublicBaseURL string
	Region        string
	// Endpoint overrides the AWS endpoint, e.g. for LocalStack or MinIO.
	Endpoint string
}

// NewS3ImageStore creates an S3ImageStore around an existing client.
func NewS3ImageStore(client S3PutObjectAPI, bucket, publicBaseURL string) *S3ImageStore {
	return &S3ImageStore{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

// NewS3ImageStoreFromEnv loads AWS credentials from the default chain.
func NewS3ImageStoreFromEnv(ctx context.Context, opts S3Options) (*S3ImageStore, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	base := opts.PublicBaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, cfg.Region)
	}
	return NewS3ImageStore(client, opts.Bucket, base), nil
}

// Upload puts body under key and returns its public URL.
func (s *S3ImageStore) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("max-age=3600"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return s.publicBaseURL + "/" + key, nil
}
