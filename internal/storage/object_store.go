package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrNotConfigured = errors.New("object storage is not configured")

const slipKeyPrefix = "slips/"

// ObjectStore mirrors rendered slips to an S3-compatible bucket. It is
// optional: local disk stays the canonical artifact store and the service
// runs without it.
type ObjectStore struct {
	client        *s3.Client
	bucket        string
	endpoint      string
	publicBaseURL string
}

type objectStoreConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	PublicBaseURL string
}

func NewObjectStoreFromEnv() (*ObjectStore, error) {
	cfg := objectStoreConfig{
		Endpoint:      strings.TrimSpace(os.Getenv("SLIP_S3_ENDPOINT")),
		AccessKey:     strings.TrimSpace(os.Getenv("SLIP_S3_ACCESS_KEY_ID")),
		SecretKey:     strings.TrimSpace(os.Getenv("SLIP_S3_SECRET_ACCESS_KEY")),
		Bucket:        strings.TrimSpace(os.Getenv("SLIP_S3_BUCKET")),
		Region:        strings.TrimSpace(os.Getenv("SLIP_S3_REGION")),
		PublicBaseURL: strings.TrimRight(strings.TrimSpace(os.Getenv("SLIP_S3_PUBLIC_BASE_URL")), "/"),
	}

	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Region == "" {
		cfg.Region = "auto"
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if service == s3.ServiceID {
			return aws.Endpoint{
				URL:               cfg.Endpoint,
				HostnameImmutable: true,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsCfg := aws.Config{
		Region:                      cfg.Region,
		Credentials:                 credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		EndpointResolverWithOptions: resolver,
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &ObjectStore{
		client:        client,
		bucket:        cfg.Bucket,
		endpoint:      strings.TrimRight(cfg.Endpoint, "/"),
		publicBaseURL: cfg.PublicBaseURL,
	}, nil
}

// UploadSlip writes one encoded slip under the slips/ prefix and returns its
// public URL.
func (o *ObjectStore) UploadSlip(ctx context.Context, name string, data []byte) (string, error) {
	if o == nil || o.client == nil {
		return "", ErrNotConfigured
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty slip file")
	}

	key := slipKeyPrefix + strings.TrimLeft(name, "/")
	input := &s3.PutObjectInput{
		Bucket:        &o.bucket,
		Key:           &key,
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("image/png"),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if _, err := o.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("slip upload failed: %w", err)
	}
	return o.objectURL(key), nil
}

func (o *ObjectStore) objectURL(key string) string {
	if o.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", o.publicBaseURL, o.bucket, key)
	}
	return fmt.Sprintf("%s/%s/%s", o.endpoint, o.bucket, key)
}
