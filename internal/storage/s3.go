package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/verdantlabs/herbarium/internal/config"
	"github.com/verdantlabs/herbarium/internal/domain"
)

// S3ImageStore uploads image bytes to an S3-compatible bucket and returns
// publicly reachable URLs.
type S3ImageStore struct {
	client *s3.Client
	cfg    config.ObjectStore
}

// NewS3ImageStore builds the store from static credentials. Endpoint may
// point at MinIO or any S3-compatible provider.
func NewS3ImageStore(ctx context.Context, cfg config.ObjectStore) (*S3ImageStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load object store config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3ImageStore{client: client, cfg: cfg}, nil
}

// Upload stores the image bytes under a date-partitioned random key inside
// folder and returns the public URL.
func (s *S3ImageStore) Upload(ctx context.Context, data []byte, folder string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image buffer", domain.ErrValidation)
	}

	key := objectKey(folder)
	contentType := http.DetectContentType(data)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpload, err)
	}

	return s.publicURL(key), nil
}

func (s *S3ImageStore) publicURL(key string) string {
	if s.cfg.PublicBaseURL != "" {
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + key
	}
	if s.cfg.Endpoint != "" {
		return strings.TrimRight(s.cfg.Endpoint, "/") + "/" + s.cfg.Bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}

func objectKey(folder string) string {
	d := time.Now()
	return fmt.Sprintf("%s/%d/%02d/%02d/%s", folder, d.Year(), d.Month(), d.Day(), uuid.New())
}
