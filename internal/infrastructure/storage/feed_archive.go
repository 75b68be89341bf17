// Package storage archives raw supplier feeds in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/erp/dropship/internal/domain/dropship"
	infraconfig "github.com/erp/dropship/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ dropship.FeedArchive = (*S3FeedArchive)(nil)

// S3FeedArchive stores raw feed bodies under <prefix>/<CODE>/<yyyy>/<mm>/<dd>/<timestamp>.json.
// It is compatible with any S3-compatible storage (AWS S3, MinIO, RustFS, etc.)
type S3FeedArchive struct {
	client *s3.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// S3FeedArchiveOption is a functional option for configuring S3FeedArchive
type S3FeedArchiveOption func(*S3FeedArchive)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3FeedArchiveOption {
	return func(s *S3FeedArchive) {
		s.logger = logger
	}
}

// NewS3FeedArchive creates an archive from configuration
func NewS3FeedArchive(cfg *infraconfig.StorageConfig, opts ...S3FeedArchiveOption) (*S3FeedArchive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("storage access key and secret key are required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
		// S3-compatible stores often reject the default trailing checksums
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	archive := &S3FeedArchive{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(archive)
	}
	return archive, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *S3FeedArchive) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating feed archive bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Store uploads the raw feed body and returns its object key
func (s *S3FeedArchive) Store(ctx context.Context, supplierCode string, feed *dropship.CatalogFeed) (string, error) {
	if feed == nil || len(feed.Raw) == 0 {
		return "", errors.New("feed body is empty")
	}

	key := ObjectKey(s.prefix, supplierCode, feed.FetchedAt)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(feed.Raw),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"supplier-code": dropship.NormalizeCode(supplierCode),
			"rows":          fmt.Sprintf("%d", len(feed.Rows)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload feed: %w", err)
	}

	s.logger.Debug("Feed archived", zap.String("bucket", s.bucket), zap.String("key", key), zap.Int("bytes", len(feed.Raw)))
	return key, nil
}

// Bucket returns the bucket name
func (s *S3FeedArchive) Bucket() string {
	return s.bucket
}

// ObjectKey builds the archive key for a feed fetched at t
func ObjectKey(prefix, supplierCode string, t time.Time) string {
	t = t.UTC()
	return path.Join(
		prefix,
		dropship.NormalizeCode(supplierCode),
		t.Format("2006/01/02"),
		t.Format("20060102T150405.000000000Z")+".json",
	)
}
