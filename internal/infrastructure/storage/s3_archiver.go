// Package storage archives rendered exports in object storage.
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
	"github.com/duka/backend/internal/infrastructure/export"
	infraconfig "github.com/duka/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// S3API is the subset of the S3 client the archiver uses
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3Archiver implements export.Archiver on AWS S3 or any S3-compatible store
type S3Archiver struct {
	client S3API
	bucket string
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

// S3ArchiverOption is a functional option for configuring S3Archiver
type S3ArchiverOption func(*S3Archiver)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3ArchiverOption {
	return func(a *S3Archiver) {
		a.logger = logger
	}
}

// WithClient replaces the S3 client
func WithClient(client S3API) S3ArchiverOption {
	return func(a *S3Archiver) {
		a.client = client
	}
}

// NewS3Archiver creates an archiver from configuration. Without static keys
// the default AWS credential chain is used.
func NewS3Archiver(ctx context.Context, cfg *infraconfig.StorageConfig, opts ...S3ArchiverOption) (*S3Archiver, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if (cfg.AccessKeyID == "") != (cfg.SecretAccessKey == "") {
		return nil, errors.New("storage access key and secret key must be set together")
	}

	archiver := &S3Archiver{
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(archiver)
	}
	if archiver.client != nil {
		return archiver, nil
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	archiver.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return archiver, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (a *S3Archiver) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	a.logger.Info("Creating storage bucket", zap.String("bucket", a.bucket))
	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(a.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Archive uploads the file under <prefix>/<shop>/<yyyy>/<mm>/<timestamp>-<name>
func (a *S3Archiver) Archive(ctx context.Context, shopID uuid.UUID, file *export.File) (string, error) {
	if file == nil || file.Name == "" {
		return "", errors.New("export file is required")
	}
	key := ArchiveKey(a.prefix, shopID, file.Name, a.now())

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(file.Body),
		ContentType:   aws.String(file.ContentType),
		ContentLength: aws.Int64(int64(len(file.Body))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive export: %w", err)
	}

	a.logger.Info("Export archived",
		zap.String("bucket", a.bucket),
		zap.String("key", key),
		zap.Int("size", len(file.Body)),
	)
	return key, nil
}

// Bucket returns the bucket name
func (a *S3Archiver) Bucket() string {
	return a.bucket
}

// ArchiveKey builds the object key of an archived export
func ArchiveKey(prefix string, shopID uuid.UUID, name string, at time.Time) string {
	at = at.UTC()
	return path.Join(prefix, shopID.String(), at.Format("2006"), at.Format("01"),
		at.Format("20060102T150405Z")+"-"+path.Base(name))
}

var _ export.Archiver = (*S3Archiver)(nil)
