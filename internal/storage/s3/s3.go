package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/panlogistics/blog/internal/storage"
)

const backendName = "s3"

// Config options for the S3 backend
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	AccessKeyID     string // optional static credentials
	SecretAccessKey string
	Endpoint        string // custom endpoint for S3-compatible services (MinIO, R2)
	UsePathStyle    bool
	PublicBaseURL   string // base URL objects are publicly reachable under
}

type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type deleter interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Backend stores media objects in a single bucket.
type Backend struct {
	bucket    string
	publicURL string
	uploader  uploader
	deleter   deleter
}

// New creates an S3 backend from static or default AWS credentials.
func New(ctx context.Context, config Config) (*Backend, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	if config.Region == "" {
		config.Region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Region),
	}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = config.UsePathStyle
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
		}
	})

	return newBackend(config.Bucket, publicBaseURL(config), manager.NewUploader(client), client), nil
}

func newBackend(bucket, publicURL string, up uploader, del deleter) *Backend {
	return &Backend{
		bucket:    bucket,
		publicURL: publicURL,
		uploader:  up,
		deleter:   del,
	}
}

func publicBaseURL(config Config) string {
	if config.PublicBaseURL != "" {
		return config.PublicBaseURL
	}
	if config.Endpoint != "" {
		return strings.TrimRight(config.Endpoint, "/") + "/" + config.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", config.Bucket, config.Region)
}

func (b *Backend) Name() string {
	return backendName
}

// Put uploads the object through the multipart-aware uploader.
func (b *Backend) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	if err := storage.ValidateKey(key); err != nil {
		return "", &storage.Error{Backend: backendName, Key: key, Op: "put", Err: err}
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := b.uploader.Upload(ctx, input); err != nil {
		return "", &storage.Error{Backend: backendName, Key: key, Op: "put", Err: err}
	}

	return storage.JoinURL(b.publicURL, key), nil
}

// Delete removes the object. NoSuchKey from S3-compatible services counts as success.
func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := storage.ValidateKey(key); err != nil {
		return &storage.Error{Backend: backendName, Key: key, Op: "delete", Err: err}
	}

	_, err := b.deleter.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err == nil || isNoSuchKey(err) {
		return nil
	}
	return &storage.Error{Backend: backendName, Key: key, Op: "delete", Err: err}
}

func isNoSuchKey(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "NoSuchKey"
	}
	return false
}
