package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/df07/go-pathtracer/pkg/core"
)

// UploadTimeout bounds a single upload
const UploadTimeout = 30 * time.Second

// ErrNotConfigured is returned when uploads are requested without a bucket
var ErrNotConfigured = errors.New("s3 storage not configured")

// S3Config holds the connection settings of an S3-compatible bucket
type S3Config struct {
	Endpoint  string // Empty for AWS, otherwise e.g. a MinIO or Spaces URL
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Prefix    string // Prepended to every object key
	ACL       string // e.g. "public-read"; empty leaves the bucket default
}

// Enabled reports whether enough is configured to attempt uploads
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// S3Uploader uploads rendered images to a bucket
type S3Uploader struct {
	config S3Config
	client s3iface.S3API
	logger core.Logger
}

// NewS3Uploader creates a session for the configured bucket
func NewS3Uploader(config S3Config, logger core.Logger) (*S3Uploader, error) {
	if !config.Enabled() {
		return nil, ErrNotConfigured
	}

	awsConfig := &aws.Config{
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(config.Endpoint != ""),
	}
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
	}
	if config.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, "")
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	return NewS3UploaderWithClient(config, s3.New(sess), logger), nil
}

// NewS3UploaderWithClient wraps an existing client
func NewS3UploaderWithClient(config S3Config, client s3iface.S3API, logger core.Logger) *S3Uploader {
	return &S3Uploader{config: config, client: client, logger: logger}
}

// ObjectKey joins the configured prefix and name into an object key
func (u *S3Uploader) ObjectKey(name string) string {
	prefix := strings.Trim(u.config.Prefix, "/")
	name = strings.TrimLeft(name, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// Upload stores data under the prefixed key and returns the full key
func (u *S3Uploader) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	key := u.ObjectKey(name)
	size := int64(len(data))

	input := &s3.PutObjectInput{
		Bucket:        aws.String(u.config.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	}
	if u.config.ACL != "" {
		input.ACL = aws.String(u.config.ACL)
	}

	if _, err := u.client.PutObjectWithContext(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	if u.logger != nil {
		u.logger.Printf("Uploaded %s to s3://%s (%d bytes)\n", key, u.config.Bucket, size)
	}
	return key, nil
}
