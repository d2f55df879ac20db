package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/veldt-labs/minutex/internal/domain"
)

// ArchiveConfig holds configuration for the document archive
type ArchiveConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UsePathStyle    bool
}

// DocumentArchive stores uploaded source documents in S3-compatible
// storage so the original file can be retrieved after ingestion.
type DocumentArchive struct {
	client            *s3.Client
	presignClient     *s3.PresignClient
	bucket            string
	downloadURLExpiry time.Duration
}

// NewDocumentArchive creates a new DocumentArchive with the given configuration
func NewDocumentArchive(ctx context.Context, cfg ArchiveConfig) (*DocumentArchive, error) {
	// Custom resolver for S3-compatible endpoints (RustFS, MinIO)
	customResolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			if cfg.Endpoint != "" {
				return aws.Endpoint{
					URL:               cfg.Endpoint,
					HostnameImmutable: true,
				}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		},
	)

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
		config.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &DocumentArchive{
		client:            client,
		presignClient:     s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		downloadURLExpiry: 1 * time.Hour,
	}, nil
}

// objectKey builds the archive key for a meeting's source document. One
// document per meeting: a re-ingest overwrites the previous upload.
func objectKey(meetingID, format string) string {
	return fmt.Sprintf("meetings/%s/source.%s", meetingID, format)
}

func contentTypeFor(format string) string {
	switch strings.ToLower(format) {
	case "docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case "md":
		return "text/markdown"
	case "txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

// Store uploads a source document and returns its object key
func (a *DocumentArchive) Store(ctx context.Context, meetingID, format string, data []byte) (string, error) {
	key := objectKey(meetingID, format)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentTypeFor(format)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store document: %w", err)
	}

	return key, nil
}

// DownloadURL returns a presigned URL for the meeting's archived source
// document, or domain.ErrArchiveNotFound when nothing was archived.
func (a *DocumentArchive) DownloadURL(ctx context.Context, meetingID string) (string, error) {
	key, err := a.findKey(ctx, meetingID)
	if err != nil {
		return "", err
	}

	presignedReq, err := a.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = a.downloadURLExpiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate download URL: %w", err)
	}

	return presignedReq.URL, nil
}

// Delete removes the meeting's archived source document. A meeting with
// no archived document is not an error.
func (a *DocumentArchive) Delete(ctx context.Context, meetingID string) error {
	key, err := a.findKey(ctx, meetingID)
	if err != nil {
		if err == domain.ErrArchiveNotFound {
			return nil
		}
		return err
	}

	_, err = a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	return nil
}

// findKey locates the archived object for a meeting. The format of the
// original upload is not known to callers, so the key is resolved by
// prefix.
func (a *DocumentArchive) findKey(ctx context.Context, meetingID string) (string, error) {
	prefix := fmt.Sprintf("meetings/%s/", meetingID)

	output, err := a.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(a.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return "", fmt.Errorf("failed to list archived documents: %w", err)
	}

	if len(output.Contents) == 0 {
		return "", domain.ErrArchiveNotFound
	}

	return aws.ToString(output.Contents[0].Key), nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (a *DocumentArchive) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}
