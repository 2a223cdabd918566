package archive

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Archiver keeps a copy of every generated export
type Archiver interface {
	Store(ctx context.Context, key, contentType string, data []byte) error
}

// Key places a file under exports/YYYY/MM/
func Key(filename string, now time.Time) string {
	return path.Join("exports", now.Format("2006"), now.Format("01"), filename)
}

// Nop discards exports
type Nop struct{}

// Store implements Archiver
func (Nop) Store(context.Context, string, string, []byte) error {
	return nil
}

// LocalArchiver writes exports below a base directory
type LocalArchiver struct {
	baseDir string
}

// NewLocalArchiver creates an archiver rooted at baseDir
func NewLocalArchiver(baseDir string) *LocalArchiver {
	return &LocalArchiver{baseDir: baseDir}
}

// Store implements Archiver
func (la *LocalArchiver) Store(ctx context.Context, key, _ string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	filePath := filepath.Join(la.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write archive file: %w", err)
	}
	return nil
}

// S3Archiver uploads exports to a bucket
type S3Archiver struct {
	client *s3.Client
	bucket string
}

// NewS3Archiver loads the default AWS credential chain for region
func NewS3Archiver(ctx context.Context, bucket, region string) (*S3Archiver, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	return &S3Archiver{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

// Store implements Archiver
func (sa *S3Archiver) Store(ctx context.Context, key, contentType string, data []byte) error {
	_, err := sa.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(sa.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}
