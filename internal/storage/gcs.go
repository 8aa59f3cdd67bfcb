package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSPublisher uploads exported catalogs to a Google Cloud Storage bucket
type GCSPublisher struct {
	client       *storage.Client
	bucket       string
	objectPrefix string
}

// NewGCSPublisher creates a new GCSPublisher instance
func NewGCSPublisher(ctx context.Context, bucketName, objectPrefix, credentialsFile string) (*GCSPublisher, error) {
	var client *storage.Client
	var err error

	if credentialsFile != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	} else {
		// Use application default credentials
		client, err = storage.NewClient(ctx)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSPublisher{
		client:       client,
		bucket:       bucketName,
		objectPrefix: objectPrefix,
	}, nil
}

func (p *GCSPublisher) objectName(name string) string {
	prefix := strings.Trim(p.objectPrefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// Publish uploads a local file to the bucket and returns its gs:// location
func (p *GCSPublisher) Publish(ctx context.Context, localPath, objectName string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", localPath, err)
	}
	defer f.Close()

	objectName = p.objectName(objectName)

	ctx, cancel := context.WithTimeout(ctx, time.Minute*5)
	defer cancel()

	wc := p.client.Bucket(p.bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = "application/xml"
	if _, err = io.Copy(wc, f); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to copy file to GCS: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", p.bucket, objectName), nil
}

// Close closes the GCS client
func (p *GCSPublisher) Close() error {
	return p.client.Close()
}
