// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package filestorage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
)

const gcsTimeout = 50 * time.Second

var _ FileStorage = (*GCSStorage)(nil)

// GCSStorage stores files in a Google Cloud Storage bucket
type GCSStorage struct {
	client *storage.Client
	bucket string
}

// NewGCSStorage creates a client using application default credentials
func NewGCSStorage(ctx context.Context, bucket string) (*GCSStorage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCSStorage{client: client, bucket: bucket}, nil
}

// Upload copies b to bucket/name and returns its public URL
func (g *GCSStorage) Upload(ctx context.Context, b []byte, name, contentType string) (string, error) {
	if !validName(name) {
		return "", ErrInvalidName
	}
	ctx, cancel := context.WithTimeout(ctx, gcsTimeout)
	defer cancel()

	wc := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := io.Copy(wc, bytes.NewReader(b)); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to upload %s/%s: %w", g.bucket, name, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer for %s/%s: %w", g.bucket, name, err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, name), nil
}

func (g *GCSStorage) Delete(ctx context.Context, name string) error {
	if !validName(name) {
		return ErrInvalidName
	}
	ctx, cancel := context.WithTimeout(ctx, gcsTimeout)
	defer cancel()

	err := g.client.Bucket(g.bucket).Object(name).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", g.bucket, name, err)
	}
	return nil
}

// Close releases the client
func (g *GCSStorage) Close() error {
	return g.client.Close()
}
