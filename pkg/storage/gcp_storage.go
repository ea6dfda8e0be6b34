package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCPStorage keeps catalog images in a Cloud Storage bucket.
type GCPStorage struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewGCPStorage(ctx context.Context, bucket, credentialsFile, cdnDomain string) (*GCPStorage, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCPStorage{
		client:  client,
		bucket:  bucket,
		baseURL: publicBaseURL(cdnDomain, "https://storage.googleapis.com/"+bucket),
	}, nil
}

func (g *GCPStorage) Upload(ctx context.Context, request *UploadRequest) (*UploadResponse, error) {
	w := g.client.Bucket(g.bucket).Object(request.Key).NewWriter(ctx)
	w.ContentType = request.ContentType
	w.CacheControl = request.CacheControl
	w.Metadata = request.Metadata

	written, err := io.Copy(w, request.Reader)
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to upload %s to GCS: %w", request.Key, err)
	}
	// The object only exists once Close returns without error.
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize %s in GCS: %w", request.Key, err)
	}

	return &UploadResponse{
		Key:      request.Key,
		URL:      g.baseURL + "/" + request.Key,
		Size:     written,
		Location: "gs://" + g.bucket + "/" + request.Key,
	}, nil
}

func (g *GCPStorage) Delete(ctx context.Context, key string) error {
	err := g.client.Bucket(g.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete %s from GCS: %w", key, err)
	}
	return nil
}
