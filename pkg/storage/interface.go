package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// StorageProvider stores uploaded catalog images. Delete must tolerate keys
// that no longer exist.
type StorageProvider interface {
	Upload(ctx context.Context, request *UploadRequest) (*UploadResponse, error)
	Delete(ctx context.Context, key string) error
}

type UploadRequest struct {
	Key          string            `json:"key"`
	Reader       io.Reader         `json:"-"`
	ContentType  string            `json:"content_type"`
	Size         int64             `json:"size"`
	Metadata     map[string]string `json:"metadata"`
	CacheControl string            `json:"cache_control"`
}

type UploadResponse struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	ETag     string `json:"etag,omitempty"`
	Location string `json:"location,omitempty"`
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageExtension returns the file extension for an accepted image content type.
func ImageExtension(contentType string) (string, bool) {
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	return ext, ok
}

// ObjectKey builds a collision-free key such as "trips/<id>/<uuid>.jpg".
func ObjectKey(folder, ownerID, ext string) string {
	return path.Join(folder, ownerID, fmt.Sprintf("%s%s", uuid.NewString(), ext))
}

// publicBaseURL prefers the CDN domain over the provider's own endpoint.
func publicBaseURL(cdnDomain, fallback string) string {
	if cdnDomain = strings.Trim(strings.TrimSpace(cdnDomain), "/"); cdnDomain != "" {
		if strings.HasPrefix(cdnDomain, "http://") || strings.HasPrefix(cdnDomain, "https://") {
			return cdnDomain
		}
		return "https://" + cdnDomain
	}
	return fallback
}
