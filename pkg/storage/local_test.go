package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "http://localhost:5000/uploads/")
	require.NoError(t, err)

	ctx := context.Background()
	key := "trips/abc/photo.jpg"

	resp, err := store.Upload(ctx, &UploadRequest{Key: key, Reader: strings.NewReader("jpeg-bytes"), ContentType: "image/jpeg"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/uploads/trips/abc/photo.jpg", resp.URL)
	assert.Equal(t, int64(10), resp.Size)

	exists, err := store.FileExists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, key))
	exists, err = store.FileExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, key))
}

func TestObjectKeyAndExtensions(t *testing.T) {
	ext, ok := ImageExtension("image/PNG")
	assert.True(t, ok)
	assert.Equal(t, ".png", ext)

	_, ok = ImageExtension("application/pdf")
	assert.False(t, ok)

	key := ObjectKey("destinations", "65f0c0ffee", ".png")
	assert.True(t, strings.HasPrefix(key, "destinations/65f0c0ffee/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.NotEqual(t, key, ObjectKey("destinations", "65f0c0ffee", ".png"))
}
