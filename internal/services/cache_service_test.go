package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"gbtravel/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errCacheMiss = errors.New("cache miss")

type mapCache struct {
	values map[string][]byte
	setErr error
}

func (m *mapCache) Get(_ context.Context, key string, dest interface{}) error {
	data, ok := m.values[key]
	if !ok {
		return errCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = data
	return nil
}

func (m *mapCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func TestCatalogCache_ReadThrough(t *testing.T) {
	backend := &mapCache{values: map[string][]byte{}}
	c := newCatalogCache(backend, logger.NewNop())
	ctx := context.Background()

	loads := 0
	load := func() ([]string, error) {
		loads++
		return []string{"Hunza", "Skardu"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := cached(ctx, c, cacheKeyPopularDestinations, load)
		require.NoError(t, err)
		assert.Equal(t, []string{"Hunza", "Skardu"}, got)
	}
	assert.Equal(t, 1, loads)

	c.invalidate(ctx, cacheKeyPopularDestinations)
	_, err := cached(ctx, c, cacheKeyPopularDestinations, load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestCatalogCache_FailuresFallBackToLoad(t *testing.T) {
	ctx := context.Background()
	loads := 0
	load := func() (int, error) {
		loads++
		return 42, nil
	}

	broken := newCatalogCache(&mapCache{values: map[string][]byte{}, setErr: errors.New("redis: connection refused")}, logger.NewNop())
	for i := 0; i < 2; i++ {
		got, err := cached(ctx, broken, cacheKeyCountries, load)
		require.NoError(t, err)
		assert.Equal(t, 42, got)
	}
	assert.Equal(t, 2, loads)

	var disabled *catalogCache
	got, err := cached(ctx, disabled, cacheKeyCountries, load)
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	_, err = cached(ctx, newCatalogCache(&mapCache{values: map[string][]byte{}}, logger.NewNop()), cacheKeyFeaturedTrips, func() (int, error) {
		return 0, errors.New("mongo down")
	})
	assert.EqualError(t, err, "mongo down")
}
