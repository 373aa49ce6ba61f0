package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/tutor-roster-api/pkg/errors"
)

type memoryCacheRepo struct {
	entries map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCacheRepo) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.entries = map[string][]byte{}
	return nil
}

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := newMemoryCacheRepo()
	metrics := NewMetricsService()
	svc := NewCacheService(repo, metrics, CacheConfig{Enabled: true, Prefix: "roster"}, zap.NewNop())
	ctx := context.Background()

	key := svc.Key("person", "p-1")
	assert.Equal(t, "roster:person:p-1", key)

	var dest map[string]string
	hit, err := svc.Get(ctx, key, &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, key, map[string]string{"name": "Ada"}, 0))
	assert.Equal(t, 5*time.Minute, repo.ttls[key])

	hit, err = svc.Get(ctx, key, &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "Ada", dest["name"])

	require.NoError(t, svc.Evict(ctx, key))
	hit, _ = svc.Get(ctx, key, &dest)
	assert.False(t, hit)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(2), snapshot.CacheMisses)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, CacheConfig{Enabled: false}, nil)
	ctx := context.Background()

	assert.False(t, svc.Enabled())
	require.NoError(t, svc.Set(ctx, "k", "v", time.Minute))
	assert.Empty(t, repo.entries)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	assert.Equal(t, "person:p-1", nilSvc.Key("person", "p-1"))
	hit, err := nilSvc.Get(ctx, "k", new(string))
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, nilSvc.Evict(ctx, "k"))
}

func TestCacheServiceGetFailure(t *testing.T) {
	repo := newMemoryCacheRepo()
	repo.getErr = errors.New("redis down")
	svc := NewCacheService(repo, nil, CacheConfig{Enabled: true}, nil)

	hit, err := svc.Get(context.Background(), "k", new(string))
	assert.Error(t, err)
	assert.False(t, hit)
}
