package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
	appErrors "github.com/sooryaakilesh10/place-pro-platform-88/pkg/errors"
)

type memoryCacheRepo struct {
	items  map[string][]byte
	ttls   map[string]time.Duration
	setErr error
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{items: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (r *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := r.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (r *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r.setErr != nil {
		return r.setErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.items[key] = raw
	r.ttls[key] = ttl
	return nil
}

func (r *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	removed := 0
	for key := range r.items {
		if strings.HasPrefix(key, prefix) {
			delete(r.items, key)
			removed++
		}
	}
	return removed, nil
}

func TestCacheServiceRoundTripAndMetrics(t *testing.T) {
	repo := newMemoryCacheRepo()
	metrics := NewMetricsService()
	svc := NewCacheService(repo, metrics, 0, nil, true)
	ctx := context.Background()

	var stats models.DashboardStats
	assert.False(t, svc.Get(ctx, "dash:approver", &stats))

	svc.Set(ctx, "dash:approver", models.DashboardStats{TotalCompanies: 3}, 0)
	assert.Equal(t, 2*time.Minute, repo.ttls["dash:approver"])
	require.True(t, svc.Get(ctx, "dash:approver", &stats))
	assert.Equal(t, 3, stats.TotalCompanies)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
	assert.InDelta(t, 0.5, snapshot.CacheHitRatio, 0.0001)
}

func TestCacheServiceInvalidatePattern(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, nil, true)
	ctx := context.Background()

	svc.Set(ctx, "dash:approver", 1, 0)
	svc.Set(ctx, "dash:officer:o-1", 2, 0)
	svc.Set(ctx, "other", 3, 0)
	svc.Invalidate(ctx, dashboardCachePattern)

	assert.Len(t, repo.items, 1)
	assert.Contains(t, repo.items, "other")
}

func TestCacheServiceDisabledAndFailures(t *testing.T) {
	ctx := context.Background()
	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	nilSvc.Set(ctx, "k", 1, 0)
	nilSvc.Invalidate(ctx, "*")

	repo := newMemoryCacheRepo()
	disabled := NewCacheService(repo, nil, 0, nil, false)
	disabled.Set(ctx, "k", 1, 0)
	assert.Empty(t, repo.items)

	repo.setErr = errors.New("redis down")
	failing := NewCacheService(repo, nil, 0, nil, true)
	failing.Set(ctx, "k", 1, 0)
	var v int
	assert.False(t, failing.Get(ctx, "k", &v))
}
