package catalog

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dissmar/storefront-backend/internal/gateway/gatewaytest"
	"github.com/dissmar/storefront-backend/pkg/logger"
	"github.com/dissmar/storefront-backend/pkg/models"
)

var errCacheMiss = errors.New("cache miss")

type memoryCache struct {
	values map[string]string
	gets   int
	sets   int
	broken bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string]string)}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, error) {
	c.gets++
	if c.broken {
		return "", errors.New("cache down")
	}
	value, ok := c.values[key]
	if !ok {
		return "", errCacheMiss
	}
	return value, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.sets++
	if c.broken {
		return errors.New("cache down")
	}
	c.values[key] = value.(string)
	return nil
}

func (c *memoryCache) CacheKey(scope string, parts ...string) string {
	return strings.Join(append([]string{"test", scope}, parts...), ":")
}

func seedProducts() []models.ProductRef {
	return []models.ProductRef{
		{ID: "p1", Name: "Arabica Beans", Category: "coffee", UnitPrice: decimal.RequireFromString("12.50")},
		{ID: "p2", Name: "Green Tea", Category: "tea", UnitPrice: decimal.RequireFromString("6.00")},
		{ID: "p3", Name: "Robusta Beans", Category: "coffee", UnitPrice: decimal.RequireFromString("9.00")},
	}
}

func newTestService(t *testing.T, fake *gatewaytest.Fake, cache Cache) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Gateway: fake,
		Cache:   cache,
		Logger:  logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return svc
}

func TestListReadsThroughCache(t *testing.T) {
	fake := gatewaytest.New()
	fake.SeedProducts(seedProducts())
	cache := newMemoryCache()
	svc := newTestService(t, fake, cache)

	first, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, first, 3)
	assert.Equal(t, 1, fake.Calls("ListProducts"))
	assert.Equal(t, 1, cache.sets)

	second, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, second, 3)
	assert.Equal(t, 1, fake.Calls("ListProducts"), "second list served from cache")
}

func TestListWorksWithoutCache(t *testing.T) {
	fake := gatewaytest.New()
	fake.SeedProducts(seedProducts())
	svc := newTestService(t, fake, nil)

	products, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 3)
}

func TestBrokenCacheDegradesToDirectRead(t *testing.T) {
	fake := gatewaytest.New()
	fake.SeedProducts(seedProducts())
	cache := newMemoryCache()
	cache.broken = true
	svc := newTestService(t, fake, cache)

	products, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 3)
	assert.Equal(t, 1, fake.Calls("ListProducts"))
}

func TestSearchMatchesNameAndCategory(t *testing.T) {
	fake := gatewaytest.New()
	fake.SeedProducts(seedProducts())
	svc := newTestService(t, fake, nil)

	byName, err := svc.Search(context.Background(), "beans")
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	byCategory, err := svc.Search(context.Background(), "TEA")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "p2", byCategory[0].ID)

	all, err := svc.Search(context.Background(), "  ")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := svc.Search(context.Background(), "fish")
	require.NoError(t, err)
	assert.Empty(t, none)
}
