package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/dissmar/storefront-backend/internal/gateway"
	pkgerrors "github.com/dissmar/storefront-backend/pkg/errors"
	"github.com/dissmar/storefront-backend/pkg/logger"
	"github.com/dissmar/storefront-backend/pkg/models"
)

const cacheScope = "catalog"

// Cache is the slice of the redis client the catalog needs. A miss is
// signaled with an error the caller checks via the client's Nil sentinel;
// here any Get error is treated as a miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(scope string, parts ...string) string
}

// Service lists and searches the product catalog with a read-through
// cache in front of the document store. Cache failures degrade to direct
// reads, never to request failures.
type Service struct {
	gateway gateway.PersistenceGateway
	cache   Cache
	logg    *logger.Logger
	ttl     time.Duration
}

type ServiceParams struct {
	Gateway  gateway.PersistenceGateway
	Cache    Cache
	Logger   *logger.Logger
	CacheTTL time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Gateway == nil {
		return nil, errors.New("persistence gateway is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		gateway: params.Gateway,
		cache:   params.Cache,
		logg:    params.Logger,
		ttl:     ttl,
	}, nil
}

// List returns the full catalog, name-ordered.
func (s *Service) List(ctx context.Context) ([]models.ProductRef, error) {
	if s.cache != nil {
		key := s.cache.CacheKey(cacheScope, "products")
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var products []models.ProductRef
			if err := json.Unmarshal([]byte(raw), &products); err == nil {
				return products, nil
			}
		}
	}

	products, err := s.gateway.ListProducts(ctx)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list products")
	}

	s.store(ctx, products)
	return products, nil
}

// Search filters the catalog by a case-insensitive substring match on
// name and category. An empty query returns the full list.
func (s *Service) Search(ctx context.Context, query string) ([]models.ProductRef, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return products, nil
	}

	matched := make([]models.ProductRef, 0, len(products))
	for _, product := range products {
		if strings.Contains(strings.ToLower(product.Name), query) ||
			strings.Contains(strings.ToLower(product.Category), query) {
			matched = append(matched, product)
		}
	}
	return matched, nil
}

func (s *Service) store(ctx context.Context, products []models.ProductRef) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return
	}
	key := s.cache.CacheKey(cacheScope, "products")
	if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
		s.logg.Warn(ctx, "catalog.cache_write_failed: "+err.Error())
	}
}
