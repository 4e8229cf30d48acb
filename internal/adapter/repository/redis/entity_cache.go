package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
)

// EntityCache wraps an EntityRepository with read-through caching. Entities
// are fetched on every scoped session bind, so they are the one record kind
// worth caching; all other reads carry per-session filter state and go
// straight to storage.
type EntityCache struct {
	next   usecase.EntityRepository
	cache  usecase.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewEntityCache creates a new EntityCache.
func NewEntityCache(next usecase.EntityRepository, cache usecase.Cache, ttl time.Duration, logger zerolog.Logger) *EntityCache {
	return &EntityCache{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// CreateTx delegates to the underlying repository and invalidates any stale
// cached copy. If the caller's transaction rolls back the next read misses
// and repopulates from storage.
func (c *EntityCache) CreateTx(ctx context.Context, tx usecase.Transaction, entity *domain.Entity) error {
	if err := c.next.CreateTx(ctx, tx, entity); err != nil {
		return err
	}

	if err := c.cache.Delete(ctx, entityKey(entity.ID)); err != nil {
		c.logger.Warn().Err(err).Str("entity_id", entity.ID).Msg("failed to invalidate entity cache")
	}

	return nil
}

// GetByID returns the cached entity when present, falling back to storage.
// Cache failures degrade to a storage read and are never surfaced.
func (c *EntityCache) GetByID(ctx context.Context, id string) (*domain.Entity, error) {
	if payload, err := c.cache.Get(ctx, entityKey(id)); err == nil {
		entity := &domain.Entity{}
		if err := json.Unmarshal([]byte(payload), entity); err == nil {
			return entity, nil
		}

		c.logger.Warn().Str("entity_id", id).Msg("discarding malformed cached entity")
	}

	entity, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(entity); err == nil {
		if err := c.cache.Set(ctx, entityKey(id), string(payload), c.ttl); err != nil {
			c.logger.Warn().Err(err).Str("entity_id", id).Msg("failed to cache entity")
		}
	}

	return entity, nil
}

func entityKey(id string) string {
	return "entity:" + id
}
