package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	cacheport "github.com/atoyeh09/LinkBazar-sub001/internal/infrastructure/cache/port"
	repository "github.com/atoyeh09/LinkBazar-sub001/internal/repository/port"
)

const userCacheTTL = 10 * time.Minute

// CachedUserRepository decorates a UserRepository with a read-through cache.
// Message fan-out resolves the sender's display fields on every send, so
// those lookups are served from the cache when warm. Cache failures fall
// back to the inner repository; they never fail the lookup.
type CachedUserRepository struct {
	inner repository.UserRepository
	cache cacheport.Cache
}

func NewCachedUserRepository(inner repository.UserRepository, cache cacheport.Cache) *CachedUserRepository {
	return &CachedUserRepository{inner: inner, cache: cache}
}

var _ repository.UserRepository = (*CachedUserRepository)(nil)

func (r *CachedUserRepository) FindByID(ctx context.Context, id string) (*repository.User, error) {
	key := "user:" + id

	if raw, err := r.cache.Get(ctx, key); err == nil {
		var u repository.User
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			return &u, nil
		}
	} else if !errors.Is(err, cacheport.ErrMiss) {
		slog.Debug("user cache read failed, serving from store", "key", key, "error", err)
	}

	u, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(u); err == nil {
		_ = r.cache.Set(ctx, key, string(raw), userCacheTTL)
	}
	return u, nil
}
