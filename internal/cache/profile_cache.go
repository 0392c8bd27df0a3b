package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"social-service/internal/logger"
	"social-service/internal/models"
	"social-service/internal/repositories"
)

const keyPrefix = "profile:"

// NewRedisClient builds a client for addr, or nil when addr is empty.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// ProfileCache serves directory lookups from redis and falls back to the
// wrapped repository on a miss or on any redis failure.
type ProfileCache struct {
	next   repositories.UserRepository
	client *redis.Client
	ttl    time.Duration
}

var _ repositories.UserRepository = (*ProfileCache)(nil)

// NewProfileCache wraps next. A nil client disables caching.
func NewProfileCache(next repositories.UserRepository, client *redis.Client, ttl time.Duration) *ProfileCache {
	return &ProfileCache{next: next, client: client, ttl: ttl}
}

// Lookup returns the user from cache or from the directory.
func (c *ProfileCache) Lookup(ctx context.Context, id uuid.UUID) (models.User, error) {
	if u, ok := c.get(ctx, id); ok {
		return u, nil
	}
	u, err := c.next.Lookup(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	c.set(ctx, u)
	return u, nil
}

// LookupMany resolves cached ids first and batches the rest.
func (c *ProfileCache) LookupMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	result := make(map[uuid.UUID]models.User, len(ids))
	missing := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if u, ok := c.get(ctx, id); ok {
			result[id] = u
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return result, nil
	}

	found, err := c.next.LookupMany(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, u := range found {
		result[id] = u
		c.set(ctx, u)
	}
	return result, nil
}

func (c *ProfileCache) get(ctx context.Context, id uuid.UUID) (models.User, bool) {
	if c.client == nil {
		return models.User{}, false
	}
	raw, err := c.client.Get(ctx, keyPrefix+id.String()).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("profile cache read failed", "user_id", id, "error", err)
		}
		return models.User{}, false
	}
	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return models.User{}, false
	}
	return u, true
}

func (c *ProfileCache) set(ctx context.Context, u models.User) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, keyPrefix+u.ID.String(), raw, c.ttl).Err(); err != nil {
		logger.Warn("profile cache write failed", "user_id", u.ID, "error", err)
	}
}
