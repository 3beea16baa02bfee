package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/saksham-os/agent-core/internal/marketplace"
	"go.uber.org/zap"
)

const defaultCacheTTL = 5 * time.Minute

// Cache is a read-through decorator over another ProfileStore. Redis being
// down is never an error: lookups fall through to the wrapped store.
type Cache struct {
	next   marketplace.ProfileStore
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCache(next marketplace.ProfileStore, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (c *Cache) LookupProfiles(ctx context.Context, ids []string) (map[string]*marketplace.FreelancerProfile, error) {
	found := make(map[string]*marketplace.FreelancerProfile, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		profile, err := c.get(ctx, id)
		if err != nil {
			missing = append(missing, id)
			continue
		}
		found[id] = profile
	}

	if len(missing) == 0 {
		return found, nil
	}

	fetched, err := c.next.LookupProfiles(ctx, missing)
	if err != nil {
		return nil, err
	}

	for id, profile := range fetched {
		found[id] = profile
		c.put(ctx, id, profile)
	}
	return found, nil
}

func (c *Cache) get(ctx context.Context, id string) (*marketplace.FreelancerProfile, error) {
	data, err := c.rdb.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("profile cache read failed", zap.String("user_id", id), zap.Error(err))
		}
		return nil, err
	}

	var profile marketplace.FreelancerProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Cache) put(ctx context.Context, id string, profile *marketplace.FreelancerProfile) {
	data, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(id), data, c.ttl).Err(); err != nil {
		c.logger.Debug("profile cache write failed", zap.String("user_id", id), zap.Error(err))
	}
}

func cacheKey(id string) string {
	return "profile:" + id
}
