package pivot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radiusdt/vector-attrib/internal/models"
)

// Cache is a short-TTL Redis cache for pivot responses, keyed by a hash of
// the full request. The engine itself stays request-scoped; only the
// rendered response is cached.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a response cache. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

// Get looks up a cached response for the request.
func (c *Cache) Get(ctx context.Context, req models.PivotRequest) (*models.PivotResponse, bool) {
	data, err := c.client.Get(ctx, cacheKey(req)).Bytes()
	if err != nil {
		return nil, false
	}
	var resp models.PivotResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

// Set stores a successful response. Failures are cached never, errors from
// Redis are ignored; the cache is best effort.
func (c *Cache) Set(ctx context.Context, req models.PivotRequest, resp models.PivotResponse) {
	if !resp.Success {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	c.client.Set(ctx, cacheKey(req), data, c.ttl)
}

func cacheKey(req models.PivotRequest) string {
	raw, _ := json.Marshal(req)
	sum := sha256.Sum256(raw)
	return "pivot:" + hex.EncodeToString(sum[:])
}
