package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sakif/snippy/internal/model"
)

const (
	listKeyPrefix = "snippets:user:"

	// DefaultListTTL is how long a cached owner list is served before the
	// store is consulted again.
	DefaultListTTL = time.Minute
)

// ErrCacheMiss is returned when no list is cached for the owner.
var ErrCacheMiss = errors.New("cache miss")

// Each owner has a version counter. Lists are stored under a key that
// includes the version they were read at, and InvalidateList bumps the
// counter. A fill that read the store before a mutation therefore lands
// on a version nobody reads again and expires unseen.
func versionKey(ownerID string) string {
	return listKeyPrefix + ownerID + ":ver"
}

func listKey(ownerID string, version uint64) string {
	return listKeyPrefix + ownerID + ":v" + strconv.FormatUint(version, 10)
}

// ListVersion returns the owner's current list version, 0 before the
// first invalidation.
func (c *Cache) ListVersion(ctx context.Context, ownerID string) (uint64, error) {
	v, err := c.client.Get(ctx, versionKey(ownerID)).Uint64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get failed: %w", err)
	}
	return v, nil
}

// GetList returns the cached snippet list of ownerID together with the
// current version. On ErrCacheMiss the version is still valid and is the
// one to pass to SetList after reading the store.
func (c *Cache) GetList(ctx context.Context, ownerID string) ([]model.Snippet, uint64, error) {
	version, err := c.ListVersion(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}

	key := listKey(ownerID, version)
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, version, ErrCacheMiss
		}
		return nil, 0, fmt.Errorf("redis get failed: %w", err)
	}

	var snippets []model.Snippet
	if err := json.Unmarshal(raw, &snippets); err != nil {
		// A corrupt entry behaves like a miss and is dropped.
		c.client.Del(ctx, key)
		return nil, version, ErrCacheMiss
	}
	return snippets, version, nil
}

// SetList stores the snippet list of ownerID as read at version.
func (c *Cache) SetList(ctx context.Context, ownerID string, version uint64, snippets []model.Snippet) error {
	raw, err := json.Marshal(snippets)
	if err != nil {
		return fmt.Errorf("encoding snippet list: %w", err)
	}
	if err := c.client.Set(ctx, listKey(ownerID, version), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// InvalidateList moves ownerID to a new list version. The previous entry
// is deleted as well; any fill still in flight for it expires with the TTL.
func (c *Cache) InvalidateList(ctx context.Context, ownerID string) error {
	next, err := c.client.Incr(ctx, versionKey(ownerID)).Uint64()
	if err != nil {
		return fmt.Errorf("redis incr failed: %w", err)
	}
	if err := c.client.Del(ctx, listKey(ownerID, next-1)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}
