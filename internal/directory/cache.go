package directory

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/agenthands/twohop/internal/core/model"
	"github.com/agenthands/twohop/internal/metrics"
)

// CachedDirectory keeps recently seen profiles in an expiring LRU.
// Ego graphs always go to the backend.
type CachedDirectory struct {
	inner    Directory
	profiles *expirable.LRU[int64, model.Profile]
}

// WithProfileCache wraps inner when size and ttl are both positive and
// returns inner unchanged otherwise.
func WithProfileCache(inner Directory, size int, ttl time.Duration) Directory {
	if size <= 0 || ttl <= 0 {
		return inner
	}
	return &CachedDirectory{
		inner:    inner,
		profiles: expirable.NewLRU[int64, model.Profile](size, nil, ttl),
	}
}

func (c *CachedDirectory) EgoGraph(ctx context.Context, center int64, depth int) (*model.EgoGraph, error) {
	return c.inner.EgoGraph(ctx, center, depth)
}

func (c *CachedDirectory) Profiles(ctx context.Context, ids []int64) (map[int64]model.Profile, error) {
	out := make(map[int64]model.Profile, len(ids))
	var missing []int64
	for _, id := range ids {
		if p, ok := c.profiles.Get(id); ok {
			out[id] = p
			metrics.ProfileCacheLookups.WithLabelValues("hit").Inc()
			continue
		}
		metrics.ProfileCacheLookups.WithLabelValues("miss").Inc()
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := c.inner.Profiles(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, p := range fetched {
		c.profiles.Add(id, p)
		out[id] = p
	}
	return out, nil
}
