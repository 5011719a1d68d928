package imagefetch

import (
	"context"
	"image"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"epaper-clip/internal/domain"
)

const sharedLoadTimeout = time.Minute

// CachedLoader memoizes decoded images by URL and collapses concurrent loads
// of the same URL into one fetch. Failures are not cached.
type CachedLoader struct {
	next     domain.ImageLoader
	cache    *expirable.LRU[string, image.Image]
	group    singleflight.Group
	OnLookup func(hit bool)
}

func NewCachedLoader(next domain.ImageLoader, size int, ttl time.Duration) *CachedLoader {
	if size <= 0 {
		size = 64
	}
	return &CachedLoader{
		next:  next,
		cache: expirable.NewLRU[string, image.Image](size, nil, ttl),
	}
}

func (c *CachedLoader) LoadImage(ctx context.Context, url string) (image.Image, error) {
	if img, ok := c.cache.Get(url); ok {
		c.record(true)
		return img, nil
	}
	c.record(false)

	ch := c.group.DoChan(url, func() (any, error) {
		// Detached from ctx: other callers may be waiting on this load.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()
		img, err := c.next.LoadImage(loadCtx, url)
		if err != nil {
			return nil, err
		}
		c.cache.Add(url, img)
		return img, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(image.Image), nil
	}
}

// Len reports the number of cached images.
func (c *CachedLoader) Len() int { return c.cache.Len() }

func (c *CachedLoader) record(hit bool) {
	if c.OnLookup != nil {
		c.OnLookup(hit)
	}
}
