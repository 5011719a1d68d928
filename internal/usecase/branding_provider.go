package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"epaper-clip/internal/domain"
)

const refreshTimeout = 30 * time.Second

// BrandingProvider holds the e-paper snapshot. It fetches once on first use,
// refreshes on demand, and optionally when older than ttl. Concurrent
// refreshes share one request.
type BrandingProvider struct {
	client domain.EpaperClient
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	current *domain.Epaper
	group   singleflight.Group
}

func NewBrandingProvider(client domain.EpaperClient, ttl time.Duration, logger *slog.Logger) *BrandingProvider {
	return &BrandingProvider{
		client: client,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Snapshot returns the cached epaper, fetching it when missing or stale.
// The returned value must not be mutated.
func (p *BrandingProvider) Snapshot(ctx context.Context) (*domain.Epaper, error) {
	p.mu.RLock()
	cur := p.current
	p.mu.RUnlock()

	if cur != nil && !p.stale(cur) {
		return cur, nil
	}
	ep, err := p.Refresh(ctx)
	if err != nil && cur != nil {
		p.logger.WarnContext(ctx, "branding refresh failed, serving previous snapshot", "error", err)
		return cur, nil
	}
	return ep, err
}

// Branding returns a value copy of the current branding for one compose.
func (p *BrandingProvider) Branding(ctx context.Context) (domain.Branding, error) {
	ep, err := p.Snapshot(ctx)
	if err != nil {
		return domain.Branding{}, err
	}
	return ep.Branding, nil
}

// Refresh fetches a new snapshot unconditionally.
func (p *BrandingProvider) Refresh(ctx context.Context) (*domain.Epaper, error) {
	ch := p.group.DoChan("epaper", func() (any, error) {
		// Shared by every waiter, so one caller's cancellation must not end it.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		ep, err := p.client.FetchEpaper(fetchCtx)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.current = ep
		p.mu.Unlock()
		return ep, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to refresh branding: %w", ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, fmt.Errorf("failed to refresh branding: %w", res.Err)
	}
	if res.Shared {
		p.logger.DebugContext(ctx, "branding refresh shared with concurrent caller")
	}
	return res.Val.(*domain.Epaper), nil
}

func (p *BrandingProvider) stale(ep *domain.Epaper) bool {
	if p.ttl <= 0 {
		return false
	}
	return p.now().Sub(ep.FetchedAt) > p.ttl
}
