package usecase

import (
	"context"
	"fmt"
	"image"
	"net/url"
	"strings"

	"epaper-clip/internal/domain"
)

type PageSourceOptions struct {
	// AllowedHosts lists hosts whose images a client may name directly.
	// An entry also matches its subdomains.
	AllowedHosts []string
	// TrustClientURLs accepts any override. Only the local CLI sets it.
	TrustClientURLs bool
}

// PageSource resolves an edition page to its native raster.
type PageSource struct {
	branding *BrandingProvider
	loader   domain.ImageLoader
	opts     PageSourceOptions
}

func NewPageSource(branding *BrandingProvider, loader domain.ImageLoader, opts PageSourceOptions) *PageSource {
	hosts := make([]string, 0, len(opts.AllowedHosts))
	for _, h := range opts.AllowedHosts {
		if h = strings.ToLower(strings.Trim(strings.TrimSpace(h), ".")); h != "" {
			hosts = append(hosts, h)
		}
	}
	opts.AllowedHosts = hosts
	return &PageSource{branding: branding, loader: loader, opts: opts}
}

// Authorize checks a client-supplied page image URL. It must be one of the
// page URLs in the edition snapshot or live on an allowed host.
func (s *PageSource) Authorize(ctx context.Context, imageURL string) error {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" || s.opts.TrustClientURLs {
		return nil
	}
	if s.hostAllowed(imageURL) {
		return nil
	}
	if ep, err := s.branding.Snapshot(ctx); err == nil && ep.HasPageURL(imageURL) {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrPageURLNotAllowed, imageURL)
}

func (s *PageSource) hostAllowed(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	for _, allowed := range s.opts.AllowedHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

// LoadPage loads the page image. imageURL, when set, bypasses the edition
// lookup but must pass Authorize. Any failure is source_unavailable.
func (s *PageSource) LoadPage(ctx context.Context, paperID string, page int, imageURL string) (image.Image, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL != "" {
		if err := s.Authorize(ctx, imageURL); err != nil {
			return nil, domain.SourceUnavailableError("page image url not allowed", err, map[string]any{
				"paper_id": paperID,
				"page":     page,
			})
		}
	} else {
		ep, err := s.branding.Snapshot(ctx)
		if err != nil {
			return nil, domain.SourceUnavailableError("edition list unavailable", err, map[string]any{"paper_id": paperID})
		}
		p, ok := ep.FindPage(paperID, page)
		if !ok || p.ImageURL == "" {
			return nil, domain.SourceUnavailableError("page not found", nil, map[string]any{
				"paper_id": paperID,
				"page":     page,
			})
		}
		imageURL = p.ImageURL
	}

	img, err := s.loader.LoadImage(ctx, imageURL)
	if err != nil {
		return nil, domain.SourceUnavailableError("page raster could not be loaded", err, map[string]any{
			"paper_id": paperID,
			"page":     page,
		})
	}
	return img, nil
}
