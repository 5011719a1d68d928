package di

import (
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/text/language"

	"epaper-clip/internal/adapter/codec"
	"epaper-clip/internal/adapter/epaper_api"
	"epaper-clip/internal/adapter/imagefetch"
	"epaper-clip/internal/adapter/repository"
	"epaper-clip/internal/domain"
	"epaper-clip/internal/infra/config"
	"epaper-clip/internal/infra/httpclient"
	"epaper-clip/internal/infra/metrics"
	"epaper-clip/internal/usecase"
	"epaper-clip/internal/usecase/compose"
	"epaper-clip/internal/usecase/encode"
)

// Options tune wiring for the server or the CLI.
type Options struct {
	// AllowFileImages lets page and logo URLs point at local files.
	AllowFileImages bool
	// TrustPageURLs accepts any page image URL from the caller.
	TrustPageURLs bool
	// AllowPrivateImages lifts the private network guard on image fetches.
	AllowPrivateImages bool
}

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	// Adapters
	EpaperClient domain.EpaperClient
	ImageLoader  *imagefetch.CachedLoader
	ImageStore   domain.ClipImageStore
	// ClipImageRepo is nil when images are stored inline.
	ClipImageRepo *repository.ClipImageRepository

	// Pipeline
	Branding   *usecase.BrandingProvider
	Pages      *usecase.PageSource
	Compositor *compose.Compositor
	Encoder    *encode.Encoder
	Publisher  *usecase.Publisher

	// Usecases
	ClipShare usecase.ClipShareUsecase
}

// NewApplicationComponents wires all dependencies from config. pool may be
// nil, in which case clip images are embedded as data URLs.
func NewApplicationComponents(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger, opts Options) *ApplicationComponents {
	// Shared HTTP clients with connection pooling
	apiHTTP := httpclient.NewPooledClient(cfg.PublishTimeout)
	guard := httpclient.Guard{AllowPrivate: opts.AllowPrivateImages || cfg.ImageAllowPrivate}
	imageHTTP := httpclient.NewGuardedClient(cfg.ImageFetchTimeout, guard)

	// External clients
	epaperClient := epaper_api.NewHTTPEpaperClient(cfg.EpaperAPIURL, cfg.EpaperAPIKey, apiHTTP, log)
	rawLoader := imagefetch.NewHTTPImageLoader(imageHTTP, imagefetch.Options{
		MaxBytes:     cfg.ImageMaxBytes,
		MaxPixels:    cfg.ImageMaxPixels,
		AllowFile:    opts.AllowFileImages,
		AllowPrivate: guard.AllowPrivate,
	}, log)
	loader := imagefetch.NewCachedLoader(rawLoader, cfg.ImageCacheSize, cfg.ImageCacheTTL)
	loader.OnLookup = metrics.RecordImageCache

	// Clip image storage
	var (
		store domain.ClipImageStore = repository.NewInlineImageStore()
		repo  *repository.ClipImageRepository
	)
	if pool != nil {
		repo = repository.NewClipImageRepository(pool, cfg.ImageBaseURL, log)
		store = repo
	}

	// Pipeline stages
	branding := usecase.NewBrandingProvider(epaperClient, cfg.BrandingTTL, log)
	pages := usecase.NewPageSource(branding, loader, usecase.PageSourceOptions{
		AllowedHosts:    cfg.PageImageHosts,
		TrustClientURLs: opts.TrustPageURLs,
	})

	locale, err := language.Parse(cfg.Locale)
	if err != nil {
		log.Warn("unknown clip locale, using english", "locale", cfg.Locale, "error", err)
		locale = language.English
	}
	compositor := compose.NewCompositor(loader, compose.Options{
		DefaultStripHeight: cfg.DefaultStripHeight,
		Locale:             locale,
		OnLogoFailure:      metrics.RecordLogoFailure,
	}, log)

	encoder := encode.NewEncoder(codec.NewWebPEncoder(cfg.WebPQuality), codec.NewPNGEncoder(), log)
	encoder.OnFallback = func(primary, fallback domain.ImageFormat) {
		metrics.RecordEncodeFallback(string(primary), string(fallback))
	}

	publisher := usecase.NewPublisher(store, epaperClient, cfg.PublicBaseURL, cfg.ShareCaption, cfg.PublishTimeout, log)

	clipShare := usecase.NewClipShareUsecase(
		branding,
		pages,
		compositor,
		encoder,
		publisher,
		epaperClient,
		usecase.SessionOptions{Capacity: cfg.SessionCapacity, TTL: cfg.SessionTTL},
		usecase.Hooks{
			OnStage: func(stage, status string, d time.Duration) {
				metrics.RecordStage(stage, status, d.Seconds())
			},
			OnSessionCount: metrics.SetActiveSessions,
			OnPublished: func(img *domain.EncodedImage) {
				metrics.RecordClipBytes(string(img.Format), len(img.Data))
			},
		},
		log,
	)

	return &ApplicationComponents{
		EpaperClient:  epaperClient,
		ImageLoader:   loader,
		ImageStore:    store,
		ClipImageRepo: repo,
		Branding:      branding,
		Pages:         pages,
		Compositor:    compositor,
		Encoder:       encoder,
		Publisher:     publisher,
		ClipShare:     clipShare,
	}
}
