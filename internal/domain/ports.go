//go:generate mockgen -source=ports.go -destination=../mocks/domain_mocks.go -package=mocks

package domain

import (
	"context"
	"image"
	"io"
)

// EpaperClient talks to the e-paper REST API.
type EpaperClient interface {
	// FetchEpaper returns branding and the current edition list.
	FetchEpaper(ctx context.Context) (*Epaper, error)
	// CreateClip persists a clip record and returns it with its assigned id.
	CreateClip(ctx context.Context, req CreateClipRequest) (*ClipRecord, error)
	// GetClip resolves a shared clip id.
	GetClip(ctx context.Context, clipID string) (*ClipRecord, error)
}

// ImageLoader fetches and decodes a raster (logos, page images).
type ImageLoader interface {
	LoadImage(ctx context.Context, url string) (image.Image, error)
}

// ClipImageStore persists encoded clips and returns a URL the API can reference.
type ClipImageStore interface {
	SaveClipImage(ctx context.Context, img *EncodedImage) (string, error)
	GetClipImage(ctx context.Context, key string) (*StoredClipImage, error)
}

// FormatEncoder serializes a raster in one format.
type FormatEncoder interface {
	Format() ImageFormat
	Encode(w io.Writer, img image.Image) error
}

// Clipboard writes text to a clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}
