// Package codec provides the image format encoders used for clips.
package codec

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/gen2brain/webp"

	"epaper-clip/internal/domain"
)

// DefaultWebPQuality matches a 0.9 canvas quality setting.
const DefaultWebPQuality = 90

// WebPEncoder writes lossy WebP.
type WebPEncoder struct {
	Quality int
	// Method trades speed for size, 0 (fast) to 6 (slow).
	Method int
}

func NewWebPEncoder(quality int) *WebPEncoder {
	if quality <= 0 || quality > 100 {
		quality = DefaultWebPQuality
	}
	return &WebPEncoder{Quality: quality, Method: 4}
}

func (e *WebPEncoder) Format() domain.ImageFormat { return domain.FormatWebP }

func (e *WebPEncoder) Encode(w io.Writer, img image.Image) error {
	if err := webp.Encode(w, img, webp.Options{Quality: e.Quality, Method: e.Method}); err != nil {
		return fmt.Errorf("webp encode: %w", err)
	}
	return nil
}

// PNGEncoder writes lossless PNG.
type PNGEncoder struct {
	enc png.Encoder
}

func NewPNGEncoder() *PNGEncoder {
	return &PNGEncoder{enc: png.Encoder{CompressionLevel: png.BestSpeed}}
}

func (e *PNGEncoder) Format() domain.ImageFormat { return domain.FormatPNG }

func (e *PNGEncoder) Encode(w io.Writer, img image.Image) error {
	if err := e.enc.Encode(w, img); err != nil {
		return fmt.Errorf("png encode: %w", err)
	}
	return nil
}
