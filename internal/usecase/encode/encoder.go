// Package encode serializes composed clips with a primary format and a
// single lossless fallback.
package encode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"epaper-clip/internal/domain"
)

var errEmptyOutput = errors.New("encoder produced no bytes")

type Encoder struct {
	primary  domain.FormatEncoder
	fallback domain.FormatEncoder
	logger   *slog.Logger
	// OnFallback is called once per encode that needed the fallback format.
	OnFallback func(primary, fallback domain.ImageFormat)
}

func NewEncoder(primary, fallback domain.FormatEncoder, logger *slog.Logger) *Encoder {
	return &Encoder{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Encode tries the primary format, then the fallback exactly once.
// Both failing yields an encode_failed error.
func (e *Encoder) Encode(ctx context.Context, img image.Image) (*domain.EncodedImage, error) {
	if img == nil {
		return nil, domain.EncodeFailedError("no image to encode", nil, nil)
	}

	out, primaryErr := encodeWith(e.primary, img)
	if primaryErr == nil {
		return out, nil
	}
	e.logger.WarnContext(ctx, "primary encode failed, falling back",
		"format", string(e.primary.Format()),
		"fallback", string(e.fallback.Format()),
		"error", primaryErr)
	if e.OnFallback != nil {
		e.OnFallback(e.primary.Format(), e.fallback.Format())
	}

	out, fallbackErr := encodeWith(e.fallback, img)
	if fallbackErr == nil {
		return out, nil
	}

	return nil, domain.EncodeFailedError("all encoders failed", errors.Join(primaryErr, fallbackErr), map[string]any{
		"primary":  string(e.primary.Format()),
		"fallback": string(e.fallback.Format()),
	})
}

func encodeWith(enc domain.FormatEncoder, img image.Image) (*domain.EncodedImage, error) {
	var buf bytes.Buffer
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", enc.Format(), err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("failed to encode %s: %w", enc.Format(), errEmptyOutput)
	}
	b := img.Bounds()
	return &domain.EncodedImage{
		Data:   buf.Bytes(),
		Format: enc.Format(),
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}
