package cli

import (
	"fmt"
	"strconv"
	"strings"

	"epaper-clip/internal/domain"
)

// parseSize reads "WIDTHxHEIGHT", e.g. "800x1000".
func parseSize(s string) (domain.Surface, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return domain.Surface{}, fmt.Errorf("invalid size %q: expected WIDTHxHEIGHT", s)
	}
	width, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return domain.Surface{}, fmt.Errorf("invalid width in %q: %w", s, err)
	}
	height, err := strconv.ParseFloat(h, 64)
	if err != nil {
		return domain.Surface{}, fmt.Errorf("invalid height in %q: %w", s, err)
	}
	surface := domain.Surface{Width: width, Height: height}
	if !surface.Valid() {
		return domain.Surface{}, fmt.Errorf("invalid size %q: %w", s, domain.ErrInvalidSurface)
	}
	return surface, nil
}

// parseRect reads "x,y,width,height" in surface pixels.
func parseRect(s string) (domain.SelectionRect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return domain.SelectionRect{}, fmt.Errorf("invalid rect %q: expected x,y,width,height", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return domain.SelectionRect{}, fmt.Errorf("invalid rect %q: %w", s, err)
		}
		v[i] = f
	}
	if v[2] <= 0 || v[3] <= 0 {
		return domain.SelectionRect{}, fmt.Errorf("invalid rect %q: width and height must be positive", s)
	}
	return domain.SelectionRect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

func formatRect(r domain.SelectionRect) string {
	return fmt.Sprintf("%g,%g,%g,%g", r.X, r.Y, r.Width, r.Height)
}
