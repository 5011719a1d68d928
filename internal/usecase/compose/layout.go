package compose

import (
	"image"
	"math"

	"epaper-clip/internal/domain"
)

// Layout is the geometry of one composed clip.
type Layout struct {
	Width        int
	TopHeight    int
	CropHeight   int
	BottomHeight int
	// Source is the region of the native raster that fills the crop band.
	Source image.Rectangle
}

func (l Layout) Height() int { return l.TopHeight + l.CropHeight + l.BottomHeight }

func (l Layout) TopStrip() image.Rectangle { return image.Rect(0, 0, l.Width, l.TopHeight) }

func (l Layout) CropBand() image.Rectangle {
	return image.Rect(0, l.TopHeight, l.Width, l.TopHeight+l.CropHeight)
}

func (l Layout) BottomStrip() image.Rectangle {
	return image.Rect(0, l.TopHeight+l.CropHeight, l.Width, l.Height())
}

// PlanLayout computes output geometry for a selection on a native raster of
// the given bounds.
func PlanLayout(sel domain.SelectionRect, displayed domain.Surface, native image.Rectangle, b domain.Branding, defaultStrip int) Layout {
	w, h := sel.OutputSize()
	return Layout{
		Width:        w,
		TopHeight:    b.Top.StripHeight(defaultStrip),
		CropHeight:   h,
		BottomHeight: b.Bottom.StripHeight(defaultStrip),
		Source:       sel.ScaleTo(displayed, native),
	}
}

const (
	logoMaxWidthRatio  = 0.3
	logoMaxHeightRatio = 0.8
)

// FitLogo scales a logo to fit within 30% of the strip width and 80% of its
// height, preserving aspect ratio, and places it per pos.
func FitLogo(logo image.Rectangle, strip image.Rectangle, pos domain.BannerPosition, padding int) image.Rectangle {
	lw, lh := float64(logo.Dx()), float64(logo.Dy())
	if lw <= 0 || lh <= 0 || strip.Empty() {
		return image.Rectangle{}
	}

	maxW := float64(strip.Dx()) * logoMaxWidthRatio
	maxH := float64(strip.Dy()) * logoMaxHeightRatio
	scale := math.Min(maxW/lw, maxH/lh)

	w := max(1, int(math.Round(lw*scale)))
	h := max(1, int(math.Round(lh*scale)))

	y := strip.Min.Y + (strip.Dy()-h)/2
	var x int
	switch pos {
	case domain.PositionLeft:
		x = strip.Min.X + padding
	case domain.PositionRight:
		x = strip.Max.X - w - padding
	default:
		x = strip.Min.X + (strip.Dx()-w)/2
	}
	return image.Rect(x, y, x+w, y+h)
}
