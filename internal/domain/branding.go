package domain

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"
)

// BannerPosition is the horizontal placement of a strip logo.
type BannerPosition string

const (
	PositionLeft   BannerPosition = "left"
	PositionCenter BannerPosition = "center"
	PositionRight  BannerPosition = "right"
)

// ParseBannerPosition accepts any casing and falls back to center.
func ParseBannerPosition(s string) BannerPosition {
	switch BannerPosition(strings.ToLower(strings.TrimSpace(s))) {
	case PositionLeft:
		return PositionLeft
	case PositionRight:
		return PositionRight
	default:
		return PositionCenter
	}
}

// BannerStyle is the decoration drawn on a strip.
type BannerStyle string

const (
	BannerStyleFlat   BannerStyle = "flat"
	BannerStyleRuled  BannerStyle = "ruled"
	BannerStyleFramed BannerStyle = "framed"
)

// BannerDecoration holds the draw parameters for a BannerStyle.
type BannerDecoration struct {
	// RuleWidth is the thickness of the line separating the strip from the crop.
	RuleWidth int
	// FrameWidth is the thickness of the border drawn around the whole strip.
	FrameWidth int
	// Padding is the horizontal inset for logos and text.
	Padding int
}

// Decoration maps every style to its draw parameters. Unknown styles draw flat.
func (s BannerStyle) Decoration() BannerDecoration {
	switch s {
	case BannerStyleRuled:
		return BannerDecoration{RuleWidth: 2, Padding: 10}
	case BannerStyleFramed:
		return BannerDecoration{FrameWidth: 3, Padding: 14}
	default:
		return BannerDecoration{Padding: 10}
	}
}

// ParseBannerStyle falls back to flat for empty or unknown values.
func ParseBannerStyle(s string) BannerStyle {
	switch BannerStyle(strings.ToLower(strings.TrimSpace(s))) {
	case BannerStyleRuled:
		return BannerStyleRuled
	case BannerStyleFramed:
		return BannerStyleFramed
	default:
		return BannerStyleFlat
	}
}

// BannerSettings configures one branded strip.
type BannerSettings struct {
	BackgroundColor string
	LogoURL         string
	// LogoHeight is the strip height in output pixels. Zero or negative uses the default.
	LogoHeight int
	Position   BannerPosition
	Style      BannerStyle
}

// StripHeight resolves the strip height against the configured default.
func (b BannerSettings) StripHeight(fallback int) int {
	if b.LogoHeight > 0 {
		return b.LogoHeight
	}
	return fallback
}

// Background parses BackgroundColor, defaulting to white.
func (b BannerSettings) Background() color.RGBA {
	c, err := ParseHexColor(b.BackgroundColor)
	if err != nil {
		return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	return c
}

type DisplayOptions struct {
	ShowDate       bool
	ShowDomain     bool
	ShowPageNumber bool
}

// Any reports whether at least one text element is enabled.
func (d DisplayOptions) Any() bool {
	return d.ShowDate || d.ShowDomain || d.ShowPageNumber
}

// Branding is the banner configuration for clips. Values are copied into each
// compose so later refreshes never affect an in-flight operation.
type Branding struct {
	Top     BannerSettings
	Bottom  BannerSettings
	Display DisplayOptions
}

// Page is one pre-rendered page of an edition.
type Page struct {
	Number   int
	ImageURL string
	PdfURL   string
}

type Edition struct {
	ID    string
	Title string
	Date  time.Time
	Pages []Page
}

// Epaper is the branding and edition list served by the e-paper API.
type Epaper struct {
	Branding  Branding
	Editions  []Edition
	FetchedAt time.Time
}

// FindPage looks up a page of an edition by number.
func (e *Epaper) FindPage(paperID string, number int) (Page, bool) {
	if e == nil {
		return Page{}, false
	}
	for _, ed := range e.Editions {
		if ed.ID != paperID {
			continue
		}
		for _, p := range ed.Pages {
			if p.Number == number {
				return p, true
			}
		}
	}
	return Page{}, false
}

// HasPageURL reports whether any edition page uses imageURL.
func (e *Epaper) HasPageURL(imageURL string) bool {
	if e == nil || imageURL == "" {
		return false
	}
	for _, ed := range e.Editions {
		for _, p := range ed.Pages {
			if p.ImageURL == imageURL {
				return true
			}
		}
	}
	return false
}

// FindEdition returns the edition with the given id.
func (e *Epaper) FindEdition(paperID string) (Edition, bool) {
	if e == nil {
		return Edition{}, false
	}
	for _, ed := range e.Editions {
		if ed.ID == paperID {
			return ed, true
		}
	}
	return Edition{}, false
}

// ParseHexColor parses #rgb, #rrggbb and #rrggbbaa.
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]}) + "ff"
	case 6:
		s += "ff"
	case 8:
	default:
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// ContrastColor picks black or white text for the given background using
// relative luminance.
func ContrastColor(bg color.RGBA) color.RGBA {
	lum := 0.2126*float64(bg.R) + 0.7152*float64(bg.G) + 0.0722*float64(bg.B)
	if lum > 140 {
		return color.RGBA{R: 0x1a, G: 0x1a, B: 0x1a, A: 0xff}
	}
	return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
}
