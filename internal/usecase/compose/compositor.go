// Package compose renders a selected page region between two branded strips.
package compose

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"epaper-clip/internal/domain"
)

const (
	// DefaultStripHeight applies when a banner has no height configured.
	DefaultStripHeight = 60
	dateLayout         = "02 Jan 2006"
)

// Input is everything one compose needs. Branding is a value snapshot.
type Input struct {
	Source     image.Image
	Displayed  domain.Surface
	Selection  domain.SelectionRect
	Branding   domain.Branding
	PageNumber int
	Domain     string
	Date       time.Time
}

type Options struct {
	DefaultStripHeight int
	Locale             language.Tag
	// OnLogoFailure is called with "top" or "bottom" when a logo cannot be loaded.
	OnLogoFailure func(strip string)
}

type Compositor struct {
	logos   domain.ImageLoader
	logger  *slog.Logger
	opts    Options
	nowFunc func() time.Time
}

func NewCompositor(logos domain.ImageLoader, opts Options, logger *slog.Logger) *Compositor {
	if opts.DefaultStripHeight <= 0 {
		opts.DefaultStripHeight = DefaultStripHeight
	}
	if opts.Locale == language.Und {
		opts.Locale = language.English
	}
	return &Compositor{
		logos:   logos,
		logger:  logger,
		opts:    opts,
		nowFunc: time.Now,
	}
}

// Plan returns the layout Compose will produce for in.
func (c *Compositor) Plan(in Input) (Layout, error) {
	if in.Source == nil {
		return Layout{}, domain.SourceUnavailableError("page raster not available", nil, nil)
	}
	l := PlanLayout(in.Selection, in.Displayed, in.Source.Bounds(), in.Branding, c.opts.DefaultStripHeight)
	if l.Source.Empty() {
		return Layout{}, domain.SourceUnavailableError("selection does not intersect the page raster", nil, map[string]any{
			"selection": in.Selection,
			"raster":    in.Source.Bounds().String(),
		})
	}
	return l, nil
}

// Compose draws, in order: top strip and logo, the scaled crop, bottom strip
// and logo, then the text overlay.
func (c *Compositor) Compose(ctx context.Context, in Input) (*image.RGBA, error) {
	// 1. Geometry
	layout, err := c.Plan(in)
	if err != nil {
		return nil, err
	}

	// 2. Logos load in parallel; failures leave the strip without a logo.
	topLogo, bottomLogo := c.loadLogos(ctx, in.Branding)

	dst := image.NewRGBA(image.Rect(0, 0, layout.Width, layout.Height()))

	// 3. Top strip
	drawStrip(dst, layout.TopStrip(), in.Branding.Top, topLogo, edgeBottom)

	// 4. Crop
	xdraw.CatmullRom.Scale(dst, layout.CropBand(), in.Source, layout.Source, draw.Src, nil)

	// 5. Bottom strip
	drawStrip(dst, layout.BottomStrip(), in.Branding.Bottom, bottomLogo, edgeTop)

	// 6. Text last so logos never cover it.
	if err := c.drawText(dst, layout.BottomStrip(), in); err != nil {
		c.logger.WarnContext(ctx, "failed to draw strip text", "error", err)
	}

	return dst, nil
}

func (c *Compositor) loadLogos(ctx context.Context, b domain.Branding) (top, bottom image.Image) {
	g, gctx := errgroup.WithContext(ctx)

	load := func(url, strip string, out *image.Image) {
		if url == "" || c.logos == nil {
			return
		}
		g.Go(func() error {
			img, err := c.logos.LoadImage(gctx, url)
			if err != nil {
				c.logger.WarnContext(ctx, "logo load failed, composing without it",
					"strip", strip,
					"url", url,
					"error", err)
				if c.opts.OnLogoFailure != nil {
					c.opts.OnLogoFailure(strip)
				}
				return nil
			}
			*out = img
			return nil
		})
	}
	load(b.Top.LogoURL, "top", &top)
	load(b.Bottom.LogoURL, "bottom", &bottom)

	_ = g.Wait()
	return top, bottom
}

func (c *Compositor) drawText(dst *image.RGBA, strip image.Rectangle, in Input) error {
	opts := in.Branding.Display
	if !opts.Any() || strip.Empty() {
		return nil
	}

	var t stripText
	if opts.ShowDate {
		date := in.Date
		if date.IsZero() {
			date = c.nowFunc()
		}
		t.Left = date.Format(dateLayout)
	}
	if opts.ShowDomain {
		t.Center = in.Domain
	}
	if opts.ShowPageNumber && in.PageNumber > 0 {
		t.Right = pageLabel(c.opts.Locale, in.PageNumber)
	}

	face, err := newFace(textSize(strip.Dy()))
	if err != nil {
		return err
	}
	defer face.Close()
	bg := in.Branding.Bottom.Background()
	padding := in.Branding.Bottom.Style.Decoration().Padding
	drawStripText(dst, strip, face, domain.ContrastColor(bg), padding, t)
	return nil
}

type edge int

const (
	edgeTop edge = iota
	edgeBottom
)

// drawStrip fills the strip, applies its style decoration and draws the logo.
// cropEdge is the side of the strip adjacent to the crop band.
func drawStrip(dst *image.RGBA, strip image.Rectangle, s domain.BannerSettings, logo image.Image, cropEdge edge) {
	if strip.Empty() {
		return
	}
	bg := s.Background()
	draw.Draw(dst, strip, image.NewUniform(bg), image.Point{}, draw.Src)

	deco := s.Style.Decoration()
	ink := image.NewUniform(domain.ContrastColor(bg))
	if deco.RuleWidth > 0 {
		rule := image.Rect(strip.Min.X, strip.Max.Y-deco.RuleWidth, strip.Max.X, strip.Max.Y)
		if cropEdge == edgeTop {
			rule = image.Rect(strip.Min.X, strip.Min.Y, strip.Max.X, strip.Min.Y+deco.RuleWidth)
		}
		draw.Draw(dst, rule.Intersect(strip), ink, image.Point{}, draw.Src)
	}
	if deco.FrameWidth > 0 {
		drawFrame(dst, strip, deco.FrameWidth, ink)
	}

	if logo == nil {
		return
	}
	target := FitLogo(logo.Bounds(), strip, s.Position, deco.Padding)
	if target.Empty() {
		return
	}
	xdraw.CatmullRom.Scale(dst, target, logo, logo.Bounds(), draw.Over, nil)
}

func drawFrame(dst *image.RGBA, r image.Rectangle, width int, src image.Image) {
	sides := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
		image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, side := range sides {
		draw.Draw(dst, side.Intersect(r), src, image.Point{}, draw.Src)
	}
}

// Placeholder is the preview shown when a clip could not be composed or encoded.
func Placeholder(width, height int) *image.RGBA {
	width, height = max(width, 1), max(height, 1)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff}), image.Point{}, draw.Src)

	stroke := image.NewUniform(color.RGBA{R: 0x9c, G: 0xa3, B: 0xaf, A: 0xff})
	drawFrame(img, img.Bounds(), max(1, min(width, height)/40), stroke)
	return img
}
