package compose

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const pageLabelKey = "Page %d"

func init() {
	_ = message.SetString(language.Spanish, pageLabelKey, "Página %d")
	_ = message.SetString(language.French, pageLabelKey, "Page %d")
	_ = message.SetString(language.German, pageLabelKey, "Seite %d")
	_ = message.SetString(language.Portuguese, pageLabelKey, "Página %d")
}

var parseRegular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// newFace builds a face for one compose. Faces hold rasterizer state and
// must not be shared between goroutines; the parsed font can be.
func newFace(size int) (font.Face, error) {
	tt, err := parseRegular()
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	f, err := opentype.NewFace(tt, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return f, nil
}

// textSize derives the font size from the strip height.
func textSize(stripHeight int) int {
	return int(math.Max(9, math.Min(28, math.Round(float64(stripHeight)*0.32))))
}

// pageLabel formats the page number for tag.
func pageLabel(tag language.Tag, page int) string {
	return message.NewPrinter(tag).Sprintf(pageLabelKey, page)
}

// stripText is the footer content. Empty fields are skipped.
type stripText struct {
	Left   string
	Center string
	Right  string
}

// drawStripText renders left, centered and right-aligned labels on one
// baseline vertically centered in strip.
func drawStripText(dst *image.RGBA, strip image.Rectangle, face font.Face, c color.Color, padding int, t stripText) {
	m := face.Metrics()
	baseline := strip.Min.Y + (strip.Dy()+m.Ascent.Ceil()-m.Descent.Ceil())/2

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
	}
	draw := func(x int, s string) {
		d.Dot = fixed.P(x, baseline)
		d.DrawString(s)
	}

	if t.Left != "" {
		draw(strip.Min.X+padding, t.Left)
	}
	if t.Center != "" {
		w := font.MeasureString(face, t.Center).Ceil()
		draw(strip.Min.X+(strip.Dx()-w)/2, t.Center)
	}
	if t.Right != "" {
		w := font.MeasureString(face, t.Right).Ceil()
		draw(strip.Max.X-w-padding, t.Right)
	}
}
