package domain_test

import (
	"image"
	"testing"

	"epaper-clip/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestSelectionRect_ScaleTo(t *testing.T) {
	t.Run("2x native raster samples doubled region", func(t *testing.T) {
		sel := domain.SelectionRect{X: 50, Y: 50, Width: 200, Height: 150}
		displayed := domain.Surface{Width: 800, Height: 1000}
		native := image.Rect(0, 0, 1600, 2000)

		src := sel.ScaleTo(displayed, native)

		assert.Equal(t, image.Rect(100, 100, 500, 400), src)
		assert.Equal(t, 400, src.Dx())
		assert.Equal(t, 300, src.Dy())
	})

	t.Run("result is clipped to the raster", func(t *testing.T) {
		sel := domain.SelectionRect{X: 700, Y: 900, Width: 100, Height: 100}
		src := sel.ScaleTo(domain.Surface{Width: 800, Height: 1000}, image.Rect(0, 0, 799, 999))
		assert.Equal(t, 799, src.Max.X)
		assert.Equal(t, 999, src.Max.Y)
	})

	t.Run("zero surface yields empty rectangle", func(t *testing.T) {
		sel := domain.SelectionRect{Width: 20, Height: 20}
		assert.True(t, sel.ScaleTo(domain.Surface{}, image.Rect(0, 0, 10, 10)).Empty())
	})
}

func TestSelectionRect_Within(t *testing.T) {
	surface := domain.Surface{Width: 300, Height: 300}

	tests := []struct {
		name string
		rect domain.SelectionRect
		want bool
	}{
		{"inside", domain.SelectionRect{X: 10, Y: 10, Width: 50, Height: 50}, true},
		{"touching edges", domain.SelectionRect{X: 0, Y: 0, Width: 300, Height: 300}, true},
		{"too narrow", domain.SelectionRect{X: 10, Y: 10, Width: 19, Height: 50}, false},
		{"negative origin", domain.SelectionRect{X: -1, Y: 10, Width: 50, Height: 50}, false},
		{"overflows right", domain.SelectionRect{X: 260, Y: 10, Width: 50, Height: 50}, false},
		{"overflows bottom", domain.SelectionRect{X: 10, Y: 280, Width: 50, Height: 50}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rect.Within(surface))
		})
	}
}

func TestSelectionRect_OutputSize(t *testing.T) {
	w, h := domain.SelectionRect{Width: 199.6, Height: 150.2}.OutputSize()
	assert.Equal(t, 200, w)
	assert.Equal(t, 150, h)
}

func TestHandleEdges(t *testing.T) {
	for _, h := range domain.AllHandles() {
		edges, ok := domain.HandleEdges(h)
		assert.True(t, ok, string(h))
		assert.False(t, edges.Left && edges.Right, "handle %s moves opposite edges", h)
		assert.False(t, edges.Top && edges.Bottom, "handle %s moves opposite edges", h)
	}

	_, ok := domain.HandleEdges("middle")
	assert.False(t, ok)
}
