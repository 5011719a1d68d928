package domain

import (
	"image"
	"math"
)

const (
	// MinSelectionSize is the smallest width or height a selection may take, in surface pixels.
	MinSelectionSize = 20.0
	// DefaultSelectionCap bounds each axis of the initial selection.
	DefaultSelectionCap = 200.0
)

// Surface is the displayed size of a page surface in CSS pixels.
type Surface struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether a selection of MinSelectionSize fits on the surface.
func (s Surface) Valid() bool {
	return s.Width >= MinSelectionSize && s.Height >= MinSelectionSize
}

// SelectionRect is the user-chosen region in surface coordinates.
type SelectionRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r SelectionRect) Right() float64  { return r.X + r.Width }
func (r SelectionRect) Bottom() float64 { return r.Y + r.Height }

// Within reports whether r satisfies the size and containment invariants for surface s.
func (r SelectionRect) Within(s Surface) bool {
	const eps = 1e-9
	return r.Width >= MinSelectionSize-eps &&
		r.Height >= MinSelectionSize-eps &&
		r.X >= -eps && r.Y >= -eps &&
		r.Right() <= s.Width+eps &&
		r.Bottom() <= s.Height+eps
}

// Contains reports whether the point lies inside r.
func (r SelectionRect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Bottom()
}

// OutputSize is the crop band size of the composed image: the selection
// rounded to whole pixels, never below one pixel.
func (r SelectionRect) OutputSize() (int, int) {
	w := int(math.Round(r.Width))
	h := int(math.Round(r.Height))
	return max(w, 1), max(h, 1)
}

// ScaleTo maps the selection from displayed coordinates onto a native raster.
// The result is clipped to native.
func (r SelectionRect) ScaleTo(displayed Surface, native image.Rectangle) image.Rectangle {
	if displayed.Width <= 0 || displayed.Height <= 0 {
		return image.Rectangle{}
	}
	sx := float64(native.Dx()) / displayed.Width
	sy := float64(native.Dy()) / displayed.Height

	src := image.Rect(
		native.Min.X+int(math.Round(r.X*sx)),
		native.Min.Y+int(math.Round(r.Y*sy)),
		native.Min.X+int(math.Round(r.Right()*sx)),
		native.Min.Y+int(math.Round(r.Bottom()*sy)),
	)
	return src.Intersect(native)
}

// Handle identifies a resize affordance on the selection rectangle.
type Handle string

const (
	HandleN  Handle = "n"
	HandleS  Handle = "s"
	HandleE  Handle = "e"
	HandleW  Handle = "w"
	HandleNE Handle = "ne"
	HandleNW Handle = "nw"
	HandleSE Handle = "se"
	HandleSW Handle = "sw"
)

// Edges lists which sides of the rectangle a gesture moves.
type Edges struct {
	Left, Top, Right, Bottom bool
}

// HandleEdges maps a handle to the edges it moves. ok is false for unknown handles.
func HandleEdges(h Handle) (Edges, bool) {
	switch h {
	case HandleN:
		return Edges{Top: true}, true
	case HandleS:
		return Edges{Bottom: true}, true
	case HandleE:
		return Edges{Right: true}, true
	case HandleW:
		return Edges{Left: true}, true
	case HandleNE:
		return Edges{Top: true, Right: true}, true
	case HandleNW:
		return Edges{Top: true, Left: true}, true
	case HandleSE:
		return Edges{Bottom: true, Right: true}, true
	case HandleSW:
		return Edges{Bottom: true, Left: true}, true
	default:
		return Edges{}, false
	}
}

// AllHandles returns every resize handle in a stable order.
func AllHandles() []Handle {
	return []Handle{HandleN, HandleS, HandleE, HandleW, HandleNE, HandleNW, HandleSE, HandleSW}
}
