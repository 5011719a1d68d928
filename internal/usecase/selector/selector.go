// Package selector tracks a rectangular region on a page surface and edits it
// from pointer gestures. A Selector is not safe for concurrent use; callers
// serialize access per clip session.
package selector

import (
	"math"

	"epaper-clip/internal/domain"
)

// Observer is notified synchronously after every mutation. active is false
// once the selection has been cancelled.
type Observer func(rect domain.SelectionRect, active bool)

// TargetBody starts a drag. Handle names start a resize. An empty target is
// resolved by hit-testing the pointer position.
const TargetBody = "body"

// handleHitRadius is the distance in surface pixels within which a pointer
// grabs a handle during hit-testing.
const handleHitRadius = 10.0

type gestureKind int

const (
	gestureNone gestureKind = iota
	gestureDrag
	gestureResize
)

type gesture struct {
	kind    gestureKind
	edges   domain.Edges
	startX  float64
	startY  float64
	start   domain.SelectionRect
	offsetX float64
	offsetY float64
}

type Selector struct {
	surface   domain.Surface
	rect      domain.SelectionRect
	active    bool
	gesture   gesture
	observers []Observer
}

// New enters clip mode with the default selection centered in viewport.
// A zero viewport means the whole surface is visible.
func New(surface domain.Surface, viewport domain.SelectionRect, observers ...Observer) (*Selector, error) {
	if !surface.Valid() {
		return nil, domain.ErrInvalidSurface
	}
	s := &Selector{
		surface:   surface,
		rect:      DefaultSelection(surface, viewport),
		active:    true,
		observers: observers,
	}
	s.notify()
	return s, nil
}

// DefaultSelection is half the visible viewport per axis, capped at
// DefaultSelectionCap and never below MinSelectionSize, centered and clamped
// inside the surface.
func DefaultSelection(surface domain.Surface, viewport domain.SelectionRect) domain.SelectionRect {
	if viewport.Width <= 0 || viewport.Height <= 0 {
		viewport = domain.SelectionRect{Width: surface.Width, Height: surface.Height}
	}

	w := clamp(viewport.Width*0.5, domain.MinSelectionSize, domain.DefaultSelectionCap)
	h := clamp(viewport.Height*0.5, domain.MinSelectionSize, domain.DefaultSelectionCap)
	w = math.Min(w, surface.Width)
	h = math.Min(h, surface.Height)

	x := viewport.X + (viewport.Width-w)/2
	y := viewport.Y + (viewport.Height-h)/2
	return domain.SelectionRect{
		X:      clamp(x, 0, surface.Width-w),
		Y:      clamp(y, 0, surface.Height-h),
		Width:  w,
		Height: h,
	}
}

// SetRect replaces the selection, e.g. when restoring a saved clip. The
// rectangle is resized to at least MinSelectionSize and clamped inside the
// surface. It is ignored after Cancel or during a gesture.
func (s *Selector) SetRect(r domain.SelectionRect) {
	if !s.active || s.gesture.kind != gestureNone {
		return
	}
	w := math.Min(math.Max(r.Width, domain.MinSelectionSize), s.surface.Width)
	h := math.Min(math.Max(r.Height, domain.MinSelectionSize), s.surface.Height)
	s.rect = domain.SelectionRect{
		X:      clamp(r.X, 0, s.surface.Width-w),
		Y:      clamp(r.Y, 0, s.surface.Height-h),
		Width:  w,
		Height: h,
	}
	s.notify()
}

// OnCropChange registers an observer.
func (s *Selector) OnCropChange(o Observer) {
	s.observers = append(s.observers, o)
}

// Rect returns the current selection and whether clip mode is active.
func (s *Selector) Rect() (domain.SelectionRect, bool) {
	return s.rect, s.active
}

func (s *Selector) Surface() domain.Surface { return s.surface }

// Active reports whether clip mode is on.
func (s *Selector) Active() bool { return s.active }

// Gesturing reports whether a drag or resize is in progress.
func (s *Selector) Gesturing() bool { return s.gesture.kind != gestureNone }

// PointerDown begins a drag or a resize. It is ignored while another
// gesture is active, after Cancel, or for unknown targets.
func (s *Selector) PointerDown(x, y float64, target string) {
	if !s.active || s.gesture.kind != gestureNone {
		return
	}
	if target == "" {
		var ok bool
		if target, ok = s.HitTest(x, y); !ok {
			return
		}
	}

	if target == TargetBody {
		s.gesture = gesture{
			kind:    gestureDrag,
			offsetX: x - s.rect.X,
			offsetY: y - s.rect.Y,
		}
		return
	}

	edges, ok := domain.HandleEdges(domain.Handle(target))
	if !ok {
		return
	}
	s.gesture = gesture{
		kind:   gestureResize,
		edges:  edges,
		startX: x,
		startY: y,
		start:  s.rect,
	}
}

// PointerMove updates the selection for the active gesture.
func (s *Selector) PointerMove(x, y float64) {
	if !s.active {
		return
	}
	switch s.gesture.kind {
	case gestureDrag:
		s.rect.X = clamp(x-s.gesture.offsetX, 0, s.surface.Width-s.rect.Width)
		s.rect.Y = clamp(y-s.gesture.offsetY, 0, s.surface.Height-s.rect.Height)
	case gestureResize:
		s.rect = resize(s.gesture, x-s.gesture.startX, y-s.gesture.startY, s.surface)
	default:
		return
	}
	s.notify()
}

// PointerUp ends the active gesture.
func (s *Selector) PointerUp() {
	s.gesture = gesture{}
}

// Cancel leaves clip mode and discards the selection.
func (s *Selector) Cancel() {
	if !s.active {
		return
	}
	s.active = false
	s.gesture = gesture{}
	s.rect = domain.SelectionRect{}
	s.notify()
}

// HitTest resolves the target under a pointer: a handle when within
// handleHitRadius of it, the body when inside the rectangle.
func (s *Selector) HitTest(x, y float64) (string, bool) {
	r := s.rect
	midX := r.X + r.Width/2
	midY := r.Y + r.Height/2
	points := map[domain.Handle][2]float64{
		domain.HandleNW: {r.X, r.Y},
		domain.HandleNE: {r.Right(), r.Y},
		domain.HandleSW: {r.X, r.Bottom()},
		domain.HandleSE: {r.Right(), r.Bottom()},
		domain.HandleN:  {midX, r.Y},
		domain.HandleS:  {midX, r.Bottom()},
		domain.HandleW:  {r.X, midY},
		domain.HandleE:  {r.Right(), midY},
	}
	for _, h := range domain.AllHandles() {
		p := points[h]
		if math.Hypot(x-p[0], y-p[1]) <= handleHitRadius {
			return string(h), true
		}
	}
	if r.Contains(x, y) {
		return TargetBody, true
	}
	return "", false
}

func (s *Selector) notify() {
	for _, o := range s.observers {
		o(s.rect, s.active)
	}
}

// resize applies pointer deltas to the rectangle captured at pointer-down.
// Edges the handle does not own keep their starting position.
func resize(g gesture, dx, dy float64, surface domain.Surface) domain.SelectionRect {
	st := g.start
	left, top, right, bottom := st.X, st.Y, st.Right(), st.Bottom()

	if g.edges.Left {
		left = clamp(st.X+dx, 0, right-domain.MinSelectionSize)
	}
	if g.edges.Right {
		right = clamp(st.Right()+dx, left+domain.MinSelectionSize, surface.Width)
	}
	if g.edges.Top {
		top = clamp(st.Y+dy, 0, bottom-domain.MinSelectionSize)
	}
	if g.edges.Bottom {
		bottom = clamp(st.Bottom()+dy, top+domain.MinSelectionSize, surface.Height)
	}

	return domain.SelectionRect{
		X:      left,
		Y:      top,
		Width:  right - left,
		Height: bottom - top,
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(v, hi))
}
