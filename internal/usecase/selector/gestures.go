package selector

// MouseEvent is a pointer event from a mouse.
type MouseEvent struct {
	Type   string // mousedown, mousemove, mouseup, mouseleave
	X, Y   float64
	Target string
}

// TouchPoint is one contact of a touch event.
type TouchPoint struct {
	X, Y float64
}

// TouchEvent is a pointer event from a touch screen. Only the first touch
// point is used.
type TouchEvent struct {
	Type    string // touchstart, touchmove, touchend, touchcancel
	Touches []TouchPoint
	Target  string
}

// HandleMouse applies a mouse event. Unknown event types are ignored.
func (s *Selector) HandleMouse(ev MouseEvent) {
	switch ev.Type {
	case "mousedown":
		s.PointerDown(ev.X, ev.Y, ev.Target)
	case "mousemove":
		s.PointerMove(ev.X, ev.Y)
	case "mouseup", "mouseleave":
		s.PointerUp()
	}
}

// HandleTouch applies a touch event with the same semantics as HandleMouse.
func (s *Selector) HandleTouch(ev TouchEvent) {
	switch ev.Type {
	case "touchstart":
		if len(ev.Touches) == 0 {
			return
		}
		s.PointerDown(ev.Touches[0].X, ev.Touches[0].Y, ev.Target)
	case "touchmove":
		if len(ev.Touches) == 0 {
			return
		}
		s.PointerMove(ev.Touches[0].X, ev.Touches[0].Y)
	case "touchend":
		// A lifted finger ends the gesture only once no contact remains.
		if len(ev.Touches) > 0 {
			return
		}
		s.PointerUp()
	case "touchcancel":
		s.PointerUp()
	}
}
