package pip

import (
	"math"
	"sync"
)

// Controller tracks pointer-driven repositioning of the camera overlay.
// Its handlers run ahead of any other view-level interaction handling: a
// consumed event must never reach the slide navigation underneath.
type Controller struct {
	mu         sync.Mutex
	pos        *Position
	view       Rect
	canvas     Size
	dragging   bool
	dragOffset *Point
	// onOverlay repositions the visible overlay element, in view space.
	onOverlay func(Point)
}

// NewController attaches drag handling to the shared position. Attach one
// only while a camera source is active.
func NewController(pos *Position, view Rect, canvas Size, onOverlay func(Point)) *Controller {
	return &Controller{pos: pos, view: view, canvas: canvas, onOverlay: onOverlay}
}

// SetViewRect updates the rendered view rectangle, e.g. after a resize.
func (c *Controller) SetViewRect(view Rect) {
	c.mu.Lock()
	c.view = view
	c.mu.Unlock()
}

// PointerDown starts a drag when the pointer lands inside the circle
// (border included). It reports whether the event was consumed.
func (c *Controller) PointerDown(p Point) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	center, ok := c.pos.Get()
	if !ok {
		return false
	}
	cp := ViewToCanvas(p, c.view, c.canvas)
	if math.Hypot(cp.X-center.X, cp.Y-center.Y) > Radius+Border {
		return false
	}
	c.dragging = true
	c.dragOffset = &Point{X: cp.X - center.X, Y: cp.Y - center.Y}
	return true
}

// PointerMove repositions the circle while dragging, clamped so the whole
// circle stays inside canvas bounds, and mirrors the move to the overlay.
func (c *Controller) PointerMove(p Point) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dragging || c.dragOffset == nil {
		return false
	}
	cp := ViewToCanvas(p, c.view, c.canvas)
	next := Clamp(Point{X: cp.X - c.dragOffset.X, Y: cp.Y - c.dragOffset.Y}, c.canvas)
	c.pos.Set(next)
	if c.onOverlay != nil {
		c.onOverlay(CanvasToView(next, c.view, c.canvas))
	}
	return true
}

// PointerUp ends the drag.
func (c *Controller) PointerUp(Point) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	was := c.dragging
	c.dragging = false
	c.dragOffset = nil
	return was
}

// Detach drops any in-flight drag state. The owner removes the controller
// from its event wiring afterwards.
func (c *Controller) Detach() {
	c.mu.Lock()
	c.dragging = false
	c.dragOffset = nil
	c.onOverlay = nil
	c.mu.Unlock()
}
