package pip

import "sync"

// Fixed overlay geometry. These match the on-screen rendition exactly, so
// composited output and the interactive overlay stay in visual parity.
const (
	Diameter = 150
	Radius   = Diameter / 2
	Margin   = 20
	Border   = 3
)

type (
	Point struct{ X, Y float64 }
	Size  struct{ W, H float64 }
	// Rect is the rendered (CSS) rectangle of the presentation view,
	// in viewport coordinates.
	Rect struct{ X, Y, W, H float64 }
)

// ViewToCanvas converts a viewport point into canvas pixel space using the
// ratio of the canvas resolution to the view's rendered size.
func ViewToCanvas(p Point, view Rect, canvas Size) Point {
	return Point{
		X: (p.X - view.X) * canvas.W / view.W,
		Y: (p.Y - view.Y) * canvas.H / view.H,
	}
}

// CanvasToView is the inverse of ViewToCanvas.
func CanvasToView(p Point, view Rect, canvas Size) Point {
	return Point{
		X: p.X*view.W/canvas.W + view.X,
		Y: p.Y*view.H/canvas.H + view.Y,
	}
}

// Clamp keeps the full circle, border included, inside the canvas bounds.
func Clamp(p Point, canvas Size) Point {
	min := float64(Radius + Border)
	return Point{
		X: clamp(p.X, min, canvas.W-min),
		Y: clamp(p.Y, min, canvas.H-min),
	}
}

// DefaultPosition places the circle at the bottom-right corner with the
// standard margin.
func DefaultPosition(canvas Size) Point {
	return Point{
		X: canvas.W - Margin - Radius,
		Y: canvas.H - Margin - Radius,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Position is the shared PiP center in canvas space. It exists only while a
// camera stream is active; the compositor reads it, the drag controller
// writes it.
type Position struct {
	mu  sync.Mutex
	p   Point
	set bool
}

func NewPosition(canvas Size) *Position {
	return &Position{p: DefaultPosition(canvas), set: true}
}

func (p *Position) Get() (Point, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.p, p.set
}

func (p *Position) Set(pt Point) {
	p.mu.Lock()
	p.p, p.set = pt, true
	p.mu.Unlock()
}
