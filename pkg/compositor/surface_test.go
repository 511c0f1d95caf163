package compositor

import (
	"image"
	"image/color"
	"testing"

	"github.com/slidecast/slidecast/pkg/pip"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestDrawScreenFillsSurface(t *testing.T) {
	s := NewSurface(320, 180)
	red := color.RGBA{R: 200, A: 255}
	// a frame of a different aspect ratio still covers every pixel
	s.DrawScreen(solid(100, 100, red))

	for _, p := range []image.Point{{0, 0}, {319, 0}, {0, 179}, {319, 179}, {160, 90}} {
		if got := s.img.RGBAAt(p.X, p.Y); got != red {
			t.Errorf("pixel %v = %v, want %v", p, got, red)
		}
	}
}

func TestDrawPiPClipsToCircle(t *testing.T) {
	s := NewSurface(640, 480)
	bg := color.RGBA{B: 180, A: 255}
	s.DrawScreen(solid(640, 480, bg))

	center := pip.Point{X: 320, Y: 240}
	s.DrawPiP(solid(640, 480, color.RGBA{G: 255, A: 255}), center)

	// inside the inner circle the camera shows
	if got := s.img.RGBAAt(320, 240); got.G != 255 {
		t.Errorf("camera not drawn at center: %v", got)
	}
	// between R and R+border the white plate shows
	px := 320 + pip.Radius + pip.Border - 1
	if got := s.img.RGBAAt(px, 240); got.R < 200 || got.G < 200 || got.B < 200 {
		t.Errorf("no border plate at %v: %v", px, got)
	}
	// far outside the disc (past the shadow feather) the background survives
	if got := s.img.RGBAAt(320+pip.Radius+pip.Border+20, 240); got != bg {
		t.Errorf("background damaged outside the overlay: %v", got)
	}
	if got := s.img.RGBAAt(5, 5); got != bg {
		t.Errorf("background damaged at the corner: %v", got)
	}
}

func TestDrawPiPCoverFitsNonSquareFrame(t *testing.T) {
	s := NewSurface(640, 480)
	s.DrawScreen(solid(640, 480, color.RGBA{A: 255}))

	// a wide frame: vertical cover-fit, horizontal overflow is clipped
	cam := solid(640, 160, color.RGBA{R: 255, A: 255})
	center := pip.Point{X: 320, Y: 240}
	s.DrawPiP(cam, center)

	// the inner circle is fully covered, no letterboxing at the top edge
	if got := s.img.RGBAAt(320, 240-pip.Radius+2); got.R < 200 {
		t.Errorf("inner circle not covered near the top: %v", got)
	}
}

func TestCopyTo(t *testing.T) {
	s := NewSurface(64, 48)
	c := color.RGBA{R: 1, G: 2, B: 3, A: 255}
	s.DrawScreen(solid(64, 48, c))

	dst := image.NewRGBA(image.Rect(0, 0, 64, 48))
	s.CopyTo(dst)
	if got := dst.RGBAAt(10, 10); got != c {
		t.Errorf("snapshot mismatch: %v != %v", got, c)
	}

	// the snapshot must be detached from later repaints
	s.DrawScreen(solid(64, 48, color.RGBA{R: 9, A: 255}))
	if got := dst.RGBAAt(10, 10); got != c {
		t.Errorf("snapshot changed after a repaint: %v", got)
	}
}

func BenchmarkDrawPiP(b *testing.B) {
	s := NewSurface(1920, 1080)
	s.DrawScreen(solid(1920, 1080, color.RGBA{B: 100, A: 255}))
	cam := solid(640, 480, color.RGBA{G: 100, A: 255})
	center := pip.DefaultPosition(pip.Size{W: 1920, H: 1080})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.DrawPiP(cam, center)
	}
}
