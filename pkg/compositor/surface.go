package compositor

import (
	"image"
	"image/color"
	stddraw "image/draw"
	"math"

	"golang.org/x/image/draw"

	"github.com/slidecast/slidecast/pkg/pip"
)

// Surface is the offscreen compositing target, sized exactly to the
// requested recording resolution.
type Surface struct {
	img *image.RGBA
	w   int
	h   int
}

func NewSurface(w, h int) *Surface {
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, w, h)), w: w, h: h}
}

func (s *Surface) Size() (int, int) { return s.w, s.h }

// CopyTo snapshots the surface into dst, which must share its dimensions.
func (s *Surface) CopyTo(dst *image.RGBA) { copy(dst.Pix, s.img.Pix) }

// DrawScreen paints the captured frame stretched over the whole surface.
func (s *Surface) DrawScreen(frame image.Image) {
	draw.ApproxBiLinear.Scale(s.img, s.img.Bounds(), frame, frame.Bounds(), draw.Src, nil)
}

// DrawPiP paints the circular camera overlay at the given center:
// a drop-shadowed backplate disc of radius R+border first, then the camera
// frame cover-fitted into the inner circle of radius R.
func (s *Surface) DrawPiP(frame image.Image, center pip.Point) {
	cx, cy := int(math.Round(center.X)), int(math.Round(center.Y))

	shadow := newDisc(cx+2, cy+3, pip.Radius+pip.Border, 6)
	stddraw.DrawMask(s.img, s.img.Bounds(), &image.Uniform{C: color.RGBA{A: 90}},
		image.Point{}, shadow, image.Point{}, stddraw.Over)

	plate := newDisc(cx, cy, pip.Radius+pip.Border, 1)
	stddraw.DrawMask(s.img, s.img.Bounds(), &image.Uniform{C: color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		image.Point{}, plate, image.Point{}, stddraw.Over)

	// cover fit: uniform scale filling the circle without distortion
	b := frame.Bounds()
	scale := math.Max(
		float64(pip.Diameter)/float64(b.Dx()),
		float64(pip.Diameter)/float64(b.Dy()),
	)
	sw, sh := int(math.Ceil(float64(b.Dx())*scale)), int(math.Ceil(float64(b.Dy())*scale))
	dst := image.Rect(cx-sw/2, cy-sh/2, cx-sw/2+sw, cy-sh/2+sh)

	clip := newDisc(cx, cy, pip.Radius, 1)
	draw.ApproxBiLinear.Scale(s.img, dst, frame, b, draw.Over, &draw.Options{
		DstMask:  clip,
		DstMaskP: image.Point{},
	})
}

// disc is an alpha mask of a filled circle with an anti-aliased (and for
// shadows, feathered) edge.
type disc struct {
	cx, cy  int
	r       float64
	feather float64
}

func newDisc(cx, cy, r, feather int) *disc {
	return &disc{cx: cx, cy: cy, r: float64(r), feather: float64(feather)}
}

func (d *disc) ColorModel() color.Model { return color.AlphaModel }

func (d *disc) Bounds() image.Rectangle {
	e := int(d.r + d.feather + 1)
	return image.Rect(d.cx-e, d.cy-e, d.cx+e, d.cy+e)
}

func (d *disc) At(x, y int) color.Color {
	dist := math.Hypot(float64(x-d.cx), float64(y-d.cy))
	switch {
	case dist <= d.r:
		return color.Alpha{A: 0xff}
	case dist >= d.r+d.feather:
		return color.Alpha{A: 0}
	default:
		return color.Alpha{A: uint8(255 * (1 - (dist-d.r)/d.feather))}
	}
}
