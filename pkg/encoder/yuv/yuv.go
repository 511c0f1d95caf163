// Package yuv converts RGBA images into the I420 planar format expected by
// the video codecs.
package yuv

import "image"

// BufSize returns the I420 buffer length for a w x h image.
func BufSize(w, h int) int { return w*h + 2*((w+1)/2)*((h+1)/2) }

// FromRGBA converts an RGBA image into dst as I420 (BT.601), chroma
// subsampled 2x2. dst must be at least BufSize(w, h) long; it is reused
// between frames to avoid reallocation.
func FromRGBA(rgba *image.RGBA, dst []byte, w, h int) {
	cw, ch := (w+1)/2, (h+1)/2
	yp := dst[:w*h]
	up := dst[w*h : w*h+cw*ch]
	vp := dst[w*h+cw*ch : w*h+2*cw*ch]

	for y := 0; y < h; y++ {
		row := rgba.Pix[y*rgba.Stride:]
		for x := 0; x < w; x++ {
			r, g, b := int32(row[x*4]), int32(row[x*4+1]), int32(row[x*4+2])
			yp[y*w+x] = uint8(((66*r + 129*g + 25*b) >> 8) + 16)
		}
	}
	for y := 0; y < h; y += 2 {
		row := rgba.Pix[y*rgba.Stride:]
		for x := 0; x < w; x += 2 {
			r, g, b := int32(row[x*4]), int32(row[x*4+1]), int32(row[x*4+2])
			ci := (y/2)*cw + x/2
			up[ci] = uint8(((-38*r - 74*g + 112*b) >> 8) + 128)
			vp[ci] = uint8(((112*r - 94*g - 18*b) >> 8) + 128)
		}
	}
}
