// Package mjpeg is the pure-Go last-resort video codec: every frame is an
// independent JPEG, muxed as V_MJPEG. Inefficient, but it always works.
package mjpeg

import (
	"bytes"
	"image"
	"image/jpeg"
)

type Encoder struct {
	buf     bytes.Buffer
	quality int
}

func NewEncoder(quality int) (*Encoder, error) {
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	return &Encoder{quality: quality}, nil
}

// Encode compresses the frame. Every MJPEG frame is a keyframe.
func (e *Encoder) Encode(img *image.RGBA) ([]byte, bool, error) {
	e.buf.Reset()
	if err := jpeg.Encode(&e.buf, img, &jpeg.Options{Quality: e.quality}); err != nil {
		return nil, false, err
	}
	out := make([]byte, e.buf.Len())
	copy(out, e.buf.Bytes())
	return out, true, nil
}

func (e *Encoder) Close() error { return nil }
