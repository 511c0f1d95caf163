// Package vpx wraps libvpx for VP8/VP9 encoding.
package vpx

/*
#cgo pkg-config: vpx

#include <stdlib.h>
#include <string.h>
#include "vpx/vpx_encoder.h"
#include "vpx/vp8cx.h"

static vpx_codec_iface_t *iface_by_name(const char *name) {
	if (strcmp(name, "vp8") == 0) return vpx_codec_vp8_cx();
	if (strcmp(name, "vp9") == 0) return vpx_codec_vp9_cx();
	return NULL;
}

// copy_i420 fills the planes of an allocated image from a contiguous
// I420 buffer, honoring the image stride.
static void copy_i420(vpx_image_t *img, const unsigned char *src) {
	int plane, y;
	for (plane = 0; plane < 3; plane++) {
		unsigned char *dst = img->planes[plane];
		const int w = (plane == 0) ? img->d_w : (img->d_w + 1) / 2;
		const int h = (plane == 0) ? img->d_h : (img->d_h + 1) / 2;
		for (y = 0; y < h; y++) {
			memcpy(dst, src, w);
			src += w;
			dst += img->stride[plane];
		}
	}
}

typedef struct FrameBytes {
	void *bs;
	int size;
	int key;
} FrameBytesType;

static FrameBytesType next_frame(vpx_codec_ctx_t *codec, vpx_codec_iter_t *iter) {
	FrameBytesType bytes = {NULL, 0, 0};
	const vpx_codec_cx_pkt_t *pkt = vpx_codec_get_cx_data(codec, iter);
	if (pkt != NULL && pkt->kind == VPX_CODEC_CX_FRAME_PKT) {
		bytes.bs = pkt->data.frame.buf;
		bytes.size = pkt->data.frame.sz;
		bytes.key = (pkt->data.frame.flags & VPX_FRAME_IS_KEY) != 0;
	}
	return bytes;
}
*/
import "C"
import (
	"fmt"
	"image"
	"unsafe"

	"github.com/slidecast/slidecast/pkg/encoder/yuv"
)

type Codec string

const (
	VP8 Codec = "vp8"
	VP9 Codec = "vp9"
)

type Options struct {
	Width, Height int
	Fps           int
	// Bitrate is the target rate in kbit/s.
	Bitrate uint
	// KeyframeInterval forces a keyframe every n frames; chunk boundaries
	// stay decodable without waiting for the codec's own cadence.
	KeyframeInterval uint
}

type Encoder struct {
	frameCount C.longlong
	image      C.vpx_image_t
	codecCtx   C.vpx_codec_ctx_t

	kfi C.longlong
	buf []byte
	w   int
	h   int
}

// NewEncoder initializes a libvpx encoder. Construction fails when the
// library was built without the requested codec, which is how the probe
// discovers actual runtime capability.
func NewEncoder(codec Codec, opts Options) (*Encoder, error) {
	name := C.CString(string(codec))
	defer C.free(unsafe.Pointer(name))
	iface := C.iface_by_name(name)
	if iface == nil {
		return nil, fmt.Errorf("vpx: codec %v is not supported by this libvpx build", codec)
	}

	e := &Encoder{
		kfi: C.longlong(opts.KeyframeInterval),
		buf: make([]byte, yuv.BufSize(opts.Width, opts.Height)),
		w:   opts.Width,
		h:   opts.Height,
	}

	if C.vpx_img_alloc(&e.image, C.VPX_IMG_FMT_I420, C.uint(opts.Width), C.uint(opts.Height), 1) == nil {
		return nil, fmt.Errorf("vpx: image alloc failed")
	}

	var cfg C.vpx_codec_enc_cfg_t
	if C.vpx_codec_enc_config_default(iface, &cfg, 0) != 0 {
		C.vpx_img_free(&e.image)
		return nil, fmt.Errorf("vpx: no default config for %v", codec)
	}
	cfg.g_w = C.uint(opts.Width)
	cfg.g_h = C.uint(opts.Height)
	cfg.g_timebase.num = 1
	cfg.g_timebase.den = C.int(opts.Fps)
	cfg.g_lag_in_frames = 0
	cfg.g_error_resilient = 1
	cfg.rc_target_bitrate = C.uint(opts.Bitrate)

	if C.vpx_codec_enc_init_ver(&e.codecCtx, iface, &cfg, 0, C.VPX_ENCODER_ABI_VERSION) != 0 {
		C.vpx_img_free(&e.image)
		return nil, fmt.Errorf("vpx: encoder init failed for %v", codec)
	}
	return e, nil
}

func (e *Encoder) Encode(img *image.RGBA) ([]byte, bool, error) {
	yuv.FromRGBA(img, e.buf, e.w, e.h)
	C.copy_i420(&e.image, (*C.uchar)(unsafe.Pointer(&e.buf[0])))

	var flags C.vpx_enc_frame_flags_t
	if e.kfi > 0 && e.frameCount%e.kfi == 0 {
		flags |= C.VPX_EFLAG_FORCE_KF
	}
	if C.vpx_codec_encode(&e.codecCtx, &e.image, C.vpx_codec_pts_t(e.frameCount), 1, flags, C.VPX_DL_REALTIME) != 0 {
		return nil, false, fmt.Errorf("vpx: frame %v encode failed", e.frameCount)
	}
	e.frameCount++

	var out []byte
	var key bool
	var iter C.vpx_codec_iter_t
	for {
		fb := C.next_frame(&e.codecCtx, &iter)
		if fb.bs == nil {
			break
		}
		if out == nil {
			key = fb.key != 0
		}
		out = append(out, C.GoBytes(fb.bs, fb.size)...)
	}
	return out, key, nil
}

func (e *Encoder) Close() error {
	C.vpx_img_free(&e.image)
	if C.vpx_codec_destroy(&e.codecCtx) != 0 {
		return fmt.Errorf("vpx: codec destroy failed")
	}
	return nil
}
