// Package opus wraps libopus for audio encoding.
package opus

/*
#cgo pkg-config: opus

#include <opus.h>

static int bridge_set_bitrate(OpusEncoder *st, opus_int32 bitrate) {
	return opus_encoder_ctl(st, OPUS_SET_BITRATE(bitrate));
}
*/
import "C"
import (
	"fmt"
	"unsafe"
)

const (
	// frameMs is the Opus frame duration used throughout the engine.
	frameMs = 20
	// maxPacket is large enough for any frame at the configured bitrates.
	maxPacket = 4000
)

type Encoder struct {
	ptr       *C.struct_OpusEncoder
	buf       []byte
	channels  int
	frameSize int
}

// NewEncoder creates an Opus encoder for interleaved int16 PCM.
// bitrate <= 0 keeps the library default.
func NewEncoder(sampleRate, channels, bitrate int) (*Encoder, error) {
	var cerr C.int
	ptr := C.opus_encoder_create(C.opus_int32(sampleRate), C.int(channels), C.OPUS_APPLICATION_AUDIO, &cerr)
	if cerr != C.OPUS_OK {
		return nil, fmt.Errorf("opus: encoder create failed (%v)", int(cerr))
	}
	if bitrate > 0 {
		if rc := C.bridge_set_bitrate(ptr, C.opus_int32(bitrate)); rc != C.OPUS_OK {
			C.opus_encoder_destroy(ptr)
			return nil, fmt.Errorf("opus: set bitrate failed (%v)", int(rc))
		}
	}
	return &Encoder{
		ptr:       ptr,
		buf:       make([]byte, maxPacket),
		channels:  channels,
		frameSize: sampleRate * frameMs / 1000,
	}, nil
}

// SamplesPerFrame is the frame length in samples per channel.
func (e *Encoder) SamplesPerFrame() int { return e.frameSize }

// Encode compresses exactly one frame of interleaved PCM.
func (e *Encoder) Encode(pcm []int16) ([]byte, error) {
	if len(pcm) != e.frameSize*e.channels {
		return nil, fmt.Errorf("opus: bad frame size %v, want %v", len(pcm), e.frameSize*e.channels)
	}
	n := C.opus_encode(e.ptr,
		(*C.opus_int16)(unsafe.Pointer(&pcm[0])), C.int(e.frameSize),
		(*C.uchar)(unsafe.Pointer(&e.buf[0])), C.opus_int32(len(e.buf)))
	if n < 0 {
		return nil, fmt.Errorf("opus: encode failed (%v)", int(n))
	}
	out := make([]byte, int(n))
	copy(out, e.buf[:n])
	return out, nil
}

func (e *Encoder) Close() error {
	if e.ptr != nil {
		C.opus_encoder_destroy(e.ptr)
		e.ptr = nil
	}
	return nil
}
