// Package encoder turns composited frames and mixed audio into a single
// containerized stream emitted as periodic binary segments.
package encoder

import (
	"errors"
	"image"

	"github.com/slidecast/slidecast/pkg/logger"
)

// VideoCodec compresses RGBA frames. Implementations keep their own
// conversion buffers.
type VideoCodec interface {
	// Encode returns the compressed frame, possibly empty when the codec
	// buffers, and whether it is a keyframe.
	Encode(img *image.RGBA) (data []byte, key bool, err error)
	Close() error
}

// AudioCodec compresses one fixed-size PCM frame per call.
type AudioCodec interface {
	Encode(pcm []int16) ([]byte, error)
	// SamplesPerFrame is the frame length in samples per channel.
	SamplesPerFrame() int
	Close() error
}

// Candidate is a constructible video codec option for Probe.
type Candidate struct {
	// CodecID is the Matroska codec identifier (V_VP9, V_VP8, V_MJPEG).
	CodecID string
	// MIME is the full container MIME with the codecs parameter.
	MIME string
	Ext  string
	New  func() (VideoCodec, error)
}

// AudioFactory constructs the audio codec for the stream.
type AudioFactory func() (AudioCodec, error)

// Selection is the probed codec pair plus container metadata.
type Selection struct {
	Video        VideoCodec
	Audio        AudioCodec
	VideoCodecID string
	MIME         string
	Ext          string
}

var ErrNoCodec = errors.New("encoder: no usable codec")

// Probe walks the candidate list in preference order and picks the first
// codec that actually constructs at runtime; capability is never assumed.
// An audio codec failure downgrades to a video-only selection, mirroring
// how a broken audio graph downgrades to a silent recording.
func Probe(log *logger.Logger, video []Candidate, audio AudioFactory, wantAudio bool) (*Selection, error) {
	for _, c := range video {
		v, err := c.New()
		if err != nil {
			log.Warn().Err(err).Msgf("codec %v is unavailable", c.CodecID)
			continue
		}
		sel := &Selection{Video: v, VideoCodecID: c.CodecID, MIME: c.MIME, Ext: c.Ext}
		if wantAudio && audio != nil {
			a, err := audio()
			if err != nil {
				log.Warn().Err(err).Msg("audio codec is unavailable, recording without audio")
			} else {
				sel.Audio = a
			}
		}
		log.Info().Msgf("selected codec %v (%v)", c.CodecID, c.MIME)
		return sel, nil
	}
	return nil, ErrNoCodec
}

// Close releases both codecs.
func (s *Selection) Close() (err error) {
	if s.Video != nil {
		err = s.Video.Close()
	}
	if s.Audio != nil {
		err = errors.Join(err, s.Audio.Close())
	}
	return
}
