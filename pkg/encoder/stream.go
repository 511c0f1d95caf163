package encoder

import (
	"errors"
	"image"
	"sync"
	"time"

	"github.com/at-wat/ebml-go/webm"

	"github.com/slidecast/slidecast/pkg/logger"
	"github.com/slidecast/slidecast/pkg/media"
)

// Stream muxes encoded video and audio into one WebM/MKV byte stream
// flowing into a Chunker. Audio timestamps are derived from the written
// sample count, so they stay monotonic regardless of source pacing.
type Stream struct {
	mu  sync.Mutex
	sel *Selection
	chk *Chunker
	vw  webm.BlockWriteCloser
	aw  webm.BlockWriteCloser

	framer    media.Buffer
	audioRate int
	samples   int64

	closed bool
	log    *logger.Logger
}

func NewStream(sel *Selection, w, h, audioRate, audioCh int, log *logger.Logger) (*Stream, error) {
	chk := NewChunker()
	tracks := []webm.TrackEntry{{
		Name:        "Video",
		TrackNumber: 1,
		TrackUID:    1,
		CodecID:     sel.VideoCodecID,
		TrackType:   1,
		Video: &webm.Video{
			PixelWidth:  uint64(w),
			PixelHeight: uint64(h),
		},
	}}
	if sel.Audio != nil {
		tracks = append(tracks, webm.TrackEntry{
			Name:        "Audio",
			TrackNumber: 2,
			TrackUID:    2,
			CodecID:     "A_OPUS",
			TrackType:   2,
			Audio: &webm.Audio{
				SamplingFrequency: float64(audioRate),
				Channels:          uint64(audioCh),
			},
		})
	}
	ws, err := webm.NewSimpleBlockWriter(chk, tracks)
	if err != nil {
		return nil, err
	}
	s := &Stream{sel: sel, chk: chk, vw: ws[0], audioRate: audioRate, log: log}
	if sel.Audio != nil {
		s.aw = ws[1]
		s.framer = media.NewBuffer(sel.Audio.SamplesPerFrame() * audioCh)
	}
	return s, nil
}

func (s *Stream) MIME() string      { return s.sel.MIME }
func (s *Stream) Ext() string       { return s.sel.Ext }
func (s *Stream) HasAudio() bool    { return s.aw != nil }
func (s *Stream) Chunker() *Chunker { return s.chk }

// WriteFrame encodes and muxes one composited frame with the given
// presentation time.
func (s *Stream) WriteFrame(img *image.RGBA, pts time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	data, key, err := s.sel.Video.Encode(img)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	_, err = s.vw.Write(key, pts.Milliseconds(), data)
	return err
}

// WriteAudio feeds mixed PCM into the stream; complete codec frames are
// encoded and muxed as they fill up.
func (s *Stream) WriteAudio(pcm []int16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.aw == nil {
		return nil
	}
	var werr error
	s.framer.Write(pcm, func(frame []int16) {
		data, err := s.sel.Audio.Encode(frame)
		if err != nil {
			werr = err
			return
		}
		ts := s.samples * 1000 / int64(s.audioRate)
		if _, err = s.aw.Write(true, ts, data); err != nil {
			werr = err
		}
		s.samples += int64(s.sel.Audio.SamplesPerFrame())
	})
	return werr
}

// Cut returns the container bytes accumulated since the last cut.
func (s *Stream) Cut() []byte { return s.chk.Cut() }

// Finalize closes the muxer and the codecs. When it returns, the muxer has
// flushed its trailing bytes into the chunker, so Drain observes the
// complete stream. Idempotent.
func (s *Stream) Finalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.vw.Close()
	if s.aw != nil {
		err = errors.Join(err, s.aw.Close())
	}
	return errors.Join(err, s.sel.Close())
}

// Drain returns whatever the muxer flushed after the last cut. Call it
// after Finalize.
func (s *Stream) Drain() []byte { return s.chk.Drain() }
