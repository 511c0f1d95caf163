// Package codecs assembles the default codec preference list. It is the
// only package tying the cgo-backed codecs into the engine, so everything
// above it stays buildable and testable without native libraries.
package codecs

import (
	"github.com/slidecast/slidecast/pkg/config"
	"github.com/slidecast/slidecast/pkg/encoder"
	"github.com/slidecast/slidecast/pkg/encoder/mjpeg"
	"github.com/slidecast/slidecast/pkg/encoder/opus"
	"github.com/slidecast/slidecast/pkg/encoder/vpx"
)

// Preference returns video candidates best-first: VP9, VP8, then MJPEG as
// the generic fallback that cannot fail.
func Preference(conf config.Config) []encoder.Candidate {
	w := conf.Recording.Video.Width
	h := conf.Recording.Video.Height
	vpxOpts := vpx.Options{
		Width:            w,
		Height:           h,
		Fps:              conf.Recording.Video.Fps,
		Bitrate:          conf.Encoder.Video.Vpx.Bitrate,
		KeyframeInterval: conf.Encoder.Video.Vpx.KeyframeInterval,
	}
	return []encoder.Candidate{
		{
			CodecID: "V_VP9",
			MIME:    `video/webm;codecs="vp9,opus"`,
			Ext:     "webm",
			New:     func() (encoder.VideoCodec, error) { return vpx.NewEncoder(vpx.VP9, vpxOpts) },
		},
		{
			CodecID: "V_VP8",
			MIME:    `video/webm;codecs="vp8,opus"`,
			Ext:     "webm",
			New:     func() (encoder.VideoCodec, error) { return vpx.NewEncoder(vpx.VP8, vpxOpts) },
		},
		{
			CodecID: "V_MJPEG",
			MIME:    "video/x-matroska",
			Ext:     "mkv",
			New: func() (encoder.VideoCodec, error) {
				return mjpeg.NewEncoder(conf.Encoder.Video.Mjpeg.Quality)
			},
		},
	}
}

// Audio returns the Opus factory for the given graph format.
func Audio(conf config.Config, sampleRate, channels int) encoder.AudioFactory {
	return func() (encoder.AudioCodec, error) {
		return opus.NewEncoder(sampleRate, channels, conf.Encoder.Audio.Bitrate)
	}
}
