package capture

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/slidecast/slidecast/pkg/logger"
)

var ErrNoScreen = errors.New("capture: screen source is unavailable")

// VideoSource is a stream of RGBA frames. The channel closes when the
// source ends, either through Close or on its own (e.g. the user revoked
// screen sharing at the OS level).
type VideoSource interface {
	Frames() <-chan *image.RGBA
	Size() (w, h int)
	Close()
}

// AudioSource is a stream of interleaved int16 PCM blocks.
type AudioSource interface {
	Samples() <-chan []int16
	SampleRate() int
	Channels() int
	Close()
}

// Request mirrors the validated recording settings relevant to device
// acquisition. Empty Camera/Mic means the feature was not requested.
type Request struct {
	Width  int
	Height int
	Cursor bool
	Camera string
	Mic    string
}

// Provider opens concrete device handles. OpenScreen may return a system
// audio source alongside the video when the platform offers one.
type Provider interface {
	OpenScreen(ctx context.Context, req Request) (VideoSource, AudioSource, error)
	OpenCamera(ctx context.Context, deviceID string) (VideoSource, error)
	OpenMicrophone(ctx context.Context, deviceID string) (AudioSource, error)
}

// Devices holds every stream acquired for a session. Stopping them belongs
// to the session teardown, not to the code that received them.
type Devices struct {
	Screen      VideoSource
	ScreenAudio AudioSource
	Camera      VideoSource
	Mic         AudioSource

	closeOnce sync.Once
}

// Acquire requests all configured streams from the provider.
// A screen failure is fatal; camera and microphone failures are not, the
// session proceeds without that feature.
func Acquire(ctx context.Context, p Provider, req Request, log *logger.Logger) (*Devices, error) {
	screen, sysAudio, err := p.OpenScreen(ctx, req)
	if err != nil {
		return nil, errors.Join(ErrNoScreen, err)
	}
	d := &Devices{Screen: screen, ScreenAudio: sysAudio}

	if req.Camera != "" {
		cam, err := p.OpenCamera(ctx, req.Camera)
		if err != nil {
			log.Warn().Err(err).Msg("camera acquisition failed, continuing without PiP")
		} else {
			d.Camera = cam
		}
	}
	if req.Mic != "" {
		mic, err := p.OpenMicrophone(ctx, req.Mic)
		if err != nil {
			log.Warn().Err(err).Msg("microphone acquisition failed, continuing without mic audio")
		} else {
			d.Mic = mic
		}
	}
	return d, nil
}

// HasCamera reports whether a camera stream is active.
func (d *Devices) HasCamera() bool { return d != nil && d.Camera != nil }

// Close stops every acquired track. Safe to call multiple times.
func (d *Devices) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		if d.Screen != nil {
			d.Screen.Close()
		}
		if d.ScreenAudio != nil {
			d.ScreenAudio.Close()
		}
		if d.Camera != nil {
			d.Camera.Close()
		}
		if d.Mic != nil {
			d.Mic.Close()
		}
	})
}
