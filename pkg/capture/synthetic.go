package capture

import (
	"context"
	"image"
	"image/color"
	"math"
	"sync"
	"time"
)

const (
	camWidth  = 640
	camHeight = 480
)

// SyntheticProvider serves generated media streams: a moving test pattern
// for video and a sine tone for audio. It backs the demo binary and tests,
// and doubles as a reference for real capture providers.
type SyntheticProvider struct {
	Fps int
	// Hz is the audio tone frequency, 0 for silence.
	Hz int
}

func (p SyntheticProvider) fps() int {
	if p.Fps <= 0 {
		return 30
	}
	return p.Fps
}

func (p SyntheticProvider) OpenScreen(ctx context.Context, req Request) (VideoSource, AudioSource, error) {
	w, h := req.Width, req.Height
	if w <= 0 || h <= 0 {
		w, h = 1280, 720
	}
	return newVideoGen(ctx, w, h, p.fps(), 0), nil, nil
}

func (p SyntheticProvider) OpenCamera(ctx context.Context, _ string) (VideoSource, error) {
	return newVideoGen(ctx, camWidth, camHeight, p.fps(), 96), nil
}

func (p SyntheticProvider) OpenMicrophone(ctx context.Context, _ string) (AudioSource, error) {
	return newAudioGen(ctx, 48000, 2, p.Hz), nil
}

type videoGen struct {
	frames chan *image.RGBA
	w, h   int
	cancel context.CancelFunc
	once   sync.Once
}

func newVideoGen(ctx context.Context, w, h, fps, hueShift int) *videoGen {
	ctx, cancel := context.WithCancel(ctx)
	g := &videoGen{frames: make(chan *image.RGBA, 1), w: w, h: h, cancel: cancel}
	go g.run(ctx, fps, hueShift)
	return g
}

func (g *videoGen) run(ctx context.Context, fps, hueShift int) {
	defer close(g.frames)
	tick := time.NewTicker(time.Second / time.Duration(fps))
	defer tick.Stop()
	n := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
		img := image.NewRGBA(image.Rect(0, 0, g.w, g.h))
		for y := 0; y < g.h; y++ {
			for x := 0; x < g.w; x++ {
				img.SetRGBA(x, y, color.RGBA{
					R: uint8((x + n + hueShift) & 0xff),
					G: uint8((y + n) & 0xff),
					B: uint8((x + y) & 0xff),
					A: 0xff,
				})
			}
		}
		n += 4
		// drop the stale frame when the consumer lags
		select {
		case g.frames <- img:
		default:
			select {
			case <-g.frames:
			default:
			}
			g.frames <- img
		}
	}
}

func (g *videoGen) Frames() <-chan *image.RGBA { return g.frames }
func (g *videoGen) Size() (int, int)           { return g.w, g.h }
func (g *videoGen) Close()                     { g.once.Do(g.cancel) }

type audioGen struct {
	samples chan []int16
	rate    int
	ch      int
	cancel  context.CancelFunc
	once    sync.Once
}

func newAudioGen(ctx context.Context, rate, channels, hz int) *audioGen {
	ctx, cancel := context.WithCancel(ctx)
	g := &audioGen{samples: make(chan []int16, 4), rate: rate, ch: channels, cancel: cancel}
	go g.run(ctx, hz)
	return g
}

func (g *audioGen) run(ctx context.Context, hz int) {
	defer close(g.samples)
	const blockMs = 20
	tick := time.NewTicker(blockMs * time.Millisecond)
	defer tick.Stop()
	frames := g.rate * blockMs / 1000
	phase := 0.0
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
		block := make([]int16, frames*g.ch)
		if hz > 0 {
			step := 2 * math.Pi * float64(hz) / float64(g.rate)
			for i := 0; i < frames; i++ {
				v := int16(math.Sin(phase) * 0.1 * math.MaxInt16)
				for c := 0; c < g.ch; c++ {
					block[i*g.ch+c] = v
				}
				phase += step
			}
		}
		select {
		case g.samples <- block:
		default:
		}
	}
}

func (g *audioGen) Samples() <-chan []int16 { return g.samples }
func (g *audioGen) SampleRate() int         { return g.rate }
func (g *audioGen) Channels() int           { return g.ch }
func (g *audioGen) Close()                  { g.once.Do(g.cancel) }
