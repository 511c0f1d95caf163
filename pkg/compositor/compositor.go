package compositor

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/slidecast/slidecast/pkg/capture"
	"github.com/slidecast/slidecast/pkg/logger"
	"github.com/slidecast/slidecast/pkg/pip"
)

// tickRate is the repaint cadence. It stands in for the display refresh
// rate and is intentionally decoupled from the encoder sampling rate.
const tickRate = 60

// Compositor runs the real-time draw loop: each tick it paints the latest
// screen frame over the whole surface and, when a camera is active, the
// circular PiP on top of it.
type Compositor struct {
	surface *Surface
	screen  *frameBox
	camera  *frameBox
	pos     *pip.Position

	cancel  context.CancelFunc
	done    chan struct{}
	stopped sync.Once

	// onFrame is an observation hook (metrics), called after each repaint.
	onFrame func()
	log     *logger.Logger
}

func New(w, h int, log *logger.Logger) *Compositor {
	return &Compositor{
		surface: NewSurface(w, h),
		screen:  &frameBox{},
		camera:  &frameBox{},
		done:    make(chan struct{}),
		log:     log,
	}
}

func (c *Compositor) Surface() *Surface { return c.surface }

func (c *Compositor) OnFrame(f func()) { c.onFrame = f }

// Attach wires the acquired sources in. The onScreenEnd callback fires once
// when the screen track ends on its own (the external interruption path).
// camera may be nil; pos must be non-nil iff camera is present.
func (c *Compositor) Attach(screen, camera capture.VideoSource, pos *pip.Position, onScreenEnd func()) {
	go c.screen.follow(screen, onScreenEnd)
	if camera != nil {
		c.pos = pos
		go c.camera.follow(camera, nil)
	}
}

// Start begins the repaint loop. The loop checks liveness at the top of
// every iteration and never draws another frame once Stop was called.
func (c *Compositor) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	go func() {
		defer close(c.done)
		tick := time.NewTicker(time.Second / tickRate)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
			}
			if ctx.Err() != nil {
				return
			}
			c.paint()
		}
	}()
}

// Stop cancels the loop and waits until the frame in flight, if any, is
// finished. Idempotent.
func (c *Compositor) Stop() {
	c.stopped.Do(func() {
		if c.cancel != nil {
			c.cancel()
			<-c.done
		}
	})
}

func (c *Compositor) paint() {
	if f := c.screen.get(); f != nil {
		c.surface.DrawScreen(f)
	}
	if c.pos != nil {
		if f := c.camera.get(); f != nil {
			if center, ok := c.pos.Get(); ok {
				c.surface.DrawPiP(f, center)
			}
		}
	}
	if c.onFrame != nil {
		c.onFrame()
	}
}

// frameBox keeps the most recent frame of a source.
type frameBox struct {
	mu sync.Mutex
	f  *image.RGBA
}

func (b *frameBox) follow(src capture.VideoSource, onEnd func()) {
	for f := range src.Frames() {
		b.mu.Lock()
		b.f = f
		b.mu.Unlock()
	}
	if onEnd != nil {
		onEnd()
	}
}

func (b *frameBox) get() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.f
}
