// Package playback drives slide advancement during a recording. The
// recording engine only ever calls Start(0) and Stop; slide state stays
// internal to the driver.
package playback

import (
	"sync"
	"time"

	"github.com/slidecast/slidecast/pkg/logger"
)

type Playback interface {
	Start(fromIndex int)
	Stop()
	IsPlaying() bool
	Advance()
	PreviousSlide()
}

// Timed advances slides automatically on a fixed interval, stopping at the
// last slide.
type Timed struct {
	mu       sync.Mutex
	index    int
	slides   int
	interval time.Duration
	playing  bool
	stop     chan struct{}
	log      *logger.Logger
}

func NewTimed(slides int, interval time.Duration, log *logger.Logger) *Timed {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Timed{slides: slides, interval: interval, log: log}
}

func (t *Timed) Start(fromIndex int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.playing {
		return
	}
	t.index = fromIndex
	t.playing = true
	t.stop = make(chan struct{})
	go t.run(t.stop)
	t.log.Debug().Msgf("playback started from slide %v", fromIndex)
}

func (t *Timed) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.playing {
		return
	}
	t.playing = false
	close(t.stop)
}

func (t *Timed) IsPlaying() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playing
}

func (t *Timed) Advance() {
	t.mu.Lock()
	if t.index < t.slides-1 {
		t.index++
	}
	t.mu.Unlock()
}

func (t *Timed) PreviousSlide() {
	t.mu.Lock()
	if t.index > 0 {
		t.index--
	}
	t.mu.Unlock()
}

// Index reports the current slide.
func (t *Timed) Index() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.index
}

func (t *Timed) run(stop chan struct{}) {
	tick := time.NewTicker(t.interval)
	defer tick.Stop()
	for {
		select {
		case <-stop:
			return
		case <-tick.C:
			t.Advance()
		}
	}
}
