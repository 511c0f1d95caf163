package media

import (
	"math"
	"sync"

	"github.com/slidecast/slidecast/pkg/capture"
	"github.com/slidecast/slidecast/pkg/logger"
)

// Mixer merges up to two PCM sources into a single output track, so the
// encoder always sees at most one audio stream. A single input is still
// routed through the mixer for a uniform interface.
//
// The output format is fixed to the rate and channel count of the first
// source; both inputs are expected to share it (48k stereo throughout the
// engine).
type Mixer struct {
	out  chan []int16
	rate int
	ch   int
	once sync.Once
	stop chan struct{}
}

// NewMixer builds the mixing graph. It returns nil when no sources are
// given: a video-only recording is valid and carries no audio track.
func NewMixer(log *logger.Logger, sources ...capture.AudioSource) *Mixer {
	var active []capture.AudioSource
	for _, s := range sources {
		if s != nil {
			active = append(active, s)
		}
	}
	if len(active) == 0 {
		return nil
	}
	m := &Mixer{
		out:  make(chan []int16, 4),
		rate: active[0].SampleRate(),
		ch:   active[0].Channels(),
		stop: make(chan struct{}),
	}
	switch len(active) {
	case 1:
		go m.passthrough(active[0])
	default:
		if len(active) > 2 {
			log.Warn().Msgf("mixer supports 2 inputs, got %v, extra sources ignored", len(active))
		}
		go m.merge(active[0], active[1])
	}
	return m
}

func (m *Mixer) Samples() <-chan []int16 { return m.out }
func (m *Mixer) SampleRate() int         { return m.rate }
func (m *Mixer) Channels() int           { return m.ch }

// Close stops the graph output. It does not close the underlying sources,
// their lifetime belongs to the session teardown.
func (m *Mixer) Close() { m.once.Do(func() { close(m.stop) }) }

func (m *Mixer) passthrough(src capture.AudioSource) {
	defer close(m.out)
	for {
		select {
		case <-m.stop:
			return
		case block, ok := <-src.Samples():
			if !ok {
				return
			}
			m.push(block)
		}
	}
}

// merge is paced by the first source; the second is drained into a queue
// and padded with silence on underrun, so a stalled mic can never stall
// the whole track.
func (m *Mixer) merge(a, b capture.AudioSource) {
	defer close(m.out)
	q := &sampleQueue{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for block := range b.Samples() {
			q.push(block)
		}
	}()
	for {
		select {
		case <-m.stop:
			return
		case block, ok := <-a.Samples():
			if !ok {
				<-done
				return
			}
			m.push(mix(block, q.pop(len(block))))
		}
	}
}

func (m *Mixer) push(block []int16) {
	select {
	case m.out <- block:
	case <-m.stop:
	}
}

// mix sums two equal-length blocks with int16 saturation.
func mix(a, b []int16) []int16 {
	out := make([]int16, len(a))
	for i := range a {
		v := int32(a[i]) + int32(b[i])
		if v > math.MaxInt16 {
			v = math.MaxInt16
		} else if v < math.MinInt16 {
			v = math.MinInt16
		}
		out[i] = int16(v)
	}
	return out
}

type sampleQueue struct {
	mu sync.Mutex
	s  []int16
}

func (q *sampleQueue) push(block []int16) {
	q.mu.Lock()
	q.s = append(q.s, block...)
	q.mu.Unlock()
}

// pop returns exactly n samples, zero-padded when the queue runs dry.
func (q *sampleQueue) pop(n int) []int16 {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]int16, n)
	c := copy(out, q.s)
	q.s = q.s[c:]
	return out
}
