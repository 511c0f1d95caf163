package playback

import (
	"testing"
	"time"

	"github.com/slidecast/slidecast/pkg/logger"
)

func TestTimedAdvancesAndStopsAtLastSlide(t *testing.T) {
	p := NewTimed(3, 10*time.Millisecond, logger.Default())
	p.Start(0)
	defer p.Stop()

	deadline := time.After(2 * time.Second)
	for p.Index() < 2 {
		select {
		case <-deadline:
			t.Fatalf("stuck at slide %v", p.Index())
		case <-time.After(5 * time.Millisecond):
		}
	}

	// past the last slide it must hold
	time.Sleep(50 * time.Millisecond)
	if got := p.Index(); got != 2 {
		t.Errorf("advanced past the last slide: %v", got)
	}
}

func TestTimedManualNavigation(t *testing.T) {
	p := NewTimed(5, time.Hour, logger.Default())

	p.PreviousSlide()
	if p.Index() != 0 {
		t.Error("went before the first slide")
	}
	p.Advance()
	p.Advance()
	if p.Index() != 2 {
		t.Errorf("index %v after two advances", p.Index())
	}
	p.PreviousSlide()
	if p.Index() != 1 {
		t.Errorf("index %v after going back", p.Index())
	}
}

func TestTimedStartStop(t *testing.T) {
	p := NewTimed(10, time.Hour, logger.Default())
	if p.IsPlaying() {
		t.Error("playing before start")
	}
	p.Start(3)
	if !p.IsPlaying() || p.Index() != 3 {
		t.Errorf("start state: playing=%v index=%v", p.IsPlaying(), p.Index())
	}
	p.Start(0) // second start is ignored
	if p.Index() != 3 {
		t.Error("double start reset the index")
	}
	p.Stop()
	p.Stop() // idempotent
	if p.IsPlaying() {
		t.Error("still playing after stop")
	}
}
