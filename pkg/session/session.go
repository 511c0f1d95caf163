// Package session owns the recording lifecycle: it coordinates device
// acquisition, compositing, encoding, segment persistence, and final
// artifact assembly behind an explicit state machine.
package session

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/slidecast/slidecast/pkg/capture"
	"github.com/slidecast/slidecast/pkg/compositor"
	"github.com/slidecast/slidecast/pkg/media"
	"github.com/slidecast/slidecast/pkg/pip"
)

type Status int

const (
	Idle Status = iota
	Acquiring
	Recording
	Stopping
	Assembling
	Completed
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Acquiring:
		return "acquiring"
	case Recording:
		return "recording"
	case Stopping:
		return "stopping"
	case Assembling:
		return "assembling"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// terminal reports whether a new session may start over this one.
func (s Status) terminal() bool { return s == Idle || s == Completed || s == Failed }

var (
	ErrBusy         = errors.New("session: another recording is active")
	ErrNotRecording = errors.New("session: no recording in progress")
	ErrNoData       = errors.New("session: no recording data was captured")
)

// Settings are immutable for the session lifetime. Empty Camera/Mic means
// the feature is off.
type Settings struct {
	Title   string
	Width   int
	Height  int
	Fps     int
	Cursor  bool
	Persist bool
	Camera  string
	Mic     string
	// ChunkInterval is the segment emission cadence.
	ChunkInterval time.Duration
}

// Stream is the encoding pipeline as the session sees it. Finalize must
// flush every remaining byte into the stream before returning, so a Drain
// that follows it observes the complete tail.
type Stream interface {
	WriteFrame(img *image.RGBA, pts time.Duration) error
	WriteAudio(pcm []int16) error
	Cut() []byte
	Finalize() error
	Drain() []byte
	MIME() string
	Ext() string
}

// StreamFactory probes codecs and builds the pipeline for a starting
// session.
type StreamFactory func(wantAudio bool, sampleRate, channels int) (Stream, error)

// RecordingSession is the aggregate for one recording. All fields are
// guarded by the owning engine's lock unless a field manages its own.
type RecordingSession struct {
	ID       string
	Settings Settings

	status     Status
	chunkIndex int
	chunks     [][]byte
	bytes      int64
	artifact   string
	started    time.Time

	pos  *pip.Position
	ctrl *pip.Controller

	devices *capture.Devices
	mixer   *media.Mixer
	comp    *compositor.Compositor
	stream  Stream

	cancel   context.CancelFunc
	loops    sync.WaitGroup
	torndown sync.Once
}

// Info is a point-in-time snapshot for the control surface.
type Info struct {
	ID       string     `json:"id"`
	Status   string     `json:"status"`
	Chunks   int        `json:"chunks"`
	Bytes    int64      `json:"bytes"`
	Pip      *pip.Point `json:"pip,omitempty"`
	Artifact string     `json:"artifact,omitempty"`
}
