package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/slidecast/slidecast/pkg/capture"
	"github.com/slidecast/slidecast/pkg/logger"
)

type stubVideo struct {
	frames chan *image.RGBA
	once   sync.Once
}

func newStubVideo() *stubVideo { return &stubVideo{frames: make(chan *image.RGBA, 1)} }

func (s *stubVideo) Frames() <-chan *image.RGBA { return s.frames }
func (s *stubVideo) Size() (int, int)           { return 64, 48 }
func (s *stubVideo) Close()                     { s.once.Do(func() { close(s.frames) }) }

type stubAudio struct {
	samples chan []int16
	once    sync.Once
}

func newStubAudio() *stubAudio { return &stubAudio{samples: make(chan []int16, 4)} }

func (s *stubAudio) Samples() <-chan []int16 { return s.samples }
func (s *stubAudio) SampleRate() int         { return 48000 }
func (s *stubAudio) Channels() int           { return 2 }
func (s *stubAudio) Close()                  { s.once.Do(func() { close(s.samples) }) }

type stubProvider struct {
	screenErr error
	cameraErr error
	micErr    error

	mu     sync.Mutex
	screen *stubVideo
}

func (p *stubProvider) OpenScreen(context.Context, capture.Request) (capture.VideoSource, capture.AudioSource, error) {
	if p.screenErr != nil {
		return nil, nil, p.screenErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.screen = newStubVideo()
	return p.screen, nil, nil
}

func (p *stubProvider) OpenCamera(context.Context, string) (capture.VideoSource, error) {
	if p.cameraErr != nil {
		return nil, p.cameraErr
	}
	return newStubVideo(), nil
}

func (p *stubProvider) OpenMicrophone(context.Context, string) (capture.AudioSource, error) {
	if p.micErr != nil {
		return nil, p.micErr
	}
	return newStubAudio(), nil
}

func (p *stubProvider) endScreen() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.screen != nil {
		p.screen.Close()
	}
}

// stubStream writes a deterministic byte sequence: one numbered record per
// frame. Everything ever produced is kept for artifact verification.
type stubStream struct {
	mu        sync.Mutex
	pending   bytes.Buffer
	full      bytes.Buffer
	n         int
	finalized bool
}

func (s *stubStream) WriteFrame(*image.RGBA, time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return nil
	}
	rec := fmt.Sprintf("[frame %04d]", s.n)
	s.n++
	s.pending.WriteString(rec)
	s.full.WriteString(rec)
	return nil
}

func (s *stubStream) WriteAudio([]int16) error { return nil }

func (s *stubStream) Cut() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending.Len() == 0 {
		return nil
	}
	out := make([]byte, s.pending.Len())
	copy(out, s.pending.Bytes())
	s.pending.Reset()
	return out
}

func (s *stubStream) Finalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return nil
	}
	s.finalized = true
	s.pending.WriteString("[trailer]")
	s.full.WriteString("[trailer]")
	return nil
}

func (s *stubStream) Drain() []byte { return s.Cut() }
func (s *stubStream) MIME() string  { return "video/webm" }
func (s *stubStream) Ext() string   { return "webm" }

func (s *stubStream) bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, s.full.Len())
	copy(out, s.full.Bytes())
	return out
}

type memStore struct {
	mu      sync.Mutex
	saved   map[string][]int
	deleted []string
}

func newMemStore() *memStore { return &memStore{saved: map[string][]int{}} }

func (m *memStore) SaveChunk(_ context.Context, sid string, index int, _ []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[sid] = append(m.saved[sid], index)
	return nil
}

func (m *memStore) DeleteSession(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, sid)
	return nil
}

func (m *memStore) savedCount(sid string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved[sid])
}

type memNotifier struct {
	mu       sync.Mutex
	warnings []string
	errors   []string
	oks      []string
}

func (n *memNotifier) Success(msg string) { n.mu.Lock(); n.oks = append(n.oks, msg); n.mu.Unlock() }
func (n *memNotifier) Warning(msg string) {
	n.mu.Lock()
	n.warnings = append(n.warnings, msg)
	n.mu.Unlock()
}
func (n *memNotifier) Error(msg string) { n.mu.Lock(); n.errors = append(n.errors, msg); n.mu.Unlock() }

func (n *memNotifier) warningCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.warnings)
}

func testEngine(t *testing.T, p capture.Provider, st *memStore, nt *memNotifier) (*Engine, *stubStream) {
	t.Helper()
	stream := &stubStream{}
	factory := func(bool, int, int) (Stream, error) { return stream, nil }
	e := NewEngine(p, factory, st, nt, nil, t.TempDir(), logger.Default())
	return e, stream
}

func testSettings() Settings {
	return Settings{
		Title:         "demo talk",
		Width:         64,
		Height:        48,
		Fps:           100,
		Camera:        "cam",
		Mic:           "mic",
		Persist:       true,
		ChunkInterval: 15 * time.Millisecond,
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %v", what)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestEngineLifecycle(t *testing.T) {
	st, nt := newMemStore(), &memNotifier{}
	e, stream := testEngine(t, &stubProvider{}, st, nt)

	id, err := e.Start(context.Background(), testSettings())
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("no session id")
	}
	if got := e.Info().Status; got != "recording" {
		t.Fatalf("status %v after start", got)
	}
	if e.PiP() == nil {
		t.Error("no drag controller with an active camera")
	}

	waitFor(t, "segments", func() bool { return e.Info().Chunks >= 2 })

	path, err := e.Stop()
	if err != nil {
		t.Fatal(err)
	}
	if e.Info().Status != "completed" {
		t.Errorf("status %v after stop", e.Info().Status)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, stream.bytes()) {
		t.Errorf("artifact is not the glued stream: %v != %v bytes", len(got), len(stream.bytes()))
	}

	// mirrored segments were cleaned up after assembly
	waitFor(t, "mirror cleanup", func() bool {
		st.mu.Lock()
		defer st.mu.Unlock()
		return len(st.deleted) == 1 && st.deleted[0] == id
	})
	if st.savedCount(id) == 0 {
		t.Error("no segments were mirrored")
	}
}

func TestEngineScreenFailureIsFatal(t *testing.T) {
	st, nt := newMemStore(), &memNotifier{}
	e, _ := testEngine(t, &stubProvider{screenErr: errors.New("denied")}, st, nt)

	_, err := e.Start(context.Background(), testSettings())
	if !errors.Is(err, capture.ErrNoScreen) {
		t.Fatalf("expected ErrNoScreen, got %v", err)
	}
	if got := e.Info().Status; got != "idle" {
		t.Errorf("status %v after a failed start", got)
	}
	nt.mu.Lock()
	defer nt.mu.Unlock()
	if len(nt.errors) == 0 {
		t.Error("no error notification")
	}

	// the engine stays usable
	e2, _ := testEngine(t, &stubProvider{}, newMemStore(), &memNotifier{})
	if _, err := e2.Start(context.Background(), testSettings()); err != nil {
		t.Errorf("start after a fatal failure: %v", err)
	}
	e2.Stop()
}

func TestEngineDegradesWithoutCamera(t *testing.T) {
	st, nt := newMemStore(), &memNotifier{}
	e, _ := testEngine(t, &stubProvider{cameraErr: errors.New("denied")}, st, nt)

	if _, err := e.Start(context.Background(), testSettings()); err != nil {
		t.Fatal(err)
	}
	defer e.Stop()

	if e.Info().Status != "recording" {
		t.Errorf("status %v, want recording", e.Info().Status)
	}
	if e.PiP() != nil {
		t.Error("drag controller exists without a camera")
	}
	if e.Info().Pip != nil {
		t.Error("pip position exists without a camera")
	}
	if nt.warningCount() == 0 {
		t.Error("no degradation warning")
	}
}

func TestEngineBusy(t *testing.T) {
	e, _ := testEngine(t, &stubProvider{}, newMemStore(), &memNotifier{})

	if _, err := e.Start(context.Background(), testSettings()); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Start(context.Background(), testSettings()); err != ErrBusy {
		t.Errorf("second start: %v, want ErrBusy", err)
	}
	e.Stop()
}

func TestEngineStopIdempotent(t *testing.T) {
	e, _ := testEngine(t, &stubProvider{}, newMemStore(), &memNotifier{})

	if _, err := e.Stop(); err != ErrNotRecording {
		t.Errorf("stop before start: %v, want ErrNotRecording", err)
	}

	if _, err := e.Start(context.Background(), testSettings()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "segments", func() bool { return e.Info().Chunks >= 1 })

	first, err := e.Stop()
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Stop()
	if err != nil {
		t.Errorf("second stop: %v", err)
	}
	if first != second {
		t.Errorf("second stop returned a different artifact: %q != %q", second, first)
	}
}

func TestEngineEmptyRecordingFails(t *testing.T) {
	nt := &memNotifier{}
	empty := &emptyStream{}
	factory := func(bool, int, int) (Stream, error) { return empty, nil }
	e := NewEngine(&stubProvider{}, factory, newMemStore(), nt, nil, t.TempDir(), logger.Default())

	set := testSettings()
	if _, err := e.Start(context.Background(), set); err != nil {
		t.Fatal(err)
	}
	path, err := e.Stop()
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("stop of an empty recording: %v, want ErrNoData", err)
	}
	if path != "" {
		t.Errorf("artifact %q from an empty recording", path)
	}
	if e.Info().Status != "failed" {
		t.Errorf("status %v, want failed", e.Info().Status)
	}
	if nt.warningCount() == 0 {
		t.Error("no warning about the empty recording")
	}
}

// The start context belongs to the caller (an http request in the api
// wiring) and may end right after Start returns. Device lifetime is bound
// to session teardown instead, so the recording must keep going.
func TestEngineOutlivesStartContext(t *testing.T) {
	e, _ := testEngine(t, capture.SyntheticProvider{Fps: 100}, newMemStore(), &memNotifier{})

	ctx, cancel := context.WithCancel(context.Background())
	set := testSettings()
	set.Camera, set.Mic = "", ""
	set.Persist = false
	if _, err := e.Start(ctx, set); err != nil {
		t.Fatal(err)
	}
	cancel()

	before := e.Info().Chunks
	time.Sleep(150 * time.Millisecond)
	if got := e.Info().Status; got != "recording" {
		t.Fatalf("status %v after the start context ended", got)
	}
	waitFor(t, "segments after cancel", func() bool { return e.Info().Chunks > before })

	if _, err := e.Stop(); err != nil {
		t.Fatal(err)
	}
	if e.Info().Status != "completed" {
		t.Errorf("status %v after stop", e.Info().Status)
	}
}

func TestEngineExternalInterruption(t *testing.T) {
	p := &stubProvider{}
	e, _ := testEngine(t, p, newMemStore(), &memNotifier{})

	if _, err := e.Start(context.Background(), testSettings()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "segments", func() bool { return e.Info().Chunks >= 1 })

	// the user revokes sharing through OS chrome: screen track just ends
	p.endScreen()
	waitFor(t, "auto stop", func() bool { return e.Info().Status == "completed" })
	if e.Info().Artifact == "" {
		t.Error("no artifact after an interrupted recording")
	}
}

// emptyStream produces no bytes at all.
type emptyStream struct{}

func (emptyStream) WriteFrame(*image.RGBA, time.Duration) error { return nil }
func (emptyStream) WriteAudio([]int16) error                    { return nil }
func (emptyStream) Cut() []byte                                 { return nil }
func (emptyStream) Finalize() error                             { return nil }
func (emptyStream) Drain() []byte                               { return nil }
func (emptyStream) MIME() string                                { return "video/webm" }
func (emptyStream) Ext() string                                 { return "webm" }
