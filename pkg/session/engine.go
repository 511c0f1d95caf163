package session

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/slidecast/slidecast/pkg/capture"
	"github.com/slidecast/slidecast/pkg/compositor"
	"github.com/slidecast/slidecast/pkg/logger"
	"github.com/slidecast/slidecast/pkg/media"
	"github.com/slidecast/slidecast/pkg/monitoring"
	"github.com/slidecast/slidecast/pkg/notify"
	"github.com/slidecast/slidecast/pkg/pip"
	"github.com/slidecast/slidecast/pkg/playback"
	"github.com/slidecast/slidecast/pkg/store"
)

// sampleFps is the encoder's fixed video sampling cadence. The compositor
// repaints at its own faster rate; the encoder reads the surface at this one.
const sampleFps = 30

// Engine runs at most one recording session at a time.
type Engine struct {
	mu        sync.Mutex
	provider  capture.Provider
	newStream StreamFactory
	store     store.ChunkStore
	notifier  notify.Notifier
	playback  playback.Playback
	dir       string
	log       *logger.Logger

	cur      *RecordingSession
	toggling atomic.Bool
}

func NewEngine(provider capture.Provider, factory StreamFactory, st store.ChunkStore,
	notifier notify.Notifier, pb playback.Playback, dir string, log *logger.Logger) *Engine {
	if st == nil {
		st = store.Noop{}
	}
	if notifier == nil {
		notifier = notify.Log{L: log}
	}
	return &Engine{
		provider:  provider,
		newStream: factory,
		store:     st,
		notifier:  notifier,
		playback:  pb,
		dir:       dir,
		log:       log,
	}
}

// Start acquires devices and begins recording. It returns the new session
// ID. Additional start/stop requests are ignored while one is in flight.
func (e *Engine) Start(ctx context.Context, set Settings) (string, error) {
	if !e.toggling.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer e.toggling.Store(false)

	e.mu.Lock()
	if e.cur != nil && !e.cur.status.terminal() {
		e.mu.Unlock()
		return "", ErrBusy
	}
	s := &RecordingSession{
		ID:       uuid.Must(uuid.NewV4()).String(),
		Settings: set,
		status:   Acquiring,
	}
	e.cur = s
	e.mu.Unlock()

	// sources live until teardown's devices.Close, not until the caller's
	// context ends (api hands in a request context that dies with the reply)
	devices, err := capture.Acquire(context.WithoutCancel(ctx), e.provider, capture.Request{
		Width:  set.Width,
		Height: set.Height,
		Cursor: set.Cursor,
		Camera: set.Camera,
		Mic:    set.Mic,
	}, e.log)
	if err != nil {
		// fatal-start: nothing was mutated beyond the placeholder, drop it
		e.notifier.Error("screen capture is unavailable")
		e.mu.Lock()
		e.cur = nil
		e.mu.Unlock()
		return "", err
	}
	s.devices = devices

	if set.Camera != "" && !devices.HasCamera() {
		e.notifier.Warning("camera is unavailable, recording without the presenter overlay")
	}
	if set.Mic != "" && devices.Mic == nil {
		e.notifier.Warning("microphone is unavailable, recording without mic audio")
	}

	s.mixer = media.NewMixer(e.log, devices.ScreenAudio, devices.Mic)
	rate, ch := 48000, 2
	if s.mixer != nil {
		rate, ch = s.mixer.SampleRate(), s.mixer.Channels()
	}

	s.stream, err = e.newStream(s.mixer != nil, rate, ch)
	if err != nil {
		e.notifier.Error("recording could not start: " + err.Error())
		e.teardown(s, Failed)
		return "", err
	}

	canvas := pip.Size{W: float64(set.Width), H: float64(set.Height)}
	s.comp = compositor.New(set.Width, set.Height, e.log)
	s.comp.OnFrame(monitoring.FramesComposited.Inc)
	if devices.HasCamera() {
		s.pos = pip.NewPosition(canvas)
		s.ctrl = pip.NewController(s.pos, pip.Rect{W: canvas.W, H: canvas.H}, canvas, nil)
	}
	s.comp.Attach(devices.Screen, devices.Camera, s.pos, func() { e.interrupted(s) })

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	// recording is marked before the first composited frame, and playback
	// starts only after that
	e.mu.Lock()
	s.status = Recording
	s.started = time.Now()
	e.mu.Unlock()

	s.comp.Start(runCtx)
	s.loops.Add(2)
	go e.sampleVideo(runCtx, s)
	go e.emitChunks(runCtx, s)
	if s.mixer != nil {
		s.loops.Add(1)
		go e.pumpAudio(runCtx, s)
	}
	if e.playback != nil {
		e.playback.Start(0)
	}
	e.log.Info().Str("session", s.ID).Msgf("recording started [%vx%v]", set.Width, set.Height)
	return s.ID, nil
}

// Stop finalizes the encoder, assembles the artifact, and tears the
// session down. Stopping an already finished session is a no-op that
// returns the artifact path again.
func (e *Engine) Stop() (string, error) {
	if !e.toggling.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer e.toggling.Store(false)
	return e.stop()
}

func (e *Engine) stop() (string, error) {
	e.mu.Lock()
	s := e.cur
	if s == nil {
		e.mu.Unlock()
		return "", ErrNotRecording
	}
	if s.status.terminal() {
		path := s.artifact
		e.mu.Unlock()
		return path, nil
	}
	s.status = Stopping
	e.mu.Unlock()

	// stop producing: no frame may be drawn once teardown begins
	if s.cancel != nil {
		s.cancel()
	}
	if s.comp != nil {
		s.comp.Stop()
	}
	s.loops.Wait()
	if s.mixer != nil {
		s.mixer.Close()
	}

	// the finalize/drain pair is the ordering contract: after Finalize
	// returns, Drain holds every remaining byte of the stream
	if s.stream != nil {
		if err := s.stream.Finalize(); err != nil {
			e.log.Error().Err(err).Msg("encoder finalize failed")
		}
		if tail := s.stream.Drain(); len(tail) > 0 {
			e.appendChunk(s, tail)
		}
	}
	if e.playback != nil {
		e.playback.Stop()
	}

	e.mu.Lock()
	s.status = Assembling
	chunks := s.chunks
	e.mu.Unlock()

	if len(chunks) == 0 {
		e.notifier.Warning("no recording data was captured")
		e.teardown(s, Failed)
		return "", ErrNoData
	}

	ext := "webm"
	if s.stream != nil {
		ext = s.stream.Ext()
	}
	path, err := assemble(e.dir, s.Settings.Title, ext, chunks)
	if err != nil {
		e.notifier.Error("failed to save the recording")
		e.teardown(s, Failed)
		return "", err
	}
	if s.Settings.Persist {
		if derr := e.store.DeleteSession(context.Background(), s.ID); derr != nil {
			e.log.Warn().Err(derr).Msg("durable segments were not cleaned up")
		}
	}
	e.mu.Lock()
	s.artifact = path
	e.mu.Unlock()
	e.notifier.Success("recording saved to " + path)
	e.teardown(s, Completed)
	e.log.Info().Str("session", s.ID).Msgf("artifact assembled from %v segments", len(chunks))
	return path, nil
}

// interrupted handles the screen track ending on its own (the user stopped
// sharing through OS chrome): the same path as a user-initiated stop.
func (e *Engine) interrupted(s *RecordingSession) {
	e.mu.Lock()
	current := e.cur == s && s.status == Recording
	e.mu.Unlock()
	if !current {
		return
	}
	e.log.Info().Str("session", s.ID).Msg("capture ended externally, stopping")
	if e.toggling.CompareAndSwap(false, true) {
		defer e.toggling.Store(false)
		if _, err := e.stop(); err != nil {
			e.log.Error().Err(err).Msg("stop after external interruption failed")
		}
	}
}

// teardown releases every session resource and parks the session in its
// final state. Safe to run more than once.
func (e *Engine) teardown(s *RecordingSession, final Status) {
	s.torndown.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		if s.comp != nil {
			s.comp.Stop()
		}
		if s.stream != nil {
			_ = s.stream.Finalize()
		}
		if s.mixer != nil {
			s.mixer.Close()
		}
		if s.ctrl != nil {
			s.ctrl.Detach()
		}
		s.devices.Close()
		monitoring.SessionsEnded.WithLabelValues(final.String()).Inc()
	})
	e.mu.Lock()
	s.status = final
	s.pos = nil
	s.ctrl = nil
	e.mu.Unlock()
}

func (e *Engine) sampleVideo(ctx context.Context, s *RecordingSession) {
	defer s.loops.Done()
	img := image.NewRGBA(image.Rect(0, 0, s.Settings.Width, s.Settings.Height))
	fps := s.Settings.Fps
	if fps <= 0 {
		fps = sampleFps
	}
	tick := time.NewTicker(time.Second / time.Duration(fps))
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
		s.comp.Surface().CopyTo(img)
		if err := s.stream.WriteFrame(img, time.Since(s.started)); err != nil {
			e.log.Error().Err(err).Msg("frame encode failed, frame skipped")
		}
	}
}

func (e *Engine) pumpAudio(ctx context.Context, s *RecordingSession) {
	defer s.loops.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case block, ok := <-s.mixer.Samples():
			if !ok {
				return
			}
			if err := s.stream.WriteAudio(block); err != nil {
				e.log.Error().Err(err).Msg("audio encode failed, block skipped")
			}
		}
	}
}

func (e *Engine) emitChunks(ctx context.Context, s *RecordingSession) {
	defer s.loops.Done()
	interval := s.Settings.ChunkInterval
	if interval <= 0 {
		interval = time.Second
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
		if data := s.stream.Cut(); len(data) > 0 {
			e.appendChunk(s, data)
		}
	}
}

// appendChunk records a segment in emission order and mirrors it to the
// durable store. The in-memory list is authoritative; mirroring is
// best-effort and never fails the session.
func (e *Engine) appendChunk(s *RecordingSession, data []byte) {
	e.mu.Lock()
	if s.status != Recording && s.status != Stopping {
		e.mu.Unlock()
		return
	}
	index := s.chunkIndex
	s.chunkIndex++
	s.chunks = append(s.chunks, data)
	s.bytes += int64(len(data))
	persist := s.Settings.Persist
	e.mu.Unlock()

	monitoring.ChunksEmitted.Inc()
	monitoring.ChunkBytes.Add(float64(len(data)))

	if persist {
		go func() {
			if err := e.store.SaveChunk(context.Background(), s.ID, index, data); err != nil {
				monitoring.MirrorFailures.Inc()
				e.log.Error().Err(err).Msgf("segment %v mirror failed", index)
			}
		}()
	}
}

// PiP returns the drag controller of the active session, nil when no
// camera overlay exists.
func (e *Engine) PiP() *pip.Controller {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctrl()
}

func (e *Engine) ctrl() *pip.Controller {
	if e.cur == nil {
		return nil
	}
	return e.cur.ctrl
}

// Info snapshots the current session for the control surface.
func (e *Engine) Info() Info {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cur == nil {
		return Info{Status: Idle.String()}
	}
	s := e.cur
	info := Info{
		ID:       s.ID,
		Status:   s.status.String(),
		Chunks:   len(s.chunks),
		Bytes:    s.bytes,
		Artifact: s.artifact,
	}
	if s.pos != nil {
		if p, ok := s.pos.Get(); ok {
			info.Pip = &p
		}
	}
	return info
}
