// Package api is the HTTP adapter over the recording engine. It holds no
// recording logic of its own: requests are translated into engine calls
// and engine state is rendered back as JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/slidecast/slidecast/pkg/config"
	"github.com/slidecast/slidecast/pkg/logger"
	"github.com/slidecast/slidecast/pkg/network/httpx"
	"github.com/slidecast/slidecast/pkg/notify"
	"github.com/slidecast/slidecast/pkg/pip"
	"github.com/slidecast/slidecast/pkg/session"
)

type Server struct {
	engine *session.Engine
	hub    *notify.Hub
	conf   config.Config
	log    *logger.Logger
	server *httpx.Server
}

func New(conf config.Config, engine *session.Engine, hub *notify.Hub, log *logger.Logger) (*Server, error) {
	s := &Server{engine: engine, hub: hub, conf: conf, log: log}
	serv, err := httpx.NewServer(conf.Server.Address, func(*httpx.Server) httpx.Handler {
		h := httpx.NewServeMux("")
		h.HandleFunc("POST /session/start", s.start)
		h.HandleFunc("POST /session/stop", s.stop)
		h.HandleFunc("GET /session/status", s.status)
		h.HandleFunc("POST /pip/pointer", s.pointer)
		if hub != nil {
			h.HandleFunc("GET /events", hub.Handler)
		}
		return h
	}, log)
	if err != nil {
		return nil, err
	}
	s.server = serv
	return s, nil
}

func (s *Server) Run()                               { s.server.Run() }
func (s *Server) Addr() string                       { return s.server.Addr }
func (s *Server) Shutdown(ctx context.Context) error { return s.server.Shutdown(ctx) }

type startRequest struct {
	Title  string `json:"title,omitempty"`
	Camera bool   `json:"camera"`
	Mic    bool   `json:"mic"`
}

func (s *Server) start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rec := s.conf.Recording
	set := session.Settings{
		Title:         rec.Title,
		Width:         rec.Video.Width,
		Height:        rec.Video.Height,
		Fps:           rec.Video.Fps,
		Cursor:        rec.Cursor,
		Persist:       rec.Persist,
		ChunkInterval: time.Duration(rec.ChunkIntervalMs) * time.Millisecond,
	}
	if req.Title != "" {
		set.Title = req.Title
	}
	if req.Camera {
		set.Camera = rec.CameraDeviceId
		if set.Camera == "" {
			set.Camera = "default"
		}
	}
	if req.Mic {
		set.Mic = rec.MicDeviceId
		if set.Mic == "" {
			set.Mic = "default"
		}
	}
	id, err := s.engine.Start(r.Context(), set)
	if err != nil {
		code := http.StatusInternalServerError
		if err == session.ErrBusy {
			code = http.StatusConflict
		}
		http.Error(w, err.Error(), code)
		return
	}
	writeJSON(w, map[string]string{"id": id})
}

func (s *Server) stop(w http.ResponseWriter, _ *http.Request) {
	path, err := s.engine.Stop()
	if err != nil {
		code := http.StatusInternalServerError
		switch err {
		case session.ErrBusy:
			code = http.StatusConflict
		case session.ErrNotRecording:
			code = http.StatusBadRequest
		case session.ErrNoData:
			code = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), code)
		return
	}
	writeJSON(w, map[string]string{"artifact": path})
}

func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.engine.Info())
}

type pointerRequest struct {
	Phase string   `json:"phase"` // down, move, up
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	View  *pipView `json:"view,omitempty"`
}

type pipView struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// pointer forwards a UI pointer event to the overlay drag controller.
func (s *Server) pointer(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctrl := s.engine.PiP()
	if ctrl == nil {
		http.Error(w, "no active overlay", http.StatusBadRequest)
		return
	}
	if req.View != nil {
		ctrl.SetViewRect(pip.Rect{X: req.View.X, Y: req.View.Y, W: req.View.W, H: req.View.H})
	}
	p := pip.Point{X: req.X, Y: req.Y}
	var consumed bool
	switch req.Phase {
	case "down":
		consumed = ctrl.PointerDown(p)
	case "move":
		consumed = ctrl.PointerMove(p)
	case "up":
		consumed = ctrl.PointerUp(p)
	default:
		http.Error(w, "unknown phase", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]bool{"consumed": consumed})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
