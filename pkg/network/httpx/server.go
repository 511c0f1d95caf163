package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/slidecast/slidecast/pkg/logger"
)

type Server struct {
	http.Server

	listener *Listener
	log      *logger.Logger
}

type (
	Mux struct {
		*http.ServeMux
		prefix string
	}
	Handler        = http.Handler
	HandlerFunc    = http.HandlerFunc
	ResponseWriter = http.ResponseWriter
	Request        = http.Request
)

// NewServeMux allocates and returns a new ServeMux.
func NewServeMux(prefix string) *Mux {
	return &Mux{ServeMux: http.NewServeMux(), prefix: prefix}
}

func (m *Mux) Handle(pattern string, handler Handler) *Mux {
	m.ServeMux.Handle(m.prefix+pattern, handler)
	return m
}

func (m *Mux) HandleFunc(pattern string, handler func(ResponseWriter, *Request)) *Mux {
	m.ServeMux.HandleFunc(m.prefix+pattern, handler)
	return m
}

func (m *Mux) ServeHTTP(w ResponseWriter, r *Request) { m.ServeMux.ServeHTTP(w, r) }

func NewServer(address string, handler func(*Server) Handler, log *logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Default()
	}
	server := &Server{
		Server: http.Server{
			Addr:         address,
			IdleTimeout:  120 * time.Second,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		log: log,
	}
	server.Handler = handler(server)

	listener, err := NewListener(address, RollPorts, log)
	if err != nil {
		return nil, err
	}
	server.listener = listener
	server.Addr = listener.Addr().String()
	log.Info().Msgf("httpx %v (%v)", server.Addr, address)
	return server, nil
}

func (s *Server) Mux() *Mux { return NewServeMux("") }

func (s *Server) Run() { go s.run() }

func (s *Server) run() {
	s.log.Debug().Msgf("Starting http server on %s", s.Addr)
	if err := s.Serve(s.listener); err != http.ErrServerClosed {
		s.log.Error().Err(err).Msg("http server stopped")
		return
	}
	s.log.Debug().Msg("http server was closed")
}

func (s *Server) Stop() error { return s.Server.Close() }

func (s *Server) Shutdown(ctx context.Context) error { return s.Server.Shutdown(ctx) }
