package remote

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"smile/pkg/config"
	"smile/pkg/loader"
	"smile/pkg/runtime"
)

// Server runs one program per WebSocket connection. The client sends the
// program one line per message, then a "." line, then input lines. Output
// lines come back as text messages; a fault adds its diagnostic as a last
// message and the connection closes with reason "fault", otherwise "ok".
type Server struct {
	Path        string
	MaxSteps    int
	MaxSessions int
	Logger      *slog.Logger

	upgrader websocket.Upgrader
	slots    chan struct{}
	wg       sync.WaitGroup
}

// NewServer builds a server from cfg. logger may be nil.
func NewServer(cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		Path:        cfg.Remote.Path,
		MaxSteps:    cfg.Remote.MaxSteps,
		MaxSessions: cfg.Remote.MaxSessions,
		Logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	if s.MaxSessions > 0 {
		s.slots = make(chan struct{}, s.MaxSessions)
	}
	return s
}

// Handler routes the session endpoint at s.Path.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.Path, s)
	return mux
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !s.acquire() {
		http.Error(w, "too many sessions", http.StatusServiceUnavailable)
		return
	}
	defer s.release()
	// Counted before the upgrade so Wait cannot miss a session that is
	// still being set up.
	s.wg.Add(1)
	defer s.wg.Done()

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Warn("upgrade failed", slog.String("remote", r.RemoteAddr), slog.Any("error", err))
		return
	}

	logger := s.Logger.With(slog.String("remote", r.RemoteAddr))
	logger.Info("session started")
	c := newConn(ws)
	reason := s.run(c, logger)
	if err := c.Close(reason); err != nil {
		logger.Debug("close", slog.Any("error", err))
	}
	logger.Info("session ended", slog.String("reason", reason))
}

func (s *Server) acquire() bool {
	if s.slots == nil {
		return true
	}
	select {
	case s.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Server) release() {
	if s.slots != nil {
		<-s.slots
	}
}

// run executes one session and returns the close reason.
func (s *Server) run(c *conn, logger *slog.Logger) string {
	prog, labels, err := loader.Load(c)
	if err != nil {
		logger.Info("program rejected", slog.Any("error", err))
		c.Send(err.Error())
		return ReasonFault
	}

	m := runtime.NewMachine(prog, labels)
	m.Input = c
	m.Output = c
	m.MaxSteps = s.MaxSteps
	m.Logger = logger
	if err := m.Run(); err != nil {
		logger.Info("run faulted", slog.Any("error", err))
		c.Send(err.Error())
		return ReasonFault
	}
	return ReasonOK
}

// Wait blocks until every open session has finished or ctx is done.
func (s *Server) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts the
// listener down and waits up to grace for running sessions.
func (s *Server) ListenAndServe(ctx context.Context, addr string, grace time.Duration) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.Logger.Info("listening", slog.String("addr", addr), slog.String("path", s.Path))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return s.Wait(shutdownCtx)
}
