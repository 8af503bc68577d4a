// Package api exposes the timer over a small JSON HTTP API.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hammamikhairi/focustrack/internal/domain"
	"github.com/hammamikhairi/focustrack/internal/logger"
)

// Timer is the command surface the handlers drive. *timer.Engine satisfies it.
type Timer interface {
	Start() error
	Pause() error
	Toggle() error
	Reset() error
	SelectMode(mode domain.TimerMode) error
	SelectTag(tag string) error
	SelectTask(taskID string) error
	SelectMood(mood string) error
	Snapshot() domain.Snapshot
}

// SettingsStore reads and edits the user's settings. *settings.Provider
// satisfies it.
type SettingsStore interface {
	Get() domain.Settings
	Update(fn func(*domain.Settings)) (domain.Settings, error)
}

// Server is the focustrack HTTP server.
type Server struct {
	timer    Timer
	settings SettingsStore
	history  domain.SessionHistory // nil when sessions are not stored locally
	router   *gin.Engine
	log      *logger.Logger
}

// NewServer wires the routes. history may be nil.
func NewServer(timer Timer, settings SettingsStore, history domain.SessionHistory, log *logger.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	s := &Server{
		timer:    timer,
		settings: settings,
		history:  history,
		router:   router,
		log:      log,
	}

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.GET("/timer", s.handleSnapshot)
		api.POST("/timer/start", s.handleCommand(timer.Start))
		api.POST("/timer/pause", s.handleCommand(timer.Pause))
		api.POST("/timer/toggle", s.handleCommand(timer.Toggle))
		api.POST("/timer/reset", s.handleCommand(timer.Reset))
		api.POST("/timer/mode", s.handleMode)
		api.POST("/timer/context", s.handleContext)

		api.GET("/settings", s.handleGetSettings)
		api.PUT("/settings", s.handleUpdateSettings)

		api.GET("/sessions", s.handleSessions)
	}

	return s
}

// Handler returns the HTTP handler, for tests and custom servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("api stopped")
	return nil
}

// requestLogger logs each request at debug level through our logger
// instead of gin's default writer.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}
