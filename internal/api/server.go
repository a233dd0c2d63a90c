// Package api serves the local status and metrics endpoints for a
// supervised bot run.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NotHennadii/fogoctl/internal/launch"
	"github.com/NotHennadii/fogoctl/internal/metrics"
	"github.com/NotHennadii/fogoctl/internal/python"
	"github.com/NotHennadii/fogoctl/pkg/logger"
)

// StatusResponse is the payload served at /status.
type StatusResponse struct {
	Version string          `json:"version"`
	Python  string          `json:"python"`
	EnvRoot string          `json:"env_root"`
	Bot     launch.Snapshot `json:"bot"`
}

// NewRouter builds the status server's routes.
func NewRouter(version string, env *python.Env, status *launch.Status) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, StatusResponse{
			Version: version,
			Python:  env.Python(),
			EnvRoot: env.Root,
			Bot:     status.Snapshot(),
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	return r
}

// Server is the local status HTTP server.
type Server struct {
	srv *http.Server
	log logger.Logger
}

// NewServer wraps the handler in an HTTP server bound to addr.
func NewServer(addr string, handler http.Handler, log logger.Logger) *Server {
	return &Server{
		srv: &http.Server{Addr: addr, Handler: handler},
		log: log,
	}
}

// Start serves in a background goroutine.
func (s *Server) Start() {
	s.log.Info("status server listening", logger.Field{Key: "addr", Value: s.srv.Addr})
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("status server failed", logger.Field{Key: "error", Value: err})
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.log.Warn("status server shutdown failed", logger.Field{Key: "error", Value: err})
	}
}
