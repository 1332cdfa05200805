// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/poiesic/confero/match"
)

const (
	defaultShutdownTimeout = 10 * time.Second

	// Identity lookups can run many rerank calls; free-text modes run one.
	// One generous deadline covers both.
	defaultQueryTimeout = 2 * time.Minute
)

// Server exposes the matcher over HTTP.
type Server struct {
	matcher *match.Matcher
	metrics *Metrics
	monitor match.Monitor
	logger  *slog.Logger
	router  *gin.Engine

	corsOrigins     []string
	shutdownTimeout time.Duration
	queryTimeout    time.Duration
}

// Option configures optional Server behavior.
type Option func(*Server)

// WithCORSOrigins sets the allowed CORS origins. An empty list allows all.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithMetrics supplies a metric set. A fresh one is created when omitted.
func WithMetrics(metrics *Metrics) Option {
	return func(s *Server) {
		s.metrics = metrics
	}
}

// WithShutdownTimeout overrides the graceful shutdown deadline.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.shutdownTimeout = d
	}
}

// WithQueryTimeout overrides the per-query deadline on the match endpoints.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.queryTimeout = d
		}
	}
}

// New creates the HTTP server around a matcher.
func New(matcher *match.Matcher, opts ...Option) (*Server, error) {
	if matcher == nil {
		return nil, ErrMatcherRequired
	}

	s := &Server{
		matcher:         matcher,
		logger:          slog.Default().With("component", "server"),
		shutdownTimeout: defaultShutdownTimeout,
		queryTimeout:    defaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	s.monitor = s.metrics.Monitor()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())
	router.Use(s.corsMiddleware())

	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
		s.metrics.Registry(), promhttp.HandlerOpts{})))

	api := router.Group("/api")
	{
		api.GET("/attendees", s.handleListAttendees)
		api.POST("/match/name", s.handleMatchByName)
		api.POST("/match/request", s.handleMatchRequest)
		api.POST("/match/offering", s.handleMatchOffering)
	}

	s.router = router
	return s, nil
}

// Router returns the underlying gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves HTTP on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	config := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-Request-Id"},
	}
	if len(s.corsOrigins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = s.corsOrigins
	}
	return cors.New(config)
}

// requestLogger tags every request with an id and logs its outcome.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader("X-Request-Id")
		if requestId == "" {
			requestId = uuid.NewString()
		}
		c.Header("X-Request-Id", requestId)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveHTTP(route, c.Request.Method, status)
		s.logger.Info("request",
			"requestId", requestId,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start))
	}
}
