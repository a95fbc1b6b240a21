// Package http exposes the registry over HTTP: a webhook for chat messages
// and a read-only feed for the analytics dashboard.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/impactd/internal/codec"
	"github.com/fyrsmithlabs/impactd/internal/command"
	"github.com/fyrsmithlabs/impactd/internal/logging"
	"github.com/fyrsmithlabs/impactd/internal/registry"
)

// maxBodySize caps request bodies; a message is one chat line.
const maxBodySize = "64K"

// Server provides HTTP endpoints for impactd.
type Server struct {
	echo     *echo.Echo
	registry *registry.Service
	limiter  *chatLimiter
	codec    codec.Codec
	logger   *logging.Logger
	config   *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int

	// RateLimit is messages per second allowed per chat. Zero disables throttling.
	RateLimit float64
	RateBurst int

	// Gatherer backs GET /metrics. Nil uses the default Prometheus registry.
	Gatherer prometheus.Gatherer

	// Meter records HTTP metrics. Nil uses the global meter provider.
	Meter metric.Meter

	// Codec renders GET /api/v1/export. Nil uses the legacy codec.
	Codec codec.Codec
}

// NewServer creates a new HTTP server.
func NewServer(svc *registry.Service, logger *logging.Logger, cfg *Config) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host:      "127.0.0.1",
			Port:      8080,
			RateLimit: 5,
			RateBurst: 10,
		}
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	c := cfg.Codec
	if c == nil {
		c = codec.Legacy{}
	}

	logger = logger.Named("http")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit(maxBodySize))
	rm, err := newRequestMetrics(cfg.Meter)
	if err != nil {
		logger.Warn(context.Background(), "some http instruments unavailable", zap.Error(err))
	}
	e.Use(rm.middleware)
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Resolve the status before logging.
				c.Error(err)
				err = nil
			}

			logger.Info(c.Request().Context(), "http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	s := &Server{
		echo:     e,
		registry: svc,
		limiter:  newChatLimiter(cfg.RateLimit, cfg.RateBurst),
		codec:    c,
		logger:   logger,
		config:   cfg,
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{})))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/messages", s.handleMessage)
	v1.GET("/projects", s.handleListProjects)
	v1.GET("/projects/:id", s.handleGetProject)
	v1.GET("/stats", s.handleStats)
	v1.GET("/export", s.handleExport)
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:   "ok",
		Projects: len(s.registry.Snapshot()),
	})
}

// handleMessage runs one chat message through the registry.
func (s *Server) handleMessage(c echo.Context) error {
	var req MessageRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid message request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req.ChatID = strings.TrimSpace(req.ChatID)
	if req.ChatID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "chat_id field is required")
	}

	if !s.limiter.Allow(req.ChatID) {
		s.logger.Debug(c.Request().Context(), "chat rate limited", zap.String("chat_id", req.ChatID))
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many messages, slow down")
	}

	ctx := logging.WithRequestID(c.Request().Context(), c.Response().Header().Get(echo.HeaderXRequestID))
	reply, err := s.registry.Execute(ctx, req.ChatID, req.Text)
	if errors.Is(err, command.ErrNotCommand) {
		return c.NoContent(http.StatusNoContent)
	}
	if err != nil {
		s.logger.Error(ctx, "message execution failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "message could not be processed")
	}

	return c.JSON(http.StatusOK, MessageResponse{
		ChatID:    req.ChatID,
		Reply:     reply.Text,
		Outcome:   reply.Outcome,
		ProjectID: reply.ProjectID,
	})
}

// handleListProjects returns the dashboard feed, optionally filtered by
// exact executor and status.
func (s *Server) handleListProjects(c echo.Context) error {
	executor := c.QueryParam("executor")
	status := c.QueryParam("status")

	resp := ProjectsResponse{Projects: []ProjectResponse{}}
	for _, e := range s.registry.Snapshot() {
		if executor != "" && e.Project.Executor != executor {
			continue
		}
		if status != "" && e.Project.Status != status {
			continue
		}
		resp.Projects = append(resp.Projects, newProjectResponse(e))
	}
	resp.Count = len(resp.Projects)

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetProject(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "project id must be a positive integer")
	}

	p, ok := s.registry.Project(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("project %d not found", id))
	}

	return c.JSON(http.StatusOK, ProjectResponse{
		ID:        id,
		Name:      p.Name,
		Problem:   p.Problem,
		Initiator: p.Initiator,
		Deadline:  p.Deadline,
		Status:    p.Status,
		Executor:  p.Executor,
	})
}

func (s *Server) handleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.registry.Stats())
}

// handleExport serves the table in the persisted file format.
func (s *Server) handleExport(c echo.Context) error {
	data := s.codec.Encode(s.registry.Snapshot())
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="projects.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

// Start starts the HTTP server. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
