package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/denysvitali/postlog-dashboard/pkg/backend"
	"github.com/denysvitali/postlog-dashboard/pkg/config"
	"github.com/denysvitali/postlog-dashboard/pkg/metrics"
	"github.com/denysvitali/postlog-dashboard/pkg/session"
	"github.com/denysvitali/postlog-dashboard/pkg/telemetry"
)

const (
	// credentialsKey stores the caller's session.Credentials in the gin context
	credentialsKey = "credentials"

	reapInterval = time.Minute
)

// Server represents the HTTP server
type Server struct {
	config  *config.Config
	logger  *logrus.Logger
	backend *backend.Client
	codec   *session.Codec
	store   *session.Store
	engine  *gin.Engine
	server  *http.Server

	startTime time.Time
	mu        sync.RWMutex
	lastSeen  time.Time

	stopReaper context.CancelFunc
}

// New creates a new server instance
func New(cfg *config.Config, logger *logrus.Logger, opts ...backend.Option) (*Server, error) {
	if cfg.Server.SessionSecret == "" {
		return nil, fmt.Errorf("session secret is required")
	}

	// Set gin mode based on log level
	if logger.Level == logrus.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(ginLogger(logger))

	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(telemetry.ServiceName))
	}
	if cfg.Metrics.Enabled {
		engine.Use(metrics.Middleware())
	}

	engine.Use(corsMiddleware(cfg.Server.AllowedOrigin))

	now := time.Now()
	server := &Server{
		config:    cfg,
		logger:    logger,
		backend:   backend.New(cfg.Backend, logger, opts...),
		codec:     session.NewCodec(cfg.Server.SessionSecret, cfg.Server.SessionTTL),
		store:     session.NewStore(logger),
		engine:    engine,
		startTime: now,
		lastSeen:  now,
	}

	server.setupRoutes()

	return server, nil
}

// Start starts the HTTP server and the idle session reaper
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopReaper = cancel
	go s.reapLoop(ctx)

	s.logger.Infof("Starting server on port %d", s.config.Server.Port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.stopReaper != nil {
		s.stopReaper()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Engine returns the gin engine for testing purposes
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Store returns the browse session store
func (s *Server) Store() *session.Store {
	return s.store
}

func (s *Server) reapLoop(ctx context.Context) {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.store.Reap(s.config.Server.BrowseIdleTimeout)
			metrics.SetBrowseSessions(s.store.Len())
		}
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health check
	s.engine.GET("/alive", s.handleAlive)
	s.engine.GET("/server_info", s.handleServerInfo)
	if s.config.Metrics.Enabled {
		s.engine.GET(s.config.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	// Login flow
	s.engine.GET("/", s.handleIndex)
	s.engine.GET("/login", s.handleLogin)
	s.engine.GET("/callback", s.handleCallback)
	s.engine.GET("/dashboard", s.handleDashboard)
	s.engine.POST("/logout", s.handleLogout)

	api := s.engine.Group("/api", s.requireSession())
	api.GET("/user", s.handleUser)
	api.GET("/organizations", s.handleOrganizations)
	api.GET("/accounts", s.handleAccounts)
	api.GET("/repositories", s.handleRepositories)
	api.DELETE("/repositories/:account/:repo/collection", s.handleDeleteCollection)

	browsers := api.Group("/browsers")
	browsers.POST("", s.handleOpenBrowser)
	browsers.GET("/:id", s.handleGetBrowser)
	browsers.DELETE("/:id", s.handleCloseBrowser)
	browsers.POST("/:id/expand", s.handleToggleExpansion)
	browsers.POST("/:id/select", s.handleToggleSelection)
	browsers.GET("/:id/selection", s.handleSelection)
	browsers.POST("/:id/submit", s.handleSubmit)
}

// handleAlive handles health check requests
func (s *Server) handleAlive(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ginLogger creates a gin logger middleware using logrus
func ginLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		// The query may carry an access token, so only the path is logged
		entry := logger.WithFields(logrus.Fields{
			"status":     statusCode,
			"method":     c.Request.Method,
			"path":       path,
			"ip":         c.ClientIP(),
			"latency":    latency,
			"user_agent": c.Request.UserAgent(),
		})

		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		if statusCode >= 500 {
			entry.Error("Server error")
		} else if statusCode >= 400 {
			entry.Warn("Client error")
		} else {
			entry.Info("Request completed")
		}
	}
}

// corsMiddleware adds CORS headers. Credentials are only allowed for an
// explicitly configured origin.
func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		} else {
			c.Header("Access-Control-Allow-Origin", "*")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// touch records user activity for the idle time in /server_info
func (s *Server) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}
