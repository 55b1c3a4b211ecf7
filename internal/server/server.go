package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"livepoll/config"
	"livepoll/internal/handler"
	"livepoll/internal/middleware"
	"livepoll/internal/redis"
	"livepoll/internal/transport/httpdto"
	"livepoll/internal/websocket"
	"livepoll/pkg/database"
	"livepoll/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Poll *handler.PollHandler
	Vote *handler.VoteHandler
	WS   *websocket.Handler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	// ClientIP honors X-Forwarded-For only from these proxies; the origin
	// fingerprint depends on it being right.
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil && l != nil {
		l.Errorf("Failed to set trusted proxies: %s", err)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, limiter *redis.RateLimiter, cache *redis.SnapshotCache) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware(s.config.FrontendURL))
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Welcome to the live poll API!")
	})

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.MessageResponse{Message: "pong"})
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.MessageResponse{Message: err.Error()})
			return
		}
		// Cache is an optional collaborator; its loss degrades but does
		// not break the service.
		if cache != nil {
			if err := cache.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusOK, httpdto.MessageResponse{Message: "healthy, cache unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, httpdto.MessageResponse{Message: "healthy"})
	})

	polls := s.engine.Group("/api/polls")
	{
		polls.POST("/create", middleware.PollCreateRateLimitMiddleware(limiter, s.logger), handlers.Poll.Create)
		polls.GET("/:id", handlers.Poll.Get)
		polls.GET("/:id/vote-status", handlers.Vote.Status)
		polls.POST("/:id/vote", middleware.VoteRateLimitMiddleware(limiter, s.logger), handlers.Vote.Vote)
	}

	s.engine.GET("/ws", handlers.WS.Connect)
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
