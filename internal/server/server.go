package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sentinal-social/config"
	"sentinal-social/internal/handler"
	"sentinal-social/internal/metrics"
	"sentinal-social/internal/middleware"
	"sentinal-social/internal/transport/httpdto"
	"sentinal-social/internal/websocket"
	"sentinal-social/pkg/database"
	"sentinal-social/pkg/logger"

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
	Auth      *handler.AuthHandler
	Users     *handler.UserHandler
	Friends   *handler.FriendHandler
	Groups    *handler.GroupHandler
	Chats     *handler.ChatHandler
	Messages  *handler.MessageHandler
	WebSocket *websocket.Handler
}

// Deps are the collaborators the routes need besides the handlers. Limiter
// may be nil, which disables rate limiting.
type Deps struct {
	Verifier middleware.TokenVerifier
	Limiter  middleware.Limiter
	DB       *sql.DB
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

// Engine exposes the router, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) SetupRoutes(handlers *Handlers, deps Deps) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.MetricsMiddleware())
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context(), deps.DB); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	s.engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	auth := s.engine.Group("/auth", middleware.AuthRateLimitMiddleware(deps.Limiter))
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
	}

	// The websocket handshake authenticates with ?token= since browsers
	// cannot set headers on it.
	s.engine.GET("/ws", handlers.WebSocket.Connect)

	api := s.engine.Group("", middleware.AuthMiddleware(deps.Verifier))

	api.GET("/users/:username", handlers.Users.GetByUsername)

	friends := api.Group("/friends")
	{
		friends.GET("", handlers.Friends.List)
		friends.POST("", handlers.Friends.SendRequest)
		friends.PUT("/accept", handlers.Friends.Accept)
		friends.PUT("/reject", handlers.Friends.Reject)
		friends.DELETE("/:username", handlers.Friends.Remove)
	}

	groups := api.Group("/groups")
	{
		groups.POST("", handlers.Groups.Create)
		groups.GET("/:id", handlers.Groups.Get)
		groups.GET("/:id/messages", handlers.Groups.ListMessages)
		groups.POST("/:id/users", handlers.Groups.AddMember)
		groups.DELETE("/:id/users/:userId", handlers.Groups.RemoveMember)
	}

	chats := api.Group("/chats")
	{
		chats.POST("", handlers.Chats.Create)
		chats.GET("/:id", handlers.Chats.Get)
		chats.GET("/:id/messages", handlers.Chats.ListMessages)
	}

	messages := api.Group("/messages")
	{
		messages.POST("", middleware.MessageRateLimitMiddleware(deps.Limiter), handlers.Messages.Post)
		messages.GET("/:id", handlers.Messages.Get)
		messages.PUT("/:id", handlers.Messages.SetReadStatus)
	}
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
