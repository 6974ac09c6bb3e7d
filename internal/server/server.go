package server

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/RevenueIntel/models"
)

// Server exposes the analytical engines over HTTP. Every request recomputes
// from the order source; the engines hold no state between calls.
type Server struct {
	router  *gin.Engine
	handler *Handler
}

// New creates the API server around an order source.
func New(source models.OrderSource, cfg *models.Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:  gin.New(),
		handler: NewHandler(source, cfg),
	}
	s.router.Use(gin.Recovery())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	{
		s.handler.RegisterRoutes(api)
	}
}

// Run blocks serving HTTP on the given port.
func (s *Server) Run(port int) error {
	addr := fmt.Sprintf(":%d", port)
	log.Info().Str("addr", addr).Msg("API server listening")
	return s.router.Run(addr)
}

// RequestTimeout converts the configured per-request deadline.
func RequestTimeout(cfg *models.Config) time.Duration {
	return time.Duration(cfg.RequestTimeout) * time.Second
}
