package http

import (
	"github.com/gin-gonic/gin"

	"github.com/carter293/reactive-notebook/internal/logger"
	"github.com/carter293/reactive-notebook/internal/observer"
	"github.com/carter293/reactive-notebook/internal/orchestrator"
)

// Server wires the registry, event manager, and logger into a Gin
// engine. NewRouter is the only exported construction point; cmd/server
// calls it and runs the returned *gin.Engine behind an http.Server.
type Server struct {
	registry *orchestrator.Registry
	events   *observer.Manager
	log      *logger.Logger
	hub      *Hub
}

// NewServer wires a Server around an already-constructed registry and
// event manager.
func NewServer(registry *orchestrator.Registry, events *observer.Manager, log *logger.Logger) *Server {
	return &Server{
		registry: registry,
		events:   events,
		log:      log,
		hub:      NewHub(log),
	}
}

// NewRouter builds the Gin engine: recovery + request-ID + logging
// middleware, then the notebook routes.
func (s *Server) NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Recovery(s.log), RequestLogger(s.log))

	notebooks := r.Group("/notebooks/:notebook_id")
	notebooks.POST("/cells/:cell_id", s.editCell)
	notebooks.POST("/cells/:cell_id/run", s.runCell)
	notebooks.DELETE("/cells/:cell_id", s.deregisterCell)
	notebooks.POST("/database", s.configureDatabase)
	notebooks.GET("/events", s.subscribe)

	return r
}
