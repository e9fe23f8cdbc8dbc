package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carter293/reactive-notebook/pkg/notebook"
)

type cellRequest struct {
	Kind   notebook.CellKind `json:"kind" binding:"required"`
	Source string            `json:"source"`
}

type databaseRequest struct {
	ConnectionString string `json:"connection_string"`
}

// editCell handles a code-change request: register with the kernel via
// the notebook's orchestrator, persisting first.
func (s *Server) editCell(c *gin.Context) {
	notebookID, cellID := c.Param("notebook_id"), c.Param("cell_id")
	var req cellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	o, err := s.registry.Acquire(c.Request.Context(), notebookID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ACQUIRE_FAILED", err.Error())
		return
	}
	if err := o.Edit(c.Request.Context(), cellID, req.Kind, req.Source); err != nil {
		respondError(c, http.StatusInternalServerError, "EDIT_FAILED", err.Error())
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"cell_id": cellID})
}

// runCell handles a run request: execute cellID's cascade, streaming
// results to subscribers via the event manager rather than this
// response (the caller typically has a parallel /events connection
// open).
func (s *Server) runCell(c *gin.Context) {
	notebookID, cellID := c.Param("notebook_id"), c.Param("cell_id")
	var req cellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	o, err := s.registry.Acquire(c.Request.Context(), notebookID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ACQUIRE_FAILED", err.Error())
		return
	}
	if err := o.Run(c.Request.Context(), cellID, req.Kind, req.Source); err != nil {
		respondError(c, http.StatusInternalServerError, "RUN_FAILED", err.Error())
		return
	}
	respondJSON(c, http.StatusAccepted, gin.H{"cell_id": cellID})
}

// deregisterCell handles cell deletion.
func (s *Server) deregisterCell(c *gin.Context) {
	notebookID, cellID := c.Param("notebook_id"), c.Param("cell_id")

	o, err := s.registry.Acquire(c.Request.Context(), notebookID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ACQUIRE_FAILED", err.Error())
		return
	}
	if err := o.Deregister(c.Request.Context(), cellID); err != nil {
		respondError(c, http.StatusInternalServerError, "DEREGISTER_FAILED", err.Error())
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"cell_id": cellID})
}

// configureDatabase rebinds the notebook's SQL connection string.
func (s *Server) configureDatabase(c *gin.Context) {
	notebookID := c.Param("notebook_id")
	var req databaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	o, err := s.registry.Acquire(c.Request.Context(), notebookID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ACQUIRE_FAILED", err.Error())
		return
	}
	if err := o.ConfigureDatabase(c.Request.Context(), req.ConnectionString); err != nil {
		respondError(c, http.StatusInternalServerError, "CONFIGURE_FAILED", err.Error())
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

// subscribe upgrades the request to a WebSocket, acquiring (spawning if
// needed) the notebook's orchestrator and releasing it once the last
// subscriber for that notebook disconnects.
func (s *Server) subscribe(c *gin.Context) {
	notebookID := c.Param("notebook_id")

	if _, err := s.registry.Acquire(c.Request.Context(), notebookID); err != nil {
		respondError(c, http.StatusInternalServerError, "ACQUIRE_FAILED", err.Error())
		return
	}

	cl := s.hub.newClient(c.Writer, c.Request)
	if cl == nil {
		return
	}

	s.events.Subscribe(notebookID, cl)
	go cl.writePump()

	done := make(chan struct{})
	go cl.readPump(done)
	<-done

	s.events.Unsubscribe(notebookID, cl.id)
	close(cl.send)
	if s.events.Count(notebookID) == 0 {
		_ = s.registry.Release(c.Request.Context(), notebookID)
	}
}
