package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/codecollab/codecollab-server/internal/core"
	"github.com/codecollab/codecollab-server/internal/languages"
)

// APIHandlers provides HTTP handlers for REST API endpoints.
type APIHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(hub *core.Hub, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		hub: hub,
		log: logger,
	}
}

// LanguageInfo describes one supported editor language.
type LanguageInfo struct {
	ID       string `json:"id"`
	Template string `json:"template"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Health is the liveness probe.
// GET /healthz
func (h *APIHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Info is a minimal identification endpoint.
// GET /api
func (h *APIHandlers) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "CodeCollab API running"})
}

// Languages lists the supported language identifiers with their starter
// templates.
// GET /api/languages
func (h *APIHandlers) Languages(c *gin.Context) {
	ids := languages.Supported()
	out := make([]LanguageInfo, 0, len(ids))
	for _, id := range ids {
		out = append(out, LanguageInfo{ID: id, Template: languages.Template(id)})
	}
	c.JSON(http.StatusOK, out)
}

// Rooms reports the occupancy of all active rooms.
// GET /api/rooms
func (h *APIHandlers) Rooms(c *gin.Context) {
	stats, err := h.hub.Stats(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to query room stats")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
