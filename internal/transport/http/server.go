package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/codecollab/codecollab-server/internal/config"
	"github.com/codecollab/codecollab-server/internal/core"
)

// NewServer builds the HTTP server: REST surface plus the sync WebSocket.
func NewServer(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(LoggerMiddleware(logger), gin.Recovery())

	h := NewAPIHandlers(hub, logger)
	router.GET("/healthz", h.Health)
	router.GET("/api", h.Info)
	router.GET("/api/languages", h.Languages)
	router.GET("/api/rooms", h.Rooms)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
