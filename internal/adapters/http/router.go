package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/novatrack/realtime/internal/adapters/signal"
	"github.com/novatrack/realtime/internal/app"
	"github.com/novatrack/realtime/internal/config"
	"github.com/novatrack/realtime/internal/domain"
)

func SetupRouter(ctx context.Context, cfg *config.Config, ctl *signal.Controller, cast *app.Broadcaster) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": cast.Registry.Len()})
	})

	api := r.Group("/api")
	api.GET("/ws", func(c *gin.Context) {
		ctl.HandleSocket(ctx, c)
	})
	api.POST("/internal/events", relayEvent(cfg, cast))

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}

type eventRequest struct {
	OrganisationID int64           `json:"organisationId" binding:"required,gt=0"`
	Event          json.RawMessage `json:"event" binding:"required"`
}

// relayEvent accepts externally produced domain events and republishes them
// verbatim onto the org presence topic.
func relayEvent(cfg *config.Config, cast *app.Broadcaster) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-Event-Secret") != cfg.EventSecret {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		var req eventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid event"})
			return
		}
		cast.RelayEvent(domain.OrgID(req.OrganisationID), req.Event)
		c.Status(http.StatusAccepted)
	}
}
