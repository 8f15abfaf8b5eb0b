package http

import (
	"context"
	"net/http"

	"github.com/dkeye/Relay/internal/adapters/ws"
	"github.com/dkeye/Relay/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// SetupRouter serves the greeting and the chat WebSocket on one listener.
// Connections are bound to ctx and torn down when it ends.
func SetupRouter(ctx context.Context, cfg *config.Config, ctl *ws.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	upgrade := func(c *gin.Context) {
		ctl.HandleConn(ctx, c.Writer, c.Request)
	}

	r.GET("/", func(c *gin.Context) {
		if websocket.IsWebSocketUpgrade(c.Request) {
			upgrade(c)
			return
		}
		c.String(http.StatusOK, cfg.Greeting)
	})
	r.GET("/ws", upgrade)

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")
	return r
}
