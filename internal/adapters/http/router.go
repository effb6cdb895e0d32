package http

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/dkeye/Rendezvous/internal/adapters/signal"
	"github.com/dkeye/Rendezvous/internal/app/orch"
	"github.com/dkeye/Rendezvous/internal/config"
	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// SetupRouter wires HTTP routes (REST + WS) with the orchestrator.
// - REST room directory under /rooms
// - WebSocket upgrade lives at /ws
// - /health, /ice-servers and /metrics for operators and clients
func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) (*gin.Engine, error) {
	iceServers, err := cfg.WebRTCICEServers()
	if err != nil {
		return nil, fmt.Errorf("ice servers: %w", err)
	}

	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	r.Use(gin.CustomRecovery(recoverJSON))
	r.Use(RequestLogger())
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": domain.Timestamp(o.Now()),
		})
	})

	r.GET("/ice-servers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": iceServers})
	})

	r.GET("/metrics", gin.WrapH(o.Metrics.Handler()))

	ctrl := signal.NewSignalWSController(o, cfg)
	r.GET("/ws", func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true})
	rooms := r.Group("/rooms", sessions.Sessions("RendezvousSession", store), ClientTokenMiddleware())
	h := &RoomsHandler{Rooms: o.Rooms}
	rooms.GET("", h.list)
	rooms.POST("/create", h.create)
	rooms.POST("/join", h.join)
	rooms.GET("/:roomId", h.get)
	rooms.DELETE("/:roomId", h.delete)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
	})

	log.Info().Str("module", "adapters.http").Strs("origins", cfg.AllowedOrigins).Msg("router setup")
	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}
	if slices.Contains(origins, "*") || len(origins) == 0 {
		cc.AllowAllOrigins = true
		return cc
	}
	cc.AllowOrigins = origins
	cc.AllowCredentials = true
	return cc
}
