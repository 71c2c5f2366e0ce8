package http

import (
	"context"
	"net/http"

	"github.com/dkeye/Kairos/internal/adapters/rtc"
	"github.com/dkeye/Kairos/internal/adapters/signal"
	"github.com/dkeye/Kairos/internal/app/orch"
	"github.com/dkeye/Kairos/internal/config"
	rest "github.com/dkeye/Kairos/internal/transport/http"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const clientTokenKey = "client_token"

// ClientTokenMiddleware tags every browser with a stable cookie-backed id.
// It only correlates logs; identity comes from the login event.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		token, _ := sess.Get(clientTokenKey).(string)
		if token == "" {
			token = uuid.NewString()
			sess.Set(clientTokenKey, token)
			if err := sess.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("session save")
			}
		}
		c.Set(clientTokenKey, token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, st rest.HistoryStore) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true})
	r.Use(sessions.Sessions("KairosSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": o.Registry.ConnCount()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	ctrl := signal.NewSignalWSController(o, signal.Options{
		ReadLimit:    cfg.ReadLimit,
		PingPeriod:   cfg.PingPeriod,
		RateLimit:    cfg.Rate.Limit,
		RateInterval: cfg.Rate.Interval,
	})
	ws := []gin.HandlerFunc{}
	if cfg.Auth.JWTSecret != "" {
		ws = append(ws, RequireToken(cfg.Auth.JWTSecret))
	}
	ws = append(ws, func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("client", c.GetString(clientTokenKey)).Msg("ws endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})
	api.GET("/ws", ws...)

	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": o.Rooms.List()})
	})

	h := &rest.Handlers{Store: st, Hub: o, RTC: rtc.Configuration(cfg.RTC.ICEServers)}
	h.Register(api)

	return r
}
