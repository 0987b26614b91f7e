package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Aryanprakashh/sync-music-app/internal/adapters/signal"
	"github.com/Aryanprakashh/sync-music-app/internal/adapters/spotify"
	"github.com/Aryanprakashh/sync-music-app/internal/config"
)

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	ws *signal.Controller,
	api *CatalogAPI,
	limiter *IPRateLimiter,
	auth *spotify.Authenticator,
) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("SyncSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	r.GET("/auth/spotify", func(c *gin.Context) {
		c.Redirect(http.StatusFound, auth.AuthorizeURL())
	})
	r.GET("/callback", func(c *gin.Context) {
		code := c.Query("code")
		if code == "" {
			c.Redirect(http.StatusFound, "/?error=auth_failed")
			return
		}
		pair, err := auth.ExchangeCode(c.Request.Context(), code)
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("token exchange")
			c.Redirect(http.StatusFound, "/?error=auth_failed")
			return
		}
		c.Redirect(http.StatusFound, "/?token="+pair.AccessToken)
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	grp := r.Group("/api")

	grp.GET("/ws", func(c *gin.Context) {
		ws.Handle(ctx, c)
	})

	catalog := grp.Group("", limiter.Middleware())
	catalog.GET("/search", requireQuery("q", "accessToken"), api.Search)
	catalog.GET("/current-user", requireQuery("accessToken"), api.CurrentUser)
	catalog.GET("/playlists", requireQuery("accessToken"), api.Playlists)

	return r
}
