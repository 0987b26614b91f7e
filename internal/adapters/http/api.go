package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Aryanprakashh/sync-music-app/internal/cache"
	"github.com/Aryanprakashh/sync-music-app/internal/core"
)

const searchLimit = 10

// CatalogAPI proxies catalog lookups with response caching. Upstream
// 401s evict the token's cached client and tell the caller to
// re-authenticate; everything else is passed through.
type CatalogAPI struct {
	Catalog core.Catalog
	Cache   *cache.ResponseCache
	// EvictToken drops a rejected token's cached upstream client.
	EvictToken func(token string)
}

// requireQuery rejects requests missing (or blank on) any of the named
// query parameters.
func requireQuery(params ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, p := range params {
			if strings.TrimSpace(c.Query(p)) == "" {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"error": fmt.Sprintf("Missing or empty required parameter: %s", p),
				})
				return
			}
		}
		c.Next()
	}
}

func (a *CatalogAPI) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	token := c.Query("accessToken")
	key := cache.Key("search", strings.ToLower(q), token)

	if data, ok := a.Cache.Get(key); ok {
		c.Data(http.StatusOK, "application/json", data)
		return
	}

	data, err := a.Catalog.SearchTracks(c.Request.Context(), token, q, searchLimit)
	if err != nil {
		a.fail(c, token, err, "search")
		return
	}
	a.Cache.Set(key, data)
	c.Data(http.StatusOK, "application/json", data)
}

func (a *CatalogAPI) CurrentUser(c *gin.Context) {
	token := c.Query("accessToken")
	key := cache.Key("current-user", token)

	if data, ok := a.Cache.Get(key); ok {
		c.Data(http.StatusOK, "application/json", data)
		return
	}

	data, err := a.Catalog.Me(c.Request.Context(), token)
	if err != nil {
		a.fail(c, token, err, "current-user")
		return
	}
	a.Cache.Set(key, data)
	c.Data(http.StatusOK, "application/json", data)
}

func (a *CatalogAPI) Playlists(c *gin.Context) {
	token := c.Query("accessToken")
	key := cache.Key("playlists", token)

	if data, ok := a.Cache.Get(key); ok {
		c.Data(http.StatusOK, "application/json", data)
		return
	}

	data, err := a.Catalog.Playlists(c.Request.Context(), token)
	if err != nil {
		a.fail(c, token, err, "playlists")
		return
	}
	a.Cache.Set(key, data)
	c.Data(http.StatusOK, "application/json", data)
}

func (a *CatalogAPI) fail(c *gin.Context, token string, err error, endpoint string) {
	if errors.Is(err, core.ErrUnauthorized) {
		if a.EvictToken != nil {
			a.EvictToken(token)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired. Please re-authenticate."})
		return
	}
	log.Error().Err(err).Str("module", "adapters.http").Str("endpoint", endpoint).Msg("catalog request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
