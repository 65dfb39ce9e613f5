package router

import (
	"net/http"

	"github.com/kouk/grawity-code/internal/config"
	"github.com/kouk/grawity-code/internal/database"
	"github.com/kouk/grawity-code/internal/handler"
	"github.com/kouk/grawity-code/internal/middleware"
	"github.com/kouk/grawity-code/internal/util"

	"cdr.dev/slog/v3"
	"github.com/coder/quartz"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures the Gin engine.
func SetupRouter(cfg *config.Config, store *database.SessionStore, clock quartz.Clock, logger slog.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(logger.Named("http")), gin.Recovery())

	who := handler.NewWhoHandler(store, clock, cfg.Presence.MaxAgeDuration(), logger.Named("who"))

	// plain text, as served to curl and finger-style clients
	r.GET("/", who.Text)
	r.GET("/who", who.Text)

	r.GET("/healthz", handler.Health(store))

	api := r.Group("/api")
	api.GET("/who", who.JSON)

	export := r.Group("/export")
	export.GET("/csv", who.ExportCSV)
	export.GET("/xlsx", who.ExportXLSX)

	r.NoRoute(func(c *gin.Context) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "not found")
	})

	return r
}
