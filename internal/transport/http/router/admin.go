package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-user-api/internal/core/server"
	mdw "go-user-api/internal/transport/http/middleware"
)

// NewAdminEngine serves the ops surface: prometheus scrape endpoint and
// the registered admin modules under /admin/v1. Meant to bind a private
// address; it carries no public traffic.
func NewAdminEngine(l *zap.Logger) *gin.Engine {
	r := server.NewEngine(l)

	r.Use(
		mdw.RequestID(),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := r.Group("/admin/v1")
	MountAllAdmin(admin)

	return r
}
