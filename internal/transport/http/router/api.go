package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-user-api/internal/core/server"
	mdw "go-user-api/internal/transport/http/middleware"
)

// NewAPIEngine assembles the public engine: protective middleware, health
// probe, and every registered feature module under /api/v1.
func NewAPIEngine(l *zap.Logger) *gin.Engine {
	r := server.NewEngine(l)

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	api := r.Group("/api/v1")
	MountAllAPI(api)

	return r
}
