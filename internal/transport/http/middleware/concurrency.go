package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "go-user-api/internal/transport/http/response"
)

// ConcurrencyLimit caps in-flight requests to protect the DB downstream.
// Expensive hashing work stays on the request goroutine, so this cap is
// also what keeps a burst of hash-heavy writes from starving reads.
func ConcurrencyLimit(max int64) gin.HandlerFunc {
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if err := sem.Acquire(c, 1); err != nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeServerError, "server busy"))
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
