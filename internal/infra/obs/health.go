package obs

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandlers exposes liveness and readiness endpoints. Liveness only
// confirms the process serves requests; readiness also runs the Ready probe
// against the storage backend.
type HealthHandlers struct {
	Ready func() error
}

func (h HealthHandlers) Livez(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h HealthHandlers) Readyz(c *gin.Context) {
	checkedAt := time.Now().UTC().Format(time.RFC3339)
	if h.Ready != nil {
		if err := h.Ready(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not ready",
				"error":      err.Error(),
				"checked_at": checkedAt,
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checked_at": checkedAt})
}
