package obs

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Check probes one backing dependency, such as the mongo connection.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// HealthHandlers exposes liveness and readiness endpoints. Readiness runs
// the registered checks and reports every failing dependency by name, so
// an unready pod can be diagnosed from the probe response alone.
type HealthHandlers struct {
	Checks []Check
}

func (h HealthHandlers) Livez(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h HealthHandlers) Readyz(c *gin.Context) {
	failing := gin.H{}
	for _, check := range h.Checks {
		if check.Probe == nil {
			continue
		}
		if err := check.Probe(c.Request.Context()); err != nil {
			failing[check.Name] = err.Error()
		}
	}
	if len(failing) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "checks": failing})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
