package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-user-certification/pkg/response"
)

// HealthHandler answers liveness probes. Checks are optional named probes reported in meta.
type HealthHandler struct {
	Checks map[string]func() string
}

func NewHealthHandler(checks map[string]func() string) *HealthHandler {
	return &HealthHandler{Checks: checks}
}

func (h *HealthHandler) Health(c *gin.Context) {
	var meta any
	if len(h.Checks) > 0 {
		results := make(map[string]string, len(h.Checks))
		for name, check := range h.Checks {
			results[name] = check()
		}
		meta = results
	}
	response.Success(c, http.StatusOK, gin.H{"status": "UP"}, "ok", meta)
}
