package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-user-certification/internal/interface/http"
)

// HealthModule serves the probe at Path. It is registered both at the root and under /api.
type HealthModule struct {
	Handler *handlers.HealthHandler
	Path    string
}

func NewHealthModule(h *handlers.HealthHandler, path string) *HealthModule {
	return &HealthModule{Handler: h, Path: path}
}

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET(m.Path, m.Handler.Health)
	rg.HEAD(m.Path, m.Handler.Health)
}
