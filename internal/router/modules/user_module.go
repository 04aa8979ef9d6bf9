package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-user-certification/internal/interface/http"
)

// UserModule wires the user endpoints:
// POST /users, GET /users/:id, GET /users/:id/verify, POST /users/:id/login,
// GET|PUT /users/me (EMAIL header), GET /users/search
type UserModule struct {
	Handler *handlers.UserHandler
}

func NewUserModule(h *handlers.UserHandler) *UserModule {
	return &UserModule{Handler: h}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.POST("", m.Handler.Create)
	users.GET("/me", m.Handler.GetMyInfo)
	users.PUT("/me", m.Handler.UpdateMyInfo)
	users.GET("/search", m.Handler.Search)
	users.GET("/:id", m.Handler.GetByID)
	users.GET("/:id/verify", m.Handler.Verify)
	users.POST("/:id/login", m.Handler.Login)
}
