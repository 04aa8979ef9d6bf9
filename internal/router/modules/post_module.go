package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-user-certification/internal/interface/http"
)

type PostModule struct {
	Handler *handlers.PostHandler
}

func NewPostModule(h *handlers.PostHandler) *PostModule {
	return &PostModule{Handler: h}
}

func (m *PostModule) Register(rg *gin.RouterGroup) {
	posts := rg.Group("/posts")
	posts.POST("", m.Handler.Create)
	posts.GET("/:id", m.Handler.GetByID)
	posts.PUT("/:id", m.Handler.Update)
}
