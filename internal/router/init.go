package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-user-certification/internal/container"
	handlers "github.com/oksasatya/go-ddd-user-certification/internal/interface/http"
	"github.com/oksasatya/go-ddd-user-certification/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-user-certification/internal/router/modules"
	"github.com/oksasatya/go-ddd-user-certification/pkg/validation"
)

// New builds the Gin engine with global middleware and every module registered.
func New(c *container.Container) *gin.Engine {
	validation.Init()
	cfg := c.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowAllOrigins:  len(cfg.CORSOrigins()) == 0,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", handlers.EmailHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: len(cfg.CORSOrigins()) > 0,
		MaxAge:           12 * time.Hour,
	}))

	reg := NewRegistry(r)
	if cfg.HTTPLogEnabled {
		reg.Use(middleware.AccessLog(c.Logger))
	}
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}

// InitModules registers all feature modules with the registry.
func InitModules(r *Registry, c *container.Container) {
	health := handlers.NewHealthHandler(c.HealthChecks())
	r.AddRoot(modules.NewHealthModule(health, "/health_check"))
	r.Add(modules.NewHealthModule(health, "/health"))

	r.Add(modules.NewUserModule(handlers.NewUserHandler(c.Users, c.Logger, c.Config.VerifyRedirectURL)))
	r.Add(modules.NewPostModule(handlers.NewPostHandler(c.Posts, c.Logger)))

	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
