package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"aloka/internal/config"
	"aloka/internal/middleware"
	"aloka/internal/modules/auth"
	"aloka/internal/modules/studio"
	"aloka/internal/pkg/jwt"
	"aloka/internal/realtime"
	"aloka/internal/repository"
)

// Deps are the long-lived objects the HTTP layer is built from.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	JWT    *jwt.Service
	Cache  studio.ListCache // nil disables list caching
	Hub    *realtime.Hub
}

// NewRouter wires middleware and every route. The API is served at the root
// and again under /api/v1.
func NewRouter(d Deps) *gin.Engine {
	if d.Hub == nil {
		d.Hub = realtime.NewHub()
	}

	r := gin.New()
	// Metrics sits outside RequestLogger so recovered panics are counted as 500s.
	r.Use(
		middleware.RequestID(),
		middleware.Metrics(),
		middleware.RequestLogger(),
		middleware.CORS(d.Config.CORSAllowedOrigins),
	)

	r.GET("/health", healthHandler(d.DB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	studioService := studio.NewService(repository.NewStudioRepository(d.DB), d.Cache, d.Hub)
	studioHandler := studio.NewHandler(studioService, d.Hub)

	authService := auth.NewService(repository.NewUserRepository(d.DB), d.JWT)
	authHandler := auth.NewHandler(authService)

	authenticate := middleware.JWTAuth(d.JWT)
	signupLimiter := middleware.NewIPRateLimiter(d.Config.SignupRatePerMin, d.Config.SignupBurst)

	var writeGuard []gin.HandlerFunc
	if role := d.Config.StudioWriteRole; role != "" {
		writeGuard = append(writeGuard, authenticate, middleware.RequireRole(role, "admin"))
	}

	for _, g := range []*gin.RouterGroup{&r.RouterGroup, r.Group("/api/v1")} {
		studioHandler.RegisterRoutes(g, writeGuard...)
		authHandler.RegisterRoutes(g, authenticate, signupLimiter.Middleware())
	}

	return r
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
