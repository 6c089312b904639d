// Package routes wires middleware and services into the gin engine.
package routes

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ywahab/salahtrack/internal/auth"
	"github.com/ywahab/salahtrack/internal/httpapi"
	"github.com/ywahab/salahtrack/internal/middleware"
	"github.com/ywahab/salahtrack/internal/service"
	"github.com/ywahab/salahtrack/internal/storage"
)

// Deps carries everything the router needs. Clock may be nil (defaults
// to time.Now); Cache may be nil (caching disabled).
type Deps struct {
	Store              storage.Store
	Cache              service.ProgressCache
	JWTManager         *auth.JWTManager
	Authenticator      auth.Authenticator
	Clock              service.Clock
	RateLimitPerMinute int
}

// Setup builds the gin engine with all routes and middleware attached,
// and returns the engine plus the achievement service so the caller can
// start the evaluator scheduler.
func Setup(d Deps) (*gin.Engine, *service.AchievementService) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())

	corsCfg := cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Authorization", "Content-Type"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}
	r.Use(cors.New(corsCfg))

	authSvc := service.NewAuthService(d.Authenticator, d.JWTManager, d.Store, slog.Default())
	groupSvc := service.NewGroupService(d.Store, d.Cache, d.Clock)
	prayerSvc := service.NewPrayerService(d.Store, groupSvc, d.Clock)
	achievementSvc := service.NewAchievementService(d.Store, d.Cache, d.Clock)

	requireAuth := middleware.RequireAuth(d.JWTManager)

	r.GET("/healthz", func(c *gin.Context) {
		httpapi.OK(c, gin.H{"status": "ok"})
	})
	r.GET("/metrics", middleware.MetricsHandler())

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	if d.RateLimitPerMinute > 0 {
		authGroup.Use(middleware.RateLimit(d.RateLimitPerMinute))
	}
	authGroup.POST("/register", authSvc.Register)
	authGroup.POST("/login", authSvc.Login)
	authGroup.POST("/logout", requireAuth, authSvc.Logout)
	authGroup.GET("/me", requireAuth, authSvc.Me)

	// Invite resolution is public: the landing page shows the group name
	// before sign-in. Joining requires auth.
	api.GET("/invites/:code", groupSvc.ResolveInvite)
	api.POST("/invites/:code/join", requireAuth, groupSvc.Join)

	groups := api.Group("/groups", requireAuth)
	groups.POST("", groupSvc.Create)
	groups.GET("", groupSvc.List)
	groups.GET("/:id", groupSvc.Get)
	groups.POST("/:id/evaluate", achievementSvc.Evaluate)

	prayers := api.Group("/prayers", requireAuth)
	prayers.GET("", prayerSvc.Month)
	prayers.POST("/toggle", prayerSvc.Toggle)

	api.GET("/progress", requireAuth, prayerSvc.Progress)

	return r, achievementSvc
}
