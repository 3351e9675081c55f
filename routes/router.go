package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tourwithmark/engagement/config"
	"github.com/tourwithmark/engagement/controllers"
	"github.com/tourwithmark/engagement/middleware"
	"github.com/tourwithmark/engagement/utils"
)

// Store is everything the HTTP surface needs from the engagement store.
type Store interface {
	controllers.LikeStore
	controllers.PageViewStore
	controllers.AnalyticsStore
}

// Deps are the explicitly constructed collaborators of the router.
type Deps struct {
	Store Store
	// Cache may be nil when Redis is not configured
	Cache  *utils.Cache
	Logger *zap.Logger
	// AccessLog receives one line per request; Logger is used when nil
	AccessLog *zap.Logger
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, deps Deps) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	accessLog := deps.AccessLog
	if accessLog == nil {
		accessLog = logger
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(utils.Ginzap(accessLog, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(accessLog, true))
	if cfg.MetricsEnabled {
		r.Use(middleware.Metrics())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		// credentials require a concrete origin, so echo the caller's back
		corsCfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	healthController := controllers.NewHealthController()
	likesController := controllers.NewLikesController(deps.Store, deps.Cache, logger, cfg.TrustForwardedFor)
	pageViewController := controllers.NewPageViewController(deps.Store, deps.Cache, logger, cfg.TrustForwardedFor)
	analyticsController := controllers.NewAnalyticsController(deps.Store, deps.Cache, logger)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow())

	api := r.Group("/api")
	api.Use(limiter.Middleware(), middleware.Fingerprint(cfg.TrustForwardedFor))

	api.GET("/health", healthController.Health)

	api.GET("/likes/:postId", likesController.GetLikes)
	api.POST("/likes/:postId", likesController.ToggleLike)
	api.GET("/stats", likesController.GetStats)

	api.POST("/pageview", pageViewController.RecordPageView)
	api.GET("/analytics", analyticsController.GetAnalytics)
	api.GET("/dashboard-stats", analyticsController.GetDashboard)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, "api route not found")
			return
		}
		utils.Error(ctx, http.StatusNotFound, "not found")
	})

	return r
}
