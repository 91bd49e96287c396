package router

import (
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-rotation/internal/config"
	"github.com/stemsi/exstem-rotation/internal/handler"
	"github.com/stemsi/exstem-rotation/internal/middleware"
	"github.com/stemsi/exstem-rotation/internal/response"
	"github.com/stemsi/exstem-rotation/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Rotation   *handler.RotationHandler
	Assessment *handler.AssessmentHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// A nil limiter leaves learner routes unthrottled.
func SetupRouter(
	auth middleware.TokenValidator,
	handlers *Handlers,
	limiter *middleware.RateLimiter,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Every response carries a request ID; handlers log through it.
	router.Use(response.RequestIDMiddleware(log))
	router.Use(middleware.Compress(brotli.DefaultCompression, middleware.DefaultCompressMinLength))

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Rotation Group (learner or admin token) ────────────────────
	rotationAPI := router.Group("/api/v1/rotation")
	rotationAPI.Use(
		middleware.RequireJWT(auth, service.TokenTypeStudent, service.TokenTypeAdmin),
		middleware.CacheControl("no-store"),
	)
	if limiter != nil {
		rotationAPI.Use(limiter.Middleware())
	}
	{
		rotationAPI.POST("/tests/:test_id/selection", handlers.Rotation.Select)
		rotationAPI.POST("/tests/:test_id/attempts", handlers.Rotation.StartAttempt)
	}

	// ─── 2. Admin Group ────────────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireJWT(auth, service.TokenTypeAdmin))
	{
		adminAPI.POST("/tests", handlers.Assessment.ImportTest)
		adminAPI.GET("/tests/:test_id", handlers.Assessment.GetTest)
		adminAPI.PUT("/tests/:test_id/questions", handlers.Assessment.ReplaceQuestions)
		adminAPI.POST("/tests/:test_id/preview", handlers.Assessment.PreviewRotation)
	}

	return router
}
