package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/picstream/auth-service/internal/adapters/transport/http/middleware"
	"github.com/picstream/auth-service/internal/domain/auth/model"
)

// NewRouter assembles the gin engine: global middleware first, then the
// guarded route groups. Confirmation, resend and login share the strict
// 5-per-10s per-IP limiter.
func NewRouter(h *Handler, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Metrics())
	router.Use(middleware.NewRateLimitPerIP(rate.Limit(50), 100, 10_000, time.Hour))

	corsConfig := cors.Config{
		AllowOrigins: h.cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"Authorization",
			"X-Requested-With",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: h.cfg.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	strictLimit := middleware.NewRateLimitPerIP(rate.Every(10*time.Second/5), 5, 10_000, time.Hour)
	guard := middleware.AuthGuard(h.auth)

	auth := router.Group("/auth")
	{
		auth.POST("/registration", h.registration)
		auth.POST("/registration-confirmation", strictLimit, h.registrationConfirmation)
		auth.POST("/registration-email-resending", strictLimit, h.registrationEmailResending)
		auth.POST("/login", strictLimit, h.login)
		auth.POST("/refresh-token", h.refreshToken)
		auth.POST("/logout", h.logout)
		auth.GET("", h.googleAuth)
		auth.GET("/google-redirect", h.googleRedirect)
		auth.GET("/me", guard, withUser(h.me))
	}

	users := router.Group("/users", guard)
	{
		users.GET("/profile", withUser(h.findProfile))
		users.PUT("/profile", withUser(h.updateProfile))
		users.POST("/profile/avatar", withUser(h.uploadAvatar))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "time": time.Now().Unix()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// withUser adapts a handler that needs the guard-resolved user.
func withUser(fn func(*gin.Context, model.User)) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.UserFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(401, gin.H{"error": "unauthorized"})
			return
		}
		fn(c, user)
	}
}
