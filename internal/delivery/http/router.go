package http

import (
	"time"

	"github.com/gdugdh24/profile-service/internal/delivery/http/handler"
	"github.com/gdugdh24/profile-service/internal/delivery/http/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Router struct {
	authHandler     *handler.AuthHandler
	profileHandler  *handler.ProfileHandler
	interestHandler *handler.InterestHandler
	photoHandler    *handler.PhotoHandler
	authMiddleware  *middleware.AuthMiddleware
	allowedOrigins  []string
	logger          *zap.Logger
}

func NewRouter(
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	interestHandler *handler.InterestHandler,
	photoHandler *handler.PhotoHandler,
	authMiddleware *middleware.AuthMiddleware,
	allowedOrigins []string,
	logger *zap.Logger,
) *Router {
	return &Router{
		authHandler:     authHandler,
		profileHandler:  profileHandler,
		interestHandler: interestHandler,
		photoHandler:    photoHandler,
		authMiddleware:  authMiddleware,
		allowedOrigins:  allowedOrigins,
		logger:          logger,
	}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(r.logger))
	router.Use(cors.New(r.corsConfig()))

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/logout", r.authMiddleware.RequireAuth(), r.authHandler.Logout)
		}

		// Interest chip style needs no session
		v1.GET("/interests/style", r.interestHandler.Style)

		// Protected routes
		protected := v1.Group("")
		protected.Use(r.authMiddleware.RequireAuth())
		{
			profile := protected.Group("/profile")
			{
				profile.GET("/me", r.profileHandler.GetMyProfile)
				profile.PUT("/me", r.profileHandler.UpdateMyProfile)
				profile.POST("", r.profileHandler.CreateProfile)
				profile.POST("/suggest-about", r.profileHandler.SuggestAbout)

				profile.POST("/photo", r.photoHandler.Select)
				profile.PUT("/photo/region", r.photoHandler.UpdateRegion)
				profile.POST("/photo/commit", r.photoHandler.Commit)
				profile.DELETE("/photo", r.photoHandler.Cancel)
			}

			interests := protected.Group("/interests")
			{
				interests.GET("", r.interestHandler.Catalog)
				interests.PUT("", r.interestHandler.Update)
			}
		}
	}

	return router
}

func (r *Router) corsConfig() cors.Config {
	config := cors.DefaultConfig()
	if len(r.allowedOrigins) == 0 || (len(r.allowedOrigins) == 1 && r.allowedOrigins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = r.allowedOrigins
		config.AllowCredentials = true
	}
	config.AllowHeaders = append(config.AllowHeaders, "Authorization", middleware.TokenHeader)
	config.MaxAge = 12 * time.Hour
	return config
}
