package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/tranqv/bookstore/config"
	"github.com/tranqv/bookstore/middleware"
	"github.com/tranqv/bookstore/utils"
	"gorm.io/gorm"
)

// SetupRouter initializes the Gin router with all middleware and routes
func SetupRouter(db *gorm.DB, cfg *config.Config, mailer *utils.Mailer) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(utils.RecoveryMiddleware(cfg.IsProduction()))
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.LoggerMiddleware())
	router.Use(utils.CORSMiddleware(cfg.FrontendURL))
	router.Use(utils.SecurityHeadersMiddleware())
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	router.GET("/health", func(c *gin.Context) {
		utils.Success(c, "OK", gin.H{"status": "up"})
	})

	// Uploaded book covers
	router.Static("/uploads", cfg.UploadDir)

	api := router.Group("/api/v1")
	{
		initUserRoutes(api, db, cfg, mailer)
		initAdminRoutes(api, db, cfg)
	}

	return router
}
