package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/tranqv/bookstore/config"
	"github.com/tranqv/bookstore/controllers"
	"github.com/tranqv/bookstore/middleware"
	"gorm.io/gorm"
)

func initAdminRoutes(api *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	bookController := controllers.NewAdminBookController(db, cfg)
	categoryController := controllers.NewAdminCategoryController(db)
	userController := controllers.NewAdminUserController(db)
	orderController := controllers.NewAdminOrderController(db)
	reportController := controllers.NewAdminReportController(db)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(db, cfg.JWTSecret))
	admin.Use(middleware.AdminMiddleware())
	{
		books := admin.Group("/books")
		{
			books.POST("", bookController.CreateBook)
			books.PUT("/:id", bookController.UpdateBook)
			books.DELETE("/:id", bookController.DeleteBook)
			books.PUT("/:id/stock", bookController.UpdateStock)
			books.POST("/:id/image", bookController.UploadBookImage)
		}

		categories := admin.Group("/categories")
		{
			categories.POST("", categoryController.CreateCategory)
			categories.PUT("/:id", categoryController.UpdateCategory)
			categories.DELETE("/:id", categoryController.DeleteCategory)
		}

		users := admin.Group("/users")
		{
			users.GET("", userController.ListCustomers)
			users.PUT("/:id/lock", userController.LockUser)
			users.PUT("/:id/unlock", userController.UnlockUser)
			users.PUT("/:id/active", userController.SetUserActive)
		}

		orders := admin.Group("/orders")
		{
			orders.GET("", orderController.ListOrders)
			orders.GET("/stats", orderController.GetOrderStats)
			orders.GET("/:id", orderController.GetOrder)
			orders.PUT("/:id/status", orderController.UpdateOrderStatus)
			orders.POST("/:id/confirm-payment", orderController.ConfirmCODPayment)
		}

		reports := admin.Group("/reports")
		{
			reports.GET("/quarter", reportController.GetQuarterReport)
			reports.GET("/bestsellers", reportController.GetBestsellers)
			reports.GET("/new-customers", reportController.GetNewCustomers)
			reports.GET("/dashboard", reportController.GetDashboardStats)
			reports.GET("/export/excel", reportController.ExportExcel)
			reports.GET("/export/pdf", reportController.ExportQuarterPDF)
		}
	}
}
