package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/tranqv/bookstore/config"
	"github.com/tranqv/bookstore/controllers"
	"github.com/tranqv/bookstore/middleware"
	"github.com/tranqv/bookstore/utils"
	"gorm.io/gorm"
)

func initUserRoutes(api *gin.RouterGroup, db *gorm.DB, cfg *config.Config, mailer *utils.Mailer) {
	authController := controllers.NewAuthController(db, cfg, mailer)
	bookController := controllers.NewBookController(db)
	cartController := controllers.NewCartController(db)
	orderController := controllers.NewOrderController(db, cfg, mailer)
	addressController := controllers.NewAddressController(db)
	reviewController := controllers.NewReviewController(db)
	invoiceController := controllers.NewInvoiceController(db)

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/forgot-password", authController.ForgotPassword)
		auth.POST("/reset-password", authController.ResetPassword)
	}

	books := api.Group("/books")
	{
		books.GET("", bookController.ListBooks)
		books.GET("/search", bookController.SearchBooks)
		books.GET("/:id", bookController.GetBook)
		books.GET("/:id/reviews", reviewController.ListBookReviews)
	}
	api.GET("/categories", bookController.ListCategories)
	api.GET("/categories/:id/books", bookController.ListBooksByCategory)

	// Authenticated routes
	user := api.Group("")
	user.Use(middleware.AuthMiddleware(db, cfg.JWTSecret))
	{
		user.GET("/me", authController.GetMe)
		user.PUT("/me", authController.UpdateProfile)
		user.PUT("/me/password", authController.ChangePassword)

		cart := user.Group("/cart")
		{
			cart.GET("", cartController.GetCart)
			cart.POST("/items", cartController.AddToCart)
			cart.PUT("/items/:bookId", cartController.UpdateCartItem)
			cart.DELETE("/items/:bookId", cartController.RemoveFromCart)
			cart.DELETE("", cartController.ClearCart)
		}

		orders := user.Group("/orders")
		{
			orders.POST("", orderController.CreateOrder)
			orders.GET("", orderController.ListMyOrders)
			orders.GET("/:id", orderController.GetOrderDetails)
			orders.POST("/:id/payment", orderController.ProcessPayment)
			orders.POST("/:id/cancel", orderController.CancelOrder)
			orders.GET("/:id/invoice", invoiceController.GetInvoice)
			orders.GET("/:id/invoice/pdf", invoiceController.DownloadInvoicePDF)
		}

		addresses := user.Group("/addresses")
		{
			addresses.GET("", addressController.ListAddresses)
			addresses.POST("", addressController.CreateAddress)
			addresses.PUT("/:id", addressController.UpdateAddress)
			addresses.DELETE("/:id", addressController.DeleteAddress)
			addresses.PUT("/:id/default", addressController.SetDefaultAddress)
		}

		reviews := user.Group("/reviews")
		{
			reviews.POST("", reviewController.SubmitReview)
			reviews.DELETE("/:id", reviewController.DeleteReview)
		}
	}
}
