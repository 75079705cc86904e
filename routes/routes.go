package routes

import (
	"github.com/gin-gonic/gin"

	"shopwise/controllers"
	"shopwise/middleware"
)

func RegisterRoutes(r *gin.Engine) {

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", controllers.Register)
			auth.POST("/login", controllers.Login)
			auth.POST("/logout", controllers.Logout)
			auth.GET("/me", middleware.AuthMiddleware(), controllers.Me)
		}

		products := api.Group("/products")
		{
			products.GET("", controllers.GetProducts)
			products.GET("/categories", controllers.GetCategories)
			products.GET("/featured", controllers.GetFeaturedProducts)
			products.GET("/:id", controllers.GetProductByID)
			products.POST("/:id/reviews", middleware.AuthMiddleware(), controllers.AddReview)
		}

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			cart := protected.Group("/cart")
			{
				cart.GET("", controllers.GetCart)
				cart.POST("", controllers.AddToCart)
				cart.PUT("/update/:itemId", controllers.UpdateCartItem)
				cart.DELETE("/remove/:itemId", controllers.RemoveCartItem)
				cart.DELETE("/clear", controllers.ClearCart)
				cart.POST("/apply-discount", controllers.ApplyDiscount)
				cart.DELETE("/remove-discount/:code", controllers.RemoveDiscount)
			}

			orders := protected.Group("/orders")
			{
				orders.POST("", controllers.CreateOrder)
				orders.GET("", controllers.GetOrders)
				orders.GET("/:id", controllers.GetOrderByID)
				orders.PUT("/:id/cancel", controllers.CancelOrder)
				orders.POST("/:id/return", controllers.ReturnOrder)
			}

			users := protected.Group("/users")
			{
				users.GET("/profile", controllers.GetProfile)
				users.PUT("/profile", controllers.UpdateProfile)
				users.POST("/addresses", controllers.AddAddress)
				users.PUT("/addresses/:addressId", controllers.UpdateAddress)
				users.DELETE("/addresses/:addressId", controllers.DeleteAddress)
				users.GET("/order-history", controllers.GetOrderHistory)
				users.GET("/reward-points", controllers.GetRewardPoints)
				users.GET("/:id/buy-again", middleware.AdminOrOwnerMiddleware(), controllers.GetBuyAgain)
			}

			admin := protected.Group("/admin")
			admin.Use(middleware.AdminMiddleware())
			{
				admin.GET("/dashboard", controllers.GetDashboard)
				admin.GET("/users", controllers.GetUsersAdmin)
				admin.PUT("/users/:id/status", controllers.UpdateUserStatus)
				admin.GET("/orders", controllers.GetOrdersAdmin)
				admin.PUT("/orders/:id/status", controllers.UpdateOrderStatusAdmin)
				admin.GET("/products", controllers.GetProductsAdmin)
				admin.POST("/products", controllers.CreateProduct)
				admin.PUT("/products/:id", controllers.UpdateProduct)
				admin.DELETE("/products/:id", controllers.DeleteProduct)
			}

			analytics := protected.Group("/analytics")
			analytics.Use(middleware.AdminMiddleware())
			{
				analytics.GET("/dashboard", controllers.GetAnalyticsDashboard)
				analytics.GET("/revenue", controllers.GetRevenueAnalytics)
				analytics.GET("/products", controllers.GetProductAnalytics)
			}
		}
	}
}
