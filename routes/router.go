package routes

import (
	"github.com/gin-gonic/gin"

	"resto-pos/controllers"
	"resto-pos/middlewares"
)

func RegisterRoutes(r *gin.Engine) {

	r.POST("/login", controllers.Login)

	// Public catalog reads for the ordering terminals
	r.GET("/public/products", controllers.GetProducts)
	r.GET("/public/products/:id", controllers.GetProductByID)

	// Orders
	orders := r.Group("/orders")
	orders.Use(middlewares.AuthMiddleware())
	{
		orders.GET("/", controllers.GetOrders)
		orders.POST("/accept", controllers.AcceptOrder)
		orders.POST("/preview-discount", controllers.PreviewDiscount)
		orders.POST("/checkout", controllers.CheckoutOrder)

		orders.POST("/pending", controllers.SubmitPendingOrder)
		orders.GET("/pending", controllers.GetPendingOrders)
		orders.DELETE("/pending/:handle", controllers.RemovePendingOrder)
		orders.PATCH("/pending/:handle", controllers.RemovePendingOrderItem)

		cancel := orders.Group("")
		cancel.Use(middlewares.RoleMiddleware(middlewares.RoleAdmin, middlewares.RoleManager, middlewares.RoleCashier))
		{
			cancel.DELETE("/cancel-order", controllers.CancelOrderByInvoice)
			cancel.DELETE("/:orderCode", controllers.CancelOrder)
			cancel.DELETE("/:orderCode/items/:productCode", controllers.RemoveOrderLine)
		}
	}

	// Stock ledger
	stock := r.Group("/stock")
	stock.Use(middlewares.AuthMiddleware())
	{
		stock.GET("/:productCode", controllers.GetStockBalance)
		stock.GET("/:productCode/history", middlewares.RoleMiddleware(middlewares.RoleAdmin, middlewares.RoleManager, middlewares.RoleCashier), controllers.GetStockHistory)
	}

	// Dashboard (admin + manager)
	dashboard := r.Group("/dashboard")
	dashboard.Use(middlewares.AuthMiddleware(), middlewares.RoleMiddleware(middlewares.RoleAdmin, middlewares.RoleManager))
	{
		dashboard.GET("/", controllers.GetDashboard)
	}
}
