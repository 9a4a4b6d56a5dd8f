package routes

import (
	"github.com/Kariqs/sweetshop-api/controllers"
	"github.com/Kariqs/sweetshop-api/middlewares"
	"github.com/gin-gonic/gin"
)

func SweetRoutes(server *gin.Engine) {
	sweets := server.Group("/sweets", middlewares.RequireAuth())
	{
		sweets.GET("", controllers.GetSweets)
		sweets.GET("/search", controllers.SearchSweets)
		sweets.GET("/:id", controllers.GetSweet)
		sweets.POST("", controllers.CreateSweet)
		sweets.PUT("/:id", controllers.UpdateSweet)
		sweets.DELETE("/:id", middlewares.RequireAdmin(), controllers.DeleteSweet)
		sweets.POST("/:id/purchase", controllers.PurchaseSweet)
		sweets.POST("/:id/restock", middlewares.RequireAdmin(), controllers.RestockSweet)
		sweets.POST("/:id/image", middlewares.RequireAdmin(), controllers.UploadSweetImage)
	}
}
