package routes

import (
	"github.com/Kariqs/sweetshop-api/controllers"
	"github.com/Kariqs/sweetshop-api/middlewares"
	"github.com/gin-gonic/gin"
)

func CartRoutes(server *gin.Engine) {
	cart := server.Group("/cart", middlewares.RequireAuth())
	{
		cart.GET("", controllers.GetCart)
		cart.POST("/add", controllers.AddToCart)
		cart.PUT("/update/:sweetId", controllers.UpdateCartItem)
		cart.DELETE("/remove/:sweetId", controllers.RemoveFromCart)
		cart.DELETE("/clear", controllers.ClearCart)
		cart.POST("/checkout", controllers.Checkout)
	}
}
