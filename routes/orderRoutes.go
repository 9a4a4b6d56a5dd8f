package routes

import (
	"github.com/Kariqs/sweetshop-api/controllers"
	"github.com/Kariqs/sweetshop-api/middlewares"
	"github.com/gin-gonic/gin"
)

func OrderRoutes(server *gin.Engine) {
	server.GET("/orders", middlewares.RequireAuth(), controllers.GetOrders)
}
