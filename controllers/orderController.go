package controllers

import (
	"log"
	"net/http"

	"github.com/Kariqs/sweetshop-api/initializers"
	"github.com/Kariqs/sweetshop-api/models"
	"github.com/gin-gonic/gin"
)

// GetOrders returns the caller's order history, newest first.
func GetOrders(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	var orders []models.Order
	err := initializers.DB.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		log.Println("Database error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	ctx.JSON(http.StatusOK, orders)
}
