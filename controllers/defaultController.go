package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func GetHome(ctx *gin.Context) {
	message := `Welcome to the Sweet Shop API 🍬.

The following are the endpoints for this API:

AUTH
- POST "/auth/register" - Create user account
- POST "/auth/login" - Access user account

SWEETS
- GET "/sweets" - Get the full catalog
- GET "/sweets/search" - Search by name, category and price range
- GET "/sweets/{id}" - Get sweet by ID
- POST "/sweets" - Create a new sweet
- PUT "/sweets/{id}" - Update a sweet
- DELETE "/sweets/{id}" - Delete a sweet (admin)
- POST "/sweets/{id}/purchase" - Purchase a quantity
- POST "/sweets/{id}/restock" - Restock a quantity (admin)
- POST "/sweets/{id}/image" - Upload a sweet image (admin)

CART
- GET "/cart" - Get your cart
- POST "/cart/add" - Add an item to your cart
- PUT "/cart/update/{sweetId}" - Update an item's quantity
- DELETE "/cart/remove/{sweetId}" - Remove an item
- DELETE "/cart/clear" - Empty your cart
- POST "/cart/checkout" - Check out your cart

ORDERS
- GET "/orders" - Get your order history`

	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}
