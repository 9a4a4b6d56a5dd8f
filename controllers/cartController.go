package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/Kariqs/sweetshop-api/initializers"
	"github.com/Kariqs/sweetshop-api/models"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	msgCartNotFound  = "Cart not found"
	msgCartEmpty     = "Cart is empty"
	msgSweetNotFound = "Sweet not found"
)

// loadCart fetches a user's cart with every line joined against the current
// catalog. Lines whose sweet was deleted come back with a nil Sweet.
func loadCart(userID uint) (models.Cart, error) {
	var cart models.Cart
	err := initializers.DB.
		Where("user_id = ?", userID).
		Preload("Items.Sweet").
		First(&cart).Error
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cart, err
}

// getOrCreateCart returns the user's cart, lazily creating an empty one on
// the first cart-touching operation.
func getOrCreateCart(userID uint) (models.Cart, error) {
	cart, err := loadCart(userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return cart, err
	}

	cart = models.Cart{UserID: userID, Items: []models.CartItem{}}
	if err := initializers.DB.Create(&cart).Error; err != nil {
		return cart, err
	}
	return cart, nil
}

func respondWithCart(ctx *gin.Context, userID uint) {
	cart, err := getOrCreateCart(userID)
	if err != nil {
		log.Println("Cart fetch error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to retrieve cart")
		return
	}
	ctx.JSON(http.StatusOK, cart)
}

// GetCart returns the caller's cart, creating an empty one if none exists.
func GetCart(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	respondWithCart(ctx, userID)
}

type addToCartInput struct {
	SweetID  uint `json:"sweetId"`
	Quantity int  `json:"quantity"`
}

// AddToCart adds a sweet to the caller's cart. Adding a sweet already present
// merges by summing quantities; the merged quantity is validated against
// current stock before anything is written, so a rejected add leaves the cart
// untouched.
func AddToCart(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	var input addToCartInput
	if err := ctx.ShouldBindJSON(&input); err != nil || input.SweetID == 0 || input.Quantity < 1 {
		sendErrorResponse(ctx, http.StatusBadRequest, "Sweet ID and valid quantity are required")
		return
	}

	var sweet models.Sweet
	if err := initializers.DB.First(&sweet, input.SweetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, msgSweetNotFound)
		} else {
			log.Println("Database error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to add item to cart")
		}
		return
	}

	cart, err := getOrCreateCart(userID)
	if err != nil {
		log.Println("Cart fetch error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to add item to cart")
		return
	}

	newQuantity := input.Quantity
	var existing models.CartItem
	err = initializers.DB.
		Where("cart_id = ? AND sweet_id = ?", cart.ID, input.SweetID).
		First(&existing).Error
	if err == nil {
		newQuantity = existing.Quantity + input.Quantity
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Println("Database error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to add item to cart")
		return
	}

	if newQuantity > sweet.Quantity {
		sendErrorResponse(ctx, http.StatusBadRequest,
			fmt.Sprintf("Only %d items available in stock", sweet.Quantity))
		return
	}

	// Upsert keyed on (cart_id, sweet_id); the unique index guarantees one
	// line per sweet even when two adds race.
	item := models.CartItem{CartID: cart.ID, SweetID: input.SweetID, Quantity: newQuantity}
	err = initializers.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cart_id"}, {Name: "sweet_id"}},
		DoUpdates: clause.Assignments(map[string]any{"quantity": newQuantity}),
	}).Create(&item).Error
	if err != nil {
		log.Println("Cart item upsert error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to add item to cart")
		return
	}

	respondWithCart(ctx, userID)
}

// UpdateCartItem sets a line's quantity exactly (replace, not merge).
func UpdateCartItem(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	sweetID, err := strconv.Atoi(ctx.Param("sweetId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid sweet ID")
		return
	}

	var input quantityInput
	if err := ctx.ShouldBindJSON(&input); err != nil || input.Quantity < 1 {
		sendErrorResponse(ctx, http.StatusBadRequest, "Valid quantity is required")
		return
	}

	var cart models.Cart
	if err := initializers.DB.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, msgCartNotFound)
		} else {
			log.Println("Database error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update cart item")
		}
		return
	}

	var sweet models.Sweet
	if err := initializers.DB.First(&sweet, sweetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, msgSweetNotFound)
		} else {
			log.Println("Database error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update cart item")
		}
		return
	}

	if input.Quantity > sweet.Quantity {
		sendErrorResponse(ctx, http.StatusBadRequest,
			fmt.Sprintf("Only %d items available in stock", sweet.Quantity))
		return
	}

	result := initializers.DB.Model(&models.CartItem{}).
		Where("cart_id = ? AND sweet_id = ?", cart.ID, sweetID).
		Update("quantity", input.Quantity)
	if result.Error != nil {
		log.Println("Cart item update error:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update cart item")
		return
	}

	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusNotFound, "Item not found in cart")
		return
	}

	respondWithCart(ctx, userID)
}

// RemoveFromCart deletes a line if present. A missing line (or a missing
// cart) is a no-op, not an error; the caller just gets the current state.
func RemoveFromCart(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	sweetID, err := strconv.Atoi(ctx.Param("sweetId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid sweet ID")
		return
	}

	cart, err := getOrCreateCart(userID)
	if err != nil {
		log.Println("Cart fetch error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to remove item from cart")
		return
	}

	err = initializers.DB.
		Where("cart_id = ? AND sweet_id = ?", cart.ID, sweetID).
		Delete(&models.CartItem{}).Error
	if err != nil {
		log.Println("Cart item delete error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to remove item from cart")
		return
	}

	respondWithCart(ctx, userID)
}

// ClearCart empties all lines. The cart document itself stays.
func ClearCart(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	var cart models.Cart
	if err := initializers.DB.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, msgCartNotFound)
		} else {
			log.Println("Database error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to clear cart")
		}
		return
	}

	err := initializers.DB.
		Where("cart_id = ?", cart.ID).
		Delete(&models.CartItem{}).Error
	if err != nil {
		log.Println("Cart clear error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to clear cart")
		return
	}

	respondWithCart(ctx, userID)
}

// Checkout converts the cart into stock decrements and an order record. The
// whole thing runs in one transaction: a validation pass over every line
// first, then the conditional decrements, the order snapshot and the line
// clearing. Any failure rolls everything back, so stock is never partially
// decremented and the cart is never left half-emptied.
func Checkout(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	cart, err := loadCart(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusBadRequest, msgCartEmpty)
		} else {
			log.Println("Cart fetch error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Checkout failed")
		}
		return
	}
	if len(cart.Items) == 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, msgCartEmpty)
		return
	}

	tx := initializers.DB.Begin()
	if tx.Error != nil {
		log.Println("Transaction begin error:", tx.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Checkout failed")
		return
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	// Validation pass: every line is checked before any stock is touched,
	// so the first violation aborts the whole checkout with no side effects.
	for _, item := range cart.Items {
		var sweet models.Sweet
		if err := tx.First(&sweet, item.SweetID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				sendErrorResponse(ctx, http.StatusNotFound,
					fmt.Sprintf("Sweet %q no longer exists", lineName(item)))
			} else {
				log.Println("Database error:", err)
				sendErrorResponse(ctx, http.StatusInternalServerError, "Checkout failed")
			}
			return
		}

		if sweet.Quantity < item.Quantity {
			tx.Rollback()
			sendErrorResponse(ctx, http.StatusBadRequest,
				fmt.Sprintf("Not enough stock for %q. Only %d available.", sweet.Name, sweet.Quantity))
			return
		}
	}

	// Mutation pass: the decrements stay conditional, so a purchase racing
	// in between the two passes aborts the transaction instead of
	// overselling.
	var total float64
	lines := make([]models.OrderLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		sweet, err := adjustSweetQuantity(tx, item.SweetID, -item.Quantity)
		if err != nil {
			tx.Rollback()
			switch {
			case errors.Is(err, ErrSweetNotFound):
				sendErrorResponse(ctx, http.StatusNotFound,
					fmt.Sprintf("Sweet %q no longer exists", lineName(item)))
			case errors.Is(err, ErrInsufficientStock):
				sendErrorResponse(ctx, http.StatusBadRequest,
					fmt.Sprintf("Not enough stock for %q. Only %d available.", sweet.Name, sweet.Quantity))
			default:
				log.Println("Checkout decrement error:", err)
				sendErrorResponse(ctx, http.StatusInternalServerError, "Checkout failed")
			}
			return
		}

		total += sweet.Price * float64(item.Quantity)
		lines = append(lines, models.OrderLine{
			SweetID:  item.SweetID,
			Name:     sweet.Name,
			Price:    sweet.Price,
			Quantity: item.Quantity,
		})
	}

	snapshot, err := json.Marshal(lines)
	if err != nil {
		tx.Rollback()
		log.Println("Order snapshot error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Checkout failed")
		return
	}

	order := models.Order{UserID: userID, Total: total, Items: datatypes.JSON(snapshot)}
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		log.Println("Order creation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Checkout failed")
		return
	}

	if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		tx.Rollback()
		log.Println("Cart clear error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Checkout failed")
		return
	}

	if err := tx.Commit().Error; err != nil {
		log.Println("Transaction commit error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Checkout failed")
		return
	}

	cart.Items = []models.CartItem{}
	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"message": "Checkout successful",
		"orderId": order.ID,
		"cart":    cart,
	})
}

// lineName names a cart line for error messages, falling back to the sweet id
// when the reference no longer resolves.
func lineName(item models.CartItem) string {
	if item.Sweet != nil {
		return item.Sweet.Name
	}
	return fmt.Sprintf("sweet #%d", item.SweetID)
}
