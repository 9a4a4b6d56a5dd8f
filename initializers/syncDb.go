package initializers

import (
	"log"

	"github.com/Kariqs/sweetshop-api/models"
)

func SyncDatabase() {
	DB.AutoMigrate(&models.User{}, &models.Sweet{}, &models.Cart{}, &models.CartItem{}, &models.Order{})
	log.Println("Database synced successfully.")
}
