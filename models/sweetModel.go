package models

import (
	"errors"

	"gorm.io/gorm"
)

type Sweet struct {
	gorm.Model
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Description string  `json:"description"`
	ImageUrl    string  `json:"imageUrl"`
}

// UpdateSweetInput carries a partial update; nil fields are left untouched.
type UpdateSweetInput struct {
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	Description *string  `json:"description"`
	ImageUrl    *string  `json:"imageUrl"`
}

// ValidateSweet applies the rules shared by create and update, reporting the
// first failing field.
func ValidateSweet(sweet Sweet) error {
	if sweet.Name == "" {
		return errors.New("Sweet name is required")
	}
	if sweet.Category == "" {
		return errors.New("Category is required")
	}
	if sweet.Price < 0 {
		return errors.New("Price must be a positive number")
	}
	if sweet.Quantity < 0 {
		return errors.New("Quantity must be a non-negative integer")
	}
	return nil
}
