package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Order is the record a successful checkout leaves behind. Items holds a JSON
// snapshot of the checked-out lines, priced at checkout time.
type Order struct {
	gorm.Model
	UserID uint           `json:"userId"`
	Total  float64        `json:"total"`
	Items  datatypes.JSON `json:"items"`
}

// OrderLine is the shape of one element of Order.Items.
type OrderLine struct {
	SweetID  uint    `json:"sweetId"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}
