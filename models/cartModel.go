package models

import (
	"time"

	"gorm.io/gorm"
)

// CartItem is a non-owning reference into the catalog: Sweet is resolved at
// read time, never snapshotted, so prices and stock always reflect the
// present. No DeletedAt here - the composite unique index requires removed
// lines to be gone for real so the sweet can be re-added.
type CartItem struct {
	ID        uint      `json:"-" gorm:"primarykey"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	CartID    uint      `json:"-" gorm:"uniqueIndex:idx_cart_sweet"`
	SweetID   uint      `json:"sweetId" gorm:"uniqueIndex:idx_cart_sweet"`
	Quantity  int       `json:"quantity"`
	Sweet     *Sweet    `json:"sweet" gorm:"foreignKey:SweetID"`
}

type Cart struct {
	gorm.Model
	UserID uint       `json:"userId" gorm:"uniqueIndex"`
	Items  []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}
