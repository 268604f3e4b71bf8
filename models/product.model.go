package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a shop item purchasable from wallet balance (books, kits, ...)
type Product struct {
	gorm.Model
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	Price       uint   `json:"price" gorm:"not null;default:0"` // smallest currency unit (IRR)
	Stock       int    `json:"stock" gorm:"default:0"`
	Status      string `json:"status" gorm:"default:'ACTIVE'"` // ACTIVE, INACTIVE
	ImageURL    string `json:"image_url"`
	IsDeleted   bool   `gorm:"default:false"`
}

// Order records a wallet-paid product purchase. OrderCode doubles as the
// ledger idempotency reference so a retried purchase cannot debit twice.
type Order struct {
	gorm.Model
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	ProductID uint      `json:"product_id" gorm:"index;not null"`
	OrderCode string    `json:"order_code" gorm:"uniqueIndex;not null"`
	Quantity  int       `json:"quantity" gorm:"default:1"`
	Amount    uint      `json:"amount" gorm:"not null"`
	Status    string    `json:"status" gorm:"default:'PAID'"` // PAID, CANCELLED, REFUNDED
	OrderedAt time.Time `json:"ordered_at"`
	IsDeleted bool      `gorm:"default:false"`

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
