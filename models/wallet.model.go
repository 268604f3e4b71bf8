package models

import (
	"gorm.io/gorm"
)

// WalletStatus defines the lifecycle state of a wallet
type WalletStatus string

const (
	WalletStatusActive    WalletStatus = "ACTIVE"
	WalletStatusSuspended WalletStatus = "SUSPENDED"
	WalletStatusClosed    WalletStatus = "CLOSED"
)

// Wallet holds a user's spendable balance in the smallest currency unit (IRR)
type Wallet struct {
	gorm.Model
	UserID    uint         `gorm:"uniqueIndex;not null" json:"userId"`
	Balance   uint         `gorm:"not null;default:0" json:"balance"`
	Currency  string       `gorm:"type:varchar(10);default:'IRR'" json:"currency"`
	Status    WalletStatus `gorm:"type:varchar(20);default:'ACTIVE'" json:"status"`
	IsDeleted bool         `gorm:"default:false" json:"isDeleted"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Wallet) TableName() string {
	return "wallets"
}
