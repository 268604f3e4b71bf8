package models

import (
	"time"

	"gorm.io/gorm"
)

// TransactionType defines the type of wallet transaction
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypePurchase   TransactionType = "PURCHASE"
	TransactionTypeRefund     TransactionType = "REFUND"
	TransactionTypeBonus      TransactionType = "BONUS"
	TransactionTypePenalty    TransactionType = "PENALTY"
)

// TransactionStatus defines the status of a transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

// WalletTransaction is one append-only ledger entry for a wallet.
// BalanceAfter is a snapshot taken atomically with the balance update;
// completed rows are never mutated afterwards.
type WalletTransaction struct {
	gorm.Model
	WalletID        uint              `gorm:"not null;index;uniqueIndex:idx_wallet_reference" json:"walletId"`
	TransactionType TransactionType   `gorm:"type:varchar(50);not null" json:"transactionType"`
	Amount          uint              `gorm:"not null" json:"amount"`
	BalanceBefore   uint              `gorm:"not null" json:"balanceBefore"`
	BalanceAfter    uint              `gorm:"not null" json:"balanceAfter"`
	Status          TransactionStatus `gorm:"type:varchar(20);default:'COMPLETED'" json:"status"`
	Description     string            `gorm:"type:text" json:"description"`

	// ReferenceID is the idempotency key tying this entry to an external
	// event (payment gateway authority, order code). Nullable so rows
	// without one do not collide on the unique index.
	ReferenceID *string `gorm:"type:varchar(100);uniqueIndex:idx_wallet_reference" json:"referenceId"`

	// Reference details (for purchases)
	ReferenceType string `gorm:"type:varchar(50)" json:"referenceType"` // course, product, group_enrollment
	ReferenceName string `gorm:"type:varchar(255)" json:"referenceName"`

	// Admin details (for manual credits/debits)
	AdminID uint   `gorm:"default:0" json:"adminId"`
	Reason  string `gorm:"type:text" json:"reason"`

	TransactionDate time.Time `gorm:"not null" json:"transactionDate"`
	IsDeleted       bool      `gorm:"default:false" json:"isDeleted"`

	Wallet Wallet `gorm:"foreignKey:WalletID" json:"-"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
