package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentStatus tracks one payment attempt through the gateway
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusVerified  PaymentStatus = "VERIFIED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusExpired   PaymentStatus = "EXPIRED"
)

// PaymentAuthority maps a gateway authority token to the wallet it should
// credit. Consumed guards against crediting the same token twice: it flips
// to true exactly once, atomically, when the first successful verify lands.
type PaymentAuthority struct {
	gorm.Model
	Authority   string        `gorm:"type:varchar(100);uniqueIndex;not null" json:"authority"`
	WalletID    uint          `gorm:"not null;index" json:"walletId"`
	UserID      uint          `gorm:"not null;index" json:"userId"`
	Amount      uint          `gorm:"not null" json:"amount"`
	Description string        `gorm:"type:text" json:"description"`
	Status      PaymentStatus `gorm:"type:varchar(20);default:'PENDING'" json:"status"`
	Consumed    bool          `gorm:"default:false" json:"consumed"`

	// Filled in after a successful verify so replayed callbacks can
	// answer with the original result.
	RefID      string `gorm:"type:varchar(100)" json:"refId"`
	CardPan    string `gorm:"type:varchar(30)" json:"cardPan"`
	PaymentURL string `gorm:"type:text" json:"paymentUrl"`

	VerifiedAt *time.Time `json:"verifiedAt"`
	IsDeleted  bool       `gorm:"default:false" json:"isDeleted"`

	Wallet Wallet `gorm:"foreignKey:WalletID" json:"-"`
}

func (PaymentAuthority) TableName() string {
	return "payment_authorities"
}
