package models

import (
	"time"

	"gorm.io/gorm"
)

// Referral records one successful referral and its bonus payout. The payout
// goes through the wallet ledger with this row's code as reference, so a
// replayed signup flow cannot credit the referrer twice.
type Referral struct {
	gorm.Model
	ReferrerID     uint      `json:"referrer_id" gorm:"index;not null"`
	ReferredUserID uint      `json:"referred_user_id" gorm:"uniqueIndex;not null"`
	Code           string    `json:"code" gorm:"type:varchar(50);not null"`
	BonusAmount    uint      `json:"bonus_amount" gorm:"default:0"`
	RewardedAt     time.Time `json:"rewarded_at"`
	IsDeleted      bool      `gorm:"default:false"`
}
