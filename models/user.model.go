package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	ProfileImage        string     `gorm:"default:''"`
	Name                string     `gorm:"default:''"`
	Email               string     `gorm:"unique;not null"`
	Mobile              string     `gorm:"default:''"`
	Role                string     `gorm:"default:'USER'"` // USER, MANAGER, ADMIN
	Password            string     `gorm:"not null"`
	NationalCode        string     `gorm:"default:''"`
	Address             string     `gorm:"default:''"`
	City                string     `gorm:"default:''"`
	IsMobileVerified    bool       `gorm:"default:false"`
	IsEmailVerified     bool       `gorm:"default:false"`
	ReferralCode        string     `gorm:"uniqueIndex;default:null"` // code this user shares
	ReferredBy          uint       `gorm:"default:0"`                // user id of the referrer, 0 if none
	LastLogin           time.Time  `gorm:"default:NULL"`
	FailedLoginAttempts int        `gorm:"default:0"`
	LastFailedLogin     *time.Time `json:"last_failed_login"`
	IsBlocked           bool       `gorm:"default:false"`
	BlockedUntil        *time.Time `json:"blocked_until"`
	IsDeleted           bool       `gorm:"default:false"`
}
