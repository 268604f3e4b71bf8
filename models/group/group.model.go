package group

import (
	"gorm.io/gorm"
)

// GroupType separates self-organized groups from corporate accounts
type GroupType string

const (
	GroupTypeRegular   GroupType = "REGULAR"
	GroupTypeCorporate GroupType = "CORPORATE"
)

// GroupStatus defines the lifecycle state of a group
type GroupStatus string

const (
	GroupStatusActive    GroupStatus = "ACTIVE"
	GroupStatusSuspended GroupStatus = "SUSPENDED"
	GroupStatusArchived  GroupStatus = "ARCHIVED"
)

// Group is a set of users enrolling together for tiered discounts.
// The discount fields are a derived cache: the authoritative value is always
// recomputed from the current active member count.
type Group struct {
	gorm.Model
	Name       string      `json:"name" gorm:"not null"`
	Type       GroupType   `json:"type" gorm:"type:varchar(20);default:'REGULAR'"`
	LeaderID   uint        `json:"leader_id" gorm:"index;not null"`
	MaxMembers int         `json:"max_members" gorm:"default:50"`
	Status     GroupStatus `json:"status" gorm:"type:varchar(20);default:'ACTIVE'"`

	// Derived discount cache, refreshed on every membership change
	DiscountPercentage int    `json:"discount_percentage" gorm:"default:0"`
	DiscountTier       string `json:"discount_tier" gorm:"type:varchar(30);default:'None'"`

	// Aggregate counters, updated best-effort after successful enrollments
	TotalEnrollments int  `json:"total_enrollments" gorm:"default:0"`
	TotalSavings     uint `json:"total_savings" gorm:"default:0"`

	IsDeleted bool `gorm:"default:false"`
}
