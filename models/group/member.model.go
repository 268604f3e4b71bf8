package group

import (
	"time"

	"gorm.io/gorm"
)

// MemberStatus defines the membership state inside a group
type MemberStatus string

const (
	MemberStatusActive    MemberStatus = "ACTIVE"
	MemberStatusPending   MemberStatus = "PENDING"
	MemberStatusRemoved   MemberStatus = "REMOVED"
	MemberStatusSuspended MemberStatus = "SUSPENDED"
)

// MemberRole defines what a member can do inside a group
type MemberRole string

const (
	MemberRoleMember   MemberRole = "MEMBER"
	MemberRoleCoLeader MemberRole = "CO_LEADER"
	MemberRoleAdmin    MemberRole = "ADMIN"
)

// GroupMember is the association row between a user and a group, owning the
// per-relationship metadata (role, status, counters). Removal is a status
// transition, never a hard delete.
type GroupMember struct {
	gorm.Model
	GroupID uint         `json:"group_id" gorm:"index:idx_group_user;not null"`
	UserID  uint         `json:"user_id" gorm:"index:idx_group_user;not null"`
	Role    MemberRole   `json:"role" gorm:"type:varchar(20);default:'MEMBER'"`
	Status  MemberStatus `json:"status" gorm:"type:varchar(20);default:'ACTIVE'"`

	JoinedAt time.Time `json:"joined_at"`

	EnrollmentsCount int  `json:"enrollments_count" gorm:"default:0"`
	CompletedCourses int  `json:"completed_courses" gorm:"default:0"`
	TotalSavings     uint `json:"total_savings" gorm:"default:0"`

	IsDeleted bool `gorm:"default:false"`
}
