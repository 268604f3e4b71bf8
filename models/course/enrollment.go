package course

import (
	"time"

	"gorm.io/gorm"
)

// EnrollmentStatus defines the lifecycle of an enrollment. Enrollments are
// never hard-deleted; they only transition between statuses.
type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusPending   EnrollmentStatus = "PENDING"
	EnrollmentStatusCompleted EnrollmentStatus = "COMPLETED"
	EnrollmentStatusSuspended EnrollmentStatus = "SUSPENDED"
	EnrollmentStatusCancelled EnrollmentStatus = "CANCELLED"
)

// Enrollment tracks a user's enrollment in a course with progress and the
// pricing that was applied when the seat was taken.
type Enrollment struct {
	gorm.Model
	UserID   uint             `json:"user_id" gorm:"uniqueIndex:idx_user_course;not null"`
	CourseID uint             `json:"course_id" gorm:"uniqueIndex:idx_user_course;not null"`
	GroupID  uint             `json:"group_id" gorm:"index;default:0"` // 0 for individual enrollments
	Status   EnrollmentStatus `json:"status" gorm:"type:varchar(20);default:'ACTIVE'"`

	EnrolledAt time.Time `json:"enrolled_at"`

	// Payment snapshot taken at enrollment time
	OriginalPrice      uint   `json:"original_price" gorm:"default:0"`
	DiscountPercentage int    `json:"discount_percentage" gorm:"default:0"`
	AmountPaid         uint   `json:"amount_paid" gorm:"default:0"`
	PaymentStatus      string `json:"payment_status" gorm:"type:varchar(20);default:'PAID'"` // PAID, DEFERRED

	Progress    float64    `json:"progress" gorm:"default:0"` // completion percentage (0-100)
	CompletedAt *time.Time `json:"completed_at"`

	CertificateID uint `json:"certificate_id" gorm:"default:0"`
	IsDeleted     bool `gorm:"default:false"`

	Course Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}
