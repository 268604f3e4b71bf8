package course

import "gorm.io/gorm"

// Course represents a purchasable learning course or workshop
type Course struct {
	gorm.Model
	Title       string `json:"title"`
	Description string `json:"description"`
	Instructor  string `json:"instructor"`
	Kind        string `json:"kind" gorm:"type:varchar(20);default:'COURSE'"` // COURSE, WORKSHOP
	Duration    int64  `json:"duration" gorm:"default:0"`                     // duration in hours
	Price       uint   `json:"price" gorm:"not null;default:0"`               // smallest currency unit (IRR)
	Status      string `json:"status" gorm:"default:'DRAFT'"`                 // DRAFT, ACTIVE, INACTIVE

	// Capacity. MaxStudents == 0 means unlimited. TotalStudents is an
	// incrementing counter claimed with a conditional update at enroll
	// time, so two racing enrollments cannot overbook the last seat.
	MaxStudents   int `json:"max_students" gorm:"default:0"`
	TotalStudents int `json:"total_students" gorm:"default:0"`

	ThumbnailURL string `json:"thumbnail_url"`
	IsPublished  bool   `json:"is_published" gorm:"default:false"`
	IsDeleted    bool   `gorm:"default:false"`
}
