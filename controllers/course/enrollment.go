package controllers

import (
	"errors"
	"log"
	"time"

	"irac/database"
	"irac/ledger"
	"irac/middleware"
	"irac/models"
	courseModels "irac/models/course"
	groupModels "irac/models/group"
	"irac/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// claimSeat takes one seat with a conditional update so the capacity check
// happens at write time, not just at validation time
func claimSeat(db *gorm.DB, courseID uint) (bool, error) {
	res := db.Model(&courseModels.Course{}).
		Where("id = ? AND is_deleted = false AND (max_students = 0 OR total_students < max_students)", courseID).
		UpdateColumn("total_students", gorm.Expr("total_students + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func releaseSeat(db *gorm.DB, courseID uint) {
	if err := db.Model(&courseModels.Course{}).
		Where("id = ? AND total_students > 0", courseID).
		UpdateColumn("total_students", gorm.Expr("total_students - 1")).Error; err != nil {
		log.Printf("[ENROLL] Failed to release seat on course %d: %v", courseID, err)
	}
}

// EnrollInCourse enrolls the authenticated user individually, paying the full
// course price from their wallet
func EnrollInCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID, err := c.ParamsInt("id")
	if err != nil || courseID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
	}

	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ? AND status = ?", courseID, false, "ACTIVE").First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not active!", nil)
	}

	// Check if user is already enrolled
	var existingEnrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&existingEnrollment).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "User already enrolled in this course!", nil)
	}

	claimed, err := claimSeat(db, uint(courseID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}
	if !claimed {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course is full!", nil)
	}

	// Pay from wallet; the seat goes back on any failure from here on
	var wallet models.Wallet
	reference := ""
	if course.Price > 0 {
		if err := db.Where("user_id = ? AND is_deleted = false", userID).First(&wallet).Error; err != nil {
			releaseSeat(db, uint(courseID))
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Wallet not found!", nil)
		}

		reference = utils.GenerateReference("ENR")
		_, err := ledger.Apply(db, wallet.ID, models.TransactionTypePurchase, course.Price, ledger.Options{
			ReferenceID:   reference,
			ReferenceType: "course",
			ReferenceName: course.Title,
			Description:   "Course enrollment: " + course.Title,
		})
		if err != nil {
			releaseSeat(db, uint(courseID))
			if errors.Is(err, ledger.ErrInsufficientBalance) {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Insufficient wallet balance!", fiber.Map{"code": "INSUFFICIENT_BALANCE"})
			}
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process payment!", nil)
		}
	}

	enrollment := courseModels.Enrollment{
		UserID:        userID,
		CourseID:      uint(courseID),
		Status:        courseModels.EnrollmentStatusActive,
		EnrolledAt:    time.Now(),
		OriginalPrice: course.Price,
		AmountPaid:    course.Price,
		PaymentStatus: "PAID",
	}

	if err := db.Create(&enrollment).Error; err != nil {
		releaseSeat(db, uint(courseID))
		// The purchase already landed; give the money back
		if course.Price > 0 {
			if _, refundErr := ledger.Apply(db, wallet.ID, models.TransactionTypeRefund, course.Price, ledger.Options{
				ReferenceID:   reference + "-REFUND",
				ReferenceType: "course",
				ReferenceName: course.Title,
				Description:   "Refund for failed enrollment: " + course.Title,
			}); refundErr != nil {
				log.Printf("[ENROLL] Failed to refund user %d for course %d: %v", userID, courseID, refundErr)
			}
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}

	go utils.SendEnrollmentEmail(user.Email, user.Name, course.Title, course.Price)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled in course successfully!", enrollment)
}

// GetEnrollments lists the authenticated user's enrollments
func GetEnrollments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND is_deleted = ?", userID, false).Preload("Course")

	var total int64
	db.Count(&total)

	var enrollments []courseModels.Enrollment
	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": enrollments,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// UpdateProgress records the user's progress in a course
func UpdateProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedProgress").(*struct {
		CourseID uint    `json:"courseId"`
		Progress float64 `json:"progress"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = false", userID, reqData.CourseID).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}

	if enrollment.Status == courseModels.EnrollmentStatusCompleted || enrollment.Status == courseModels.EnrollmentStatusCancelled {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Enrollment is no longer updatable!", nil)
	}

	// Progress only moves forward
	if reqData.Progress > enrollment.Progress {
		enrollment.Progress = reqData.Progress
	}

	if enrollment.Progress >= 100 {
		enrollment.Progress = 100
		now := time.Now()
		enrollment.Status = courseModels.EnrollmentStatusCompleted
		enrollment.CompletedAt = &now
	}

	if err := db.Save(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update progress!", nil)
	}

	// Completion bumps the member counter of the group the user enrolled
	// through, best-effort
	if enrollment.Status == courseModels.EnrollmentStatusCompleted && enrollment.GroupID != 0 {
		if err := db.Model(&groupModels.GroupMember{}).
			Where("group_id = ? AND user_id = ? AND is_deleted = false", enrollment.GroupID, userID).
			UpdateColumn("completed_courses", gorm.Expr("completed_courses + 1")).Error; err != nil {
			log.Printf("[ENROLL] Failed to bump completed_courses for user %d: %v", userID, err)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress updated!", enrollment)
}
