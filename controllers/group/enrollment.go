package groupController

import (
	"errors"
	"fmt"
	"log"
	"time"

	"irac/database"
	"irac/ledger"
	"irac/middleware"
	"irac/models"
	courseModels "irac/models/course"
	groupModels "irac/models/group"
	"irac/pricing"
	"irac/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var (
	ErrGroupNotFound  = errors.New("group not found or not active")
	ErrCourseNotFound = errors.New("course not found or not active")
	ErrCourseFull     = errors.New("course is full")
)

// EnrollmentOptions tweaks how a batch is settled
type EnrollmentOptions struct {
	// UseCentralizedBilling debits the leader's wallet for the whole batch
	// up front; the share of members that fail is refunded afterwards.
	UseCentralizedBilling bool
}

// MemberResult is the per-member outcome of a batch. Failures never abort
// the batch; they are reported here.
type MemberResult struct {
	UserID       uint   `json:"user_id"`
	Status       string `json:"status"` // success, failed
	EnrollmentID uint   `json:"enrollment_id,omitempty"`
	FinalPrice   uint   `json:"final_price,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// EnrollmentSummary aggregates a whole group enrollment batch
type EnrollmentSummary struct {
	GroupID               uint           `json:"group_id"`
	CourseID              uint           `json:"course_id"`
	TotalEnrolled         int            `json:"total_enrolled"`
	SuccessfulEnrollments int            `json:"successful_enrollments"`
	FailedEnrollments     int            `json:"failed_enrollments"`
	TotalOriginalPrice    uint           `json:"total_original_price"`
	TotalDiscountAmount   uint           `json:"total_discount_amount"`
	TotalFinalPrice       uint           `json:"total_final_price"`
	DiscountPercentage    int            `json:"discount_percentage"`
	DiscountTier          string         `json:"discount_tier"`
	Results               []MemberResult `json:"results"`
}

// claimSeat takes one seat on the course with a conditional update so two
// racing enrollments cannot overbook the last one. Returns false when full.
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
		log.Printf("[GROUP-ENROLL] Failed to release seat on course %d: %v", courseID, err)
	}
}

// enrollMember runs the per-member step of a batch: membership check,
// duplicate check, seat claim, enrollment insert. Any failure is returned as
// a message for the member's result, never as a batch abort.
func enrollMember(db *gorm.DB, g *groupModels.Group, course *courseModels.Course, userID uint, tier pricing.Tier) (uint, error) {
	var member groupModels.GroupMember
	if err := db.Where("group_id = ? AND user_id = ? AND status = ? AND is_deleted = false",
		g.ID, userID, groupModels.MemberStatusActive).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("user is not an active member of this group")
		}
		return 0, err
	}

	var existing courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = false",
		userID, course.ID).First(&existing).Error; err == nil {
		return 0, fmt.Errorf("user is already enrolled in this course")
	}

	claimed, err := claimSeat(db, course.ID)
	if err != nil {
		return 0, err
	}
	if !claimed {
		return 0, fmt.Errorf("course is full")
	}

	finalPrice := pricing.FinalPrice(course.Price, tier.Percentage)
	enrollment := courseModels.Enrollment{
		UserID:             userID,
		CourseID:           course.ID,
		GroupID:            g.ID,
		Status:             courseModels.EnrollmentStatusActive,
		EnrolledAt:         time.Now(),
		OriginalPrice:      course.Price,
		DiscountPercentage: tier.Percentage,
		AmountPaid:         finalPrice,
		PaymentStatus:      "PAID",
	}
	if err := db.Create(&enrollment).Error; err != nil {
		releaseSeat(db, course.ID)
		return 0, err
	}

	// Best-effort counters; failures are logged, the enrollment stands
	saving := pricing.DiscountAmount(course.Price, tier.Percentage)
	if err := db.Model(&groupModels.GroupMember{}).
		Where("id = ?", member.ID).
		UpdateColumns(map[string]interface{}{
			"enrollments_count": gorm.Expr("enrollments_count + 1"),
			"total_savings":     gorm.Expr("total_savings + ?", saving),
		}).Error; err != nil {
		log.Printf("[GROUP-ENROLL] Failed to bump counters for member %d: %v", member.ID, err)
	}

	return enrollment.ID, nil
}

// ProcessGroupEnrollment enrolls a batch of group members into a course at
// the group's current discount tier. The tier comes from the group's active
// member count, not the batch size. Per-member failures are recorded in the
// summary and never roll back earlier successes.
func ProcessGroupEnrollment(db *gorm.DB, groupID, courseID uint, memberIDs []uint, opts EnrollmentOptions) (*EnrollmentSummary, error) {
	var g groupModels.Group
	if err := db.Where("id = ? AND status = ? AND is_deleted = false",
		groupID, groupModels.GroupStatusActive).First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	var course courseModels.Course
	if err := db.Where("id = ? AND status = ? AND is_deleted = false",
		courseID, "ACTIVE").First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if course.MaxStudents > 0 && course.TotalStudents >= course.MaxStudents {
		return nil, ErrCourseFull
	}

	var activeCount int64
	if err := db.Model(&groupModels.GroupMember{}).
		Where("group_id = ? AND status = ? AND is_deleted = false", groupID, groupModels.MemberStatusActive).
		Count(&activeCount).Error; err != nil {
		return nil, err
	}
	tier := pricing.ResolveTier(int(activeCount))

	// Centralized billing settles the whole batch from the leader's wallet
	// up front; the failed share is refunded after processing.
	batchRef := ""
	var leaderWallet models.Wallet
	if opts.UseCentralizedBilling {
		if err := db.Where("user_id = ? AND is_deleted = false", g.LeaderID).First(&leaderWallet).Error; err != nil {
			return nil, ledger.ErrWalletNotFound
		}
		total := pricing.FinalPrice(course.Price, tier.Percentage) * uint(len(memberIDs))
		batchRef = utils.GenerateReference("GRPENR")
		if _, err := ledger.Apply(db, leaderWallet.ID, models.TransactionTypePurchase, total, ledger.Options{
			ReferenceID:   batchRef,
			ReferenceType: "group_enrollment",
			ReferenceName: course.Title,
			Description:   fmt.Sprintf("Group enrollment: %s (%d members)", course.Title, len(memberIDs)),
		}); err != nil {
			return nil, err
		}
	}

	summary := &EnrollmentSummary{
		GroupID:            groupID,
		CourseID:           courseID,
		TotalEnrolled:      len(memberIDs),
		DiscountPercentage: tier.Percentage,
		DiscountTier:       tier.Name,
		Results:            make([]MemberResult, 0, len(memberIDs)),
	}

	finalPrice := pricing.FinalPrice(course.Price, tier.Percentage)
	discount := pricing.DiscountAmount(course.Price, tier.Percentage)

	// Members are processed independently in input order
	for _, userID := range memberIDs {
		enrollmentID, err := enrollMember(db, &g, &course, userID, tier)
		if err != nil {
			summary.FailedEnrollments++
			summary.Results = append(summary.Results, MemberResult{
				UserID:       userID,
				Status:       "failed",
				ErrorMessage: err.Error(),
			})
			continue
		}
		summary.SuccessfulEnrollments++
		summary.TotalOriginalPrice += course.Price
		summary.TotalDiscountAmount += discount
		summary.TotalFinalPrice += finalPrice
		summary.Results = append(summary.Results, MemberResult{
			UserID:       userID,
			Status:       "success",
			EnrollmentID: enrollmentID,
			FinalPrice:   finalPrice,
		})
	}

	// Refund the failed share of a centralized batch
	if opts.UseCentralizedBilling && summary.FailedEnrollments > 0 {
		refund := finalPrice * uint(summary.FailedEnrollments)
		if refund > 0 {
			if _, err := ledger.Apply(db, leaderWallet.ID, models.TransactionTypeRefund, refund, ledger.Options{
				ReferenceID:   batchRef + "-REFUND",
				ReferenceType: "group_enrollment",
				ReferenceName: course.Title,
				Description:   fmt.Sprintf("Refund for %d failed enrollments", summary.FailedEnrollments),
			}); err != nil {
				log.Printf("[GROUP-ENROLL] Failed to refund failed share for group %d: %v", groupID, err)
			}
		}
	}

	// Best-effort group counters after the batch
	if summary.SuccessfulEnrollments > 0 {
		if err := db.Model(&groupModels.Group{}).
			Where("id = ?", groupID).
			UpdateColumns(map[string]interface{}{
				"total_enrollments": gorm.Expr("total_enrollments + ?", summary.SuccessfulEnrollments),
				"total_savings":     gorm.Expr("total_savings + ?", summary.TotalDiscountAmount),
			}).Error; err != nil {
			log.Printf("[GROUP-ENROLL] Failed to bump group counters for group %d: %v", groupID, err)
		}
	}

	return summary, nil
}

// EnrollGroup is the HTTP entry point for a group enrollment batch
func EnrollGroup(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedGroupEnroll").(*struct {
		GroupID               uint   `json:"groupId"`
		CourseID              uint   `json:"courseId"`
		MemberIDs             []uint `json:"memberIds"`
		UseCentralizedBilling bool   `json:"useCentralizedBilling"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var g groupModels.Group
	if err := db.Where("id = ? AND is_deleted = false", reqData.GroupID).First(&g).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Group not found!", nil)
	}
	if !canManageMembers(userId, &g) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the group leader or an admin can enroll the group!", nil)
	}

	summary, err := ProcessGroupEnrollment(db, reqData.GroupID, reqData.CourseID, reqData.MemberIDs, EnrollmentOptions{
		UseCentralizedBilling: reqData.UseCentralizedBilling,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrGroupNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Group not found or not active!", nil)
		case errors.Is(err, ErrCourseNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not active!", nil)
		case errors.Is(err, ErrCourseFull):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course is full!", nil)
		case errors.Is(err, ledger.ErrInsufficientBalance):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Insufficient wallet balance for centralized billing!", nil)
		case errors.Is(err, ledger.ErrWalletNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Leader wallet not found!", nil)
		default:
			log.Printf("[GROUP-ENROLL] Batch failed for group %d: %v", reqData.GroupID, err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process group enrollment!", nil)
		}
	}

	// Confirmation emails are best-effort; the batch result stands either way
	go sendEnrollmentEmails(summary)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Group enrollment processed!", summary)
}

// sendEnrollmentEmails notifies successfully enrolled members
func sendEnrollmentEmails(summary *EnrollmentSummary) {
	db := database.Database.Db

	var course courseModels.Course
	if err := db.First(&course, summary.CourseID).Error; err != nil {
		return
	}

	for _, r := range summary.Results {
		if r.Status != "success" {
			continue
		}
		var user models.User
		if err := db.Where("id = ? AND is_deleted = false", r.UserID).First(&user).Error; err != nil {
			continue
		}
		utils.SendEnrollmentEmail(user.Email, user.Name, course.Title, r.FinalPrice)
	}
}
