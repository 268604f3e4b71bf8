package groupController

import (
	"fmt"
	"testing"
	"time"

	"irac/models"
	courseModels "irac/models/course"
	groupModels "irac/models/group"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Wallet{}, &models.WalletTransaction{},
		&groupModels.Group{}, &groupModels.GroupMember{},
		&courseModels.Course{}, &courseModels.Enrollment{},
	))

	t.Cleanup(func() {
		for _, table := range []string{
			"enrollments", "courses", "group_members", "groups",
			"wallet_transactions", "wallets", "users",
		} {
			db.Exec(`DELETE FROM "` + table + `"`)
		}
	})

	return db
}

// seedGroup creates a group with the given number of active members and
// returns the group plus the member user IDs (leader first).
func seedGroup(t *testing.T, db *gorm.DB, memberCount int) (*groupModels.Group, []uint) {
	t.Helper()

	userIDs := make([]uint, 0, memberCount)
	for i := 0; i < memberCount; i++ {
		user := models.User{Email: fmt.Sprintf("member%d@test.local", i), Password: "x"}
		require.NoError(t, db.Create(&user).Error)
		userIDs = append(userIDs, user.ID)
	}

	g := groupModels.Group{
		Name:       "Test Group",
		LeaderID:   userIDs[0],
		MaxMembers: 50,
		Status:     groupModels.GroupStatusActive,
	}
	require.NoError(t, db.Create(&g).Error)

	for i, id := range userIDs {
		role := groupModels.MemberRoleMember
		if i == 0 {
			role = groupModels.MemberRoleAdmin
		}
		member := groupModels.GroupMember{
			GroupID:  g.ID,
			UserID:   id,
			Role:     role,
			Status:   groupModels.MemberStatusActive,
			JoinedAt: time.Now(),
		}
		require.NoError(t, db.Create(&member).Error)
	}

	return &g, userIDs
}

func seedCourse(t *testing.T, db *gorm.DB, price uint, maxStudents int) *courseModels.Course {
	t.Helper()

	course := courseModels.Course{
		Title:       "Architecture Fundamentals",
		Price:       price,
		Status:      "ACTIVE",
		MaxStudents: maxStudents,
		IsPublished: true,
	}
	require.NoError(t, db.Create(&course).Error)
	return &course
}

func TestProcessGroupEnrollmentGoldTier(t *testing.T) {
	db := setupTestDB(t)
	g, userIDs := seedGroup(t, db, 12)
	course := seedCourse(t, db, 1000000, 0)

	summary, err := ProcessGroupEnrollment(db, g.ID, course.ID, userIDs, EnrollmentOptions{})
	require.NoError(t, err)

	// 12 active members resolve to Gold / 20%
	assert.Equal(t, 20, summary.DiscountPercentage)
	assert.Equal(t, "Gold", summary.DiscountTier)
	assert.Equal(t, 12, summary.TotalEnrolled)
	assert.Equal(t, 12, summary.SuccessfulEnrollments)
	assert.Equal(t, 0, summary.FailedEnrollments)

	for _, r := range summary.Results {
		assert.Equal(t, "success", r.Status)
		assert.Equal(t, uint(800000), r.FinalPrice)
	}

	assert.Equal(t, uint(12000000), summary.TotalOriginalPrice)
	assert.Equal(t, uint(2400000), summary.TotalDiscountAmount)
	assert.Equal(t, uint(9600000), summary.TotalFinalPrice)
	assert.Equal(t, summary.TotalOriginalPrice-summary.TotalDiscountAmount, summary.TotalFinalPrice)
}

func TestProcessGroupEnrollmentPartialFailure(t *testing.T) {
	db := setupTestDB(t)
	g, userIDs := seedGroup(t, db, 5)
	course := seedCourse(t, db, 1000000, 0)

	// Member #3 is already enrolled
	require.NoError(t, db.Create(&courseModels.Enrollment{
		UserID:     userIDs[2],
		CourseID:   course.ID,
		Status:     courseModels.EnrollmentStatusActive,
		EnrolledAt: time.Now(),
	}).Error)

	summary, err := ProcessGroupEnrollment(db, g.ID, course.ID, userIDs, EnrollmentOptions{})
	require.NoError(t, err)

	assert.Equal(t, 5, summary.TotalEnrolled)
	assert.Equal(t, 4, summary.SuccessfulEnrollments)
	assert.Equal(t, 1, summary.FailedEnrollments)
	assert.Equal(t, summary.TotalEnrolled, summary.SuccessfulEnrollments+summary.FailedEnrollments)

	failed := summary.Results[2]
	assert.Equal(t, "failed", failed.Status)
	assert.Contains(t, failed.ErrorMessage, "already enrolled")

	// The other four enrollments are unaffected
	var count int64
	db.Model(&courseModels.Enrollment{}).Where("course_id = ? AND group_id = ?", course.ID, g.ID).Count(&count)
	assert.Equal(t, int64(4), count)
}

func TestProcessGroupEnrollmentTierFromGroupNotBatch(t *testing.T) {
	db := setupTestDB(t)
	g, userIDs := seedGroup(t, db, 12)
	course := seedCourse(t, db, 1000000, 0)

	// Enrolling only 2 of the 12 members still gets the 12-member tier
	summary, err := ProcessGroupEnrollment(db, g.ID, course.ID, userIDs[:2], EnrollmentOptions{})
	require.NoError(t, err)
	assert.Equal(t, 20, summary.DiscountPercentage)
	assert.Equal(t, 2, summary.TotalEnrolled)
}

func TestProcessGroupEnrollmentNonMemberFails(t *testing.T) {
	db := setupTestDB(t)
	g, userIDs := seedGroup(t, db, 3)
	course := seedCourse(t, db, 500000, 0)

	outsider := models.User{Email: "outsider@test.local", Password: "x"}
	require.NoError(t, db.Create(&outsider).Error)

	summary, err := ProcessGroupEnrollment(db, g.ID, course.ID, append(userIDs, outsider.ID), EnrollmentOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.SuccessfulEnrollments)
	assert.Equal(t, 1, summary.FailedEnrollments)
	last := summary.Results[len(summary.Results)-1]
	assert.Equal(t, "failed", last.Status)
	assert.Contains(t, last.ErrorMessage, "not an active member")
}

func TestProcessGroupEnrollmentCapacity(t *testing.T) {
	db := setupTestDB(t)
	g, userIDs := seedGroup(t, db, 5)
	course := seedCourse(t, db, 500000, 3)

	summary, err := ProcessGroupEnrollment(db, g.ID, course.ID, userIDs, EnrollmentOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.SuccessfulEnrollments)
	assert.Equal(t, 2, summary.FailedEnrollments)
	for _, r := range summary.Results[3:] {
		assert.Contains(t, r.ErrorMessage, "full")
	}

	var fresh courseModels.Course
	require.NoError(t, db.First(&fresh, course.ID).Error)
	assert.Equal(t, 3, fresh.TotalStudents)
}

func TestProcessGroupEnrollmentRejectsWholeCall(t *testing.T) {
	db := setupTestDB(t)
	g, userIDs := seedGroup(t, db, 3)
	course := seedCourse(t, db, 500000, 0)

	_, err := ProcessGroupEnrollment(db, 9999, course.ID, userIDs, EnrollmentOptions{})
	assert.ErrorIs(t, err, ErrGroupNotFound)

	_, err = ProcessGroupEnrollment(db, g.ID, 9999, userIDs, EnrollmentOptions{})
	assert.ErrorIs(t, err, ErrCourseNotFound)

	// Inactive group rejects the whole call too
	require.NoError(t, db.Model(&groupModels.Group{}).Where("id = ?", g.ID).
		Update("status", groupModels.GroupStatusSuspended).Error)
	_, err = ProcessGroupEnrollment(db, g.ID, course.ID, userIDs, EnrollmentOptions{})
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestProcessGroupEnrollmentCentralizedBilling(t *testing.T) {
	db := setupTestDB(t)
	g, userIDs := seedGroup(t, db, 3) // Bronze / 10%
	course := seedCourse(t, db, 1000000, 0)

	wallet := models.Wallet{UserID: g.LeaderID, Balance: 5000000}
	require.NoError(t, db.Create(&wallet).Error)

	// Member #2 already enrolled, so one share comes back as a refund
	require.NoError(t, db.Create(&courseModels.Enrollment{
		UserID:     userIDs[1],
		CourseID:   course.ID,
		Status:     courseModels.EnrollmentStatusActive,
		EnrolledAt: time.Now(),
	}).Error)

	summary, err := ProcessGroupEnrollment(db, g.ID, course.ID, userIDs, EnrollmentOptions{UseCentralizedBilling: true})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.SuccessfulEnrollments)
	assert.Equal(t, 1, summary.FailedEnrollments)

	// Charged 3 x 900000 up front, refunded 1 x 900000
	var fresh models.Wallet
	require.NoError(t, db.First(&fresh, wallet.ID).Error)
	assert.Equal(t, uint(5000000-2*900000), fresh.Balance)
}

func TestProcessGroupEnrollmentCentralizedBillingInsufficient(t *testing.T) {
	db := setupTestDB(t)
	g, userIDs := seedGroup(t, db, 3)
	course := seedCourse(t, db, 1000000, 0)

	wallet := models.Wallet{UserID: g.LeaderID, Balance: 1000}
	require.NoError(t, db.Create(&wallet).Error)

	_, err := ProcessGroupEnrollment(db, g.ID, course.ID, userIDs, EnrollmentOptions{UseCentralizedBilling: true})
	assert.Error(t, err)

	// Nothing was enrolled and the wallet was untouched
	var count int64
	db.Model(&courseModels.Enrollment{}).Where("group_id = ?", g.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	var fresh models.Wallet
	require.NoError(t, db.First(&fresh, wallet.ID).Error)
	assert.Equal(t, uint(1000), fresh.Balance)
}
