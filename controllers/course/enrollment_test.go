package controllers

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"irac/config"
	"irac/database"
	"irac/models"
	courseModels "irac/models/course"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB, uint) {
	t.Helper()

	config.LoadConfig()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Wallet{}, &models.WalletTransaction{},
		&courseModels.Course{}, &courseModels.Enrollment{},
	))
	database.Database = database.DbInstance{Db: db}

	user := models.User{Email: "student@test.local", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	wallet := models.Wallet{UserID: user.ID, Balance: 2000000, Status: models.WalletStatusActive}
	require.NoError(t, db.Create(&wallet).Error)

	app := fiber.New()
	app.Post("/course/:id/enroll", func(c *fiber.Ctx) error {
		c.Locals("userId", user.ID)
		return c.Next()
	}, EnrollInCourse)

	t.Cleanup(func() {
		for _, table := range []string{"enrollments", "courses", "wallet_transactions", "wallets", "users"} {
			db.Exec(`DELETE FROM "` + table + `"`)
		}
	})

	return app, db, user.ID
}

func seedActiveCourse(t *testing.T, db *gorm.DB, price uint) *courseModels.Course {
	t.Helper()

	course := courseModels.Course{
		Title:       "Structural Design",
		Price:       price,
		Status:      "ACTIVE",
		IsPublished: true,
	}
	require.NoError(t, db.Create(&course).Error)
	return &course
}

func TestEnrollInCourse(t *testing.T) {
	app, db, userID := setupTestApp(t)
	course := seedActiveCourse(t, db, 1000000)

	req := httptest.NewRequest("POST", fmt.Sprintf("/course/%d/enroll", course.ID), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", userID, course.ID).First(&enrollment).Error)
	assert.Equal(t, uint(1000000), enrollment.AmountPaid)

	var wallet models.Wallet
	require.NoError(t, db.Where("user_id = ?", userID).First(&wallet).Error)
	assert.Equal(t, uint(1000000), wallet.Balance)

	var fresh courseModels.Course
	require.NoError(t, db.First(&fresh, course.ID).Error)
	assert.Equal(t, 1, fresh.TotalStudents)
}

// A failed enrollment insert after the wallet was debited must refund the
// purchase and give the seat back. A soft-deleted enrollment row passes the
// duplicate pre-check but still collides on the user/course unique index,
// which is exactly the window a concurrent duplicate request hits.
func TestEnrollInCourseInsertFailureRefunds(t *testing.T) {
	app, db, userID := setupTestApp(t)
	course := seedActiveCourse(t, db, 1000000)

	require.NoError(t, db.Create(&courseModels.Enrollment{
		UserID:     userID,
		CourseID:   course.ID,
		Status:     courseModels.EnrollmentStatusCancelled,
		EnrolledAt: time.Now(),
		IsDeleted:  true,
	}).Error)

	req := httptest.NewRequest("POST", fmt.Sprintf("/course/%d/enroll", course.ID), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	// Money came back
	var wallet models.Wallet
	require.NoError(t, db.Where("user_id = ?", userID).First(&wallet).Error)
	assert.Equal(t, uint(2000000), wallet.Balance)

	// Ledger shows the round trip, not a silent wipe
	var purchases, refunds int64
	db.Model(&models.WalletTransaction{}).
		Where("wallet_id = ? AND transaction_type = ?", wallet.ID, models.TransactionTypePurchase).Count(&purchases)
	db.Model(&models.WalletTransaction{}).
		Where("wallet_id = ? AND transaction_type = ?", wallet.ID, models.TransactionTypeRefund).Count(&refunds)
	assert.Equal(t, int64(1), purchases)
	assert.Equal(t, int64(1), refunds)

	// Seat released
	var fresh courseModels.Course
	require.NoError(t, db.First(&fresh, course.ID).Error)
	assert.Equal(t, 0, fresh.TotalStudents)
}
