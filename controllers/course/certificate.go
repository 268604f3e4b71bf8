package controllers

import (
	"fmt"
	"time"

	"irac/database"
	"irac/middleware"
	"irac/models"
	courseModels "irac/models/course"
	"irac/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestCertificate opens a certificate request for a completed enrollment
func RequestCertificate(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("course_id")
	if err != nil || courseID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
	}

	db := database.Database.Db

	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = false", userID, courseID).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}

	if enrollment.Status != courseModels.EnrollmentStatusCompleted {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course is not completed yet!", nil)
	}

	var existing courseModels.CertificateRequest
	if err := db.Where("user_id = ? AND course_id = ? AND status IN ? AND is_deleted = false",
		userID, courseID, []string{"PENDING", "APPROVED"}).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Certificate already requested!", nil)
	}

	request := courseModels.CertificateRequest{
		UserID:       userID,
		CourseID:     uint(courseID),
		EnrollmentID: enrollment.ID,
		Status:       "PENDING",
		RequestedAt:  time.Now(),
	}
	if err := db.Create(&request).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to request certificate!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate requested successfully!", request)
}

// ApproveCertificate approves a pending request and issues the certificate
// (Admin only)
func ApproveCertificate(c *fiber.Ctx) error {
	adminID := c.Locals("userId").(uint)

	requestID, err := c.ParamsInt("request_id")
	if err != nil || requestID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request id!", nil)
	}

	db := database.Database.Db

	var request courseModels.CertificateRequest
	if err := db.Where("id = ? AND status = ? AND is_deleted = false", requestID, "PENDING").First(&request).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Pending certificate request not found!", nil)
	}

	now := time.Now()
	certificate := courseModels.Certificate{
		UserID:            request.UserID,
		CourseID:          request.CourseID,
		CertificateNumber: fmt.Sprintf("IRAC-%s", uuid.NewString()),
		IssuedAt:          now,
	}

	tx := db.Begin()
	if err := tx.Create(&certificate).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to issue certificate!", nil)
	}

	request.Status = "APPROVED"
	request.ApprovedAt = &now
	request.ApprovedBy = &adminID
	if err := tx.Save(&request).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to approve request!", nil)
	}

	if err := tx.Model(&courseModels.Enrollment{}).
		Where("id = ?", request.EnrollmentID).
		Update("certificate_id", certificate.ID).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to link certificate!", nil)
	}
	tx.Commit()

	// Notification is best-effort
	go func() {
		var user models.User
		if err := database.Database.Db.Where("id = ? AND is_deleted = false", request.UserID).First(&user).Error; err != nil {
			return
		}
		var course courseModels.Course
		if err := database.Database.Db.First(&course, request.CourseID).Error; err != nil {
			return
		}
		utils.SendCertificateEmail(user.Email, user.Name, course.Title, certificate.CertificateNumber)
	}()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate approved and issued!", certificate)
}

// GetMyCertificates lists the authenticated user's issued certificates
func GetMyCertificates(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var certificates []courseModels.Certificate
	if err := database.Database.Db.Where("user_id = ? AND is_deleted = false", userID).
		Order("issued_at desc").Find(&certificates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", certificates)
}
