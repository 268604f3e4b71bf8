package controllers

import (
	"irac/database"
	"irac/middleware"
	courseModels "irac/models/course"

	"github.com/gofiber/fiber/v2"
)

// GetAllCourses lists active published courses with pagination
func GetAllCourses(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	kind := c.Query("kind") // COURSE, WORKSHOP

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	db := database.Database.Db

	query := db.Model(&courseModels.Course{}).
		Where("status = ? AND is_published = true AND is_deleted = false", "ACTIVE")
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var total int64
	query.Count(&total)

	var courses []courseModels.Course
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetCourseDetails returns one course with seat availability
func GetCourseDetails(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil || courseID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	seatsLeft := -1 // unlimited
	if course.MaxStudents > 0 {
		seatsLeft = course.MaxStudents - course.TotalStudents
		if seatsLeft < 0 {
			seatsLeft = 0
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", fiber.Map{
		"course":     course,
		"seats_left": seatsLeft,
	})
}

// CreateCourse creates a course (Admin only)
func CreateCourse(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCreateCourse").(*struct {
		Title       string `json:"title" validate:"required,min=3,max=255"`
		Description string `json:"description"`
		Instructor  string `json:"instructor" validate:"required"`
		Kind        string `json:"kind" validate:"omitempty,oneof=COURSE WORKSHOP"`
		Duration    int64  `json:"duration" validate:"gte=0"`
		Price       uint   `json:"price"`
		MaxStudents int    `json:"maxStudents" validate:"gte=0"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	kind := "COURSE"
	if reqData.Kind == "WORKSHOP" {
		kind = "WORKSHOP"
	}

	course := courseModels.Course{
		Title:       reqData.Title,
		Description: reqData.Description,
		Instructor:  reqData.Instructor,
		Kind:        kind,
		Duration:    reqData.Duration,
		Price:       reqData.Price,
		MaxStudents: reqData.MaxStudents,
		Status:      "DRAFT",
	}

	if err := database.Database.Db.Create(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// UpdateCourse edits course fields (Admin only). Only fields present in the
// body are changed; capacity can only grow, never shrink below the current
// enrollment count.
func UpdateCourse(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil || courseID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
	}

	reqData := new(struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Instructor  *string `json:"instructor"`
		Duration    *int64  `json:"duration"`
		Price       *uint   `json:"price"`
		MaxStudents *int    `json:"maxStudents"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = false", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if reqData.Title != nil {
		course.Title = *reqData.Title
	}
	if reqData.Description != nil {
		course.Description = *reqData.Description
	}
	if reqData.Instructor != nil {
		course.Instructor = *reqData.Instructor
	}
	if reqData.Duration != nil && *reqData.Duration >= 0 {
		course.Duration = *reqData.Duration
	}
	if reqData.Price != nil {
		course.Price = *reqData.Price
	}
	if reqData.MaxStudents != nil {
		if *reqData.MaxStudents != 0 && *reqData.MaxStudents < course.TotalStudents {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Max students cannot be below current enrollments!", nil)
		}
		course.MaxStudents = *reqData.MaxStudents
	}

	if err := db.Save(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// PublishCourse activates and publishes a course (Admin only)
func PublishCourse(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil || courseID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
	}

	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = false", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	course.Status = "ACTIVE"
	course.IsPublished = true
	if err := db.Save(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to publish course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course published successfully!", course)
}
