package courseValidator

import (
	"irac/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// CreateCourse validates course creation (Admin)
func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string `json:"title" validate:"required,min=3,max=255"`
			Description string `json:"description"`
			Instructor  string `json:"instructor" validate:"required"`
			Kind        string `json:"kind" validate:"omitempty,oneof=COURSE WORKSHOP"`
			Duration    int64  `json:"duration" validate:"gte=0"`
			Price       uint   `json:"price"`
			MaxStudents int    `json:"maxStudents" validate:"gte=0"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			for _, fieldErr := range err.(validator.ValidationErrors) {
				switch fieldErr.Field() {
				case "Title":
					errors["title"] = "Title must be between 3 and 255 characters!"
				case "Instructor":
					errors["instructor"] = "Instructor is required!"
				case "Kind":
					errors["kind"] = "Kind must be COURSE or WORKSHOP!"
				case "Duration":
					errors["duration"] = "Duration cannot be negative!"
				case "MaxStudents":
					errors["maxStudents"] = "Max students cannot be negative!"
				}
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCreateCourse", reqData)
		return c.Next()
	}
}

// Progress validates a progress update
func Progress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CourseID uint    `json:"courseId"`
			Progress float64 `json:"progress"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.CourseID == 0 {
			errors["courseId"] = "Course ID is required!"
		}
		if reqData.Progress < 0 || reqData.Progress > 100 {
			errors["progress"] = "Progress must be between 0 and 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedProgress", reqData)
		return c.Next()
	}
}
