package authValidator

import (
	"irac/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// Signup validates user registration
func Signup() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Name         string `json:"name" validate:"required,min=2,max=100"`
			Email        string `json:"email" validate:"required,email"`
			Mobile       string `json:"mobile" validate:"omitempty,min=10,max=15"`
			Password     string `json:"password" validate:"required,min=8"`
			ReferralCode string `json:"referralCode" validate:"omitempty,max=50"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			for _, fieldErr := range err.(validator.ValidationErrors) {
				switch fieldErr.Field() {
				case "Name":
					errors["name"] = "Name must be between 2 and 100 characters!"
				case "Email":
					errors["email"] = "A valid email is required!"
				case "Mobile":
					errors["mobile"] = "Mobile number must be between 10 and 15 digits!"
				case "Password":
					errors["password"] = "Password must be at least 8 characters!"
				case "ReferralCode":
					errors["referralCode"] = "Referral code is too long!"
				}
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSignup", reqData)
		return c.Next()
	}
}

// Login validates login credentials
func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Email == "" {
			errors["email"] = "Email is required!"
		}
		if reqData.Password == "" {
			errors["password"] = "Password is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLogin", reqData)
		return c.Next()
	}
}
