package paymentValidator

import (
	"irac/middleware"

	"github.com/gofiber/fiber/v2"
)

// DepositRequest validates a gateway deposit request. Amount bounds are
// checked against configuration in the controller.
func DepositRequest() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Amount      uint   `json:"amount"`
			Description string `json:"description"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Amount == 0 {
			errors["amount"] = "Amount must be greater than 0!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedDepositRequest", reqData)
		return c.Next()
	}
}
