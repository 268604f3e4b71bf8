package walletValidator

import (
	"irac/middleware"

	"github.com/gofiber/fiber/v2"
)

// Withdraw validates a wallet withdrawal request
func Withdraw() fiber.Handler {
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

		c.Locals("validatedWithdraw", reqData)
		return c.Next()
	}
}

// AddBalance validates add balance request
func AddBalance() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			UserID uint   `json:"userId"`
			Amount uint   `json:"amount"`
			Reason string `json:"reason"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.UserID == 0 {
			errors["userId"] = "User ID is required!"
		}
		if reqData.Amount == 0 {
			errors["amount"] = "Amount must be greater than 0!"
		}
		if reqData.Reason == "" {
			errors["reason"] = "Reason is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAddBalance", reqData)
		return c.Next()
	}
}

// DeductBalance validates deduct balance request
func DeductBalance() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			UserID uint   `json:"userId"`
			Amount uint   `json:"amount"`
			Reason string `json:"reason"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.UserID == 0 {
			errors["userId"] = "User ID is required!"
		}
		if reqData.Amount == 0 {
			errors["amount"] = "Amount must be greater than 0!"
		}
		if reqData.Reason == "" {
			errors["reason"] = "Reason is required for deduction!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedDeductBalance", reqData)
		return c.Next()
	}
}
