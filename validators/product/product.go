package productValidator

import (
	"irac/middleware"

	"github.com/gofiber/fiber/v2"
)

// CreateProduct validates product creation (Admin)
func CreateProduct() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Price       uint   `json:"price"`
			Stock       int    `json:"stock"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Name == "" {
			errors["name"] = "Product name is required!"
		}
		if reqData.Price == 0 {
			errors["price"] = "Price must be greater than 0!"
		}
		if reqData.Stock < 0 {
			errors["stock"] = "Stock cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCreateProduct", reqData)
		return c.Next()
	}
}

// Purchase validates a product purchase
func Purchase() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			ProductID uint `json:"productId"`
			Quantity  int  `json:"quantity"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.ProductID == 0 {
			errors["productId"] = "Product ID is required!"
		}
		if reqData.Quantity < 0 {
			errors["quantity"] = "Quantity cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPurchase", reqData)
		return c.Next()
	}
}
