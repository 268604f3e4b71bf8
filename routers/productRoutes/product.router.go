package productRoutes

import (
	productController "irac/controllers/product"
	"irac/middleware"
	productValidator "irac/validators/product"

	"github.com/gofiber/fiber/v2"
)

func SetupProductRoutes(app *fiber.App) {
	productGroup := app.Group("/product")

	productGroup.Get("/list", productController.ListProducts)
	productGroup.Post("/purchase", middleware.JWTMiddleware, productValidator.Purchase(), productController.PurchaseProduct)
	productGroup.Get("/orders", middleware.JWTMiddleware, productController.GetMyOrders)

	adminGroup := app.Group("/admin/product")
	adminGroup.Post("/create", middleware.JWTMiddleware, productValidator.CreateProduct(), middleware.RequireRole("ADMIN", "MANAGER"), productController.CreateProduct)
}
