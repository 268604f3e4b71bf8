package authRoutes

import (
	authController "irac/controllers/auth"
	"irac/middleware"
	authValidator "irac/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidator.Signup(), authController.Signup)
	authGroup.Post("/login", authValidator.Login(), authController.Login)
	authGroup.Get("/profile", middleware.JWTMiddleware, authController.GetProfile)
}
