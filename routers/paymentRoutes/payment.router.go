package paymentRoutes

import (
	paymentController "irac/controllers/payment"
	"irac/middleware"
	paymentValidator "irac/validators/payment"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(app *fiber.App) {
	paymentGroup := app.Group("/payment")

	paymentGroup.Post("/deposit", middleware.JWTMiddleware, paymentValidator.DepositRequest(), paymentController.RequestDeposit)
	paymentGroup.Get("/list", middleware.JWTMiddleware, paymentController.GetMyPayments)

	// The gateway redirects the user's browser here, so no JWT
	paymentGroup.Get("/verify", paymentController.VerifyCallback)
}
