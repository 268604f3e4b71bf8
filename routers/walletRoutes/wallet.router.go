package walletRoutes

import (
	walletController "irac/controllers/wallet"
	"irac/middleware"
	walletValidator "irac/validators/wallet"

	"github.com/gofiber/fiber/v2"
)

func SetupWalletRoutes(app *fiber.App) {
	walletGroup := app.Group("/wallet")

	walletGroup.Get("/balance", middleware.JWTMiddleware, walletController.GetWalletBalance)
	walletGroup.Post("/withdraw", middleware.JWTMiddleware, walletValidator.Withdraw(), walletController.Withdraw)
	walletGroup.Get("/history", middleware.JWTMiddleware, walletController.GetWalletHistory)
	walletGroup.Get("/stats", middleware.JWTMiddleware, walletController.GetWalletStats)

	// Admin wallet management
	adminGroup := app.Group("/admin/wallet")

	adminGroup.Post("/add-balance", middleware.JWTMiddleware, walletValidator.AddBalance(), middleware.RequireRole("ADMIN"), walletController.AddBalance)
	adminGroup.Post("/deduct-balance", middleware.JWTMiddleware, walletValidator.DeductBalance(), middleware.RequireRole("ADMIN"), walletController.DeductBalance)
	adminGroup.Get("/user/:user_id/balance", middleware.JWTMiddleware, middleware.RequireRole("ADMIN", "MANAGER"), walletController.GetUserBalance)
	adminGroup.Get("/transactions", middleware.JWTMiddleware, middleware.RequireRole("ADMIN", "MANAGER"), walletController.GetAllTransactions)
}
