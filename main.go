package main

import (
	"irac/config"
	paymentController "irac/controllers/payment"
	"irac/database"
	authRoutes "irac/routers/authRoutes"
	courseRoutes "irac/routers/courseRoutes"
	groupRoutes "irac/routers/groupRoutes"
	paymentRoutes "irac/routers/paymentRoutes"
	productRoutes "irac/routers/productRoutes"
	walletRoutes "irac/routers/walletRoutes"
	"irac/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"log"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	paymentController.InitGateway()
	utils.InitializePaymentScheduler()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app)
	walletRoutes.SetupWalletRoutes(app)
	paymentRoutes.SetupPaymentRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	groupRoutes.SetupGroupRoutes(app)
	productRoutes.SetupProductRoutes(app)

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
