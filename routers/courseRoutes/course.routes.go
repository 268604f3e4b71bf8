package courseRoutes

import (
	courseController "irac/controllers/course"
	"irac/middleware"
	courseValidator "irac/validators/course"

	"github.com/gofiber/fiber/v2"
)

func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Static paths go before the :id wildcard
	courseGroup.Get("/list", courseController.GetAllCourses)
	courseGroup.Get("/enrollments/my", middleware.JWTMiddleware, courseController.GetEnrollments)
	courseGroup.Get("/certificates/my", middleware.JWTMiddleware, courseController.GetMyCertificates)
	courseGroup.Post("/progress", middleware.JWTMiddleware, courseValidator.Progress(), courseController.UpdateProgress)

	courseGroup.Get("/:id", courseController.GetCourseDetails)
	courseGroup.Post("/:id/enroll", middleware.JWTMiddleware, courseController.EnrollInCourse)
	courseGroup.Post("/:course_id/certificate/request", middleware.JWTMiddleware, courseController.RequestCertificate)

	// Admin course management
	adminGroup := app.Group("/admin/course")
	adminGroup.Post("/create", middleware.JWTMiddleware, courseValidator.CreateCourse(), middleware.RequireRole("ADMIN", "MANAGER"), courseController.CreateCourse)
	adminGroup.Post("/certificate/:request_id/approve", middleware.JWTMiddleware, middleware.RequireRole("ADMIN"), courseController.ApproveCertificate)
	adminGroup.Put("/:id", middleware.JWTMiddleware, middleware.RequireRole("ADMIN", "MANAGER"), courseController.UpdateCourse)
	adminGroup.Post("/:id/publish", middleware.JWTMiddleware, middleware.RequireRole("ADMIN", "MANAGER"), courseController.PublishCourse)
}
