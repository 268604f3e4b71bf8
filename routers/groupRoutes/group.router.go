package groupRoutes

import (
	groupController "irac/controllers/group"
	"irac/middleware"
	groupValidator "irac/validators/group"

	"github.com/gofiber/fiber/v2"
)

func SetupGroupRoutes(app *fiber.App) {
	grp := app.Group("/group")

	grp.Post("/create", middleware.JWTMiddleware, groupValidator.CreateGroup(), groupController.CreateGroup)
	grp.Post("/member/add", middleware.JWTMiddleware, groupValidator.AddMember(), groupController.AddMember)
	grp.Post("/member/remove", middleware.JWTMiddleware, groupValidator.RemoveMember(), groupController.RemoveMember)
	grp.Get("/my", middleware.JWTMiddleware, groupController.GetMyGroups)
	grp.Get("/:id", middleware.JWTMiddleware, groupController.GetGroupDetails)
	grp.Post("/enroll", middleware.JWTMiddleware, groupValidator.GroupEnroll(), groupController.EnrollGroup)
}
