package groupValidator

import (
	"irac/middleware"

	"github.com/gofiber/fiber/v2"
)

// CreateGroup validates group creation
func CreateGroup() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Name       string `json:"name"`
			Type       string `json:"type"`
			MaxMembers int    `json:"maxMembers"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Name == "" {
			errors["name"] = "Group name is required!"
		}
		if reqData.Type != "" && reqData.Type != "REGULAR" && reqData.Type != "CORPORATE" {
			errors["type"] = "Type must be REGULAR or CORPORATE!"
		}
		if reqData.MaxMembers < 0 {
			errors["maxMembers"] = "Max members cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCreateGroup", reqData)
		return c.Next()
	}
}

// AddMember validates adding a member to a group
func AddMember() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			GroupID uint   `json:"groupId"`
			UserID  uint   `json:"userId"`
			Role    string `json:"role"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.GroupID == 0 {
			errors["groupId"] = "Group ID is required!"
		}
		if reqData.UserID == 0 {
			errors["userId"] = "User ID is required!"
		}
		if reqData.Role != "" && reqData.Role != "MEMBER" && reqData.Role != "CO_LEADER" {
			errors["role"] = "Role must be MEMBER or CO_LEADER!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAddMember", reqData)
		return c.Next()
	}
}

// RemoveMember validates removing a member from a group
func RemoveMember() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			GroupID uint `json:"groupId"`
			UserID  uint `json:"userId"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.GroupID == 0 {
			errors["groupId"] = "Group ID is required!"
		}
		if reqData.UserID == 0 {
			errors["userId"] = "User ID is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedRemoveMember", reqData)
		return c.Next()
	}
}

// GroupEnroll validates a group enrollment batch request
func GroupEnroll() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			GroupID               uint   `json:"groupId"`
			CourseID              uint   `json:"courseId"`
			MemberIDs             []uint `json:"memberIds"`
			UseCentralizedBilling bool   `json:"useCentralizedBilling"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.GroupID == 0 {
			errors["groupId"] = "Group ID is required!"
		}
		if reqData.CourseID == 0 {
			errors["courseId"] = "Course ID is required!"
		}
		if len(reqData.MemberIDs) == 0 {
			errors["memberIds"] = "At least one member is required!"
		}
		if len(reqData.MemberIDs) > 100 {
			errors["memberIds"] = "A batch cannot exceed 100 members!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedGroupEnroll", reqData)
		return c.Next()
	}
}
