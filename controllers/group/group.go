package groupController

import (
	"log"
	"time"

	"irac/database"
	"irac/middleware"
	"irac/models"
	groupModels "irac/models/group"
	"irac/pricing"

	"github.com/gofiber/fiber/v2"
)

// activeMemberCount counts members that participate in discount tiering
func activeMemberCount(groupID uint) (int64, error) {
	var count int64
	err := database.Database.Db.Model(&groupModels.GroupMember{}).
		Where("group_id = ? AND status = ? AND is_deleted = false", groupID, groupModels.MemberStatusActive).
		Count(&count).Error
	return count, err
}

// recomputeTierCache refreshes the derived discount fields on the group row
// after a membership change. Failures are logged, never surfaced.
func recomputeTierCache(groupID uint) {
	count, err := activeMemberCount(groupID)
	if err != nil {
		log.Printf("[GROUP] Failed to count members for group %d: %v", groupID, err)
		return
	}
	tier := pricing.ResolveTier(int(count))
	if err := database.Database.Db.Model(&groupModels.Group{}).
		Where("id = ?", groupID).
		Updates(map[string]interface{}{
			"discount_percentage": tier.Percentage,
			"discount_tier":       tier.Name,
		}).Error; err != nil {
		log.Printf("[GROUP] Failed to refresh discount cache for group %d: %v", groupID, err)
	}
}

// CreateGroup creates a group and enrolls the creator as its leader
func CreateGroup(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", userId).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	reqData, ok := c.Locals("validatedCreateGroup").(*struct {
		Name       string `json:"name"`
		Type       string `json:"type"`
		MaxMembers int    `json:"maxMembers"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	groupType := groupModels.GroupTypeRegular
	if reqData.Type == string(groupModels.GroupTypeCorporate) {
		groupType = groupModels.GroupTypeCorporate
	}
	maxMembers := reqData.MaxMembers
	if maxMembers <= 0 {
		maxMembers = 50
	}

	newGroup := groupModels.Group{
		Name:       reqData.Name,
		Type:       groupType,
		LeaderID:   userId,
		MaxMembers: maxMembers,
		Status:     groupModels.GroupStatusActive,
	}

	tx := db.Begin()
	if err := tx.Create(&newGroup).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create group!", nil)
	}

	leader := groupModels.GroupMember{
		GroupID:  newGroup.ID,
		UserID:   userId,
		Role:     groupModels.MemberRoleAdmin,
		Status:   groupModels.MemberStatusActive,
		JoinedAt: time.Now(),
	}
	if err := tx.Create(&leader).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add group leader!", nil)
	}
	tx.Commit()

	recomputeTierCache(newGroup.ID)
	db.First(&newGroup, newGroup.ID)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Group created successfully!", newGroup)
}

// canManageMembers reports whether the user may add/remove members
func canManageMembers(userId uint, g *groupModels.Group) bool {
	if g.LeaderID == userId {
		return true
	}
	var user models.User
	err := database.Database.Db.Where("id = ? AND role IN ? AND is_deleted = false",
		userId, []string{"ADMIN", "MANAGER"}).First(&user).Error
	return err == nil
}

// AddMember adds a user to a group (leader or platform admins only)
func AddMember(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedAddMember").(*struct {
		GroupID uint   `json:"groupId"`
		UserID  uint   `json:"userId"`
		Role    string `json:"role"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var existingGroup groupModels.Group
	if err := db.Where("id = ? AND status = ? AND is_deleted = false",
		reqData.GroupID, groupModels.GroupStatusActive).First(&existingGroup).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Group not found or not active!", nil)
	}

	if !canManageMembers(userId, &existingGroup) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the group leader or an admin can manage members!", nil)
	}

	var targetUser models.User
	if err := db.Where("id = ? AND is_deleted = false", reqData.UserID).First(&targetUser).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	// Re-activating a removed member is a status transition, not a new row
	var existingMember groupModels.GroupMember
	if err := db.Where("group_id = ? AND user_id = ? AND is_deleted = false",
		reqData.GroupID, reqData.UserID).First(&existingMember).Error; err == nil {
		if existingMember.Status == groupModels.MemberStatusActive {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "User is already a member of this group!", nil)
		}
		existingMember.Status = groupModels.MemberStatusActive
		existingMember.JoinedAt = time.Now()
		if err := db.Save(&existingMember).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add member!", nil)
		}
		recomputeTierCache(reqData.GroupID)
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Member re-activated successfully!", existingMember)
	}

	count, err := activeMemberCount(reqData.GroupID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to check group size!", nil)
	}
	if int(count) >= existingGroup.MaxMembers {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Group is full!", nil)
	}

	role := groupModels.MemberRoleMember
	if reqData.Role == string(groupModels.MemberRoleCoLeader) {
		role = groupModels.MemberRoleCoLeader
	}

	member := groupModels.GroupMember{
		GroupID:  reqData.GroupID,
		UserID:   reqData.UserID,
		Role:     role,
		Status:   groupModels.MemberStatusActive,
		JoinedAt: time.Now(),
	}
	if err := db.Create(&member).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add member!", nil)
	}

	recomputeTierCache(reqData.GroupID)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Member added successfully!", member)
}

// RemoveMember soft-removes a member (status transition to REMOVED)
func RemoveMember(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedRemoveMember").(*struct {
		GroupID uint `json:"groupId"`
		UserID  uint `json:"userId"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var existingGroup groupModels.Group
	if err := db.Where("id = ? AND is_deleted = false", reqData.GroupID).First(&existingGroup).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Group not found!", nil)
	}

	if !canManageMembers(userId, &existingGroup) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the group leader or an admin can manage members!", nil)
	}

	if existingGroup.LeaderID == reqData.UserID {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "The group leader cannot be removed!", nil)
	}

	var member groupModels.GroupMember
	if err := db.Where("group_id = ? AND user_id = ? AND status = ? AND is_deleted = false",
		reqData.GroupID, reqData.UserID, groupModels.MemberStatusActive).First(&member).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Active member not found in this group!", nil)
	}

	member.Status = groupModels.MemberStatusRemoved
	if err := db.Save(&member).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to remove member!", nil)
	}

	recomputeTierCache(reqData.GroupID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Member removed successfully!", nil)
}

// GetMyGroups lists groups where the user is an active member
func GetMyGroups(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	db := database.Database.Db

	var memberships []groupModels.GroupMember
	if err := db.Where("user_id = ? AND status = ? AND is_deleted = false",
		userId, groupModels.MemberStatusActive).Find(&memberships).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch groups!", nil)
	}

	groupIDs := make([]uint, 0, len(memberships))
	for _, m := range memberships {
		groupIDs = append(groupIDs, m.GroupID)
	}

	var groups []groupModels.Group
	if len(groupIDs) > 0 {
		if err := db.Where("id IN ? AND is_deleted = false", groupIDs).
			Order("created_at desc").Find(&groups).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch groups!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Groups fetched successfully!", groups)
}

// GetGroupDetails returns a group with its members, current tier and the
// next-tier upsell info
func GetGroupDetails(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid group id!", nil)
	}

	db := database.Database.Db

	var existingGroup groupModels.Group
	if err := db.Where("id = ? AND is_deleted = false", groupID).First(&existingGroup).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Group not found!", nil)
	}

	// Only members and admins may inspect a group
	var membership groupModels.GroupMember
	if err := db.Where("group_id = ? AND user_id = ? AND status = ? AND is_deleted = false",
		groupID, userId, groupModels.MemberStatusActive).First(&membership).Error; err != nil {
		if !canManageMembers(userId, &existingGroup) {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not a member of this group!", nil)
		}
	}

	var members []groupModels.GroupMember
	if err := db.Where("group_id = ? AND status = ? AND is_deleted = false",
		groupID, groupModels.MemberStatusActive).Order("joined_at asc").Find(&members).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch members!", nil)
	}

	tier := pricing.ResolveTier(len(members))
	nextTier := pricing.ResolveNextTier(len(members))

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Group fetched successfully!", fiber.Map{
		"group":        existingGroup,
		"members":      members,
		"member_count": len(members),
		"discount": fiber.Map{
			"tier":       tier.Name,
			"percentage": tier.Percentage,
		},
		"next_tier": nextTier,
	})
}
