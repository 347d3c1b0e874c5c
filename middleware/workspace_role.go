package middleware

import (
	"github.com/gofiber/fiber/v2"

	"knowledgehub/models"
	"knowledgehub/services"
	"knowledgehub/utils"
)

// RequireWorkspaceRole gates a route group on the caller holding one of the
// given roles in the workspace addressed by the :workspaceID param. Absence
// of a membership is an ordinary 403, never a server error.
func RequireWorkspaceRole(workspaceService *services.WorkspaceService, roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(*models.User)
		if !ok || user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization required",
			})
		}

		workspaceID := utils.ParseUint(c.Params("workspaceID"))
		if workspaceID == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid workspace id",
			})
		}

		role, err := workspaceService.MemberRole(user.ID, workspaceID)
		if err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "You are not a member of this workspace",
			})
		}
		if _, ok := allowed[role]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Your workspace role does not permit this operation",
			})
		}

		c.Locals("workspaceID", workspaceID)
		c.Locals("workspaceRole", role)
		return c.Next()
	}
}
