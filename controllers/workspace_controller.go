package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"knowledgehub/models"
	"knowledgehub/services"
	"knowledgehub/utils"
)

type WorkspaceController struct {
	Service *services.WorkspaceService
	Logger  *log.Logger
}

func NewWorkspaceController(service *services.WorkspaceService, logger *log.Logger) *WorkspaceController {
	return &WorkspaceController{Service: service, Logger: logger}
}

func (wc *WorkspaceController) CreateWorkspace(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Name        string `json:"name" validate:"required,min=1,max=255"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	workspace, err := wc.Service.CreateWorkspace(input.Name, input.Description, user)
	if err != nil {
		wc.Logger.Printf("Failed to create workspace: %v", err)
		return utils.ServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Workspace created",
		"workspace": workspace,
	})
}

func (wc *WorkspaceController) ListWorkspaces(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	workspaces, err := wc.Service.ListWorkspaces(user.ID)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"workspaces": workspaces,
	})
}

func (wc *WorkspaceController) GetWorkspace(c *fiber.Ctx) error {
	workspaceID := utils.ParseUint(c.Params("workspaceID"))

	workspace, err := wc.Service.GetWorkspace(workspaceID)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"workspace": workspace,
	})
}

func (wc *WorkspaceController) DeleteWorkspace(c *fiber.Ctx) error {
	workspaceID := utils.ParseUint(c.Params("workspaceID"))

	if err := wc.Service.DeleteWorkspace(workspaceID); err != nil {
		wc.Logger.Printf("Failed to delete workspace %d: %v", workspaceID, err)
		return utils.ServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (wc *WorkspaceController) AddMember(c *fiber.Ctx) error {
	workspaceID := utils.ParseUint(c.Params("workspaceID"))

	var input struct {
		UserID uint   `json:"user_id" validate:"required"`
		Role   string `json:"role" validate:"required,workspace_role"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	membership, err := wc.Service.AddMember(workspaceID, input.UserID, input.Role)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Member added",
		"membership": membership,
	})
}

func (wc *WorkspaceController) RemoveMember(c *fiber.Ctx) error {
	workspaceID := utils.ParseUint(c.Params("workspaceID"))
	userID := utils.ParseUint(c.Params("userID"))

	if err := wc.Service.RemoveMember(workspaceID, userID); err != nil {
		return utils.ServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (wc *WorkspaceController) CreateTag(c *fiber.Ctx) error {
	workspaceID := utils.ParseUint(c.Params("workspaceID"))

	var input struct {
		Name string `json:"name" validate:"required,min=1,max=50"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	tag, err := wc.Service.CreateTag(workspaceID, input.Name)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"tag": tag,
	})
}

func (wc *WorkspaceController) ListTags(c *fiber.Ctx) error {
	workspaceID := utils.ParseUint(c.Params("workspaceID"))

	tags, err := wc.Service.ListTags(workspaceID)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"tags": tags,
	})
}
