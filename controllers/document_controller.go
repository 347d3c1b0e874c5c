package controller

import (
	"io"
	"log"

	"github.com/gofiber/fiber/v2"

	"knowledgehub/models"
	"knowledgehub/services"
	"knowledgehub/utils"
)

type DocumentController struct {
	Service *services.DocumentService
	Logger  *log.Logger
}

func NewDocumentController(service *services.DocumentService, logger *log.Logger) *DocumentController {
	return &DocumentController{Service: service, Logger: logger}
}

// UploadDocument accepts a multipart "file" field plus an optional
// article_id form value.
func (dc *DocumentController) UploadDocument(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	workspaceID := utils.ParseUint(c.Params("workspaceID"))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A file field is required",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}

	var articleID *uint
	if raw := c.FormValue("article_id"); raw != "" {
		id := utils.ParseUint(raw)
		if id == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid article_id",
			})
		}
		articleID = &id
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	document, err := dc.Service.RegisterDocument(c.UserContext(), services.RegisterDocumentInput{
		WorkspaceID: workspaceID,
		ArticleID:   articleID,
		UploaderID:  user.ID,
		FileName:    fileHeader.Filename,
		Content:     content,
		MimeType:    mimeType,
	})
	if err != nil {
		dc.Logger.Printf("Failed to register document: %v", err)
		return utils.ServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"document": document,
	})
}

func (dc *DocumentController) ListDocuments(c *fiber.Ctx) error {
	workspaceID := utils.ParseUint(c.Params("workspaceID"))

	var articleID *uint
	if raw := c.Query("article_id"); raw != "" {
		id := utils.ParseUint(raw)
		articleID = &id
	}

	documents, err := dc.Service.ListDocuments(workspaceID, articleID)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"documents": documents,
	})
}

func (dc *DocumentController) GetDocument(c *fiber.Ctx) error {
	workspaceID := utils.ParseUint(c.Params("workspaceID"))
	documentID := utils.ParseUint(c.Params("documentID"))

	document, err := dc.Service.GetDocument(workspaceID, documentID)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"document": document,
	})
}

func (dc *DocumentController) DeleteDocument(c *fiber.Ctx) error {
	workspaceID := utils.ParseUint(c.Params("workspaceID"))
	documentID := utils.ParseUint(c.Params("documentID"))

	if err := dc.Service.DeleteDocument(workspaceID, documentID); err != nil {
		return utils.ServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
