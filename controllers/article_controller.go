package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"knowledgehub/models"
	"knowledgehub/services"
	"knowledgehub/utils"
)

type ArticleController struct {
	Articles *services.ArticleService
	Versions *services.VersionService
	Logger   *log.Logger
}

func NewArticleController(articles *services.ArticleService, versions *services.VersionService, logger *log.Logger) *ArticleController {
	return &ArticleController{Articles: articles, Versions: versions, Logger: logger}
}

func (ac *ArticleController) CreateArticle(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	workspaceID := utils.ParseUint(c.Params("workspaceID"))

	var input struct {
		Title   string `json:"title" validate:"required,min=1,max=255"`
		Content string `json:"content"`
		TagIDs  []uint `json:"tag_ids"`
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

	article, err := ac.Articles.CreateArticle(services.CreateArticleInput{
		WorkspaceID: workspaceID,
		Title:       input.Title,
		Content:     input.Content,
		CreatedByID: &user.ID,
		TagIDs:      input.TagIDs,
	})
	if err != nil {
		ac.Logger.Printf("Failed to create article: %v", err)
		return utils.ServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"article": article,
	})
}

func (ac *ArticleController) ListArticles(c *fiber.Ctx) error {
	workspaceID := utils.ParseUint(c.Params("workspaceID"))

	articles, err := ac.Articles.ListArticles(workspaceID)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"articles": articles,
	})
}

func (ac *ArticleController) GetArticle(c *fiber.Ctx) error {
	workspaceID := utils.ParseUint(c.Params("workspaceID"))

	article, err := ac.Articles.GetArticle(workspaceID, utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"article": article,
	})
}

func (ac *ArticleController) DeleteArticle(c *fiber.Ctx) error {
	workspaceID := utils.ParseUint(c.Params("workspaceID"))

	if err := ac.Articles.DeleteArticle(workspaceID, utils.ParseUint(c.Params("id"))); err != nil {
		return utils.ServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (ac *ArticleController) SubmitArticle(c *fiber.Ctx) error {
	workspaceID := utils.ParseUint(c.Params("workspaceID"))

	article, err := ac.Articles.Submit(workspaceID, utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"article": article,
	})
}

func (ac *ArticleController) ApproveArticle(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	workspaceID := utils.ParseUint(c.Params("workspaceID"))

	article, err := ac.Articles.Approve(workspaceID, utils.ParseUint(c.Params("id")), user)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"article": article,
	})
}

func (ac *ArticleController) ArchiveArticle(c *fiber.Ctx) error {
	workspaceID := utils.ParseUint(c.Params("workspaceID"))

	article, err := ac.Articles.Archive(workspaceID, utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"article": article,
	})
}

func (ac *ArticleController) SetArticleTags(c *fiber.Ctx) error {
	var input struct {
		TagIDs []uint `json:"tag_ids"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	workspaceID := utils.ParseUint(c.Params("workspaceID"))

	article, err := ac.Articles.SetTags(workspaceID, utils.ParseUint(c.Params("id")), input.TagIDs)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"article": article,
	})
}

// CreateVersion is the article update path: new content always lands as a
// new mirrored version.
func (ac *ArticleController) CreateVersion(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Title         string `json:"title" validate:"required,min=1,max=255"`
		Content       string `json:"content"`
		ChangeSummary string `json:"change_summary"`
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

	workspaceID := utils.ParseUint(c.Params("workspaceID"))

	version, err := ac.Versions.CreateVersion(c.UserContext(), workspaceID, utils.ParseUint(c.Params("id")), services.CreateVersionInput{
		Title:         input.Title,
		Content:       input.Content,
		EditedByID:    &user.ID,
		ChangeSummary: input.ChangeSummary,
	})
	if err != nil {
		ac.Logger.Printf("Failed to create version: %v", err)
		return utils.ServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"version": version,
	})
}

func (ac *ArticleController) ListVersions(c *fiber.Ctx) error {
	workspaceID := utils.ParseUint(c.Params("workspaceID"))

	versions, err := ac.Versions.ListVersions(workspaceID, utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"versions": versions,
	})
}

func (ac *ArticleController) GetCurrentVersion(c *fiber.Ctx) error {
	workspaceID := utils.ParseUint(c.Params("workspaceID"))

	version, err := ac.Versions.CurrentVersion(workspaceID, utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"version": version,
	})
}

func (ac *ArticleController) DeleteVersion(c *fiber.Ctx) error {
	workspaceID := utils.ParseUint(c.Params("workspaceID"))
	articleID := utils.ParseUint(c.Params("id"))
	versionID := utils.ParseUint(c.Params("versionID"))

	if err := ac.Versions.DeleteVersion(workspaceID, articleID, versionID); err != nil {
		return utils.ServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
