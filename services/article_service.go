package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"knowledgehub/models"
)

// ArticleService manages the article aggregate: lifecycle status and the
// workspace-scoped tag associations.
type ArticleService struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewArticleService(db *gorm.DB, logger *log.Logger) *ArticleService {
	return &ArticleService{DB: db, Logger: logger}
}

type CreateArticleInput struct {
	WorkspaceID uint
	Title       string
	Content     string
	CreatedByID *uint
	TagIDs      []uint
}

// CreateArticle persists a new DRAFT article. Content changes after creation
// go through the version engine.
func (as *ArticleService) CreateArticle(input CreateArticleInput) (*models.Article, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", models.ErrInvalidInput)
	}

	var workspace models.Workspace
	if err := as.DB.First(&workspace, input.WorkspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrWorkspaceNotFound
		}
		return nil, err
	}

	tags, err := as.loadWorkspaceTags(input.WorkspaceID, input.TagIDs)
	if err != nil {
		return nil, err
	}

	article := models.Article{
		WorkspaceID: input.WorkspaceID,
		Title:       input.Title,
		Content:     input.Content,
		Status:      models.StatusDraft,
		CreatedByID: input.CreatedByID,
		Tags:        tags,
	}
	if err := as.DB.Create(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// GetArticle loads an article with its tags. The lookup is scoped to the
// workspace; an article addressed through another workspace's path does not
// exist as far as the caller is concerned.
func (as *ArticleService) GetArticle(workspaceID, articleID uint) (*models.Article, error) {
	var article models.Article
	err := as.DB.Preload("Tags").
		Where("workspace_id = ?", workspaceID).
		First(&article, articleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

// ListArticles returns the workspace's articles, newest first.
func (as *ArticleService) ListArticles(workspaceID uint) ([]models.Article, error) {
	var articles []models.Article
	err := as.DB.Preload("Tags").
		Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").
		Find(&articles).Error
	return articles, err
}

// DeleteArticle removes the article and its versions and documents.
func (as *ArticleService) DeleteArticle(workspaceID, articleID uint) error {
	var article models.Article
	err := as.DB.Where("workspace_id = ?", workspaceID).First(&article, articleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrArticleNotFound
		}
		return err
	}

	tx := as.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := tx.Where("article_id = ?", articleID).Delete(&models.ArticleVersion{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("article_id = ?", articleID).Delete(&models.Document{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&article).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// Submit marks the article as waiting for review.
func (as *ArticleService) Submit(workspaceID, articleID uint) (*models.Article, error) {
	return as.setStatus(workspaceID, articleID, map[string]interface{}{
		"status": models.StatusPending,
	})
}

// Approve sets the article APPROVED and records the reviewer. There is no
// precondition on the prior status; a strict workflow is the caller's
// concern.
func (as *ArticleService) Approve(workspaceID, articleID uint, reviewer *models.User) (*models.Article, error) {
	now := time.Now()
	return as.setStatus(workspaceID, articleID, map[string]interface{}{
		"status":         models.StatusApproved,
		"reviewed_by_id": reviewer.ID,
		"reviewed_at":    &now,
	})
}

// Archive sets the article ARCHIVED. Like Approve, it applies from any
// status.
func (as *ArticleService) Archive(workspaceID, articleID uint) (*models.Article, error) {
	now := time.Now()
	return as.setStatus(workspaceID, articleID, map[string]interface{}{
		"status":      models.StatusArchived,
		"archived_at": &now,
	})
}

// SetTags replaces the article's tag associations. Every tag must belong to
// the article's workspace; the check runs on every mutation, not only at
// creation.
func (as *ArticleService) SetTags(workspaceID, articleID uint, tagIDs []uint) (*models.Article, error) {
	article, err := as.GetArticle(workspaceID, articleID)
	if err != nil {
		return nil, err
	}

	tags, err := as.loadWorkspaceTags(article.WorkspaceID, tagIDs)
	if err != nil {
		return nil, err
	}

	if err := as.DB.Model(article).Association("Tags").Replace(tags); err != nil {
		return nil, err
	}
	article.Tags = tags
	return article, nil
}

func (as *ArticleService) setStatus(workspaceID, articleID uint, updates map[string]interface{}) (*models.Article, error) {
	article, err := as.GetArticle(workspaceID, articleID)
	if err != nil {
		return nil, err
	}
	if err := as.DB.Model(article).Updates(updates).Error; err != nil {
		return nil, err
	}
	// Reload so the caller always sees the row as written, not the in-memory
	// struct plus GORM's map write-back.
	return as.GetArticle(workspaceID, articleID)
}

// loadWorkspaceTags resolves tag ids and rejects any tag scoped to a
// different workspace.
func (as *ArticleService) loadWorkspaceTags(workspaceID uint, tagIDs []uint) ([]models.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}

	var tags []models.Tag
	if err := as.DB.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(tagIDs) {
		return nil, models.ErrTagNotFound
	}
	for _, tag := range tags {
		if tag.WorkspaceID != workspaceID {
			return nil, fmt.Errorf("%w: tag %q belongs to workspace %d",
				models.ErrTagWorkspaceMismatch, tag.Name, tag.WorkspaceID)
		}
	}
	return tags, nil
}
