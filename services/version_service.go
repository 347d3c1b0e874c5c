package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"knowledgehub/models"
	"knowledgehub/storage"
)

// VersionService is the only sanctioned way to change an article's content.
// Every new version is mirrored to the external provider before any durable
// row is written, so a failed upload never advances numbering or flips the
// current flag.
type VersionService struct {
	DB            *gorm.DB
	Mirror        storage.Uploader
	FolderID      string
	UploadTimeout time.Duration
	Logger        *logrus.Logger
}

func NewVersionService(db *gorm.DB, mirror storage.Uploader, folderID string, uploadTimeout time.Duration, logger *logrus.Logger) *VersionService {
	return &VersionService{
		DB:            db,
		Mirror:        mirror,
		FolderID:      folderID,
		UploadTimeout: uploadTimeout,
		Logger:        logger,
	}
}

type CreateVersionInput struct {
	Title         string
	Content       string
	EditedByID    *uint
	ChangeSummary string
}

// CreateVersion snapshots new content for an article, mirrors it, and makes
// it the article's single current version. The article lookup is scoped to
// the workspace, so the operation cannot reach across tenants.
//
// The mirror upload fully resolves before the transaction begins, so no lock
// is held across the network call and a provider fault leaves the previous
// current version untouched. Inside the transaction the parent article row is
// locked, which serializes concurrent writers for the same article.
func (vs *VersionService) CreateVersion(ctx context.Context, workspaceID, articleID uint, input CreateVersionInput) (*models.ArticleVersion, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", models.ErrInvalidInput)
	}

	article, err := vs.loadArticle(workspaceID, articleID)
	if err != nil {
		return nil, err
	}

	// The peeked number is only used to label the export artifact; the
	// authoritative number is assigned under lock below.
	exportName := fmt.Sprintf("%s_v%d_%s.txt", article.Title, vs.peekNextNumber(articleID), uuid.NewString()[:8])
	artifact := []byte(fmt.Sprintf("Title: %s\n\n%s", input.Title, input.Content))

	uploadCtx, cancel := context.WithTimeout(ctx, vs.UploadTimeout)
	defer cancel()

	mirrored, err := vs.Mirror.Upload(uploadCtx, exportName, artifact, vs.FolderID)
	if err != nil {
		sentry.CaptureException(err)
		vs.Logger.WithError(err).WithField("article_id", articleID).Error("version mirror upload failed")
		return nil, fmt.Errorf("%w: %v", models.ErrMirrorUpload, err)
	}

	tx := vs.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	// Serialize concurrent version writers on the parent article row.
	// SQLite has a single writer and rejects FOR UPDATE, hence the dialect
	// switch.
	locked := tx
	if tx.Dialector.Name() == "postgres" {
		locked = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := locked.Where("workspace_id = ?", workspaceID).First(article, articleID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrArticleNotFound
		}
		return nil, err
	}

	// Deleted versions keep their numbers reserved, so the max is computed
	// over soft-deleted rows too.
	var maxNumber uint
	if err := tx.Unscoped().Model(&models.ArticleVersion{}).
		Where("article_id = ?", articleID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&maxNumber).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Model(&models.ArticleVersion{}).
		Where("article_id = ? AND is_current = ?", articleID, true).
		Update("is_current", false).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	version := models.ArticleVersion{
		ArticleID:     articleID,
		Title:         input.Title,
		Content:       input.Content,
		VersionNumber: maxNumber + 1,
		EditedByID:    input.EditedByID,
		IsCurrent:     true,
		ChangeSummary: input.ChangeSummary,
		DriveFileID:   &mirrored.FileID,
		DriveLink:     &mirrored.ViewLink,
	}

	if err := tx.Create(&version).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.ErrDuplicateVersion
		}
		return nil, err
	}

	// Keep the denormalized copy on the article in step with the new
	// current version, and advance updated_at.
	if err := tx.Model(article).Updates(map[string]interface{}{
		"title":      input.Title,
		"content":    input.Content,
		"updated_at": time.Now(),
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	vs.Logger.WithFields(logrus.Fields{
		"article_id":     articleID,
		"version_number": version.VersionNumber,
		"drive_file_id":  mirrored.FileID,
	}).Info("created article version")

	return &version, nil
}

// CurrentVersion returns the unique version with is_current set for the
// article.
func (vs *VersionService) CurrentVersion(workspaceID, articleID uint) (*models.ArticleVersion, error) {
	if _, err := vs.loadArticle(workspaceID, articleID); err != nil {
		return nil, err
	}

	var version models.ArticleVersion
	err := vs.DB.Where("article_id = ? AND is_current = ?", articleID, true).First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrVersionNotFound
		}
		return nil, err
	}
	return &version, nil
}

// ListVersions returns the article's versions, newest first.
func (vs *VersionService) ListVersions(workspaceID, articleID uint) ([]models.ArticleVersion, error) {
	if _, err := vs.loadArticle(workspaceID, articleID); err != nil {
		return nil, err
	}

	var versions []models.ArticleVersion
	err := vs.DB.Where("article_id = ?", articleID).
		Order("version_number DESC").
		Find(&versions).Error
	return versions, err
}

// DeleteVersion removes a historical version. The current version cannot be
// deleted; its number stays reserved either way.
func (vs *VersionService) DeleteVersion(workspaceID, articleID, versionID uint) error {
	if _, err := vs.loadArticle(workspaceID, articleID); err != nil {
		return err
	}

	var version models.ArticleVersion
	err := vs.DB.Where("article_id = ?", articleID).First(&version, versionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrVersionNotFound
		}
		return err
	}
	if version.IsCurrent {
		return fmt.Errorf("%w: the current version cannot be deleted", models.ErrInvalidInput)
	}
	return vs.DB.Delete(&version).Error
}

// loadArticle resolves the article within the workspace. A hit in another
// workspace reads the same as no article at all.
func (vs *VersionService) loadArticle(workspaceID, articleID uint) (*models.Article, error) {
	var article models.Article
	err := vs.DB.Where("workspace_id = ?", workspaceID).First(&article, articleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

func (vs *VersionService) peekNextNumber(articleID uint) uint {
	var maxNumber uint
	vs.DB.Unscoped().Model(&models.ArticleVersion{}).
		Where("article_id = ?", articleID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&maxNumber)
	return maxNumber + 1
}
