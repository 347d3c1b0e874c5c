package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"knowledgehub/models"
	"knowledgehub/storage"
)

// DocumentService registers mirrored files: bytes go to the external
// provider first, the metadata row is written only after the upload
// succeeded.
type DocumentService struct {
	DB            *gorm.DB
	Mirror        storage.Uploader
	FolderID      string
	UploadTimeout time.Duration
	Logger        *logrus.Logger
}

func NewDocumentService(db *gorm.DB, mirror storage.Uploader, folderID string, uploadTimeout time.Duration, logger *logrus.Logger) *DocumentService {
	return &DocumentService{
		DB:            db,
		Mirror:        mirror,
		FolderID:      folderID,
		UploadTimeout: uploadTimeout,
		Logger:        logger,
	}
}

type RegisterDocumentInput struct {
	WorkspaceID uint
	ArticleID   *uint
	UploaderID  uint
	FileName    string
	Content     []byte
	MimeType    string
}

// RegisterDocument mirrors the bytes and persists the document metadata. A
// failed upload leaves no row behind; a provider file id collision is a
// conflict, never a silent overwrite.
func (ds *DocumentService) RegisterDocument(ctx context.Context, input RegisterDocumentInput) (*models.Document, error) {
	if input.FileName == "" {
		return nil, fmt.Errorf("%w: file name is required", models.ErrInvalidInput)
	}
	if len(input.Content) == 0 {
		return nil, fmt.Errorf("%w: file is empty", models.ErrInvalidInput)
	}

	var workspace models.Workspace
	if err := ds.DB.First(&workspace, input.WorkspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrWorkspaceNotFound
		}
		return nil, err
	}
	if input.ArticleID != nil {
		var article models.Article
		if err := ds.DB.First(&article, *input.ArticleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.ErrArticleNotFound
			}
			return nil, err
		}
		if article.WorkspaceID != input.WorkspaceID {
			return nil, fmt.Errorf("%w: article %d belongs to another workspace",
				models.ErrInvalidInput, article.ID)
		}
	}

	uploadCtx, cancel := context.WithTimeout(ctx, ds.UploadTimeout)
	defer cancel()

	mirrored, err := ds.Mirror.Upload(uploadCtx, input.FileName, input.Content, ds.FolderID)
	if err != nil {
		sentry.CaptureException(err)
		ds.Logger.WithError(err).WithFields(logrus.Fields{
			"workspace_id": input.WorkspaceID,
			"file_name":    input.FileName,
		}).Error("document mirror upload failed")
		return nil, fmt.Errorf("%w: %v", models.ErrMirrorUpload, err)
	}

	document := models.Document{
		WorkspaceID:  input.WorkspaceID,
		ArticleID:    input.ArticleID,
		UploadedByID: input.UploaderID,
		FileName:     input.FileName,
		DriveFileID:  mirrored.FileID,
		DriveLink:    mirrored.ViewLink,
		FileSize:     int64(len(input.Content)),
		MimeType:     input.MimeType,
	}
	if err := ds.DB.Create(&document).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.ErrDuplicateMirrorFile
		}
		return nil, err
	}

	ds.Logger.WithFields(logrus.Fields{
		"document_id":   document.ID,
		"workspace_id":  input.WorkspaceID,
		"drive_file_id": mirrored.FileID,
		"size":          document.FileSize,
	}).Info("registered document")

	return &document, nil
}

// GetDocument loads a document by id within a workspace.
func (ds *DocumentService) GetDocument(workspaceID, documentID uint) (*models.Document, error) {
	var document models.Document
	err := ds.DB.Where("workspace_id = ?", workspaceID).First(&document, documentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrDocumentNotFound
		}
		return nil, err
	}
	return &document, nil
}

// ListDocuments returns the workspace's documents, optionally narrowed to
// one article, newest first.
func (ds *DocumentService) ListDocuments(workspaceID uint, articleID *uint) ([]models.Document, error) {
	query := ds.DB.Where("workspace_id = ?", workspaceID)
	if articleID != nil {
		query = query.Where("article_id = ?", *articleID)
	}

	var documents []models.Document
	err := query.Order("created_at DESC").Find(&documents).Error
	return documents, err
}

// DeleteDocument removes the metadata row. The mirrored copy is left with
// the provider.
func (ds *DocumentService) DeleteDocument(workspaceID, documentID uint) error {
	document, err := ds.GetDocument(workspaceID, documentID)
	if err != nil {
		return err
	}
	return ds.DB.Delete(document).Error
}
