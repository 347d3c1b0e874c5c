package models

import "gorm.io/gorm"

// Document tracks a mirrored file; the bytes live with the external
// provider, only metadata and a link are stored locally.
type Document struct {
	gorm.Model
	WorkspaceID uint  `gorm:"not null;index" json:"workspace_id"`
	ArticleID   *uint `gorm:"index" json:"article_id,omitempty"`

	UploadedByID uint `gorm:"not null;index" json:"uploaded_by_id"`

	FileName    string `gorm:"not null" json:"file_name"`
	DriveFileID string `gorm:"not null;uniqueIndex" json:"drive_file_id"`
	DriveLink   string `gorm:"not null" json:"drive_link"`

	FileSize int64  `gorm:"not null" json:"file_size"`
	MimeType string `gorm:"not null" json:"mime_type"`

	// Relations
	Workspace  Workspace `json:"-"`
	Article    *Article  `json:"-"`
	UploadedBy User      `json:"-"`
}
