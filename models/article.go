package models

import (
	"time"

	"gorm.io/gorm"
)

// Article statuses
const (
	StatusDraft    = "DRAFT"
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusArchived = "ARCHIVED"
)

// Article belongs to a workspace and carries a review lifecycle. Its
// authoritative content lives in the current ArticleVersion; Title and
// Content here are a denormalized copy of that version, kept in sync by
// the version engine.
type Article struct {
	gorm.Model
	WorkspaceID uint `gorm:"not null;index" json:"workspace_id"`

	Title   string `gorm:"not null" json:"title"`
	Content string `gorm:"type:text" json:"content"`

	Status string `gorm:"default:'DRAFT';index" json:"status"` // DRAFT, PENDING, APPROVED, ARCHIVED

	// Creator and reviewer references survive user deletion as NULLs
	CreatedByID  *uint      `gorm:"index" json:"created_by_id,omitempty"`
	ReviewedByID *uint      `json:"reviewed_by_id,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	ArchivedAt   *time.Time `json:"archived_at,omitempty"`

	// Relations
	Workspace  Workspace        `json:"-"`
	CreatedBy  *User            `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	ReviewedBy *User            `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Tags       []Tag            `gorm:"many2many:article_tags;" json:"tags,omitempty"`
	Versions   []ArticleVersion `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"versions,omitempty"`
	Documents  []Document       `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
}

// ArticleVersion is a content snapshot of an article. At most one version
// per article has IsCurrent set; version numbers start at 1 and are never
// reused, even after deletes.
type ArticleVersion struct {
	gorm.Model
	ArticleID uint `gorm:"not null;uniqueIndex:idx_article_version_number;index:idx_article_current" json:"article_id"`

	Title   string `gorm:"not null" json:"title"`
	Content string `gorm:"type:text" json:"content"`

	VersionNumber uint `gorm:"not null;uniqueIndex:idx_article_version_number" json:"version_number"`

	EditedByID *uint `json:"edited_by_id,omitempty"`

	IsCurrent     bool   `gorm:"default:false;index:idx_article_current" json:"is_current"`
	ChangeSummary string `gorm:"type:text" json:"change_summary"`

	// External mirror identifiers; informational back-reference only
	DriveFileID *string `json:"drive_file_id,omitempty"`
	DriveLink   *string `json:"drive_link,omitempty"`

	// Relations
	Article  Article `json:"-"`
	EditedBy *User   `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}
