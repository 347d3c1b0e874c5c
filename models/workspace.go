package models

import "gorm.io/gorm"

// Workspace membership roles
const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// Workspace is the tenant boundary; it owns articles, tags, documents and memberships
type Workspace struct {
	gorm.Model
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	CreatedByID uint   `gorm:"not null;index" json:"created_by_id"`

	// Relations
	CreatedBy   User                  `json:"-"`
	Memberships []WorkspaceMembership `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE" json:"memberships,omitempty"`
	Tags        []Tag                 `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
	Articles    []Article             `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE" json:"articles,omitempty"`
	Documents   []Document            `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
}

// WorkspaceMembership grants a user a role within a workspace.
// A user has exactly one membership per workspace.
type WorkspaceMembership struct {
	gorm.Model
	WorkspaceID uint   `gorm:"not null;uniqueIndex:idx_workspace_user" json:"workspace_id"`
	UserID      uint   `gorm:"not null;uniqueIndex:idx_workspace_user;index" json:"user_id"`
	Role        string `gorm:"not null;default:'viewer'" json:"role"` // owner, editor, viewer

	// Relations
	Workspace Workspace `json:"-"`
	User      User      `json:"-"`
}

// Tag is a named label scoped to a single workspace. Names are unique
// within the workspace, not globally.
type Tag struct {
	gorm.Model
	WorkspaceID uint   `gorm:"not null;uniqueIndex:idx_workspace_tag_name" json:"workspace_id"`
	Name        string `gorm:"not null;uniqueIndex:idx_workspace_tag_name" json:"name"`

	// Relations
	Workspace Workspace `json:"-"`
	Articles  []Article `gorm:"many2many:article_tags;" json:"articles,omitempty"`
}

// ValidRole reports whether role is one of the defined membership roles.
func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleEditor, RoleViewer:
		return true
	}
	return false
}
