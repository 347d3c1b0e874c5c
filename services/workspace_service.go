package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"knowledgehub/models"
)

// WorkspaceService owns tenancy: workspaces, memberships and the role
// predicate consulted before workspace-scoped mutations.
type WorkspaceService struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewWorkspaceService(db *gorm.DB, logger *log.Logger) *WorkspaceService {
	return &WorkspaceService{DB: db, Logger: logger}
}

// CreateWorkspace creates the workspace together with the creator's founding
// OWNER membership. The two writes share one transaction; a workspace is
// never observable without at least one membership.
func (ws *WorkspaceService) CreateWorkspace(name, description string, creator *models.User) (*models.Workspace, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrInvalidInput)
	}

	workspace := models.Workspace{
		Name:        name,
		Description: description,
		CreatedByID: creator.ID,
	}

	tx := ws.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	if err := tx.Create(&workspace).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	membership := models.WorkspaceMembership{
		WorkspaceID: workspace.ID,
		UserID:      creator.ID,
		Role:        models.RoleOwner,
	}
	if err := tx.Create(&membership).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	ws.Logger.Printf("Created workspace %d (%s) for user %d", workspace.ID, workspace.Name, creator.ID)
	return &workspace, nil
}

// GetWorkspace loads a workspace by id.
func (ws *WorkspaceService) GetWorkspace(workspaceID uint) (*models.Workspace, error) {
	var workspace models.Workspace
	if err := ws.DB.First(&workspace, workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrWorkspaceNotFound
		}
		return nil, err
	}
	return &workspace, nil
}

// ListWorkspaces returns the workspaces the user is a member of.
func (ws *WorkspaceService) ListWorkspaces(userID uint) ([]models.Workspace, error) {
	var workspaces []models.Workspace
	err := ws.DB.
		Joins("JOIN workspace_memberships ON workspace_memberships.workspace_id = workspaces.id").
		Where("workspace_memberships.user_id = ? AND workspace_memberships.deleted_at IS NULL", userID).
		Order("workspaces.created_at DESC").
		Find(&workspaces).Error
	return workspaces, err
}

// DeleteWorkspace removes the workspace and everything it owns.
func (ws *WorkspaceService) DeleteWorkspace(workspaceID uint) error {
	var workspace models.Workspace
	if err := ws.DB.First(&workspace, workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrWorkspaceNotFound
		}
		return err
	}

	tx := ws.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var articleIDs []uint
	if err := tx.Model(&models.Article{}).Where("workspace_id = ?", workspaceID).Pluck("id", &articleIDs).Error; err != nil {
		tx.Rollback()
		return err
	}
	if len(articleIDs) > 0 {
		if err := tx.Where("article_id IN ?", articleIDs).Delete(&models.ArticleVersion{}).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	for _, model := range []interface{}{
		&models.Document{},
		&models.Article{},
		&models.Tag{},
	} {
		if err := tx.Where("workspace_id = ?", workspaceID).Delete(model).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Unscoped().Where("workspace_id = ?", workspaceID).Delete(&models.WorkspaceMembership{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&workspace).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// AddMember grants a user a role in the workspace. A user holds exactly one
// role per workspace; a second grant is a conflict, not an update.
func (ws *WorkspaceService) AddMember(workspaceID, userID uint, role string) (*models.WorkspaceMembership, error) {
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidRole, role)
	}

	if _, err := ws.GetWorkspace(workspaceID); err != nil {
		return nil, err
	}

	membership := models.WorkspaceMembership{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
	}
	if err := ws.DB.Create(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.ErrDuplicateMembership
		}
		return nil, err
	}
	return &membership, nil
}

// RemoveMember drops a user's membership from the workspace. The row is
// removed outright so the user can be re-invited later without tripping the
// (workspace, user) uniqueness index.
func (ws *WorkspaceService) RemoveMember(workspaceID, userID uint) error {
	result := ws.DB.Unscoped().
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Delete(&models.WorkspaceMembership{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrMembershipNotFound
	}
	return nil
}

// MemberRole returns the user's role in the workspace.
func (ws *WorkspaceService) MemberRole(userID, workspaceID uint) (string, error) {
	var membership models.WorkspaceMembership
	err := ws.DB.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", models.ErrNotWorkspaceMember
		}
		return "", err
	}
	return membership.Role, nil
}

// IsWorkspaceAdmin reports whether the user holds the owner role in the
// workspace. A nil user or a missing membership is an ordinary false, never
// an error.
func (ws *WorkspaceService) IsWorkspaceAdmin(user *models.User, workspaceID uint) bool {
	if user == nil {
		return false
	}

	role, err := ws.MemberRole(user.ID, workspaceID)
	if err != nil {
		return false
	}
	return role == models.RoleOwner
}

// CreateTag registers a workspace-scoped tag.
func (ws *WorkspaceService) CreateTag(workspaceID uint, name string) (*models.Tag, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: tag name is required", models.ErrInvalidInput)
	}
	if _, err := ws.GetWorkspace(workspaceID); err != nil {
		return nil, err
	}

	tag := models.Tag{WorkspaceID: workspaceID, Name: name}
	if err := ws.DB.Create(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.ErrDuplicateTag
		}
		return nil, err
	}
	return &tag, nil
}

// ListTags returns the workspace's tags ordered by name.
func (ws *WorkspaceService) ListTags(workspaceID uint) ([]models.Tag, error) {
	var tags []models.Tag
	err := ws.DB.Where("workspace_id = ?", workspaceID).Order("name").Find(&tags).Error
	return tags, err
}
