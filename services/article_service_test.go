package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledgehub/models"
)

func TestCreateArticleDefaultsToDraft(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "writer@example.com")
	workspace := createTestWorkspace(t, db, user)

	as := NewArticleService(db, quietLogger())
	article, err := as.CreateArticle(CreateArticleInput{
		WorkspaceID: workspace.ID,
		Title:       "Hello",
		Content:     "World",
		CreatedByID: &user.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, article.Status)
	assert.Nil(t, article.ReviewedAt)

	_, err = as.CreateArticle(CreateArticleInput{WorkspaceID: workspace.ID, Title: ""})
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	_, err = as.CreateArticle(CreateArticleInput{WorkspaceID: 99999, Title: "Hello"})
	assert.True(t, errors.Is(err, models.ErrWorkspaceNotFound))
}

func TestApproveRecordsReviewer(t *testing.T) {
	db := setupTestDB(t)
	writer := createTestUser(t, db, "writer@example.com")
	reviewer := createTestUser(t, db, "reviewer@example.com")
	workspace := createTestWorkspace(t, db, writer)
	article := createTestArticle(t, db, workspace, writer)

	as := NewArticleService(db, quietLogger())
	approved, err := as.Approve(workspace.ID, article.ID, reviewer)
	require.NoError(t, err)

	// The returned struct reflects the row as written, not the pre-update copy
	assert.Equal(t, models.StatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedByID)
	require.NotNil(t, approved.ReviewedAt)

	var reloaded models.Article
	require.NoError(t, db.First(&reloaded, approved.ID).Error)
	assert.Equal(t, models.StatusApproved, reloaded.Status)
	require.NotNil(t, reloaded.ReviewedByID)
	assert.Equal(t, reviewer.ID, *reloaded.ReviewedByID)
	require.NotNil(t, reloaded.ReviewedAt)
	assert.WithinDuration(t, time.Now(), *reloaded.ReviewedAt, 5*time.Second)

	// No state machine: approving again (or after archive) is accepted
	_, err = as.Archive(workspace.ID, article.ID)
	require.NoError(t, err)
	_, err = as.Approve(workspace.ID, article.ID, reviewer)
	require.NoError(t, err)
}

func TestArchiveSetsTimestamp(t *testing.T) {
	db := setupTestDB(t)
	writer := createTestUser(t, db, "writer@example.com")
	workspace := createTestWorkspace(t, db, writer)
	article := createTestArticle(t, db, workspace, writer)

	as := NewArticleService(db, quietLogger())
	archived, err := as.Archive(workspace.ID, article.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusArchived, archived.Status)
	require.NotNil(t, archived.ArchivedAt)

	var reloaded models.Article
	require.NoError(t, db.First(&reloaded, article.ID).Error)
	assert.Equal(t, models.StatusArchived, reloaded.Status)
	require.NotNil(t, reloaded.ArchivedAt)
}

func TestSubmitMarksPending(t *testing.T) {
	db := setupTestDB(t)
	writer := createTestUser(t, db, "writer@example.com")
	workspace := createTestWorkspace(t, db, writer)
	article := createTestArticle(t, db, workspace, writer)

	as := NewArticleService(db, quietLogger())
	_, err := as.Submit(workspace.ID, article.ID)
	require.NoError(t, err)

	var reloaded models.Article
	require.NoError(t, db.First(&reloaded, article.ID).Error)
	assert.Equal(t, models.StatusPending, reloaded.Status)
}

func TestSetTagsRejectsForeignWorkspaceTags(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "writer@example.com")
	home := createTestWorkspace(t, db, user)
	article := createTestArticle(t, db, home, user)

	ws := NewWorkspaceService(db, quietLogger())
	other, err := ws.CreateWorkspace("Other", "", user)
	require.NoError(t, err)

	homeTag, err := ws.CreateTag(home.ID, "golang")
	require.NoError(t, err)
	foreignTag, err := ws.CreateTag(other.ID, "python")
	require.NoError(t, err)

	as := NewArticleService(db, quietLogger())

	// Same-workspace tag is accepted
	tagged, err := as.SetTags(home.ID, article.ID, []uint{homeTag.ID})
	require.NoError(t, err)
	require.Len(t, tagged.Tags, 1)

	// Cross-workspace tag is a validation error, and the association stays
	// as it was
	_, err = as.SetTags(home.ID, article.ID, []uint{foreignTag.ID})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrTagWorkspaceMismatch))

	reloaded, err := as.GetArticle(home.ID, article.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Tags, 1)
	assert.Equal(t, homeTag.ID, reloaded.Tags[0].ID)

	// The check runs on creation too
	_, err = as.CreateArticle(CreateArticleInput{
		WorkspaceID: home.ID,
		Title:       "Tagged wrong",
		TagIDs:      []uint{foreignTag.ID},
	})
	assert.True(t, errors.Is(err, models.ErrTagWorkspaceMismatch))
}

func TestSetTagsUnknownTag(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "writer@example.com")
	workspace := createTestWorkspace(t, db, user)
	article := createTestArticle(t, db, workspace, user)

	as := NewArticleService(db, quietLogger())
	_, err := as.SetTags(workspace.ID, article.ID, []uint{424242})
	assert.True(t, errors.Is(err, models.ErrTagNotFound))
}

func TestDeleteArticleRemovesVersions(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "writer@example.com")
	workspace := createTestWorkspace(t, db, user)
	article := createTestArticle(t, db, workspace, user)

	require.NoError(t, db.Create(&models.ArticleVersion{
		ArticleID:     article.ID,
		Title:         "Doc",
		Content:       "one",
		VersionNumber: 1,
		IsCurrent:     true,
	}).Error)

	as := NewArticleService(db, quietLogger())
	require.NoError(t, as.DeleteArticle(workspace.ID, article.ID))

	assert.Zero(t, tableCount(t, db, &models.ArticleVersion{}, "article_id = ?", article.ID))
	_, err := as.GetArticle(workspace.ID, article.ID)
	assert.True(t, errors.Is(err, models.ErrArticleNotFound))
}

func TestListArticlesScopedToWorkspace(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "writer@example.com")
	first := createTestWorkspace(t, db, user)
	article := createTestArticle(t, db, first, user)

	ws := NewWorkspaceService(db, quietLogger())
	second, err := ws.CreateWorkspace("Second", "", user)
	require.NoError(t, err)

	as := NewArticleService(db, quietLogger())
	articles, err := as.ListArticles(first.ID)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, article.ID, articles[0].ID)

	articles, err = as.ListArticles(second.ID)
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestArticleLookupsScopedToWorkspace(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	intruder := createTestUser(t, db, "intruder@example.com")
	home := createTestWorkspace(t, db, owner)
	article := createTestArticle(t, db, home, owner)

	ws := NewWorkspaceService(db, quietLogger())
	foreign, err := ws.CreateWorkspace("Foreign", "", intruder)
	require.NoError(t, err)

	as := NewArticleService(db, quietLogger())

	// Owning another workspace grants nothing here: addressing the article
	// through that workspace reads as not found.
	_, err = as.GetArticle(foreign.ID, article.ID)
	assert.True(t, errors.Is(err, models.ErrArticleNotFound))
	_, err = as.Archive(foreign.ID, article.ID)
	assert.True(t, errors.Is(err, models.ErrArticleNotFound))
	_, err = as.Approve(foreign.ID, article.ID, intruder)
	assert.True(t, errors.Is(err, models.ErrArticleNotFound))
	_, err = as.Submit(foreign.ID, article.ID)
	assert.True(t, errors.Is(err, models.ErrArticleNotFound))
	_, err = as.SetTags(foreign.ID, article.ID, nil)
	assert.True(t, errors.Is(err, models.ErrArticleNotFound))
	err = as.DeleteArticle(foreign.ID, article.ID)
	assert.True(t, errors.Is(err, models.ErrArticleNotFound))

	// The article is untouched
	var reloaded models.Article
	require.NoError(t, db.First(&reloaded, article.ID).Error)
	assert.Equal(t, models.StatusDraft, reloaded.Status)
}
