package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"knowledgehub/models"
	"knowledgehub/storage"
)

func newVersionService(db *gorm.DB, mirror storage.Uploader) *VersionService {
	return NewVersionService(db, mirror, "folder-1", 5*time.Second, quietLogrus())
}

// countCurrent returns how many versions of the article carry the current
// flag; the invariant demands this never exceeds one.
func countCurrent(t *testing.T, db *gorm.DB, articleID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.ArticleVersion{}).
		Where("article_id = ? AND is_current = ?", articleID, true).
		Count(&n).Error)
	return n
}

func TestCreateVersionAssignsNumbersAndCurrentFlag(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "editor@example.com")
	workspace := createTestWorkspace(t, db, user)
	article := createTestArticle(t, db, workspace, user)

	mirror := storage.NewMemoryUploader()
	vs := newVersionService(db, mirror)

	for i, content := range []string{"one", "two", "three"} {
		version, err := vs.CreateVersion(context.Background(), workspace.ID, article.ID, CreateVersionInput{
			Title:      "Doc",
			Content:    content,
			EditedByID: &user.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, uint(i+1), version.VersionNumber)
		assert.True(t, version.IsCurrent)
		require.NotNil(t, version.DriveFileID)
		assert.NotEmpty(t, *version.DriveFileID)

		assert.EqualValues(t, 1, countCurrent(t, db, article.ID))
	}

	versions, err := vs.ListVersions(workspace.ID, article.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	// Newest first
	assert.Equal(t, uint(3), versions[0].VersionNumber)

	current, err := vs.CurrentVersion(workspace.ID, article.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(3), current.VersionNumber)
	assert.Equal(t, "three", current.Content)
}

func TestCreateVersionMirrorsTitleAndContent(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "editor@example.com")
	workspace := createTestWorkspace(t, db, user)
	article := createTestArticle(t, db, workspace, user)

	mirror := storage.NewMemoryUploader()
	vs := newVersionService(db, mirror)

	version, err := vs.CreateVersion(context.Background(), workspace.ID, article.ID, CreateVersionInput{
		Title:   "T3",
		Content: "C3",
	})
	require.NoError(t, err)

	require.NotNil(t, version.DriveFileID)
	uploaded, ok := mirror.Files[*version.DriveFileID]
	require.True(t, ok)
	assert.Equal(t, "Title: T3\n\nC3", string(uploaded))
	require.NotNil(t, version.DriveLink)
	assert.Contains(t, *version.DriveLink, *version.DriveFileID)
}

func TestCreateVersionTouchesArticle(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "editor@example.com")
	workspace := createTestWorkspace(t, db, user)
	article := createTestArticle(t, db, workspace, user)

	before := article.UpdatedAt
	time.Sleep(10 * time.Millisecond)

	vs := newVersionService(db, storage.NewMemoryUploader())
	_, err := vs.CreateVersion(context.Background(), workspace.ID, article.ID, CreateVersionInput{
		Title:   "Updated Title",
		Content: "Updated content",
	})
	require.NoError(t, err)

	var reloaded models.Article
	require.NoError(t, db.First(&reloaded, article.ID).Error)
	assert.True(t, reloaded.UpdatedAt.After(before), "updated_at should advance")
	// Denormalized copy stays in step with the current version
	assert.Equal(t, "Updated Title", reloaded.Title)
	assert.Equal(t, "Updated content", reloaded.Content)
}

func TestCreateVersionUploadFailureLeavesNoTrace(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "editor@example.com")
	workspace := createTestWorkspace(t, db, user)
	article := createTestArticle(t, db, workspace, user)

	mirror := storage.NewMemoryUploader()
	vs := newVersionService(db, mirror)

	// Establish a current version first
	v1, err := vs.CreateVersion(context.Background(), workspace.ID, article.ID, CreateVersionInput{
		Title:   "Doc",
		Content: "one",
	})
	require.NoError(t, err)

	mirror.Err = errors.New("quota exceeded")
	_, err = vs.CreateVersion(context.Background(), workspace.ID, article.ID, CreateVersionInput{
		Title:   "Doc",
		Content: "two",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrMirrorUpload))

	// No new row, the previous current version is untouched, and numbering
	// has not advanced.
	var total int64
	require.NoError(t, db.Model(&models.ArticleVersion{}).
		Where("article_id = ?", article.ID).Count(&total).Error)
	assert.EqualValues(t, 1, total)

	current, err := vs.CurrentVersion(workspace.ID, article.ID)
	require.NoError(t, err)
	assert.Equal(t, v1.ID, current.ID)
	assert.Equal(t, uint(1), current.VersionNumber)

	// Recovery: the next successful call gets number 2
	mirror.Err = nil
	v2, err := vs.CreateVersion(context.Background(), workspace.ID, article.ID, CreateVersionInput{
		Title:   "Doc",
		Content: "two",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(2), v2.VersionNumber)
}

func TestCreateVersionScenarioThirdVersion(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "editor@example.com")
	workspace := createTestWorkspace(t, db, user)
	article := createTestArticle(t, db, workspace, user)

	// Seed v1 and v2 directly, neither current
	for i := uint(1); i <= 2; i++ {
		require.NoError(t, db.Create(&models.ArticleVersion{
			ArticleID:     article.ID,
			Title:         "Doc",
			Content:       "old",
			VersionNumber: i,
			IsCurrent:     false,
		}).Error)
	}

	vs := newVersionService(db, storage.NewMemoryUploader())
	v3, err := vs.CreateVersion(context.Background(), workspace.ID, article.ID, CreateVersionInput{
		Title:      "T3",
		Content:    "C3",
		EditedByID: &user.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, uint(3), v3.VersionNumber)
	assert.True(t, v3.IsCurrent)
	require.NotNil(t, v3.DriveFileID)

	var olds []models.ArticleVersion
	require.NoError(t, db.Where("article_id = ? AND version_number < ?", article.ID, 3).Find(&olds).Error)
	require.Len(t, olds, 2)
	for _, old := range olds {
		assert.False(t, old.IsCurrent)
	}
}

func TestVersionNumbersNeverReusedAfterDelete(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "editor@example.com")
	workspace := createTestWorkspace(t, db, user)
	article := createTestArticle(t, db, workspace, user)

	vs := newVersionService(db, storage.NewMemoryUploader())

	var versions []*models.ArticleVersion
	for _, content := range []string{"one", "two", "three"} {
		v, err := vs.CreateVersion(context.Background(), workspace.ID, article.ID, CreateVersionInput{
			Title:   "Doc",
			Content: content,
		})
		require.NoError(t, err)
		versions = append(versions, v)
	}

	// Delete v2 (not current); its number stays reserved
	require.NoError(t, vs.DeleteVersion(workspace.ID, article.ID, versions[1].ID))

	v4, err := vs.CreateVersion(context.Background(), workspace.ID, article.ID, CreateVersionInput{
		Title:   "Doc",
		Content: "four",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(4), v4.VersionNumber)
}

func TestDeleteCurrentVersionRejected(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "editor@example.com")
	workspace := createTestWorkspace(t, db, user)
	article := createTestArticle(t, db, workspace, user)

	vs := newVersionService(db, storage.NewMemoryUploader())
	v1, err := vs.CreateVersion(context.Background(), workspace.ID, article.ID, CreateVersionInput{
		Title:   "Doc",
		Content: "one",
	})
	require.NoError(t, err)

	err = vs.DeleteVersion(workspace.ID, article.ID, v1.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
	assert.EqualValues(t, 1, countCurrent(t, db, article.ID))
}

func TestCreateVersionValidation(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "editor@example.com")
	workspace := createTestWorkspace(t, db, user)
	article := createTestArticle(t, db, workspace, user)

	mirror := storage.NewMemoryUploader()
	vs := newVersionService(db, mirror)

	_, err := vs.CreateVersion(context.Background(), workspace.ID, article.ID, CreateVersionInput{
		Title: "",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
	assert.Zero(t, mirror.Uploads, "validation failures must not reach the mirror")

	_, err = vs.CreateVersion(context.Background(), workspace.ID, 99999, CreateVersionInput{
		Title: "Doc",
	})
	assert.True(t, errors.Is(err, models.ErrArticleNotFound))
}

func TestCurrentVersionMissing(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "editor@example.com")
	workspace := createTestWorkspace(t, db, user)
	article := createTestArticle(t, db, workspace, user)

	vs := newVersionService(db, storage.NewMemoryUploader())
	_, err := vs.CurrentVersion(workspace.ID, article.ID)
	assert.True(t, errors.Is(err, models.ErrVersionNotFound))
}

func TestVersionOperationsScopedToWorkspace(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	intruder := createTestUser(t, db, "intruder@example.com")
	home := createTestWorkspace(t, db, owner)
	article := createTestArticle(t, db, home, owner)

	ws := NewWorkspaceService(db, quietLogger())
	foreign, err := ws.CreateWorkspace("Foreign", "", intruder)
	require.NoError(t, err)

	mirror := storage.NewMemoryUploader()
	vs := newVersionService(db, mirror)

	v1, err := vs.CreateVersion(context.Background(), home.ID, article.ID, CreateVersionInput{
		Title:   "Doc",
		Content: "one",
	})
	require.NoError(t, err)
	uploadsBefore := mirror.Uploads

	// Addressing the article through a workspace the caller happens to own
	// reads as not found, and nothing reaches the mirror.
	_, err = vs.CreateVersion(context.Background(), foreign.ID, article.ID, CreateVersionInput{
		Title:   "Doc",
		Content: "two",
	})
	assert.True(t, errors.Is(err, models.ErrArticleNotFound))
	assert.Equal(t, uploadsBefore, mirror.Uploads)

	_, err = vs.CurrentVersion(foreign.ID, article.ID)
	assert.True(t, errors.Is(err, models.ErrArticleNotFound))
	_, err = vs.ListVersions(foreign.ID, article.ID)
	assert.True(t, errors.Is(err, models.ErrArticleNotFound))
	err = vs.DeleteVersion(foreign.ID, article.ID, v1.ID)
	assert.True(t, errors.Is(err, models.ErrArticleNotFound))

	current, err := vs.CurrentVersion(home.ID, article.ID)
	require.NoError(t, err)
	assert.Equal(t, v1.ID, current.ID)
}

func TestConcurrentCreateVersionKeepsOneCurrent(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "editor@example.com")
	workspace := createTestWorkspace(t, db, user)
	article := createTestArticle(t, db, workspace, user)

	vs := newVersionService(db, storage.NewMemoryUploader())

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = vs.CreateVersion(context.Background(), workspace.ID, article.ID, CreateVersionInput{
				Title:   "Doc",
				Content: fmt.Sprintf("draft %d", i),
			})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	assert.EqualValues(t, 1, countCurrent(t, db, article.ID))

	// The numbers form a gap-free run 1..writers, whatever the interleaving
	versions, err := vs.ListVersions(workspace.ID, article.ID)
	require.NoError(t, err)
	require.Len(t, versions, writers)
	for i, v := range versions {
		assert.Equal(t, uint(writers-i), v.VersionNumber)
	}
}
