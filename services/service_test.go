package services

import (
	"fmt"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"knowledgehub/config"
	"knowledgehub/models"
)

// setupTestDB opens a fresh in-memory sqlite database, named per test so
// parallel tests never share state, and migrates the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the shared-cache database alive for the
	// whole test.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.MigrateDB(db))
	return db
}

func quietLogrus() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{
		Email:        email,
		PasswordHash: "x",
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestWorkspace(t *testing.T, db *gorm.DB, creator *models.User) *models.Workspace {
	t.Helper()
	ws := NewWorkspaceService(db, quietLogger())
	workspace, err := ws.CreateWorkspace("Test Workspace", "", creator)
	require.NoError(t, err)
	return workspace
}

func createTestArticle(t *testing.T, db *gorm.DB, workspace *models.Workspace, creator *models.User) *models.Article {
	t.Helper()
	as := NewArticleService(db, quietLogger())
	article, err := as.CreateArticle(CreateArticleInput{
		WorkspaceID: workspace.ID,
		Title:       "First Article",
		Content:     "Initial content",
		CreatedByID: &creator.ID,
	})
	require.NoError(t, err)
	return article
}
