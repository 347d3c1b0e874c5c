package main

import (
	"context"
	"log"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"knowledgehub/config"
	controller "knowledgehub/controllers"
	"knowledgehub/middleware"
	"knowledgehub/routes"
	"knowledgehub/services"
	"knowledgehub/storage"
)

func main() {
	// Initialize logger
	appLogger := log.New(os.Stdout, "KNOWLEDGEHUB: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		appLogger.Fatalf("Failed to load configuration: %v", err)
	}

	// Error reporting
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			appLogger.Printf("Sentry init failed: %v", err)
		}
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		appLogger.Fatalf("Failed to connect to database: %v", err)
	}

	// Structured logger for the storage and service layers
	serviceLogger := logrus.New()
	serviceLogger.SetFormatter(&logrus.JSONFormatter{})

	// Blob mirror client. A broken credentials file surfaces per-upload
	// rather than crashing the process.
	var mirror storage.Uploader
	driveUploader, err := storage.NewDriveUploader(context.Background(),
		config.AppConfig.Drive.CredentialsFile, serviceLogger)
	if err != nil {
		appLogger.Printf("Drive client unavailable, uploads will fail: %v", err)
		mirror = storage.FailingUploader{Err: err}
	} else {
		mirror = driveUploader
	}

	// Wire services
	workspaceService := services.NewWorkspaceService(config.DB, log.New(os.Stdout, "WORKSPACE: ", log.LstdFlags))
	articleService := services.NewArticleService(config.DB, log.New(os.Stdout, "ARTICLE: ", log.LstdFlags))
	versionService := services.NewVersionService(config.DB, mirror,
		config.AppConfig.Drive.FolderID, config.AppConfig.Drive.UploadTimeout, serviceLogger)
	documentService := services.NewDocumentService(config.DB, mirror,
		config.AppConfig.Drive.FolderID, config.AppConfig.Drive.UploadTimeout, serviceLogger)

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Setup routes
	routes.SetupAuthRoutes(app, config.DB)
	routes.SetupAPIRoutes(app, routes.Controllers{
		Workspaces: controller.NewWorkspaceController(workspaceService, log.New(os.Stdout, "WORKSPACE: ", log.LstdFlags)),
		Articles:   controller.NewArticleController(articleService, versionService, log.New(os.Stdout, "ARTICLE: ", log.LstdFlags)),
		Documents:  controller.NewDocumentController(documentService, log.New(os.Stdout, "DOCUMENT: ", log.LstdFlags)),
		Workspace:  workspaceService,
	})

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Knowledge Platform API 🚀",
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Start server
	appLogger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		appLogger.Fatalf("Failed to start server: %v", err)
	}
}
