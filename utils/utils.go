package utils

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"knowledgehub/models"
)

// GenerateRateLimitKey creates a unique key for rate limiting
func GenerateRateLimitKey(userID uint, workspaceID, path string) string {
	return fmt.Sprintf("rl:%d:%s:%s", userID, workspaceID, path)
}

// Pointer returns a pointer to the given value
func Pointer[T any](v T) *T {
	return &v
}

// ErrorResponse creates a standardized error response
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	response := fiber.Map{
		"success": false,
		"error":   message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	return c.Status(status).JSON(response)
}

// SuccessResponse creates a standardized success response
func SuccessResponse(data interface{}) fiber.Map {
	return fiber.Map{
		"success": true,
		"data":    data,
	}
}

// ParseUint safely parses a string to uint
func ParseUint(s string) uint {
	i, _ := strconv.ParseUint(s, 10, 32)
	return uint(i)
}

// StatusForError maps service-layer sentinel errors onto HTTP status codes.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrInvalidRole),
		errors.Is(err, models.ErrTagWorkspaceMismatch):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrNotWorkspaceAdmin),
		errors.Is(err, models.ErrNotWorkspaceMember):
		return fiber.StatusForbidden
	case errors.Is(err, models.ErrWorkspaceNotFound),
		errors.Is(err, models.ErrArticleNotFound),
		errors.Is(err, models.ErrVersionNotFound),
		errors.Is(err, models.ErrDocumentNotFound),
		errors.Is(err, models.ErrMembershipNotFound),
		errors.Is(err, models.ErrTagNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrDuplicateMembership),
		errors.Is(err, models.ErrDuplicateVersion),
		errors.Is(err, models.ErrDuplicateMirrorFile),
		errors.Is(err, models.ErrDuplicateTag):
		return fiber.StatusConflict
	case errors.Is(err, models.ErrMirrorUpload):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ServiceError writes the JSON response for a service-layer error.
func ServiceError(c *fiber.Ctx, err error) error {
	return c.Status(StatusForError(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
