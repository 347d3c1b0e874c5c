package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"knowledgehub/models"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{models.ErrInvalidInput, fiber.StatusBadRequest},
		{models.ErrTagWorkspaceMismatch, fiber.StatusBadRequest},
		{fmt.Errorf("%w: tag x", models.ErrTagWorkspaceMismatch), fiber.StatusBadRequest},
		{models.ErrNotWorkspaceMember, fiber.StatusForbidden},
		{models.ErrArticleNotFound, fiber.StatusNotFound},
		{models.ErrDuplicateMembership, fiber.StatusConflict},
		{models.ErrDuplicateMirrorFile, fiber.StatusConflict},
		{fmt.Errorf("%w: quota", models.ErrMirrorUpload), fiber.StatusBadGateway},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, StatusForError(tc.err), "error %v", tc.err)
	}
}

func TestParseUint(t *testing.T) {
	assert.Equal(t, uint(12), ParseUint("12"))
	assert.Zero(t, ParseUint("not-a-number"))
	assert.Zero(t, ParseUint("-3"))
}
