package models

import "errors"

// Sentinel errors shared by the service layer. Controllers map these to
// HTTP status codes, so services never reason about transport concerns.
var (
	// Validation errors (-> 400)
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidRole          = errors.New("invalid membership role")
	ErrTagWorkspaceMismatch = errors.New("tag must belong to the same workspace as the article")

	// Conflict errors (-> 409)
	ErrDuplicateMembership = errors.New("user is already a member of this workspace")
	ErrDuplicateVersion    = errors.New("version number already exists for this article")
	ErrDuplicateMirrorFile = errors.New("mirror file id is already registered")
	ErrDuplicateTag        = errors.New("tag name already exists in this workspace")

	// Authorization errors (-> 403)
	ErrNotWorkspaceAdmin  = errors.New("operation requires workspace owner privileges")
	ErrNotWorkspaceMember = errors.New("user is not a member of this workspace")

	// Not-found errors (-> 404)
	ErrWorkspaceNotFound  = errors.New("workspace not found")
	ErrArticleNotFound    = errors.New("article not found")
	ErrVersionNotFound    = errors.New("article version not found")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrTagNotFound        = errors.New("tag not found")

	// Upstream mirror errors (-> 502); retriable by the caller
	ErrMirrorUpload = errors.New("mirror upload failed")
)
