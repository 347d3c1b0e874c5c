package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// UploadResult carries the provider-assigned identifiers for a mirrored file.
type UploadResult struct {
	FileID   string
	ViewLink string
}

// Uploader mirrors file bytes to an external storage provider. Implementations
// must treat auth, quota, network and timeout faults as upload errors; callers
// abort their operation before writing any durable row when Upload fails.
type Uploader interface {
	Upload(ctx context.Context, name string, content []byte, folderID string) (*UploadResult, error)
}

// FailingUploader stands in when no mirror client could be built (for
// example, missing credentials); every upload fails with the stored error so
// the operation aborts instead of the process crashing.
type FailingUploader struct {
	Err error
}

func (f FailingUploader) Upload(ctx context.Context, name string, content []byte, folderID string) (*UploadResult, error) {
	return nil, fmt.Errorf("mirror unavailable: %w", f.Err)
}

// DriveUploader mirrors files to Google Drive using a service account.
type DriveUploader struct {
	service *drive.Service
	logger  *logrus.Logger
}

// NewDriveUploader builds an authenticated Drive client from a service
// account key file. An unreadable or missing key file surfaces here, so the
// process can start without credentials and fail per-upload instead.
func NewDriveUploader(ctx context.Context, credentialsFile string, logger *logrus.Logger) (*DriveUploader, error) {
	service, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build drive client: %w", err)
	}

	return &DriveUploader{service: service, logger: logger}, nil
}

func (d *DriveUploader) Upload(ctx context.Context, name string, content []byte, folderID string) (*UploadResult, error) {
	meta := &drive.File{Name: name}
	if folderID != "" {
		meta.Parents = []string{folderID}
	}

	file, err := d.service.Files.Create(meta).
		Media(bytes.NewReader(content)).
		Fields("id", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		d.logger.WithFields(logrus.Fields{
			"file_name": name,
			"folder_id": folderID,
		}).WithError(err).Error("drive upload failed")
		return nil, fmt.Errorf("drive upload of %q failed: %w", name, err)
	}

	d.logger.WithFields(logrus.Fields{
		"file_name": name,
		"file_id":   file.Id,
		"size":      len(content),
	}).Info("mirrored file to drive")

	return &UploadResult{FileID: file.Id, ViewLink: file.WebViewLink}, nil
}
