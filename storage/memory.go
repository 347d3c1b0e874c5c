package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryUploader is an in-memory Uploader used in tests and local
// development. It assigns sequential file ids and keeps the uploaded bytes.
type MemoryUploader struct {
	mu      sync.Mutex
	nextID  int
	Files   map[string][]byte // keyed by assigned file id
	Names   map[string]string // file id -> uploaded name
	Err     error             // when set, every Upload fails with it
	Uploads int
}

func NewMemoryUploader() *MemoryUploader {
	return &MemoryUploader{
		Files: make(map[string][]byte),
		Names: make(map[string]string),
	}
}

func (m *MemoryUploader) Upload(ctx context.Context, name string, content []byte, folderID string) (*UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}

	m.nextID++
	m.Uploads++
	id := fmt.Sprintf("mem-%d", m.nextID)

	buf := make([]byte, len(content))
	copy(buf, content)
	m.Files[id] = buf
	m.Names[id] = name

	return &UploadResult{
		FileID:   id,
		ViewLink: "https://mirror.local/" + id,
	}, nil
}
