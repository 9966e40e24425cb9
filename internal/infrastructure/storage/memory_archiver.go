package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/duka/backend/internal/infrastructure/export"
	"github.com/google/uuid"
)

// MemoryArchiver keeps archived exports in memory. Used when object storage
// is disabled and in tests.
type MemoryArchiver struct {
	mu    sync.Mutex
	files map[string]export.File
	now   func() time.Time
}

// NewMemoryArchiver creates an empty MemoryArchiver
func NewMemoryArchiver() *MemoryArchiver {
	return &MemoryArchiver{files: make(map[string]export.File), now: time.Now}
}

// Archive stores a copy of the file
func (m *MemoryArchiver) Archive(ctx context.Context, shopID uuid.UUID, file *export.File) (string, error) {
	if file == nil || file.Name == "" {
		return "", errors.New("export file is required")
	}
	key := ArchiveKey("memory", shopID, file.Name, m.now())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key] = export.File{
		Name:        file.Name,
		ContentType: file.ContentType,
		Body:        append([]byte(nil), file.Body...),
	}
	return key, nil
}

// Get returns an archived file
func (m *MemoryArchiver) Get(key string) (export.File, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[key]
	return f, ok
}

// Len returns the number of archived files
func (m *MemoryArchiver) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

var _ export.Archiver = (*MemoryArchiver)(nil)
