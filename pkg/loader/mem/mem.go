package mem

import (
	"context"
	"fmt"
	"sync"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/loader"
)

// MemoryFileLoader serves uploaded files kept in memory, keyed by file ID.
type MemoryFileLoader struct {
	mu    sync.RWMutex
	files map[string][]byte
}

var _ loader.FileLoader = (*MemoryFileLoader)(nil)

func NewMemoryFileLoader() *MemoryFileLoader {
	return &MemoryFileLoader{files: make(map[string][]byte)}
}

// Put stores content under id, replacing earlier content.
func (l *MemoryFileLoader) Put(id string, content []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.files[id] = content
}

// Delete forgets the content stored under id.
func (l *MemoryFileLoader) Delete(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.files, id)
}

func (l *MemoryFileLoader) GetFileText(ctx context.Context, file loader.SourceFile) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	content, ok := l.files[file.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", loader.ErrFileNotFound, file.ID)
	}
	return content, nil
}
