package timeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/m-mizutani/goerr/v2"
)

// Repository is the interface for persisting timeline data.
type Repository interface {
	Save(ctx context.Context, timeline *Timeline) error
}

// FileRepository persists timelines as JSON files.
type FileRepository struct {
	dir string
}

// NewFileRepository creates a new FileRepository that writes to the given directory.
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

// Save writes the timeline as JSON to {dir}/{id}.json.
func (r *FileRepository) Save(_ context.Context, timeline *Timeline) error {
	if err := os.MkdirAll(r.dir, 0750); err != nil {
		return goerr.Wrap(err, "failed to create timeline directory", goerr.V("dir", r.dir))
	}

	data, err := json.MarshalIndent(timeline, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal timeline")
	}

	filePath := filepath.Join(r.dir, timeline.ID+".json")
	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return goerr.Wrap(err, "failed to write timeline file", goerr.V("path", filePath))
	}

	return nil
}

// MemoryRepository keeps saved timelines in memory, keyed by timeline ID.
// Useful for tests and single-process setups.
type MemoryRepository struct {
	mu        sync.Mutex
	timelines map[string]*Timeline
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		timelines: make(map[string]*Timeline),
	}
}

// Save stores the timeline, replacing any previous save with the same ID.
func (r *MemoryRepository) Save(_ context.Context, timeline *Timeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timelines[timeline.ID] = timeline
	return nil
}

// Get returns the saved timeline for the given ID, or nil.
func (r *MemoryRepository) Get(id string) *Timeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timelines[id]
}
