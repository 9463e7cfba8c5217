package engine

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/newsdesk-dev/newsdesk-queue/pkg/schema"
)

const storeFile = "articles.json"

// Persistence handles the disk I/O for MemStorage.
type Persistence struct {
	DataDir string
	mu      sync.Mutex // Protects concurrent writes to the filesystem
}

// NewPersistence initializes a persistence handler.
func NewPersistence(dir string) (*Persistence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Persistence{DataDir: dir}, nil
}

// Save writes the full article set to a JSON file atomically.
func (p *Persistence) Save(articles []schema.Article) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	filePath := filepath.Join(p.DataDir, storeFile)
	tempPath := filePath + ".tmp"

	bytes, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return err
	}

	// Write to a temporary file first, then rename. If the power fails we
	// have either the old file or the new one, never a corrupt one.
	if err := os.WriteFile(tempPath, bytes, 0644); err != nil {
		return err
	}
	return os.Rename(tempPath, filePath)
}

// Load returns the persisted article set, or nil when none exists yet.
func (p *Persistence) Load() ([]schema.Article, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	content, err := os.ReadFile(filepath.Join(p.DataDir, storeFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var articles []schema.Article
	if err := json.Unmarshal(content, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}
