package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	oss "github.com/slidecast/slidecast/pkg/os"
)

// FileStore mirrors segments into <dir>/<sessionID>/chunk-<index>.bin.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = ".slidecast/chunks"
	}
	path, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := oss.CheckCreateDir(path); err != nil {
		return nil, err
	}
	return &FileStore{dir: path}, nil
}

func (s *FileStore) SaveChunk(_ context.Context, sessionID string, index int, data []byte) error {
	dir := filepath.Join(s.dir, sessionID)
	if err := oss.CheckCreateDir(dir); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, chunkName(index)), data, 0644)
}

func (s *FileStore) DeleteSession(_ context.Context, sessionID string) error {
	return os.RemoveAll(filepath.Join(s.dir, sessionID))
}

func chunkName(index int) string { return fmt.Sprintf("chunk-%08d.bin", index) }
