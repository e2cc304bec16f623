package service

import (
	"fmt"
	"os"
	"path/filepath"
)

// scratch holds one run's working files on local disk. Every run gets its own
// directory so concurrent runs never collide; Cleanup removes the whole tree.
type scratch struct {
	dir string
}

func newScratch() (*scratch, error) {
	dir, err := os.MkdirTemp("", "extraction-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return &scratch{dir: dir}, nil
}

// WriteDocument persists the uploaded bytes and returns the file path.
func (s *scratch) WriteDocument(fileName string, data []byte) (string, error) {
	// The client-supplied name is untrusted; keep only its base component
	// and substitute a placeholder when nothing usable remains.
	name := filepath.Base(fileName)
	if name == "." || name == string(filepath.Separator) {
		name = "upload"
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write scratch file: %w", err)
	}
	return path, nil
}

// Cleanup removes the scratch directory and everything in it. Safe to call
// on every exit path.
func (s *scratch) Cleanup() error {
	if s.dir == "" {
		return nil
	}
	return os.RemoveAll(s.dir)
}
