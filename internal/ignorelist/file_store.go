package ignorelist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

type fileDocument struct {
	Ignored []Rule `json:"ignored"`
}

// FileStore keeps the rules in a JSON settings document,
// {"ignored": [{"id": ..., "description": ...}]}.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (fs *FileStore) Path() string { return fs.path }

// Load reads the document. A missing file is an empty list.
func (fs *FileStore) Load(_ context.Context) ([]Rule, error) {
	data, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Rule{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fs.path, err)
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", fs.path, err)
	}
	if doc.Ignored == nil {
		doc.Ignored = []Rule{}
	}
	return doc.Ignored, nil
}

// Save writes the document through a temporary file in the same directory.
func (fs *FileStore) Save(_ context.Context, rules []Rule) error {
	if rules == nil {
		rules = []Rule{}
	}
	data, err := json.MarshalIndent(fileDocument{Ignored: rules}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ignored rules: %w", err)
	}

	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ignored-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), fs.path); err != nil {
		return fmt.Errorf("replace %s: %w", fs.path, err)
	}
	return nil
}
