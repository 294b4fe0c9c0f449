package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"lapwatch/internal/core/model"

	"gopkg.in/yaml.v3"
)

// FileStore keeps the stopwatch record in a YAML file named after model.StateKey.
type FileStore struct {
	path string
}

// NewFileStore creates a store rooted at dataDir.
func NewFileStore(dataDir string) *FileStore {
	return &FileStore{path: filepath.Join(dataDir, model.StateKey+".yaml")}
}

// Path returns the backing file path.
func (store *FileStore) Path() string {
	return store.path
}

// Load reads the stopwatch record.
func (store *FileStore) Load() (model.State, error) {
	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.State{}, model.ErrStateNotFound
		}
		return model.State{}, fmt.Errorf("read state file: %w", err)
	}
	return decodeYAMLState(rawData)
}

// Save writes the stopwatch record atomically.
func (store *FileStore) Save(state model.State) error {
	serialized, err := yaml.Marshal(state.Clone())
	if err != nil {
		return fmt.Errorf("marshal state yaml: %w", err)
	}
	return writeFileAtomic(store.path, serialized)
}

func decodeYAMLState(rawData []byte) (model.State, error) {
	if len(rawData) == 0 {
		return model.State{}, fmt.Errorf("%w: empty state file", model.ErrStateCorrupt)
	}

	var state model.State
	if err := yaml.Unmarshal(rawData, &state); err != nil {
		return model.State{}, fmt.Errorf("%w: parse state yaml: %v", model.ErrStateCorrupt, err)
	}
	if err := state.Validate(); err != nil {
		return model.State{}, err
	}
	return state.Clone(), nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
