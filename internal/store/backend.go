package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Moderated-Gallery/Gallery-Service/internal/models"
)

// State is the whole persisted document. It is loaded wholesale at startup
// and rewritten wholesale on every mutation.
type State struct {
	Images []models.Image `json:"images"`
	NextID int            `json:"nextId"`
}

// Backend is the durable document store the ImageStore persists through.
type Backend interface {
	Load() (State, error)
	Save(State) error
}

// FileBackend stores the document as pretty-printed JSON on disk.
type FileBackend struct {
	path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (f *FileBackend) Load() (State, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			// No data file yet, start with an empty document
			return State{NextID: 1}, nil
		}
		return State{}, fmt.Errorf("failed to read data file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("failed to parse data file: %w", err)
	}
	if state.NextID < 1 {
		state.NextID = 1
	}
	return state, nil
}

func (f *FileBackend) Save(state State) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal image data: %w", err)
	}

	// Write to a temporary file first, then rename for atomicity
	tempFile := f.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	if err := os.Rename(tempFile, f.path); err != nil {
		return fmt.Errorf("failed to rename data file: %w", err)
	}
	return nil
}
