// Package artifact reads and writes the pipeline's JSON artifacts.
//
// Artifacts are small whole-file documents, so every write replaces the
// file through a temp-file-then-rename to keep an interrupted run from
// leaving a half-written artifact behind.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"whatsup/pkg/types"
)

// ReadJSON loads the artifact at path into v.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: parse %s: %v", types.ErrIntegrity, path, err)
	}
	return nil
}

// ReadJSONOrEmpty loads the artifact at path into v, treating a missing
// file as an empty artifact.
func ReadJSONOrEmpty(path string, v any) error {
	err := ReadJSON(path, v)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// WriteJSON atomically replaces the artifact at path with v.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: mkdir for %s: %v", types.ErrPersist, path, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", types.ErrPersist, path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: write %s: %v", types.ErrPersist, tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: rename %s: %v", types.ErrPersist, path, err)
	}
	return nil
}

// WriteText atomically replaces the text file at path.
func WriteText(path, data string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: mkdir for %s: %v", types.ErrPersist, path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(data), 0644); err != nil {
		return fmt.Errorf("%w: write %s: %v", types.ErrPersist, tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: rename %s: %v", types.ErrPersist, path, err)
	}
	return nil
}

// Remove deletes a stale artifact. Missing files are not an error.
func Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
