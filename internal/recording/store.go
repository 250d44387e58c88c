package recording

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Store владеет scratch-директориями пайплайна: одна для сырых JSON
// записей, одна для отрендеренных видео. Файлы обеих живут только на время
// одного запроса диагностики.
type Store struct {
	recordingsDir string
	outputsDir    string
}

// NewStore ensures both scratch directories exist.
func NewStore(recordingsDir, outputsDir string) (*Store, error) {
	if err := os.MkdirAll(recordingsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure recordings dir: %w", err)
	}
	if err := os.MkdirAll(outputsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure outputs dir: %w", err)
	}
	return &Store{recordingsDir: recordingsDir, outputsDir: outputsDir}, nil
}

// Save persists the raw event payload under a fresh identifier. The write
// is atomic: the file appears under its final name only when complete, so
// the renderer can never observe a half-written recording.
func (s *Store) Save(events json.RawMessage) (string, error) {
	id := uuid.NewString()
	final := s.RecordingPath(id)
	tmp := final + ".tmp"

	if err := os.WriteFile(tmp, events, 0o644); err != nil {
		return "", fmt.Errorf("write recording %s: %w", id, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("publish recording %s: %w", id, err)
	}
	return id, nil
}

// RecordingPath returns the location of the raw event artifact. It does
// not check existence.
func (s *Store) RecordingPath(id string) string {
	return filepath.Join(s.recordingsDir, id+".json")
}

// VideoPath returns the location the renderer writes the video to.
func (s *Store) VideoPath(id string) string {
	return filepath.Join(s.outputsDir, id+".mp4")
}

// Delete removes both artifacts of a recording. Removing an artifact that
// was never produced (or is already gone) is not an error.
func (s *Store) Delete(id string) error {
	var firstErr error
	for _, p := range []string{s.RecordingPath(id), s.VideoPath(id)} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			if firstErr == nil {
				firstErr = fmt.Errorf("delete %s: %w", p, err)
			}
		}
	}
	return firstErr
}

// Sweep removes scratch files older than maxAge. Per-request cleanup is
// the primary mechanism; the sweep only collects leftovers of crashed or
// killed runs. Returns the number of files removed.
func (s *Store) Sweep(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, dir := range []string{s.recordingsDir, s.outputsDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return removed, fmt.Errorf("read scratch dir %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			if info.ModTime().After(cutoff) {
				continue
			}
			p := filepath.Join(dir, e.Name())
			if err := os.Remove(p); err != nil {
				log.Printf("⚠️ failed to sweep %s: %v", p, err)
				continue
			}
			removed++
		}
	}
	return removed, nil
}
