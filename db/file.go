package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"quiz-server/models"
)

// FileStorage keeps one YAML document per player in a directory.
type FileStorage struct {
	dir string
	mu  sync.Mutex
}

// NewFileStorage creates dir if needed.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &FileStorage{dir: dir}, nil
}

func (s *FileStorage) path(player string) string {
	return filepath.Join(s.dir, url.PathEscape(player)+".yaml")
}

// Load reads the document of player; a missing document is an empty snapshot.
func (s *FileStorage) Load(ctx context.Context, player string) (models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(player))
	if errors.Is(err, fs.ErrNotExist) {
		return emptySnapshot(), nil
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to read state for player %s: %w", player, err)
	}

	var snap models.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to parse state for player %s: %w", player, err)
	}
	if snap.BestScores == nil {
		snap.BestScores = map[models.QuizType]int{}
	}
	if snap.History == nil {
		snap.History = []string{}
	}
	return snap, nil
}

// Save replaces the document of player. The write goes to a temporary file
// renamed over the old one so a crash never leaves a partial document.
func (s *FileStorage) Save(ctx context.Context, player string, snap models.Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal state for player %s: %w", player, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".state-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // fails harmlessly after the rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state for player %s: %w", player, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write state for player %s: %w", player, err)
	}
	if err := os.Rename(tmp.Name(), s.path(player)); err != nil {
		return fmt.Errorf("failed to store state for player %s: %w", player, err)
	}
	return nil
}

func emptySnapshot() models.Snapshot {
	return models.Snapshot{BestScores: map[models.QuizType]int{}, History: []string{}}
}
