package db

import (
	"context"
	"maps"
	"slices"
	"sync"

	"quiz-server/models"
)

// MemoryStorage keeps snapshots in process memory; they are lost on exit.
type MemoryStorage struct {
	mu    sync.Mutex
	snaps map[string]models.Snapshot
	saves int
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{snaps: make(map[string]models.Snapshot)}
}

func (s *MemoryStorage) Load(ctx context.Context, player string) (models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snaps[player]
	if !ok {
		return emptySnapshot(), nil
	}
	return copySnapshot(snap), nil
}

func (s *MemoryStorage) Save(ctx context.Context, player string, snap models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[player] = copySnapshot(snap)
	s.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (s *MemoryStorage) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func copySnapshot(snap models.Snapshot) models.Snapshot {
	c := snap
	c.BestScores = maps.Clone(snap.BestScores)
	if c.BestScores == nil {
		c.BestScores = map[models.QuizType]int{}
	}
	c.History = slices.Clone(snap.History)
	if c.History == nil {
		c.History = []string{}
	}
	return c
}
