package exam

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"quiz-server/models"
)

const storageTimeout = 5 * time.Second

// Storage persists the durable part of a player's state.
type Storage interface {
	Load(ctx context.Context, player string) (models.Snapshot, error)
	Save(ctx context.Context, player string, snap models.Snapshot) error
}

// PersistOnChange returns a listener that saves the snapshot of player
// whenever best scores, history or preferences change. Save errors are logged.
func PersistOnChange(storage Storage, player string) Listener {
	return func(prev, next models.UiState) {
		snap := next.Snapshot()
		if prev.Snapshot().Equal(snap) {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()
		if err := storage.Save(ctx, player, snap); err != nil {
			log.Printf("Error saving state for player %s: %v", player, err)
		}
	}
}

// Registry keeps one Store per player.
type Registry struct {
	bank    Bank
	storage Storage

	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry creates an empty registry over bank and storage.
func NewRegistry(bank Bank, storage Storage) *Registry {
	return &Registry{
		bank:    bank,
		storage: storage,
		stores:  make(map[string]*Store),
	}
}

// Bank returns the question bank shared by all stores.
func (r *Registry) Bank() Bank {
	return r.bank
}

// Get returns the store of player, restoring it from storage on first use.
// A failed load is returned and nothing is cached, so the next call retries.
func (r *Registry) Get(ctx context.Context, player string) (*Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[player]; ok {
		return s, nil
	}

	snap, err := r.storage.Load(ctx, player)
	if err != nil {
		return nil, fmt.Errorf("failed to load state for player %s: %w", player, err)
	}
	s := NewStore(r.bank, snap)
	s.Subscribe(PersistOnChange(r.storage, player))
	r.stores[player] = s
	log.Printf("Restored player %s: %d history entries", player, len(snap.History))
	return s, nil
}

// TickAll dispatches a Tick to every store and waits for all of them. Stores
// off the quiz screen ignore it. Each store ticks on its own goroutine so a
// store busy saving does not hold back the others.
func (r *Registry) TickAll() {
	r.mu.Lock()
	stores := make([]*Store, 0, len(r.stores))
	for _, s := range r.stores {
		stores = append(stores, s)
	}
	r.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range stores {
		wg.Add(1)
		go func(s *Store) {
			defer wg.Done()
			s.Dispatch(Tick{})
		}(s)
	}
	wg.Wait()
}

// Run ticks every store each interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.TickAll()
		}
	}
}

// Players summarizes every loaded player, sorted by name.
func (r *Registry) Players() []models.PlayerSummary {
	r.mu.Lock()
	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	stores := make(map[string]*Store, len(r.stores))
	for name, s := range r.stores {
		stores[name] = s
	}
	r.mu.Unlock()

	sort.Strings(names)
	summaries := make([]models.PlayerSummary, 0, len(names))
	for _, name := range names {
		st := stores[name].State()
		summaries = append(summaries, models.PlayerSummary{
			Player:       name,
			Screen:       st.Screen,
			BestScores:   st.BestScores,
			HistoryCount: len(st.History),
		})
	}
	return summaries
}
