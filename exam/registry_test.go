package exam

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-server/db"
	"quiz-server/models"
)

func mustGet(t *testing.T, r *Registry, player string) *Store {
	t.Helper()
	s, err := r.Get(context.Background(), player)
	require.NoError(t, err)
	return s
}

func TestRegistryRestoresFromStorage(t *testing.T) {
	ctx := context.Background()
	storage := db.NewMemoryStorage()
	require.NoError(t, storage.Save(ctx, "alice", models.Snapshot{
		BestScores: map[models.QuizType]int{models.QuizCompose: 2},
		History:    []string{"Type: Compose | Score: 2/3 | Time: 5s"},
		LargeText:  true,
	}))

	r := NewRegistry(DefaultBank(), storage)
	st := mustGet(t, r, "alice").State()
	assert.Equal(t, models.ScreenMenu, st.Screen)
	assert.Equal(t, 2, st.BestScores[models.QuizCompose])
	assert.Len(t, st.History, 1)
	assert.True(t, st.LargeText)

	assert.Same(t, mustGet(t, r, "alice"), mustGet(t, r, "alice"))
}

func TestRegistryPersistsAcrossRestarts(t *testing.T) {
	storage := db.NewMemoryStorage()

	first := NewRegistry(DefaultBank(), storage)
	s := mustGet(t, first, "bob")
	s.Dispatch(StartQuiz{Type: models.QuizMixed})
	for _, a := range []int{2, 3, 3} {
		s.Dispatch(SelectOption{Index: a})
		s.Dispatch(Next{})
	}

	second := NewRegistry(DefaultBank(), storage)
	st := mustGet(t, second, "bob").State()
	assert.Equal(t, 1, st.BestScores[models.QuizMixed])
	assert.Equal(t, []string{"Type: Mixed | Score: 1/3 | Time: 0s"}, st.History)
}

func TestRegistryLoadErrorIsReturned(t *testing.T) {
	r := NewRegistry(DefaultBank(), failingStorage{})
	s, err := r.Get(context.Background(), "p")
	assert.Error(t, err)
	assert.Nil(t, s)
	assert.Empty(t, r.Players())
}

// flakyStorage fails the first n loads.
type flakyStorage struct {
	*db.MemoryStorage
	failures int
}

func (f *flakyStorage) Load(ctx context.Context, player string) (models.Snapshot, error) {
	if f.failures > 0 {
		f.failures--
		return models.Snapshot{}, errors.New("connection reset")
	}
	return f.MemoryStorage.Load(ctx, player)
}

func TestRegistryLoadFailureKeepsStoredState(t *testing.T) {
	ctx := context.Background()
	storage := &flakyStorage{MemoryStorage: db.NewMemoryStorage(), failures: 1}
	history := []string{
		"Type: Kotlin | Score: 3/3 | Time: 9s",
		"Type: Kotlin | Score: 2/3 | Time: 7s",
		"Type: Kotlin | Score: 1/3 | Time: 5s",
	}
	require.NoError(t, storage.Save(ctx, "alice", models.Snapshot{
		BestScores: map[models.QuizType]int{models.QuizKotlin: 3},
		History:    history,
	}))

	r := NewRegistry(DefaultBank(), storage)
	_, err := r.Get(ctx, "alice")
	require.Error(t, err)

	s := mustGet(t, r, "alice")
	assert.Equal(t, 3, s.State().BestScores[models.QuizKotlin])
	for _, a := range []int{3, 3, 3} {
		s.Dispatch(SelectOption{Index: a})
		s.Dispatch(Next{})
	}

	snap, err := storage.MemoryStorage.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, snap.BestScores[models.QuizKotlin])
	assert.Equal(t, append(history, "Type: Kotlin | Score: 0/3 | Time: 0s"), snap.History)
}

func TestRegistryTickAll(t *testing.T) {
	r := NewRegistry(DefaultBank(), db.NewMemoryStorage())
	quiz := mustGet(t, r, "quiz")
	menu := mustGet(t, r, "menu")
	quiz.Dispatch(StartQuiz{Type: models.QuizKotlin})

	r.TickAll()
	r.TickAll()

	assert.Equal(t, 2, quiz.State().ElapsedSeconds)
	assert.Equal(t, 0, menu.State().ElapsedSeconds)
}

func TestRegistryRunStopsOnCancel(t *testing.T) {
	r := NewRegistry(DefaultBank(), db.NewMemoryStorage())
	s := mustGet(t, r, "p")
	s.Dispatch(StartQuiz{Type: models.QuizKotlin})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return s.State().ElapsedSeconds > 0 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRegistryPlayers(t *testing.T) {
	r := NewRegistry(DefaultBank(), db.NewMemoryStorage())
	mustGet(t, r, "zed")
	mustGet(t, r, "amy").Dispatch(GoSettings{})

	players := r.Players()
	require.Len(t, players, 2)
	assert.Equal(t, "amy", players[0].Player)
	assert.Equal(t, models.ScreenSettings, players[0].Screen)
	assert.Equal(t, "zed", players[1].Player)
}

// blockingStorage holds every Save until release is closed.
type blockingStorage struct {
	*db.MemoryStorage
	saving  chan struct{}
	release chan struct{}
}

func (b *blockingStorage) Save(ctx context.Context, player string, snap models.Snapshot) error {
	close(b.saving)
	<-b.release
	return b.MemoryStorage.Save(ctx, player, snap)
}

func TestRegistryTickAllNotHeldBySlowSave(t *testing.T) {
	storage := &blockingStorage{
		MemoryStorage: db.NewMemoryStorage(),
		saving:        make(chan struct{}),
		release:       make(chan struct{}),
	}
	r := NewRegistry(DefaultBank(), storage)
	slow := mustGet(t, r, "slow")
	other := mustGet(t, r, "other")
	other.Dispatch(StartQuiz{Type: models.QuizKotlin})

	go slow.Dispatch(SaveSettings{LargeText: true})
	<-storage.saving

	// state stays readable while the save is in flight
	assert.True(t, slow.State().LargeText)

	ticked := make(chan struct{})
	go func() {
		r.TickAll()
		close(ticked)
	}()
	assert.Eventually(t, func() bool { return other.State().ElapsedSeconds == 1 }, time.Second, time.Millisecond)

	close(storage.release)
	select {
	case <-ticked:
	case <-time.After(time.Second):
		t.Fatal("TickAll did not return after the save finished")
	}
}
