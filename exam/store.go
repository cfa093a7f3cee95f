package exam

import (
	"sync"

	"quiz-server/models"
)

// Listener is notified after every dispatched action with the state before
// and after it.
type Listener func(prev, next models.UiState)

// Store holds the state of one player and serializes every update.
type Store struct {
	bank Bank

	mu        sync.Mutex
	state     models.UiState
	listeners map[int]Listener
	nextID    int

	// notifyMu orders listener calls by dispatch without holding mu.
	notifyMu sync.Mutex
}

// NewStore creates a store whose initial state is the menu restored from snap.
func NewStore(bank Bank, snap models.Snapshot) *Store {
	return &Store{
		bank:      bank,
		state:     models.NewUiState(snap),
		listeners: make(map[int]Listener),
	}
}

// Bank returns the question bank the store scores against.
func (s *Store) Bank() Bank {
	return s.bank
}

// State returns a copy of the current state.
func (s *Store) State() models.UiState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Dispatch applies a to the current state and notifies listeners. Listeners
// run before Dispatch returns, in dispatch order, while State stays readable.
// A listener must not call Dispatch.
func (s *Store) Dispatch(a Action) models.UiState {
	s.mu.Lock()
	prev := s.state
	s.state = Reduce(s.bank, prev, a)
	next := s.state.Clone()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, l := range listeners {
		l(prev.Clone(), next.Clone())
	}
	return next
}

// Subscribe registers l and returns a function removing it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// ScorePair returns the current score and question count.
func (s *Store) ScorePair() (score, total int) {
	return ScorePair(s.bank, s.State())
}

// ScoreText returns the share text of the current attempt.
func (s *Store) ScoreText() string {
	return ShareText(s.bank, s.State())
}

// WrongReview returns the wrong or skipped questions of the current attempt.
func (s *Store) WrongReview() []models.WrongAnswer {
	return WrongReview(s.bank, s.State())
}

// CurrentQuestion returns the question shown on the quiz screen, if any.
func (s *Store) CurrentQuestion() (models.Question, bool) {
	return CurrentQuestion(s.bank, s.State())
}

// View returns the current state with the values derived for display.
func (s *Store) View() models.StateResponse {
	st := s.State()
	resp := models.StateResponse{UiState: st}
	if st.QuizType == "" {
		return resp
	}
	resp.Title = st.QuizType.Title()
	resp.Total = s.bank.Total(st.QuizType)
	if st.Screen != models.ScreenQuiz {
		return resp
	}
	if q, ok := CurrentQuestion(s.bank, st); ok {
		answered, correct := AnswerCorrect(s.bank, st)
		resp.IsAnswered = answered
		if answered {
			resp.IsCorrect = &correct
		} else {
			// correctness of options stays hidden until the question is answered
			q.Explanation = ""
			q.Options = hideCorrect(q.Options)
		}
		resp.CurrentQuestion = &q
	}
	return resp
}

func hideCorrect(options []models.Option) []models.Option {
	out := make([]models.Option, len(options))
	for i, o := range options {
		out[i] = models.Option{Text: o.Text}
	}
	return out
}
