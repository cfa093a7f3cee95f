package models

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// QuizType is one of the fixed quiz categories.
type QuizType string

const (
	QuizKotlin  QuizType = "kotlin"
	QuizCompose QuizType = "compose"
	QuizMixed   QuizType = "mixed"
)

// QuizTypes lists every category in menu order.
var QuizTypes = []QuizType{QuizKotlin, QuizCompose, QuizMixed}

// Title returns the human-readable name of the quiz type.
func (t QuizType) Title() string {
	switch t {
	case QuizKotlin:
		return "Kotlin"
	case QuizCompose:
		return "Compose"
	case QuizMixed:
		return "Mixed"
	}
	return string(t)
}

// Valid reports whether t is one of QuizTypes.
func (t QuizType) Valid() bool {
	return slices.Contains(QuizTypes, t)
}

// ParseQuizType maps a name (case-insensitive) to its QuizType.
func ParseQuizType(name string) (QuizType, error) {
	t := QuizType(strings.ToLower(strings.TrimSpace(name)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown quiz type: %q", name)
	}
	return t, nil
}

// Option is a single answer choice
type Option struct {
	Text      string `json:"text" yaml:"text"`
	IsCorrect bool   `json:"is_correct" yaml:"correct"`
}

// Question is a multiple-choice question of a question bank.
type Question struct {
	ID           int      `json:"id" yaml:"id"`
	Text         string   `json:"text" yaml:"text"`
	Explanation  string   `json:"explanation" yaml:"explanation"`
	Options      []Option `json:"options" yaml:"options"`
	CorrectIndex int      `json:"-" yaml:"-"`
}

// Screen tags the screen currently shown.
type Screen string

const (
	ScreenMenu     Screen = "menu"
	ScreenQuiz     Screen = "quiz"
	ScreenResult   Screen = "result"
	ScreenSettings Screen = "settings"
)

// UiState is the whole mutable state of one player's app.
type UiState struct {
	Screen         Screen           `json:"screen"`
	QuizType       QuizType         `json:"quiz_type,omitempty"`
	CurrentIndex   int              `json:"current_index"`
	Answers        map[int]int      `json:"answers"` // question index -> option index
	ElapsedSeconds int              `json:"elapsed_seconds"`
	Score          int              `json:"score"`
	BestScores     map[QuizType]int `json:"best_scores"`
	History        []string         `json:"history"`
	OrangeTheme    bool             `json:"orange_theme"`
	LargeText      bool             `json:"large_text"`
}

// NewUiState returns the initial state restored from a snapshot.
func NewUiState(snap Snapshot) UiState {
	s := UiState{
		Screen:      ScreenMenu,
		Answers:     map[int]int{},
		BestScores:  map[QuizType]int{},
		History:     slices.Clone(snap.History),
		OrangeTheme: snap.OrangeTheme,
		LargeText:   snap.LargeText,
	}
	for t, v := range snap.BestScores {
		s.BestScores[t] = v
	}
	if s.History == nil {
		s.History = []string{}
	}
	return s
}

// Clone returns a deep copy so that the copy shares no maps or slices with s.
func (s UiState) Clone() UiState {
	c := s
	c.Answers = maps.Clone(s.Answers)
	if c.Answers == nil {
		c.Answers = map[int]int{}
	}
	c.BestScores = maps.Clone(s.BestScores)
	if c.BestScores == nil {
		c.BestScores = map[QuizType]int{}
	}
	c.History = slices.Clone(s.History)
	if c.History == nil {
		c.History = []string{}
	}
	return c
}

// Snapshot returns the durable part of the state.
func (s UiState) Snapshot() Snapshot {
	return Snapshot{
		BestScores:  maps.Clone(s.BestScores),
		History:     slices.Clone(s.History),
		OrangeTheme: s.OrangeTheme,
		LargeText:   s.LargeText,
	}
}

// Snapshot holds what survives a restart: best scores, exam history and preferences.
type Snapshot struct {
	BestScores  map[QuizType]int `json:"best_scores" yaml:"best_scores"`
	History     []string         `json:"history" yaml:"history"`
	OrangeTheme bool             `json:"orange_theme" yaml:"orange_theme"`
	LargeText   bool             `json:"large_text" yaml:"large_text"`
}

// Equal reports whether two snapshots hold the same durable data.
func (s Snapshot) Equal(o Snapshot) bool {
	if s.OrangeTheme != o.OrangeTheme || s.LargeText != o.LargeText {
		return false
	}
	if !slices.Equal(s.History, o.History) {
		return false
	}
	for _, t := range QuizTypes {
		if s.BestScores[t] != o.BestScores[t] {
			return false
		}
	}
	return true
}

// WrongAnswer is one row of the result review.
type WrongAnswer struct {
	QuestionText string `json:"question_text"`
	SelectedText string `json:"selected_text"` // empty when the question was skipped
	CorrectText  string `json:"correct_text"`
}

// HistoryItem is a history entry split for display.
type HistoryItem struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Raw      string `json:"raw"`
}

// QuizTypeInfo describes a category for the menu.
type QuizTypeInfo struct {
	Type          QuizType `json:"quiz_type"`
	Title         string   `json:"title"`
	QuestionCount int      `json:"question_count"`
	BestScore     int      `json:"best_score"`
}

// StateResponse is the state plus values derived for the current screen.
type StateResponse struct {
	UiState
	Title           string    `json:"title,omitempty"`
	Total           int       `json:"total"`
	IsAnswered      bool      `json:"is_answered"`
	IsCorrect       *bool     `json:"is_correct,omitempty"` // nil until answered
	CurrentQuestion *Question `json:"current_question,omitempty"`
}

// StartRequest for starting a quiz
type StartRequest struct {
	QuizType string `json:"quiz_type" binding:"required"`
}

// SelectRequest for answering the current question
type SelectRequest struct {
	OptionIndex *int `json:"option_index" binding:"required"`
}

// SettingsRequest for saving the display preferences
type SettingsRequest struct {
	OrangeTheme *bool `json:"orange_theme" binding:"required"`
	LargeText   *bool `json:"large_text" binding:"required"`
}

// ResultResponse for the result screen
type ResultResponse struct {
	QuizType       QuizType      `json:"quiz_type"`
	Title          string        `json:"title"`
	Score          int           `json:"score"`
	Total          int           `json:"total"`
	ElapsedSeconds int           `json:"elapsed_seconds"`
	BestScore      int           `json:"best_score"`
	WrongAnswers   []WrongAnswer `json:"wrong_answers"`
	ShareText      string        `json:"share_text"`
}

// PlayerSummary for the admin player listing
type PlayerSummary struct {
	Player       string           `json:"player"`
	Screen       Screen           `json:"screen"`
	BestScores   map[QuizType]int `json:"best_scores"`
	HistoryCount int              `json:"history_count"`
}

// BankFile is the YAML layout of a question bank override file.
type BankFile struct {
	QuizType  string     `yaml:"quiz_type"`
	Questions []Question `yaml:"questions"`
}
