package exam

import (
	"quiz-server/models"
	"quiz-server/utils"
)

// Action is a user event or timer tick applied to a UiState.
type Action interface {
	isAction()
}

// StartQuiz begins a fresh attempt of a quiz type.
type StartQuiz struct{ Type models.QuizType }

// SelectOption answers the current question.
type SelectOption struct{ Index int }

// Next advances to the following question or finishes the quiz at the last one.
type Next struct{}

// Prev goes back one question.
type Prev struct{}

// Tick advances the elapsed-time counter by one second.
type Tick struct{}

// RestartSameQuiz starts the current quiz type again.
type RestartSameQuiz struct{}

// GoMenu returns to the menu and discards any attempt in progress.
type GoMenu struct{}

// GoSettings opens the settings screen from the menu.
type GoSettings struct{}

// ClearExamHistory empties the exam history.
type ClearExamHistory struct{}

// SaveSettings sets both display preferences.
type SaveSettings struct {
	OrangeTheme bool
	LargeText   bool
}

func (StartQuiz) isAction()        {}
func (SelectOption) isAction()     {}
func (Next) isAction()             {}
func (Prev) isAction()             {}
func (Tick) isAction()             {}
func (RestartSameQuiz) isAction()  {}
func (GoMenu) isAction()           {}
func (GoSettings) isAction()       {}
func (ClearExamHistory) isAction() {}
func (SaveSettings) isAction()     {}

// Reduce returns the state that results from applying a to s. s is never
// modified; invalid actions for the current screen yield an unchanged copy.
func Reduce(bank Bank, s models.UiState, a Action) models.UiState {
	next := s.Clone()

	switch a := a.(type) {
	case StartQuiz:
		if bank.Total(a.Type) == 0 {
			return next
		}
		return startQuiz(next, a.Type)

	case SelectOption:
		if next.Screen != models.ScreenQuiz {
			return next
		}
		questions := bank.Questions(next.QuizType)
		if next.CurrentIndex < 0 || next.CurrentIndex >= len(questions) {
			return next
		}
		if _, answered := next.Answers[next.CurrentIndex]; answered {
			return next
		}
		q := questions[next.CurrentIndex]
		if a.Index < 0 || a.Index >= len(q.Options) {
			return next
		}
		next.Answers[next.CurrentIndex] = a.Index
		next.Score = countCorrect(questions, next.Answers)

	case Next:
		if next.Screen != models.ScreenQuiz {
			return next
		}
		// the current question must be answered before moving on
		if _, answered := next.Answers[next.CurrentIndex]; !answered {
			return next
		}
		total := bank.Total(next.QuizType)
		if next.CurrentIndex < total-1 {
			next.CurrentIndex++
			return next
		}
		return finish(bank, next)

	case Prev:
		if next.Screen != models.ScreenQuiz {
			return next
		}
		next.CurrentIndex = utils.Clamp(next.CurrentIndex-1, 0, bank.Total(next.QuizType)-1)

	case Tick:
		if next.Screen == models.ScreenQuiz {
			next.ElapsedSeconds++
		}

	case RestartSameQuiz:
		if next.Screen != models.ScreenResult && next.Screen != models.ScreenQuiz {
			return next
		}
		if bank.Total(next.QuizType) == 0 {
			return next
		}
		return startQuiz(next, next.QuizType)

	case GoMenu:
		next.Screen = models.ScreenMenu
		next.QuizType = ""
		resetAttempt(&next)

	case GoSettings:
		if next.Screen == models.ScreenMenu {
			next.Screen = models.ScreenSettings
		}

	case ClearExamHistory:
		next.History = []string{}

	case SaveSettings:
		next.OrangeTheme = a.OrangeTheme
		next.LargeText = a.LargeText
	}

	return next
}

func startQuiz(s models.UiState, t models.QuizType) models.UiState {
	s.Screen = models.ScreenQuiz
	s.QuizType = t
	resetAttempt(&s)
	return s
}

func resetAttempt(s *models.UiState) {
	s.CurrentIndex = 0
	s.Answers = map[int]int{}
	s.ElapsedSeconds = 0
	s.Score = 0
}

// finish scores the attempt, records it in the history, raises the best score
// and moves to the result screen.
func finish(bank Bank, s models.UiState) models.UiState {
	questions := bank.Questions(s.QuizType)
	s.Score = countCorrect(questions, s.Answers)
	s.History = append(s.History,
		utils.FormatHistoryEntry(s.QuizType.Title(), s.Score, len(questions), s.ElapsedSeconds))
	if s.Score > s.BestScores[s.QuizType] {
		s.BestScores[s.QuizType] = s.Score
	}
	s.Screen = models.ScreenResult
	return s
}

func countCorrect(questions []models.Question, answers map[int]int) int {
	score := 0
	for i, q := range questions {
		if selected, ok := answers[i]; ok && selected == q.CorrectIndex {
			score++
		}
	}
	return score
}

// ScorePair returns the score of s and the question count of its quiz type.
func ScorePair(bank Bank, s models.UiState) (score, total int) {
	questions := bank.Questions(s.QuizType)
	return countCorrect(questions, s.Answers), len(questions)
}

// ShareText is the "Score: X/Y" summary of s.
func ShareText(bank Bank, s models.UiState) string {
	return utils.ScoreText(ScorePair(bank, s))
}

// CurrentQuestion returns the question at the current index, if any.
func CurrentQuestion(bank Bank, s models.UiState) (models.Question, bool) {
	questions := bank.Questions(s.QuizType)
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(questions) {
		return models.Question{}, false
	}
	return questions[s.CurrentIndex], true
}

// AnswerCorrect reports whether the current question is answered and, if so,
// whether the recorded answer is right.
func AnswerCorrect(bank Bank, s models.UiState) (answered, correct bool) {
	q, ok := CurrentQuestion(bank, s)
	if !ok {
		return false, false
	}
	selected, answered := s.Answers[s.CurrentIndex]
	return answered, answered && selected == q.CorrectIndex
}

// WrongReview lists every question whose recorded answer is missing or wrong.
func WrongReview(bank Bank, s models.UiState) []models.WrongAnswer {
	review := []models.WrongAnswer{}
	for i, q := range bank.Questions(s.QuizType) {
		selected, ok := s.Answers[i]
		if ok && selected == q.CorrectIndex {
			continue
		}
		w := models.WrongAnswer{
			QuestionText: q.Text,
			CorrectText:  q.Options[q.CorrectIndex].Text,
		}
		if ok {
			w.SelectedText = q.Options[selected].Text
		}
		review = append(review, w)
	}
	return review
}
