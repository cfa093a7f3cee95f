package exam

import (
	"fmt"

	"quiz-server/models"
)

// Bank maps every quiz type to its fixed question set.
type Bank map[models.QuizType][]models.Question

// Questions returns the question set of a quiz type, nil for an unknown type.
func (b Bank) Questions(t models.QuizType) []models.Question {
	return b[t]
}

// Total returns the number of questions of a quiz type.
func (b Bank) Total(t models.QuizType) int {
	return len(b[t])
}

// Validate checks that every quiz type has questions and every question has
// at least two options and exactly one correct option at CorrectIndex.
func (b Bank) Validate() error {
	for _, t := range models.QuizTypes {
		questions := b[t]
		if len(questions) == 0 {
			return fmt.Errorf("quiz type %s has no questions", t)
		}
		for i, q := range questions {
			if err := ValidateQuestion(q); err != nil {
				return fmt.Errorf("quiz type %s, question %d: %w", t, i+1, err)
			}
		}
	}
	return nil
}

// ValidateQuestion checks a single question.
func ValidateQuestion(q models.Question) error {
	if q.Text == "" {
		return fmt.Errorf("question text is empty")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("question needs at least 2 options, got %d", len(q.Options))
	}
	correct := -1
	for i, o := range q.Options {
		if o.Text == "" {
			return fmt.Errorf("option %d text is empty", i+1)
		}
		if o.IsCorrect {
			if correct >= 0 {
				return fmt.Errorf("more than one correct option")
			}
			correct = i
		}
	}
	if correct < 0 {
		return fmt.Errorf("no correct option")
	}
	if correct != q.CorrectIndex {
		return fmt.Errorf("correct index %d does not match correct option %d", q.CorrectIndex, correct)
	}
	return nil
}

// NewQuestion builds a question from option texts and the index of the right one.
func NewQuestion(id int, text, explanation string, correct int, options ...string) models.Question {
	q := models.Question{ID: id, Text: text, Explanation: explanation, CorrectIndex: correct}
	for i, o := range options {
		q.Options = append(q.Options, models.Option{Text: o, IsCorrect: i == correct})
	}
	return q
}

// DefaultBank returns the built-in question sets.
func DefaultBank() Bank {
	return Bank{
		models.QuizKotlin: {
			NewQuestion(1, "Which keyword declares a read-only variable in Kotlin?",
				"val declares a read-only reference; var declares a mutable one.",
				1, "var", "val", "const", "let"),
			NewQuestion(2, "What does the ?: operator do?",
				"The Elvis operator returns its right side when the left side is null.",
				0, "Returns the right side if the left side is null", "Casts a value", "Throws on null", "Compares references"),
			NewQuestion(3, "Which function starts a coroutine without blocking the current thread?",
				"launch starts a new coroutine and returns a Job.",
				2, "runBlocking", "Thread.start", "launch", "sleep"),
		},
		models.QuizCompose: {
			NewQuestion(11, "Which annotation marks a function as a UI component in Compose?",
				"Functions annotated with @Composable can emit UI.",
				0, "@Composable", "@Component", "@View", "@UiThread"),
			NewQuestion(12, "Which function keeps state across recompositions?",
				"remember stores a value in the composition so it survives recomposition.",
				3, "mutableListOf", "lazy", "by delegate", "remember"),
			NewQuestion(13, "Which layout places children vertically?",
				"Column arranges its children in a vertical sequence.",
				1, "Row", "Column", "Box", "Spacer"),
		},
		models.QuizMixed: {
			NewQuestion(21, "Which Kotlin collection is immutable by default?",
				"listOf returns a read-only List.",
				2, "arrayListOf", "mutableListOf", "listOf", "hashMapOf"),
			NewQuestion(22, "What triggers recomposition in Compose?",
				"Reading a State value subscribes the composable to changes of that state.",
				0, "A change of observed state", "A call to invalidate()", "A timer", "Rotating the device only"),
			NewQuestion(23, "Which scope function returns the receiver itself?",
				"apply runs the block on the receiver and returns the receiver.",
				1, "let", "apply", "run", "with"),
		},
	}
}
