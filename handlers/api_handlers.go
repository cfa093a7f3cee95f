package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-server/exam"
	"quiz-server/middleware"
	"quiz-server/models"
	"quiz-server/utils"
)

// playerStore returns the store of the authenticated player. When the stored
// state cannot be loaded it answers 503 and returns false.
func playerStore(registry *exam.Registry, c *gin.Context) (*exam.Store, bool) {
	store, err := registry.Get(c.Request.Context(), middleware.Player(c))
	if err != nil {
		log.Printf("Error restoring player: %v", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Player state unavailable, try again"})
		return nil, false
	}
	return store, true
}

// dispatch returns a handler that applies a fixed action and answers with the view.
func dispatch(registry *exam.Registry, a exam.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := playerStore(registry, c)
		if !ok {
			return
		}
		store.Dispatch(a)
		c.JSON(http.StatusOK, store.View())
	}
}

// GetQuizTypes lists the quiz types with their question counts and best scores.
// GET /api/v1/quiz_types
func GetQuizTypes(registry *exam.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := playerStore(registry, c)
		if !ok {
			return
		}
		st := store.State()
		types := make([]models.QuizTypeInfo, 0, len(models.QuizTypes))
		for _, t := range models.QuizTypes {
			types = append(types, models.QuizTypeInfo{
				Type:          t,
				Title:         t.Title(),
				QuestionCount: registry.Bank().Total(t),
				BestScore:     st.BestScores[t],
			})
		}
		c.JSON(http.StatusOK, types)
	}
}

// GetState returns the current state of the player.
// GET /api/v1/state
func GetState(registry *exam.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := playerStore(registry, c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, store.View())
	}
}

// StartQuiz starts a new attempt of the requested quiz type.
// POST /api/v1/quiz/start
func StartQuiz(registry *exam.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.StartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		t, err := models.ParseQuizType(req.QuizType)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		store, ok := playerStore(registry, c)
		if !ok {
			return
		}
		store.Dispatch(exam.StartQuiz{Type: t})
		log.Printf("Player %s started %s quiz", middleware.Player(c), t.Title())
		c.JSON(http.StatusOK, store.View())
	}
}

// SelectOption records the answer for the current question.
// POST /api/v1/quiz/select
func SelectOption(registry *exam.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SelectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		store, ok := playerStore(registry, c)
		if !ok {
			return
		}
		store.Dispatch(exam.SelectOption{Index: *req.OptionIndex})
		c.JSON(http.StatusOK, store.View())
	}
}

// NextQuestion moves forward, finishing the quiz on the last question.
// POST /api/v1/quiz/next
func NextQuestion(registry *exam.Registry) gin.HandlerFunc {
	return dispatch(registry, exam.Next{})
}

// PrevQuestion moves back one question.
// POST /api/v1/quiz/prev
func PrevQuestion(registry *exam.Registry) gin.HandlerFunc {
	return dispatch(registry, exam.Prev{})
}

// RestartQuiz starts the current quiz type again.
// POST /api/v1/quiz/restart
func RestartQuiz(registry *exam.Registry) gin.HandlerFunc {
	return dispatch(registry, exam.RestartSameQuiz{})
}

// GoMenu returns to the menu, abandoning any attempt in progress.
// POST /api/v1/menu
func GoMenu(registry *exam.Registry) gin.HandlerFunc {
	return dispatch(registry, exam.GoMenu{})
}

// OpenSettings shows the settings screen.
// POST /api/v1/settings/open
func OpenSettings(registry *exam.Registry) gin.HandlerFunc {
	return dispatch(registry, exam.GoSettings{})
}

// buildResult assembles the result screen of st.
func buildResult(bank exam.Bank, st models.UiState) models.ResultResponse {
	score, total := exam.ScorePair(bank, st)
	return models.ResultResponse{
		QuizType:       st.QuizType,
		Title:          st.QuizType.Title(),
		Score:          score,
		Total:          total,
		ElapsedSeconds: st.ElapsedSeconds,
		BestScore:      st.BestScores[st.QuizType],
		WrongAnswers:   exam.WrongReview(bank, st),
		ShareText:      utils.ScoreText(score, total),
	}
}

// GetResult returns the score and review of the finished attempt.
// GET /api/v1/result
func GetResult(registry *exam.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := playerStore(registry, c)
		if !ok {
			return
		}
		st := store.State()
		if st.Screen != models.ScreenResult {
			c.JSON(http.StatusConflict, gin.H{"error": "No finished quiz to show"})
			return
		}
		c.JSON(http.StatusOK, buildResult(registry.Bank(), st))
	}
}

// GetShareText returns the "Score: X/Y" text of the finished attempt.
// GET /api/v1/share
func GetShareText(registry *exam.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := playerStore(registry, c)
		if !ok {
			return
		}
		if store.State().Screen != models.ScreenResult {
			c.JSON(http.StatusConflict, gin.H{"error": "No finished quiz to share"})
			return
		}
		c.String(http.StatusOK, store.ScoreText())
	}
}

// historyItems splits history entries for display, newest first.
func historyItems(history []string) []models.HistoryItem {
	items := make([]models.HistoryItem, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		entry := history[i]
		items = append(items, models.HistoryItem{
			Title:    utils.HistoryTitle(entry),
			Subtitle: utils.HistorySubtitle(entry),
			Raw:      entry,
		})
	}
	return items
}

// GetHistory returns the finished attempts, newest first.
// GET /api/v1/history
func GetHistory(registry *exam.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := playerStore(registry, c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, historyItems(store.State().History))
	}
}

// ClearHistory empties the attempt history.
// DELETE /api/v1/history
func ClearHistory(registry *exam.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := playerStore(registry, c)
		if !ok {
			return
		}
		store.Dispatch(exam.ClearExamHistory{})
		log.Printf("Player %s cleared exam history", middleware.Player(c))
		c.Status(http.StatusNoContent)
	}
}

// SaveSettings stores both display preferences.
// PUT /api/v1/settings
func SaveSettings(registry *exam.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		store, ok := playerStore(registry, c)
		if !ok {
			return
		}
		store.Dispatch(exam.SaveSettings{OrangeTheme: *req.OrangeTheme, LargeText: *req.LargeText})
		c.JSON(http.StatusOK, store.View())
	}
}
