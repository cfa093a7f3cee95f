package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-server/exam"
	"quiz-server/middleware"
	"quiz-server/models"
)

// AdminListPlayers lists every loaded player with their best scores.
// GET /admin/players
func AdminListPlayers(registry *exam.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, registry.Players())
	}
}

// AdminDashboard renders the loaded players and the size of each question bank.
// GET /admin/dashboard
func AdminDashboard(registry *exam.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		players := registry.Players()

		finished := 0
		for _, p := range players {
			finished += p.HistoryCount
		}
		banks := make([]models.QuizTypeInfo, 0, len(models.QuizTypes))
		for _, t := range models.QuizTypes {
			banks = append(banks, models.QuizTypeInfo{
				Type:          t,
				Title:         t.Title(),
				QuestionCount: registry.Bank().Total(t),
			})
		}

		c.HTML(http.StatusOK, "admin_dashboard", gin.H{
			"Title":         "Quiz Admin Dashboard",
			"Players":       players,
			"QuizTypes":     models.QuizTypes,
			"Banks":         banks,
			"TotalFinished": finished,
			"Player":        middleware.Player(c),
		})
	}
}
