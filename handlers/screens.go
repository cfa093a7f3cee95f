package handlers

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"

	"quiz-server/exam"
	"quiz-server/middleware"
	"quiz-server/models"
	"quiz-server/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

var screenFuncs = template.FuncMap{
	"inc":     func(i int) int { return i + 1 },
	"seconds": utils.FormatSeconds,
	"deref": func(b *bool) bool {
		return b != nil && *b
	},
	"selected": func(v models.StateResponse) int {
		if i, ok := v.Answers[v.CurrentIndex]; ok {
			return i
		}
		return -1
	},
}

// pages have one template each, rendered inside layout.html.
var pages = []string{
	string(models.ScreenMenu),
	string(models.ScreenQuiz),
	string(models.ScreenResult),
	string(models.ScreenSettings),
	"admin_dashboard",
	"login",
}

// NewRenderer parses the embedded screen templates.
func NewRenderer() (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()
	for _, page := range pages {
		tmpl, err := template.New("layout.html").Funcs(screenFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, err
		}
		r.Add(page, tmpl)
	}
	return r, nil
}

// ShowScreen renders the screen the player is currently on.
// GET /
func ShowScreen(registry *exam.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := playerStore(registry, c)
		if !ok {
			return
		}
		view := store.View()
		data := gin.H{
			"Title":       "Quiz",
			"View":        view,
			"OrangeTheme": view.OrangeTheme,
			"LargeText":   view.LargeText,
		}
		switch view.Screen {
		case models.ScreenMenu:
			types := make([]models.QuizTypeInfo, 0, len(models.QuizTypes))
			for _, t := range models.QuizTypes {
				types = append(types, models.QuizTypeInfo{
					Type:          t,
					Title:         t.Title(),
					QuestionCount: registry.Bank().Total(t),
					BestScore:     view.BestScores[t],
				})
			}
			data["QuizTypes"] = types
			data["History"] = historyItems(view.History)
		case models.ScreenQuiz:
			data["Title"] = view.Title
		case models.ScreenResult:
			data["Title"] = view.Title + " result"
			data["Result"] = buildResult(registry.Bank(), view.UiState)
		case models.ScreenSettings:
			data["Title"] = "Settings"
		}
		c.HTML(http.StatusOK, string(view.Screen), data)
	}
}

// formAction returns a handler that dispatches the action built from the
// submitted form and redirects back to the screen.
func formAction(registry *exam.Registry, build func(c *gin.Context) (exam.Action, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, ok := build(c)
		if !ok {
			c.String(http.StatusBadRequest, "invalid form")
			return
		}
		store, ok := playerStore(registry, c)
		if !ok {
			return
		}
		store.Dispatch(a)
		c.Redirect(http.StatusSeeOther, "/")
	}
}

func fixed(a exam.Action) func(*gin.Context) (exam.Action, bool) {
	return func(*gin.Context) (exam.Action, bool) { return a, true }
}

// RegisterScreens mounts the HTML screen and its form actions on g.
func RegisterScreens(g gin.IRoutes, registry *exam.Registry) {
	g.GET("/", ShowScreen(registry))
	g.POST("/ui/start", formAction(registry, func(c *gin.Context) (exam.Action, bool) {
		t, err := models.ParseQuizType(c.PostForm("quiz_type"))
		if err != nil {
			return nil, false
		}
		return exam.StartQuiz{Type: t}, true
	}))
	g.POST("/ui/select", formAction(registry, func(c *gin.Context) (exam.Action, bool) {
		i, err := strconv.Atoi(c.PostForm("option_index"))
		if err != nil {
			return nil, false
		}
		return exam.SelectOption{Index: i}, true
	}))
	g.POST("/ui/next", formAction(registry, fixed(exam.Next{})))
	g.POST("/ui/prev", formAction(registry, fixed(exam.Prev{})))
	g.POST("/ui/restart", formAction(registry, fixed(exam.RestartSameQuiz{})))
	g.POST("/ui/menu", formAction(registry, fixed(exam.GoMenu{})))
	g.POST("/ui/settings", formAction(registry, fixed(exam.GoSettings{})))
	g.POST("/ui/settings/save", formAction(registry, func(c *gin.Context) (exam.Action, bool) {
		return exam.SaveSettings{
			OrangeTheme: c.PostForm("orange_theme") == "on",
			LargeText:   c.PostForm("large_text") == "on",
		}, true
	}))
	g.POST("/ui/history/clear", formAction(registry, fixed(exam.ClearExamHistory{})))
}

// tokenMaxAge bounds the cookie lifetime; the token's own expiry still applies.
const tokenMaxAge = 12 * 60 * 60

// RegisterLogin mounts the sign-in page that stores a JWT in TokenCookie so the
// screens can authenticate plain form posts. It must sit outside the auth group.
func RegisterLogin(g gin.IRoutes, secureCookie bool) {
	g.GET("/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "login", gin.H{"Title": "Sign in"})
	})
	g.POST("/login", func(c *gin.Context) {
		token := c.PostForm("token")
		if token == "" {
			c.HTML(http.StatusBadRequest, "login", gin.H{"Title": "Sign in", "Error": "A token is required."})
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.TokenCookie, token, tokenMaxAge, "/", "", secureCookie, true)
		c.Redirect(http.StatusSeeOther, "/")
	})
	g.POST("/logout", func(c *gin.Context) {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.TokenCookie, "", -1, "/", "", secureCookie, true)
		c.Redirect(http.StatusSeeOther, "/login")
	})
}
