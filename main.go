package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"quiz-server/config"
	"quiz-server/db"
	"quiz-server/exam"
	"quiz-server/handlers"
	"quiz-server/ingestion"
	"quiz-server/middleware"
)

// openStorage opens the storage driver named in cfg. The returned close
// function releases any connection pool.
func openStorage(ctx context.Context, cfg config.StorageConfig, databaseURL string) (exam.Storage, func(), error) {
	switch cfg.Driver {
	case "postgres":
		pool, err := db.InitDB(databaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		if err := db.CreateSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("error creating database schema: %w", err)
		}
		return db.NewPostgresStorage(pool), pool.Close, nil
	case "file", "":
		fs, err := db.NewFileStorage(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Storing player state in %s", cfg.DataDir)
		return fs, func() {}, nil
	case "memory":
		log.Println("Storing player state in memory; it is lost on exit")
		return db.NewMemoryStorage(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver: %q", cfg.Driver)
}

// newRouter wires middleware and routes for registry.
func newRouter(cfg *config.Config, registry *exam.Registry) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery())

	renderer, err := handlers.NewRenderer()
	if err != nil {
		return nil, err
	}
	router.HTMLRender = renderer

	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Without a signing key every request plays as the local player.
	authMiddleware := middleware.LocalPlayerMiddleware()
	if cfg.AuthEnabled() {
		authMiddleware = middleware.AuthMiddleware(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	screens := router.Group("/")
	if cfg.AuthEnabled() {
		// browsers sign in once and carry the token in a cookie
		handlers.RegisterLogin(router, cfg.GinMode == gin.ReleaseMode)
		screens.Use(middleware.LoginRedirect("/login"))
	}
	screens.Use(authMiddleware)
	handlers.RegisterScreens(screens, registry)

	// API Routes (version 1)
	apiV1 := router.Group("/api/v1")
	apiV1.Use(authMiddleware)
	{
		apiV1.GET("/quiz_types", handlers.GetQuizTypes(registry))
		apiV1.GET("/state", handlers.GetState(registry))
		apiV1.POST("/quiz/start", handlers.StartQuiz(registry))
		apiV1.POST("/quiz/select", handlers.SelectOption(registry))
		apiV1.POST("/quiz/next", handlers.NextQuestion(registry))
		apiV1.POST("/quiz/prev", handlers.PrevQuestion(registry))
		apiV1.POST("/quiz/restart", handlers.RestartQuiz(registry))
		apiV1.POST("/menu", handlers.GoMenu(registry))
		apiV1.POST("/settings/open", handlers.OpenSettings(registry))
		apiV1.PUT("/settings", handlers.SaveSettings(registry))
		apiV1.GET("/result", handlers.GetResult(registry))
		apiV1.GET("/share", handlers.GetShareText(registry))
		apiV1.GET("/history", handlers.GetHistory(registry))
		apiV1.DELETE("/history", handlers.ClearHistory(registry))
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware)
	admin.Use(middleware.RoleCheckMiddleware([]string{"admin"}))
	{
		admin.GET("/players", handlers.AdminListPlayers(registry))
		admin.GET("/dashboard", handlers.AdminDashboard(registry))
	}
	return router, nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, closeStorage, err := openStorage(ctx, cfg.Storage, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to open %s storage: %v", cfg.Storage.Driver, err)
	}
	defer closeStorage()

	bank, err := ingestion.LoadBanks(cfg.BankPath, exam.DefaultBank())
	if err != nil {
		log.Fatalf("Error loading question banks: %v", err)
	}
	registry := exam.NewRegistry(bank, storage)

	gin.SetMode(cfg.GinMode)
	router, err := newRouter(cfg, registry)
	if err != nil {
		log.Fatalf("Error loading templates: %v", err)
	}
	if !cfg.AuthEnabled() {
		log.Printf("Auth disabled, all requests play as %q", middleware.LocalPlayer)
	}

	// Quiz timer: one tick per interval for every player on the quiz screen.
	go registry.Run(ctx, cfg.TickInterval)

	srv := &http.Server{
		Addr:    cfg.ServerPort,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("Quiz server starting on %s", cfg.ServerPort)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server startup error: %v", err)
	}
	log.Println("Server exited gracefully.")
}
