// Package entrypoint assembles the application: config, database, providers,
// stores, background workers and the HTTP server.
package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yuluo11/CET-Smart-Learn/internal/auth"
	"github.com/yuluo11/CET-Smart-Learn/internal/config"
	"github.com/yuluo11/CET-Smart-Learn/internal/database"
	"github.com/yuluo11/CET-Smart-Learn/internal/database/articles"
	"github.com/yuluo11/CET-Smart-Learn/internal/database/essays"
	"github.com/yuluo11/CET-Smart-Learn/internal/database/mistakes"
	"github.com/yuluo11/CET-Smart-Learn/internal/database/stats"
	"github.com/yuluo11/CET-Smart-Learn/internal/database/userwords"
	"github.com/yuluo11/CET-Smart-Learn/internal/database/words"
	"github.com/yuluo11/CET-Smart-Learn/internal/dictionary"
	"github.com/yuluo11/CET-Smart-Learn/internal/genai"
	http_controllers "github.com/yuluo11/CET-Smart-Learn/internal/http"
	"github.com/yuluo11/CET-Smart-Learn/internal/learning"
	"github.com/yuluo11/CET-Smart-Learn/internal/scheduler"
	"github.com/yuluo11/CET-Smart-Learn/internal/session"
	"github.com/yuluo11/CET-Smart-Learn/internal/storage/providers/local"
	"github.com/yuluo11/CET-Smart-Learn/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until an interrupt or termination signal, then
// shuts down within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Shutdown callback runs first to stop background workers
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run builds the full application and serves it.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting CET Smart Learn v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Collection repositories
	wordsRepo := words.NewRepository(db.DB)
	userWordsRepo := userwords.NewRepository(db.DB)
	articlesRepo := articles.NewRepository(db.DB)
	mistakesRepo := mistakes.NewRepository(db.DB)
	statsRepo := stats.NewRepository(db.DB)
	essaysRepo := essays.NewRepository(db.DB)

	// Object storage for avatar uploads
	objects, err := local.NewClient(cfg.Storage.Dir, cfg.Storage.PublicBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	// Generative content client
	genaiClient := genai.NewClient(cfg.GenAI)

	// Identity provider and session plumbing
	authService := auth.NewService(db.DB, cfg.Auth)

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}
	authMiddleware := auth.NewMiddleware(authService, sessionManager)

	// Stores
	sessionStore := session.NewStore(authService, objects)
	sessionStore.Initialize()
	defer sessionStore.Close()

	learningStore := learning.NewStore(sessionStore, learning.Repositories{
		Words:     wordsRepo,
		UserWords: userWordsRepo,
		Articles:  articlesRepo,
		Mistakes:  mistakesRepo,
		Stats:     statsRepo,
	})
	learningStore.Watch()
	defer learningStore.Close()

	if sessionStore.Identity() != nil {
		learningStore.RefreshAll()
	}

	// Task queue
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, cfg.Tasks)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		dictClient := dictionary.NewFreeDictionaryClient()
		taskClient.Register(
			tasks.NewGenerateArticleQueue(genaiClient, articlesRepo),
			tasks.NewEnrichWordQueue(wordsRepo, dictClient),
			tasks.NewEnrichAllWordsQueue(wordsRepo, dictClient),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Scheduler
	var daily *scheduler.DailyScheduler
	if taskClient != nil {
		daily = scheduler.NewDailyScheduler(taskClient, authService, cfg.Scheduler)
		if err := daily.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		SessionStore:   sessionStore,
		LearningStore:  learningStore,
		SessionManager: sessionManager,
		AuthMiddleware: authMiddleware,
		EssayRepo:      essaysRepo,
		GenAI:          genaiClient,
		TaskClient:     taskClient,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if daily != nil {
			daily.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
