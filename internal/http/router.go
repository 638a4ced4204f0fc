// Package http wires the gin API surface. Handlers consume the session and
// learning stores plus the generative-content client; they never touch the
// repositories directly except for essay persistence.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/yuluo11/CET-Smart-Learn/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	authController := NewAuthController(cfg.SessionStore, cfg.SessionManager)
	wordsController := NewWordsController(cfg.LearningStore)
	articlesController := NewArticlesController(cfg.LearningStore)
	mistakesController := NewMistakesController(cfg.LearningStore)
	statsController := NewStatsController(cfg.LearningStore)
	essaysController := NewEssaysController(cfg.EssayRepo)
	generateController := NewGenerateController(cfg.GenAI, cfg.TaskClient)
	exportController := NewExportController(cfg.LearningStore)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	api := router.Group("/api")

	// Identity
	api.POST("/auth/signup", authController.SignUp)
	api.POST("/auth/verify", authController.VerifyOTP)
	api.POST("/auth/login", authController.Login)
	api.POST("/auth/refresh", authController.Refresh)
	api.POST("/auth/logout", authController.Logout)
	api.GET("/session", authController.CurrentSession)
	api.PUT("/profile/metadata", authController.UpdateMetadata)
	api.POST("/profile/avatar", authController.UploadAvatar)

	// Vocabulary
	api.GET("/words", wordsController.List)
	api.GET("/words/collected", wordsController.ListCollected)
	api.PUT("/words/:id/mastered", wordsController.SetMastered)
	api.PUT("/words/:id/collect", wordsController.SetCollected)

	// Reading
	api.GET("/articles", articlesController.List)
	api.GET("/articles/current", articlesController.Current)

	// Mistake notebook
	api.GET("/mistakes", mistakesController.List)
	api.POST("/mistakes", mistakesController.Add)
	api.PUT("/mistakes/:id/practiced", mistakesController.MarkPracticed)

	// Study stats
	api.GET("/stats", statsController.Get)
	api.POST("/stats/checkin", statsController.CheckIn)

	// Writing exercises
	api.POST("/essays", essaysController.Save)
	api.GET("/essays", essaysController.List)

	// Notebook export
	api.GET("/export/notebook", exportController.Notebook)

	// Generative content
	api.POST("/generate/chat", generateController.Chat)
	api.POST("/generate/article", generateController.Article)
	api.POST("/generate/story", generateController.Story)
	api.POST("/admin/articles/generate", generateController.EnqueueArticle)
	api.POST("/admin/words/enrich", generateController.EnqueueWordEnrichment)

	// Cache refresh
	api.POST("/refresh", func(c *gin.Context) {
		cfg.LearningStore.RefreshAll()
		c.JSON(200, gin.H{"message": "已刷新"})
	})

	return router
}
