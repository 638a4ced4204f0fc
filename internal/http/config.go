package http

import (
	"github.com/yuluo11/CET-Smart-Learn/internal/auth"
	"github.com/yuluo11/CET-Smart-Learn/internal/database"
	"github.com/yuluo11/CET-Smart-Learn/internal/database/essays"
	"github.com/yuluo11/CET-Smart-Learn/internal/genai"
	"github.com/yuluo11/CET-Smart-Learn/internal/learning"
	"github.com/yuluo11/CET-Smart-Learn/internal/session"
	"github.com/yuluo11/CET-Smart-Learn/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed to create
// the HTTP router.
type RouterConfig struct {
	Database *database.Database

	// Stores
	SessionStore  *session.Store
	LearningStore *learning.Store

	// Authentication plumbing
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware

	// Essay persistence (not cached by the learning store)
	EssayRepo *essays.Repository

	// Generative content
	GenAI *genai.Client

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Application info
	Version string
}
