package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		GenAI
		Storage
		Tasks
		Scheduler
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	Auth struct {
		SessionSecret   string
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS
		OTPLifetime     time.Duration
		TokenExpiry     time.Duration
	}

	GenAI struct {
		APIKey      string
		BaseURL     string
		ChatModel   string
		ReaderModel string
	}

	Storage struct {
		Dir           string // Root directory for object buckets
		PublicBaseURL string // Base for public object URLs
	}

	Tasks struct {
		Enabled           bool
		Workers           int
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}

	Scheduler struct {
		ArticleGenEnabled  bool
		ArticleGenSchedule string // Cron format: "0 5 * * *" = daily at 05:00
		OTPCleanupSchedule string
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8288)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("auth_session_secret", "") // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "720h")
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_secure_cookies", true)
	v.SetDefault("auth_otp_lifetime", "10m")
	v.SetDefault("auth_token_expiry", "720h")

	// Generative content defaults
	v.SetDefault("genai_api_key", "")
	v.SetDefault("genai_base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("genai_chat_model", "gemini-2.5-flash")
	v.SetDefault("genai_reader_model", "gemini-2.5-pro")

	// Object storage defaults
	v.SetDefault("storage_dir", DefaultStorageDir)
	v.SetDefault("storage_public_base_url", "")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Scheduler defaults
	v.SetDefault("article_gen_enabled", false)
	v.SetDefault("article_gen_schedule", "0 5 * * *") // Daily at 05:00
	v.SetDefault("otp_cleanup_schedule", "30 * * * *")

	cfg := &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			SessionSecret:   v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime: v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:      v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:   v.GetBool("AUTH_SECURE_COOKIES"),
			OTPLifetime:     v.GetDuration("AUTH_OTP_LIFETIME"),
			TokenExpiry:     v.GetDuration("AUTH_TOKEN_EXPIRY"),
		},
		GenAI: GenAI{
			APIKey:      v.GetString("GENAI_API_KEY"),
			BaseURL:     v.GetString("GENAI_BASE_URL"),
			ChatModel:   v.GetString("GENAI_CHAT_MODEL"),
			ReaderModel: v.GetString("GENAI_READER_MODEL"),
		},
		Storage: Storage{
			Dir:           v.GetString("STORAGE_DIR"),
			PublicBaseURL: v.GetString("STORAGE_PUBLIC_BASE_URL"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Scheduler: Scheduler{
			ArticleGenEnabled:  v.GetBool("ARTICLE_GEN_ENABLED"),
			ArticleGenSchedule: v.GetString("ARTICLE_GEN_SCHEDULE"),
			OTPCleanupSchedule: v.GetString("OTP_CLEANUP_SCHEDULE"),
		},
	}

	// Missing provider credentials warn instead of failing startup; remote
	// calls made with the placeholders fail at call time.
	if cfg.GenAI.APIKey == "" {
		log.Printf("WARNING: GENAI_API_KEY is not set. Generative content calls will fail until it is configured.")
		cfg.GenAI.APIKey = PlaceholderAPIKey
	}
	if cfg.Storage.PublicBaseURL == "" {
		log.Printf("WARNING: STORAGE_PUBLIC_BASE_URL is not set. Public object URLs will use a placeholder host.")
		cfg.Storage.PublicBaseURL = PlaceholderPublicBaseURL
	}

	return cfg
}
