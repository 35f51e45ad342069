package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		UI
		Uploads
		Session
		Tasks
		UploadCleanup
		Metrics
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path     string
		LogLevel string // silent, error, warn, info
	}
	UI struct {
		TemplatesPath string
		StaticPath    string
	}
	Uploads struct {
		SubDir            string   // Directory under StaticPath for cover images
		AllowedExtensions []string // Lower-case extensions without the dot
		MaxBytes          int64    // Request body limit
		VerifyContent     bool     // Sniff uploads and reject non-images
	}
	Session struct {
		Secret        string
		Lifetime      time.Duration
		SecureCookies bool // Set to false for local dev without HTTPS
		CSRFEnabled   bool
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	UploadCleanup struct {
		Enabled  bool
		Schedule string        // Cron format: "0 3 * * *" = daily at 03:00
		Grace    time.Duration // Files younger than this are never swept
	}
	Metrics struct {
		Enabled bool
	}
)

// splitList accepts "png,jpg" as well as "png jpg".
func splitList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' '
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.ToLower(f))
	}
	return out
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_log_level", "warn")
	v.SetDefault("templates_path", "./templates")
	v.SetDefault("static_path", "./static")

	// Upload defaults
	v.SetDefault("upload_subdir", "uploads")
	v.SetDefault("upload_allowed_extensions", "png,jpg,jpeg,gif,webp")
	v.SetDefault("upload_max_bytes", DefaultMaxUploadBytes)
	v.SetDefault("upload_verify_content", false)

	// Session defaults
	v.SetDefault("session_secret", "") // Auto-generated if empty
	v.SetDefault("session_lifetime", "24h")
	v.SetDefault("session_secure_cookies", false)
	v.SetDefault("csrf_enabled", false)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	// Orphan upload sweep defaults
	v.SetDefault("upload_cleanup_enabled", false)
	v.SetDefault("upload_cleanup_schedule", "0 3 * * *")
	v.SetDefault("upload_cleanup_grace", "1h")

	v.SetDefault("metrics_enabled", true)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path:     v.GetString("DATABASE_PATH"),
			LogLevel: v.GetString("DATABASE_LOG_LEVEL"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
			StaticPath:    v.GetString("STATIC_PATH"),
		},
		Uploads: Uploads{
			SubDir:            v.GetString("UPLOAD_SUBDIR"),
			AllowedExtensions: splitList(v.GetString("UPLOAD_ALLOWED_EXTENSIONS")),
			MaxBytes:          v.GetInt64("UPLOAD_MAX_BYTES"),
			VerifyContent:     v.GetBool("UPLOAD_VERIFY_CONTENT"),
		},
		Session: Session{
			Secret:        v.GetString("SESSION_SECRET"),
			Lifetime:      v.GetDuration("SESSION_LIFETIME"),
			SecureCookies: v.GetBool("SESSION_SECURE_COOKIES"),
			CSRFEnabled:   v.GetBool("CSRF_ENABLED"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		UploadCleanup: UploadCleanup{
			Enabled:  v.GetBool("UPLOAD_CLEANUP_ENABLED"),
			Schedule: v.GetString("UPLOAD_CLEANUP_SCHEDULE"),
			Grace:    v.GetDuration("UPLOAD_CLEANUP_GRACE"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}
}
