package http

import (
	"html/template"

	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/session"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Catalog    *catalog.Service
	BookReader BookReader
	Database   Pinger
	Sessions   *session.Manager

	// UI paths
	TemplatesPath string
	StaticPath    string

	// Templates overrides TemplatesPath when set (tests).
	Templates *template.Template

	// MaxUploadBytes caps request bodies; larger requests get 413.
	MaxUploadBytes int64

	// CSRF protection is enabled when a secret is set
	CSRFSecret    []byte
	SecureCookies bool

	MetricsEnabled bool

	// Background upload cleanup (optional)
	CleanupRunner CleanupRunner
	TaskStatus    TaskStatusReader

	// Application info
	Version string
}
