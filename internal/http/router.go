package http

import (
	"html/template"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/metrics"
	"github.com/mrlokans/library/internal/security"
)

// templateFuncs are available to every page template.
var templateFuncs = template.FuncMap{
	"hasImage": func(book entities.Book) bool {
		return book.HasImage()
	},
	"imagePath": func(book entities.Book) string {
		if book.ImagePath == nil {
			return ""
		}
		return *book.ImagePath
	},
}

// LoadTemplates parses every *.html file in dir with the page helpers.
func LoadTemplates(dir string) (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseGlob(filepath.Join(dir, "*.html"))
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	if cfg.MetricsEnabled {
		router.Use(metrics.GinMiddleware())
	}

	// Apply security headers to all responses
	router.Use(security.HeadersMiddleware())
	router.Use(security.StrictTransportSecurityMiddleware())

	router.Use(BodyLimitMiddleware(cfg.MaxUploadBytes))

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(security.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	if cfg.Sessions != nil {
		router.Use(cfg.Sessions.LoadAndSave())
	}

	tmpl := cfg.Templates
	if tmpl == nil {
		tmpl = template.Must(LoadTemplates(cfg.TemplatesPath))
	}
	router.SetHTMLTemplate(tmpl)

	// Serve static files, uploaded covers included
	if cfg.StaticPath != "" {
		router.Static("/static", cfg.StaticPath)
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	if cfg.MetricsEnabled {
		router.GET("/metrics", metrics.Handler())
	}

	// Catalog pages
	library := NewLibraryController(cfg.Catalog, cfg.Sessions, cfg.MaxUploadBytes)
	router.GET("/", library.Index)
	router.POST("/add_book", library.AddBook)
	router.POST("/borrow_book/:id", library.BorrowBook)
	router.POST("/return_book/:id", library.ReturnBook)
	router.POST("/delete_book/:id", library.DeleteBook)
	router.POST("/check_book", library.CheckBook)

	// Books API endpoints
	if cfg.BookReader != nil {
		booksController := NewBooksController(cfg.BookReader)
		router.GET("/api/books", booksController.GetAllBooks)
		router.GET("/api/books/search", booksController.SearchBooks)
		router.GET("/api/books/stats", booksController.GetBookStats)
	}

	// Task management endpoints
	if cfg.CleanupRunner != nil && cfg.TaskStatus != nil {
		tasksController := NewTasksController(cfg.CleanupRunner, cfg.TaskStatus)
		router.GET("/api/tasks/types", tasksController.ListTaskTypes)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
		router.POST("/api/tasks/:type/run", tasksController.RunTask)
	}

	return router
}
