package entrypoint

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/database"
	http_controllers "github.com/mrlokans/library/internal/http"
	"github.com/mrlokans/library/internal/scheduler"
	"github.com/mrlokans/library/internal/session"
	"github.com/mrlokans/library/internal/tasks"
	"github.com/mrlokans/library/internal/uploads"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for SIGINT or SIGTERM, then shut down within the configured timeout
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the server goes away
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// csrfSecret decodes a hex secret, falls back to the raw bytes, and
// generates a random one when none is configured.
func csrfSecret(configured string) ([]byte, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret, nil
		}
		return []byte(configured), nil
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	log.Printf("Generated CSRF secret (set SESSION_SECRET to persist)")
	return secret, nil
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Library v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path, database.ParseLogLevel(cfg.Database.LogLevel))
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	images, err := uploads.NewStore(uploads.Config{
		StaticDir:         cfg.UI.StaticPath,
		SubDir:            cfg.Uploads.SubDir,
		AllowedExtensions: cfg.Uploads.AllowedExtensions,
		VerifyContent:     cfg.Uploads.VerifyContent,
	})
	if err != nil {
		log.Fatalf("Failed to initialize upload directory: %v", err)
	}
	log.Printf("Cover uploads stored in %s (allowed: %v)", images.Dir(), images.AllowedExtensions())

	sqlDB, err := db.SQLDB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	sessions, err := session.NewManager(sqlDB, cfg.Session)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	var secret []byte
	if cfg.Session.CSRFEnabled {
		secret, err = csrfSecret(cfg.Session.Secret)
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var cleanupScheduler *scheduler.UploadCleanupScheduler
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewCleanupOrphanUploadsQueue(db, images),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		cleanupScheduler = scheduler.NewUploadCleanupScheduler(taskClient, cfg.UploadCleanup)
		if err := cleanupScheduler.Start(taskCtx); err != nil {
			log.Fatalf("Failed to start upload cleanup scheduler: %v", err)
		}
	} else {
		log.Printf("Task queue disabled; orphan uploads are only removed by the cleanup-uploads command")
	}

	routerCfg := http_controllers.RouterConfig{
		Catalog:        catalog.NewService(db, images),
		BookReader:     db,
		Database:       db,
		Sessions:       sessions,
		TemplatesPath:  cfg.UI.TemplatesPath,
		StaticPath:     cfg.UI.StaticPath,
		MaxUploadBytes: cfg.Uploads.MaxBytes,
		CSRFSecret:     secret,
		SecureCookies:  cfg.Session.SecureCookies,
		MetricsEnabled: cfg.Metrics.Enabled,
		Version:        version,
	}
	if taskClient != nil {
		routerCfg.CleanupRunner = cleanupScheduler
		routerCfg.TaskStatus = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
