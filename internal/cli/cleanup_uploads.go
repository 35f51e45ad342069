package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/tasks"
	"github.com/mrlokans/library/internal/uploads"
)

type CleanupUploadsCommand struct {
	DatabasePath string
	StaticPath   string
	SubDir       string
	Grace        time.Duration

	Out io.Writer
}

func NewCleanupUploadsCommand(cfg *config.Config) *CleanupUploadsCommand {
	return &CleanupUploadsCommand{
		DatabasePath: cfg.Database.Path,
		StaticPath:   cfg.UI.StaticPath,
		SubDir:       cfg.Uploads.SubDir,
		Grace:        cfg.UploadCleanup.Grace,
		Out:          os.Stdout,
	}
}

func (cmd *CleanupUploadsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("cleanup-uploads", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cmd.DatabasePath, "Path to the catalog database")
	fs.StringVar(&cmd.StaticPath, "static", cmd.StaticPath, "Static root holding the upload directory")
	fs.StringVar(&cmd.SubDir, "subdir", cmd.SubDir, "Upload directory under the static root")
	fs.DurationVar(&cmd.Grace, "grace", cmd.Grace, "Keep unreferenced files younger than this")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s cleanup-uploads [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Delete cover images that no book references.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s cleanup-uploads\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s cleanup-uploads -grace 0s\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Grace < 0 {
		return fmt.Errorf("grace must not be negative")
	}
	return nil
}

func (cmd *CleanupUploadsCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath, database.ParseLogLevel("silent"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	store, err := uploads.NewStore(uploads.Config{
		StaticDir: cmd.StaticPath,
		SubDir:    cmd.SubDir,
	})
	if err != nil {
		return fmt.Errorf("failed to open upload directory: %w", err)
	}

	removed, err := tasks.SweepOrphanUploads(db, store, cmd.Grace)
	for _, name := range removed {
		fmt.Fprintf(cmd.Out, "removed %s\n", name)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.Out, "Removed %d orphan uploads from %s\n", len(removed), store.Dir())
	return nil
}
