package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/entities"
)

type ListBooksCommand struct {
	DatabasePath string
	Search       string
	JSON         bool

	Out io.Writer
}

func NewListBooksCommand(cfg *config.Config) *ListBooksCommand {
	return &ListBooksCommand{
		DatabasePath: cfg.Database.Path,
		Out:          os.Stdout,
	}
}

func (cmd *ListBooksCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("list-books", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cmd.DatabasePath, "Path to the catalog database")
	fs.StringVar(&cmd.Search, "search", "", "Only list books whose title contains this text")
	fs.BoolVar(&cmd.JSON, "json", false, "Print books and stats as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s list-books [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print the catalog with availability and totals.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s list-books\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s list-books -search hobbit -json\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *ListBooksCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath, database.ParseLogLevel("silent"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	all, err := db.ListBooks()
	if err != nil {
		return err
	}

	books := all
	if cmd.Search != "" {
		books, err = db.SearchByTitle(cmd.Search)
		if err != nil {
			return err
		}
	}

	stats := entities.ComputeStats(all)

	if cmd.JSON {
		if books == nil {
			books = []entities.Book{}
		}
		enc := json.NewEncoder(cmd.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"books": books,
			"stats": stats,
			"count": len(books),
		})
	}

	w := tabwriter.NewWriter(cmd.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tSTATUS\tCOVER")
	for _, book := range books {
		status := "available"
		if !book.Available {
			status = "borrowed"
		}
		cover := "-"
		if book.HasImage() {
			cover = *book.ImagePath
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", book.ID, book.Title, book.Author, status, cover)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.Out, "\nTotal: %d  Available: %d  Borrowed: %d\n", stats.Total, stats.Available, stats.Borrowed)
	return nil
}
