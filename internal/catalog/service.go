package catalog

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/metrics"
	"github.com/mrlokans/library/internal/uploads"
)

// Action names used for logging and metrics.
const (
	ActionAdd    = "add"
	ActionBorrow = "borrow"
	ActionReturn = "return"
	ActionDelete = "delete"
	ActionSearch = "search"
)

// Upload is an optional cover image attached to a new book.
type Upload struct {
	Filename string
	Content  io.Reader
}

// NewBook is the add-book form after parsing.
type NewBook struct {
	Title  string
	Author string
	Image  *Upload // nil or empty Filename when no file was chosen
}

// Page is everything the listing view needs.
type Page struct {
	Books         []entities.Book
	SearchResults []entities.Book // nil unless a search matched
	Query         string
	Stats         entities.Stats
	Messages      []entities.Message

	// Redirect is set when the caller should send the user back to the
	// listing instead of rendering this page.
	Redirect bool
}

// Service implements the user-facing catalog actions. Validation problems,
// unknown IDs and no-op state changes are reported as messages; only
// storage and filesystem failures come back as errors.
type Service struct {
	books  BookStore
	images ImageStore
}

func NewService(books BookStore, images ImageStore) *Service {
	return &Service{
		books:  books,
		images: images,
	}
}

// List returns all books with stats over the full set.
func (s *Service) List() (*Page, error) {
	books, err := s.books.ListBooks()
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	stats := entities.ComputeStats(books)
	metrics.SetCatalogStats(stats)

	return &Page{
		Books: books,
		Stats: stats,
	}, nil
}

// Add validates the form, stores the optional cover and inserts the book.
func (s *Service) Add(input NewBook) (entities.Message, error) {
	title := strings.TrimSpace(input.Title)
	author := strings.TrimSpace(input.Author)

	if title == "" || author == "" {
		return s.record(ActionAdd, entities.Errorf("Fill all required fields to add a book.")), nil
	}

	var imagePath *string
	if input.Image != nil && input.Image.Filename != "" {
		relPath, err := s.images.Save(input.Image.Content, input.Image.Filename)
		if errors.Is(err, uploads.ErrUnsupportedFile) {
			metrics.RecordUpload("rejected")
			log.Printf("Rejected cover upload for '%s': %v", title, err)
			return s.record(ActionAdd, s.invalidImageMessage()), nil
		}
		if err != nil {
			metrics.RecordUpload("failed")
			return entities.Message{}, fmt.Errorf("failed to save cover: %w", err)
		}
		metrics.RecordUpload("accepted")
		imagePath = &relPath
	}

	if _, err := s.books.InsertBook(title, author, imagePath); err != nil {
		if imagePath != nil {
			if rmErr := s.images.Remove(*imagePath); rmErr != nil {
				log.Printf("Error removing cover %s after failed insert: %v", *imagePath, rmErr)
			}
		}
		return entities.Message{}, fmt.Errorf("failed to add book: %w", err)
	}

	text := fmt.Sprintf("Book '%s' added!", title)
	if imagePath != nil {
		text += " Image uploaded successfully."
	}
	return s.record(ActionAdd, entities.Successf("%s", text)), nil
}

func (s *Service) invalidImageMessage() entities.Message {
	allowed := s.images.AllowedExtensions()
	names := make([]string, len(allowed))
	for i, ext := range allowed {
		names[i] = displayExtension(ext)
	}
	return entities.Errorf("Invalid image file. Please upload a valid image (%s).", strings.Join(names, ", "))
}

// displayExtension renders "webp" as "WebP" and everything else upper-case.
func displayExtension(ext string) string {
	if ext == "webp" {
		return "WebP"
	}
	return strings.ToUpper(ext)
}

// Borrow marks an available book as borrowed.
func (s *Service) Borrow(id uint) (entities.Message, error) {
	return s.transition(ActionBorrow, id, true)
}

// Return marks a borrowed book as available again.
func (s *Service) Return(id uint) (entities.Message, error) {
	return s.transition(ActionReturn, id, false)
}

// transition moves a book out of the given availability state. The update is
// conditional on that state, so a concurrent duplicate request gets the
// warning rather than a second state change.
func (s *Service) transition(action string, id uint, from bool) (entities.Message, error) {
	book, err := s.books.FindBook(id)
	if errors.Is(err, entities.ErrBookNotFound) {
		return s.record(action, entities.Errorf("Book not found.")), nil
	}
	if err != nil {
		return entities.Message{}, fmt.Errorf("failed to load book %d: %w", id, err)
	}

	changed, err := s.books.SetAvailability(id, from, !from)
	if err != nil {
		return entities.Message{}, fmt.Errorf("failed to %s book %d: %w", action, id, err)
	}

	if from {
		if !changed {
			return s.record(action, entities.Warningf("Book '%s' is already borrowed.", book.Title)), nil
		}
		return s.record(action, entities.Infof("Book '%s' borrowed.", book.Title)), nil
	}

	if !changed {
		return s.record(action, entities.Warningf("Book '%s' is already available.", book.Title)), nil
	}
	return s.record(action, entities.Successf("Book '%s' returned.", book.Title)), nil
}

// Delete removes the book and then, best effort, its cover file.
func (s *Service) Delete(id uint) (entities.Message, error) {
	book, err := s.books.FindBook(id)
	if errors.Is(err, entities.ErrBookNotFound) {
		return s.record(ActionDelete, entities.Errorf("Book not found.")), nil
	}
	if err != nil {
		return entities.Message{}, fmt.Errorf("failed to load book %d: %w", id, err)
	}

	if err := s.books.DeleteBook(id); err != nil {
		return entities.Message{}, fmt.Errorf("failed to delete book %d: %w", id, err)
	}

	if book.HasImage() {
		if err := s.images.Remove(*book.ImagePath); err != nil {
			log.Printf("Error deleting image file %s: %v", *book.ImagePath, err)
		}
	}

	return s.record(ActionDelete, entities.Successf("Book '%s' deleted successfully.", book.Title)), nil
}

// Search re-renders the full listing plus the titles matching query. An
// empty query yields a redirect page carrying only the error message.
func (s *Service) Search(query string) (*Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &Page{
			Messages: []entities.Message{s.record(ActionSearch, entities.Errorf("Enter a title to check."))},
			Redirect: true,
		}, nil
	}

	page, err := s.List()
	if err != nil {
		return nil, err
	}
	page.Query = query

	results, err := s.books.SearchByTitle(query)
	if err != nil {
		return nil, fmt.Errorf("failed to search books: %w", err)
	}

	if len(results) == 0 {
		page.Messages = append(page.Messages, s.record(ActionSearch, entities.Errorf("No books found containing those words.")))
		return page, nil
	}

	page.SearchResults = results
	page.Messages = append(page.Messages, s.record(ActionSearch, entities.Infof("Found %d book(s) containing '%s'", len(results), query)))
	return page, nil
}

func (s *Service) record(action string, msg entities.Message) entities.Message {
	metrics.RecordAction(action, msg.Severity)
	return msg
}
