package catalog

import (
	"io"

	"github.com/mrlokans/library/internal/entities"
)

// BookStore is the persistence the catalog needs. Implemented by
// database.Database.
type BookStore interface {
	ListBooks() ([]entities.Book, error)
	FindBook(id uint) (*entities.Book, error)
	InsertBook(title, author string, imagePath *string) (uint, error)
	SetAvailability(id uint, from, to bool) (bool, error)
	DeleteBook(id uint) error
	SearchByTitle(query string) ([]entities.Book, error)
}

// ImageStore persists cover uploads. Implemented by uploads.Store.
type ImageStore interface {
	Save(content io.Reader, originalName string) (string, error)
	Remove(relPath string) error
	AllowedExtensions() []string
}
