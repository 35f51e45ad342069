package entities

import "errors"

// ErrBookNotFound is returned by stores when no row matches the requested ID.
var ErrBookNotFound = errors.New("book not found")

type Book struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string  `gorm:"not null" json:"title"`
	Author    string  `gorm:"not null" json:"author"`
	Available bool    `gorm:"not null;default:true" json:"available"`
	ImagePath *string `json:"image_path,omitempty"` // Relative to the static root, e.g. "uploads/<uuid>.png"
}

func (Book) TableName() string {
	return "books"
}

// HasImage reports whether the book carries an uploaded cover.
func (b Book) HasImage() bool {
	return b.ImagePath != nil && *b.ImagePath != ""
}

// Stats summarises availability over a set of books.
type Stats struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Borrowed  int `json:"borrowed"`
}

// ComputeStats counts available and borrowed books. Borrowed is always
// Total - Available.
func ComputeStats(books []Book) Stats {
	available := 0
	for _, book := range books {
		if book.Available {
			available++
		}
	}
	return Stats{
		Total:     len(books),
		Available: available,
		Borrowed:  len(books) - available,
	}
}
