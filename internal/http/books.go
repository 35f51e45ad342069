package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/entities"
)

// BooksController serves the read-only JSON API.
type BooksController struct {
	reader BookReader
}

func NewBooksController(reader BookReader) *BooksController {
	return &BooksController{
		reader: reader,
	}
}

// GetAllBooks handles GET /api/books
func (controller *BooksController) GetAllBooks(c *gin.Context) {
	books, err := controller.reader.ListBooks()
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	if books == nil {
		books = []entities.Book{}
	}
	c.IndentedJSON(http.StatusOK, gin.H{
		"books": books,
		"stats": entities.ComputeStats(books),
		"count": len(books),
	})
}

// SearchBooks handles GET /api/books/search?q=
func (controller *BooksController) SearchBooks(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		respondBadRequest(c, "q query parameter is required")
		return
	}

	results, err := controller.reader.SearchByTitle(query)
	if err != nil {
		respondInternalError(c, err, "search books")
		return
	}
	if results == nil {
		results = []entities.Book{}
	}
	c.IndentedJSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

// GetBookStats handles GET /api/books/stats
func (controller *BooksController) GetBookStats(c *gin.Context) {
	books, err := controller.reader.ListBooks()
	if err != nil {
		respondInternalError(c, err, "book stats")
		return
	}
	c.IndentedJSON(http.StatusOK, entities.ComputeStats(books))
}
