package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/security"
	"github.com/mrlokans/library/internal/session"
)

const indexTemplate = "index"

// LibraryController serves the HTML catalog. Every form post ends in a 303
// back to the listing, with its outcome carried over as a flash message.
type LibraryController struct {
	catalog        *catalog.Service
	sessions       *session.Manager
	maxUploadBytes int64
}

func NewLibraryController(service *catalog.Service, sessions *session.Manager, maxUploadBytes int64) *LibraryController {
	return &LibraryController{
		catalog:        service,
		sessions:       sessions,
		maxUploadBytes: maxUploadBytes,
	}
}

// Index handles GET /
func (lc *LibraryController) Index(c *gin.Context) {
	page, err := lc.catalog.List()
	if err != nil {
		respondPageError(c, err, "list books")
		return
	}
	lc.render(c, page)
}

// AddBook handles POST /add_book
func (lc *LibraryController) AddBook(c *gin.Context) {
	if !parseForm(c) {
		return
	}

	input := catalog.NewBook{
		Title:  c.PostForm("title"),
		Author: c.PostForm("author"),
	}

	if form := c.Request.MultipartForm; form != nil {
		if files := form.File["image"]; len(files) > 0 && files[0].Filename != "" {
			file, err := files[0].Open()
			if err != nil {
				respondPageError(c, err, "open uploaded image")
				return
			}
			defer file.Close()
			input.Image = &catalog.Upload{Filename: files[0].Filename, Content: file}
		}
	}

	msg, err := lc.catalog.Add(input)
	if err != nil {
		respondPageError(c, err, "add book")
		return
	}
	lc.redirectWith(c, msg)
}

// BorrowBook handles POST /borrow_book/:id
func (lc *LibraryController) BorrowBook(c *gin.Context) {
	lc.bookAction(c, "borrow book", lc.catalog.Borrow)
}

// ReturnBook handles POST /return_book/:id
func (lc *LibraryController) ReturnBook(c *gin.Context) {
	lc.bookAction(c, "return book", lc.catalog.Return)
}

// DeleteBook handles POST /delete_book/:id
func (lc *LibraryController) DeleteBook(c *gin.Context) {
	lc.bookAction(c, "delete book", lc.catalog.Delete)
}

func (lc *LibraryController) bookAction(c *gin.Context, name string, action func(uint) (entities.Message, error)) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	msg, err := action(id)
	if err != nil {
		respondPageError(c, err, name)
		return
	}
	lc.redirectWith(c, msg)
}

// CheckBook handles POST /check_book
func (lc *LibraryController) CheckBook(c *gin.Context) {
	if !parseForm(c) {
		return
	}

	page, err := lc.catalog.Search(c.PostForm("query"))
	if err != nil {
		respondPageError(c, err, "search books")
		return
	}

	if page.Redirect {
		lc.redirectWith(c, page.Messages...)
		return
	}
	lc.render(c, page)
}

func (lc *LibraryController) redirectWith(c *gin.Context, messages ...entities.Message) {
	if lc.sessions != nil {
		lc.sessions.PushFlash(c.Request.Context(), messages...)
	} else {
		for _, msg := range messages {
			log.Printf("Dropping %s message without a session: %s", msg.Severity, msg.Text)
		}
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (lc *LibraryController) render(c *gin.Context, page *catalog.Page) {
	var messages []entities.Message
	if lc.sessions != nil {
		messages = lc.sessions.PopFlash(c.Request.Context())
	}
	messages = append(messages, page.Messages...)

	c.HTML(http.StatusOK, indexTemplate, gin.H{
		"Books":         page.Books,
		"SearchResults": page.SearchResults,
		"Query":         page.Query,
		"Stats":         page.Stats,
		"Messages":      messages,
		"MaxUpload":     formatBytes(lc.maxUploadBytes),
		"CSRFField":     security.CSRFField(c),
	})
}
