package http

import (
	"bytes"
	"html"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/session"
	"github.com/mrlokans/library/internal/uploads"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testIndexTemplate prints page data as plain lines so tests can assert on it.
const testIndexTemplate = `{{define "index"}}{{range .Messages}}[{{.Severity}}] {{.Text}}
{{end}}stats {{.Stats.Total}}/{{.Stats.Available}}/{{.Stats.Borrowed}}
{{range .Books}}book {{.ID}} {{.Title}} available={{.Available}}{{if hasImage .}} image={{imagePath .}}{{end}}
{{end}}{{range .SearchResults}}result {{.Title}}
{{end}}{{end}}`

var pngBytes = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
}

type testServer struct {
	router    *gin.Engine
	db        *database.Database
	images    *uploads.Store
	staticDir string
	cookies   map[string]*http.Cookie
}

type serverOption func(*RouterConfig)

func setupTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	dir := t.TempDir()

	db, err := database.NewDatabase(filepath.Join(dir, "library.sqlite"), logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	staticDir := filepath.Join(dir, "static")
	images, err := uploads.NewStore(uploads.Config{StaticDir: staticDir, SubDir: "uploads"})
	require.NoError(t, err)

	sqlDB, err := db.SQLDB()
	require.NoError(t, err)
	sessions, err := session.NewManager(sqlDB, config.Session{Lifetime: time.Hour})
	require.NoError(t, err)

	cfg := RouterConfig{
		Catalog:        catalog.NewService(db, images),
		BookReader:     db,
		Database:       db,
		Sessions:       sessions,
		StaticPath:     staticDir,
		Templates:      template.Must(template.New("").Funcs(templateFuncs).Parse(testIndexTemplate)),
		MaxUploadBytes: config.DefaultMaxUploadBytes,
		Version:        "test",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &testServer{
		router:    NewRouter(cfg),
		db:        db,
		images:    images,
		staticDir: staticDir,
		cookies:   make(map[string]*http.Cookie),
	}
}

// do sends a request carrying the cookies collected so far, like a browser.
func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		s.cookies[c.Name] = c
	}
	return w
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *testServer) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *testServer) postMultipart(t *testing.T, path string, fields map[string]string, fileName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" || content != nil {
		part, err := mw.CreateFormFile("image", fileName)
		require.NoError(t, err)
		_, err = io.Copy(part, bytes.NewReader(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.do(req)
}

// follow asserts a 303 back to the listing and renders it.
func (s *testServer) follow(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))

	page := s.get("/")
	require.Equal(t, http.StatusOK, page.Code)
	return page.Body.String()
}

// escaped matches how html/template renders text.
func escaped(s string) string {
	return html.EscapeString(s)
}

func TestParseIDParam_Valid(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "123"}}

	id, ok := parseIDParam(c, "id")

	assert.True(t, ok)
	assert.Equal(t, uint(123), id)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestParseIDParam_Invalid(t *testing.T) {
	for _, value := range []string{"abc", "-1", "", "1.5"} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: value}}

		id, ok := parseIDParam(c, "id")

		assert.False(t, ok, value)
		assert.Equal(t, uint(0), id)
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "16 MB", formatBytes(16<<20))
	assert.Equal(t, "1 GB", formatBytes(1<<30))
}
