package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/library/internal/entities"
)

func TestRecordAction(t *testing.T) {
	before := testutil.ToFloat64(BookActionsTotal.WithLabelValues("borrow", "warning"))

	RecordAction("borrow", entities.SeverityWarning)

	after := testutil.ToFloat64(BookActionsTotal.WithLabelValues("borrow", "warning"))
	assert.Equal(t, before+1, after)
}

func TestSetCatalogStats(t *testing.T) {
	SetCatalogStats(entities.Stats{Total: 5, Available: 3, Borrowed: 2})

	assert.Equal(t, float64(5), testutil.ToFloat64(BooksTotal))
	assert.Equal(t, float64(3), testutil.ToFloat64(BooksAvailable))
	assert.Equal(t, float64(2), testutil.ToFloat64(BooksBorrowed))
}

func TestRecordUploadAndOrphans(t *testing.T) {
	beforeUpload := testutil.ToFloat64(UploadsTotal.WithLabelValues("rejected"))
	beforeOrphans := testutil.ToFloat64(OrphanUploadsRemoved)

	RecordUpload("rejected")
	RecordOrphansRemoved(3)

	assert.Equal(t, beforeUpload+1, testutil.ToFloat64(UploadsTotal.WithLabelValues("rejected")))
	assert.Equal(t, beforeOrphans+3, testutil.ToFloat64(OrphanUploadsRemoved))
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(GinMiddleware())
	router.GET("/books/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	router.GET("/metrics", Handler())

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/books/:id", "204"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/books/42", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/books/:id", "204")))

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/metrics", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "library_http_requests_total")
}
