package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBooksController_GetAllBooks(t *testing.T) {
	t.Run("returns empty list when no books", func(t *testing.T) {
		s := setupTestServer(t)

		w := s.get("/api/books")
		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Books []map[string]any `json:"books"`
			Stats map[string]int   `json:"stats"`
			Count int              `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.NotNil(t, response.Books)
		assert.Empty(t, response.Books)
		assert.Equal(t, 0, response.Count)
		assert.Equal(t, map[string]int{"total": 0, "available": 0, "borrowed": 0}, response.Stats)
	})

	t.Run("returns books with stats", func(t *testing.T) {
		s := setupTestServer(t)
		_, err := s.db.InsertBook("Dune", "Frank Herbert", nil)
		require.NoError(t, err)
		id, err := s.db.InsertBook("Emma", "Jane Austen", nil)
		require.NoError(t, err)
		_, err = s.db.SetAvailability(id, true, false)
		require.NoError(t, err)

		w := s.get("/api/books")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{
			"books": [
				{"id": 1, "title": "Dune", "author": "Frank Herbert", "available": true},
				{"id": 2, "title": "Emma", "author": "Jane Austen", "available": false}
			],
			"stats": {"total": 2, "available": 1, "borrowed": 1},
			"count": 2
		}`, w.Body.String())
	})
}

func TestBooksController_SearchBooks(t *testing.T) {
	s := setupTestServer(t)
	for _, title := range []string{"The Hobbit", "Dune"} {
		_, err := s.db.InsertBook(title, "Someone", nil)
		require.NoError(t, err)
	}

	t.Run("requires a query", func(t *testing.T) {
		w := s.get("/api/books/search?q=")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error": "q query parameter is required"}`, w.Body.String())
	})

	t.Run("returns matches", func(t *testing.T) {
		w := s.get("/api/books/search?q=HOB")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{
			"results": [{"id": 1, "title": "The Hobbit", "author": "Someone", "available": true}],
			"count": 1
		}`, w.Body.String())
	})

	t.Run("returns an empty list without matches", func(t *testing.T) {
		w := s.get("/api/books/search?q=zzz")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"results": [], "count": 0}`, w.Body.String())
	})
}

func TestBooksController_GetBookStats(t *testing.T) {
	s := setupTestServer(t)
	_, err := s.db.InsertBook("Dune", "Frank Herbert", nil)
	require.NoError(t, err)

	w := s.get("/api/books/stats")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total": 1, "available": 1, "borrowed": 0}`, w.Body.String())
}
