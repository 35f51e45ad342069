package database

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/library/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) *Database {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "library.sqlite")
	db, err := NewDatabase(dbPath, logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func strPtr(s string) *string {
	return &s
}

func TestNewDatabase_CreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "instance", "nested", "library.sqlite")

	db, err := NewDatabase(dbPath, logger.Silent)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
	assert.NoError(t, db.Ping())
}

func TestInitSchema(t *testing.T) {
	t.Run("is idempotent", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "library.sqlite")

		first, err := NewDatabase(dbPath, logger.Silent)
		require.NoError(t, err)
		_, err = first.InsertBook("Dune", "Frank Herbert", nil)
		require.NoError(t, err)
		require.NoError(t, first.Close())

		second, err := NewDatabase(dbPath, logger.Silent)
		require.NoError(t, err)
		defer second.Close()

		books, err := second.ListBooks()
		require.NoError(t, err)
		assert.Len(t, books, 1)
	})

	t.Run("adds image_path to a legacy table", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "legacy.sqlite")

		raw, err := sql.Open("sqlite3", dbPath)
		require.NoError(t, err)
		_, err = raw.Exec(`CREATE TABLE books (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			author TEXT NOT NULL,
			available INTEGER NOT NULL DEFAULT 1
		)`)
		require.NoError(t, err)
		_, err = raw.Exec(`INSERT INTO books (title, author) VALUES ('Emma', 'Jane Austen')`)
		require.NoError(t, err)
		require.NoError(t, raw.Close())

		db, err := NewDatabase(dbPath, logger.Silent)
		require.NoError(t, err)
		defer db.Close()

		assert.True(t, db.DB.Migrator().HasColumn(&entities.Book{}, "image_path"))

		book, err := db.FindBook(1)
		require.NoError(t, err)
		assert.Equal(t, "Emma", book.Title)
		assert.True(t, book.Available)
		assert.Nil(t, book.ImagePath)
	})
}

func TestDatabase(t *testing.T) {
	db := setupTestDB(t)

	var duneID uint

	t.Run("InsertBook assigns increasing IDs and defaults to available", func(t *testing.T) {
		id, err := db.InsertBook("Dune", "Frank Herbert", strPtr("uploads/dune.png"))
		require.NoError(t, err)
		assert.NotZero(t, id)
		duneID = id

		next, err := db.InsertBook("Emma", "Jane Austen", nil)
		require.NoError(t, err)
		assert.Greater(t, next, id)

		book, err := db.FindBook(id)
		require.NoError(t, err)
		assert.Equal(t, "Dune", book.Title)
		assert.Equal(t, "Frank Herbert", book.Author)
		assert.True(t, book.Available)
		require.NotNil(t, book.ImagePath)
		assert.Equal(t, "uploads/dune.png", *book.ImagePath)
	})

	t.Run("ListBooks orders by ascending ID", func(t *testing.T) {
		books, err := db.ListBooks()
		require.NoError(t, err)
		require.Len(t, books, 2)
		assert.Equal(t, "Dune", books[0].Title)
		assert.Equal(t, "Emma", books[1].Title)
	})

	t.Run("FindBook returns ErrBookNotFound for unknown IDs", func(t *testing.T) {
		book, err := db.FindBook(9999)
		assert.ErrorIs(t, err, entities.ErrBookNotFound)
		assert.Nil(t, book)
	})

	t.Run("SetAvailability changes state only from the expected value", func(t *testing.T) {
		changed, err := db.SetAvailability(duneID, true, false)
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = db.SetAvailability(duneID, true, false)
		require.NoError(t, err)
		assert.False(t, changed, "second borrow must not match")

		book, err := db.FindBook(duneID)
		require.NoError(t, err)
		assert.False(t, book.Available)

		changed, err = db.SetAvailability(duneID, false, true)
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = db.SetAvailability(9999, true, false)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("ImagePaths lists referenced images only", func(t *testing.T) {
		paths, err := db.ImagePaths()
		require.NoError(t, err)
		assert.Equal(t, []string{"uploads/dune.png"}, paths)
	})

	t.Run("DeleteBook removes the row", func(t *testing.T) {
		require.NoError(t, db.DeleteBook(duneID))

		_, err := db.FindBook(duneID)
		assert.ErrorIs(t, err, entities.ErrBookNotFound)

		books, err := db.ListBooks()
		require.NoError(t, err)
		assert.Len(t, books, 1)
	})
}

func TestSearchByTitle(t *testing.T) {
	db := setupTestDB(t)

	for _, title := range []string{"The Hobbit", "HOBBIT Companion", "Dune", "100% Cotton", "snake_case", "Ice Cream"} {
		_, err := db.InsertBook(title, "Someone", nil)
		require.NoError(t, err)
	}

	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{"case-insensitive substring", "hobbit", []string{"The Hobbit", "HOBBIT Companion"}},
		{"no match", "Tolkien", nil},
		{"percent is literal", "%", []string{"100% Cotton"}},
		{"underscore is literal", "e_c", []string{"snake_case"}},
		{"single character", "d", []string{"Dune"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books, err := db.SearchByTitle(tt.query)
			require.NoError(t, err)

			var titles []string
			for _, b := range books {
				titles = append(titles, b.Title)
			}
			assert.Equal(t, tt.expected, titles)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, ParseLogLevel("silent"))
	assert.Equal(t, logger.Error, ParseLogLevel("ERROR"))
	assert.Equal(t, logger.Info, ParseLogLevel("info"))
	assert.Equal(t, logger.Warn, ParseLogLevel("warn"))
	assert.Equal(t, logger.Warn, ParseLogLevel("bogus"))
}
