package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/database"
)

func seedDatabase(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "library.sqlite")

	db, err := database.NewDatabase(dbPath, logger.Silent)
	require.NoError(t, err)
	defer db.Close()

	cover := "uploads/kept.png"
	_, err = db.InsertBook("The Hobbit", "J.R.R. Tolkien", &cover)
	require.NoError(t, err)
	id, err := db.InsertBook("Dune", "Frank Herbert", nil)
	require.NoError(t, err)
	_, err = db.SetAvailability(id, true, false)
	require.NoError(t, err)

	return dbPath
}

func TestListBooksCommand(t *testing.T) {
	dbPath := seedDatabase(t)

	t.Run("table", func(t *testing.T) {
		var out bytes.Buffer
		cmd := NewListBooksCommand(&config.Config{})
		cmd.Out = &out
		require.NoError(t, cmd.ParseFlags([]string{"-db", dbPath}))
		require.NoError(t, cmd.Run())

		assert.Contains(t, out.String(), "The Hobbit")
		assert.Contains(t, out.String(), "uploads/kept.png")
		assert.Contains(t, out.String(), "borrowed")
		assert.Contains(t, out.String(), "Total: 2  Available: 1  Borrowed: 1")
	})

	t.Run("json search", func(t *testing.T) {
		var out bytes.Buffer
		cmd := NewListBooksCommand(&config.Config{})
		cmd.Out = &out
		require.NoError(t, cmd.ParseFlags([]string{"-db", dbPath, "-search", "hob", "-json"}))
		require.NoError(t, cmd.Run())

		var response struct {
			Books []struct {
				Title string `json:"title"`
			} `json:"books"`
			Stats map[string]int `json:"stats"`
			Count int            `json:"count"`
		}
		require.NoError(t, json.Unmarshal(out.Bytes(), &response))
		assert.Equal(t, 1, response.Count)
		assert.Equal(t, "The Hobbit", response.Books[0].Title)
		assert.Equal(t, 2, response.Stats["total"], "stats cover the whole catalog")
	})
}

func TestCleanupUploadsCommand(t *testing.T) {
	dbPath := seedDatabase(t)
	staticDir := t.TempDir()
	uploadDir := filepath.Join(staticDir, "uploads")
	require.NoError(t, os.MkdirAll(uploadDir, 0755))

	for _, name := range []string{"kept.png", "orphan.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(uploadDir, name), []byte("x"), 0644))
	}

	var out bytes.Buffer
	cmd := NewCleanupUploadsCommand(&config.Config{
		Uploads:       config.Uploads{SubDir: "uploads"},
		UploadCleanup: config.UploadCleanup{Grace: time.Hour},
	})
	cmd.Out = &out
	require.NoError(t, cmd.ParseFlags([]string{"-db", dbPath, "-static", staticDir, "-grace", "0s"}))
	require.NoError(t, cmd.Run())

	assert.Contains(t, out.String(), "removed orphan.png")
	assert.Contains(t, out.String(), "Removed 1 orphan uploads")
	assert.FileExists(t, filepath.Join(uploadDir, "kept.png"))
	assert.NoFileExists(t, filepath.Join(uploadDir, "orphan.png"))
}

func TestCleanupUploadsCommand_RejectsNegativeGrace(t *testing.T) {
	cmd := NewCleanupUploadsCommand(&config.Config{})
	assert.Error(t, cmd.ParseFlags([]string{"-grace", "-1h"}))
}
