package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/library/internal/entities"
)

const createBooksTable = `CREATE TABLE IF NOT EXISTS books (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	author TEXT NOT NULL,
	available INTEGER NOT NULL DEFAULT 1,
	image_path TEXT
)`

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string, logLevel logger.LogLevel) (*Database, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	database := &Database{DB: db}
	if err := database.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

// ParseLogLevel maps a config string onto a gorm log level. Unknown values
// fall back to Warn.
func ParseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// initSchema creates the books table and adds image_path to tables created
// before covers existed. The column is added only when the migrator reports
// it missing, so a rerun never issues a failing ALTER.
func (d *Database) initSchema() error {
	if err := d.DB.Exec(createBooksTable).Error; err != nil {
		return fmt.Errorf("create books table: %w", err)
	}

	migrator := d.DB.Migrator()
	if !migrator.HasColumn(&entities.Book{}, "image_path") {
		if err := migrator.AddColumn(&entities.Book{}, "ImagePath"); err != nil {
			return fmt.Errorf("add image_path column: %w", err)
		}
		log.Printf("Added image_path column to books table")
	}

	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SQLDB exposes the pooled connection for components that need database/sql,
// such as the session store.
func (d *Database) SQLDB() (*sql.DB, error) {
	return d.DB.DB()
}

func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// ListBooks returns every book ordered by ascending ID.
func (d *Database) ListBooks() ([]entities.Book, error) {
	var books []entities.Book
	if err := d.DB.Order("id ASC").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// FindBook returns entities.ErrBookNotFound when the ID does not exist.
func (d *Database) FindBook(id uint) (*entities.Book, error) {
	var book entities.Book
	err := d.DB.First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find book %d: %w", id, err)
	}
	return &book, nil
}

// InsertBook stores a new available book and returns its ID.
func (d *Database) InsertBook(title, author string, imagePath *string) (uint, error) {
	book := entities.Book{
		Title:     title,
		Author:    author,
		Available: true,
		ImagePath: imagePath,
	}
	if err := d.DB.Create(&book).Error; err != nil {
		return 0, fmt.Errorf("insert book: %w", err)
	}
	return book.ID, nil
}

// SetAvailability flips a book from one availability state to another in a
// single conditional UPDATE. It reports false when no row matched, either
// because the ID is unknown or the book was not in the expected state.
func (d *Database) SetAvailability(id uint, from, to bool) (bool, error) {
	result := d.DB.Model(&entities.Book{}).
		Where("id = ? AND available = ?", id, from).
		Update("available", to)
	if result.Error != nil {
		return false, fmt.Errorf("set availability of book %d: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (d *Database) DeleteBook(id uint) error {
	if err := d.DB.Delete(&entities.Book{}, id).Error; err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	return nil
}

// SearchByTitle finds books whose title contains query, ignoring case.
// LIKE wildcards in the query are matched literally.
func (d *Database) SearchByTitle(query string) ([]entities.Book, error) {
	var books []entities.Book
	pattern := "%" + escapeLike(query) + "%"
	err := d.DB.Where(`LOWER(title) LIKE LOWER(?) ESCAPE '\'`, pattern).
		Order("id ASC").
		Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return books, nil
}

// ImagePaths returns the image paths referenced by any book.
func (d *Database) ImagePaths() ([]string, error) {
	var paths []string
	err := d.DB.Model(&entities.Book{}).
		Where("image_path IS NOT NULL AND image_path != ''").
		Pluck("image_path", &paths).Error
	if err != nil {
		return nil, fmt.Errorf("list image paths: %w", err)
	}
	return paths, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
