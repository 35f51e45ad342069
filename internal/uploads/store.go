package uploads

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	// ErrUnsupportedFile is returned when an upload fails the allow-list or,
	// with content verification on, does not look like an image.
	ErrUnsupportedFile = errors.New("unsupported file")

	// ErrOutsideUploadDir is returned for paths that do not resolve into the
	// upload directory.
	ErrOutsideUploadDir = errors.New("path is outside the upload directory")
)

// DefaultAllowedExtensions are the image types accepted when no list is configured.
var DefaultAllowedExtensions = []string{"png", "jpg", "jpeg", "gif", "webp"}

// sniffLen matches the amount of data mimetype reads by default.
const sniffLen = 3072

const tempPrefix = "upload_tmp_"

type Config struct {
	StaticDir         string   // Root served under /static
	SubDir            string   // Directory under StaticDir holding uploads, e.g. "uploads"
	AllowedExtensions []string // Lower-case, without the leading dot
	VerifyContent     bool     // Reject payloads whose sniffed type is not image/*
}

// Store saves cover images under <StaticDir>/<SubDir> and hands back paths
// relative to StaticDir.
type Store struct {
	staticDir     string
	subDir        string
	dir           string
	allowed       map[string]struct{}
	allowedList   []string
	verifyContent bool
	now           func() time.Time
}

// NewStore creates the upload directory if needed.
func NewStore(cfg Config) (*Store, error) {
	subDir := strings.Trim(filepath.ToSlash(cfg.SubDir), "/")
	if subDir == "" || strings.Contains(subDir, "..") {
		return nil, fmt.Errorf("invalid upload subdirectory %q", cfg.SubDir)
	}

	extensions := cfg.AllowedExtensions
	if len(extensions) == 0 {
		extensions = DefaultAllowedExtensions
	}

	allowed := make(map[string]struct{}, len(extensions))
	var allowedList []string
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" {
			continue
		}
		if _, seen := allowed[ext]; !seen {
			allowedList = append(allowedList, ext)
		}
		allowed[ext] = struct{}{}
	}

	dir := filepath.Join(cfg.StaticDir, filepath.FromSlash(subDir))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &Store{
		staticDir:     cfg.StaticDir,
		subDir:        subDir,
		dir:           dir,
		allowed:       allowed,
		allowedList:   allowedList,
		verifyContent: cfg.VerifyContent,
		now:           time.Now,
	}, nil
}

// Dir returns the absolute-or-relative directory uploads are written to.
func (s *Store) Dir() string {
	return s.dir
}

// AllowedExtensions returns the accepted extensions in configuration order.
func (s *Store) AllowedExtensions() []string {
	return append([]string(nil), s.allowedList...)
}

// Allowed reports whether filename carries an allow-listed extension.
func (s *Store) Allowed(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}
	_, ok := s.allowed[strings.ToLower(filename[idx+1:])]
	return ok
}

// Save writes content under a freshly generated name and returns the path
// relative to the static root, e.g. "uploads/<uuid>.png". Rejected or failed
// uploads leave nothing on disk.
func (s *Store) Save(content io.Reader, originalName string) (string, error) {
	if !s.Allowed(originalName) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFile, originalName)
	}

	ext := filepath.Ext(SanitizeFilename(originalName))
	if !s.Allowed(ext) {
		return "", fmt.Errorf("%w: %q has no usable extension", ErrUnsupportedFile, originalName)
	}

	if s.verifyContent {
		header := make([]byte, sniffLen)
		n, err := io.ReadFull(content, header)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read upload: %w", err)
		}
		header = header[:n]

		detected := mimetype.Detect(header)
		if !strings.HasPrefix(detected.String(), "image/") {
			return "", fmt.Errorf("%w: detected %s", ErrUnsupportedFile, detected.String())
		}
		content = io.MultiReader(bytes.NewReader(header), content)
	}

	filename := uuid.New().String() + ext
	if err := s.writeAtomic(filepath.Join(s.dir, filename), content); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	return path.Join(s.subDir, filename), nil
}

// writeAtomic copies content into a temp file in the upload directory and
// renames it into place.
func (s *Store) writeAtomic(target string, content io.Reader) error {
	tmpFile, err := os.CreateTemp(s.dir, tempPrefix)
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // No-op once renamed
	}()

	if _, err := io.Copy(tmpFile, content); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, target)
}

// Resolve maps a stored relative path onto the filesystem.
func (s *Store) Resolve(relPath string) (string, error) {
	cleaned := path.Clean("/" + filepath.ToSlash(relPath))[1:]
	if !strings.HasPrefix(cleaned, s.subDir+"/") {
		return "", fmt.Errorf("%w: %q", ErrOutsideUploadDir, relPath)
	}

	name := strings.TrimPrefix(cleaned, s.subDir+"/")
	if name == "" || strings.Contains(name, "/") {
		return "", fmt.Errorf("%w: %q", ErrOutsideUploadDir, relPath)
	}

	return filepath.Join(s.dir, name), nil
}

// Remove deletes a previously saved upload. A file that is already gone is
// not an error.
func (s *Store) Remove(relPath string) error {
	fullPath, err := s.Resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SweepOrphans removes files in the upload directory that none of the
// referenced paths point at and that were last modified more than grace
// ago. It returns the removed file names in lexical order.
func (s *Store) SweepOrphans(referenced []string, grace time.Duration) ([]string, error) {
	keep := make(map[string]struct{}, len(referenced))
	for _, ref := range referenced {
		fullPath, err := s.Resolve(ref)
		if err != nil {
			continue
		}
		keep[filepath.Base(fullPath)] = struct{}{}
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read upload dir: %w", err)
	}

	cutoff := s.now().Add(-grace)
	var removed []string
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := keep[entry.Name()]; ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			if !os.IsNotExist(err) {
				errs = append(errs, err)
			}
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, entry.Name())
	}

	sort.Strings(removed)
	return removed, errors.Join(errs...)
}
