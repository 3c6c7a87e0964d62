// Package media stores uploaded post images on local disk.
package media

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotImage is returned when an uploaded file does not sniff as an image.
var ErrNotImage = errors.New("uploaded file is not an image")

const postsSubdir = "posts"

// Store writes uploaded images under a base directory and hands back the
// relative name persisted on the post.
type Store struct {
	baseDir string
}

func NewStore(baseDir string) (*Store, error) {
	dir := filepath.Join(baseDir, postsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media dir: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// BaseDir returns the directory the store writes into, for static serving.
func (s *Store) BaseDir() string { return s.baseDir }

// SaveImage validates that the upload is an image and writes it to disk
// under a random name. The returned name is relative to BaseDir and is
// what gets stored on the post.
func (s *Store) SaveImage(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	// Sniff the real content type; the client-sent header is not trusted.
	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	contentType := http.DetectContentType(head[:n])
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotImage
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	name := path.Join(postsSubdir, uuid.NewString()+ext)

	dst, err := os.Create(filepath.Join(s.baseDir, filepath.FromSlash(name)))
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, f); err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	return name, nil
}
