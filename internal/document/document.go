// Package document opens scanned source documents and renders their pages
// to raster images.
package document

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
)

var (
	// ErrNotFound is returned when the document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrPageOutOfRange is returned for a page index outside the document.
	ErrPageOutOfRange = errors.New("page out of range")
	// ErrUnsupported is returned for files that are neither PDFs nor images.
	ErrUnsupported = errors.New("unsupported document type")
)

// Source is a paginated document. Page indexes are 0-based.
type Source interface {
	// Name identifies the document in logs and reports.
	Name() string
	// PageCount returns the number of pages.
	PageCount() int
	// Render rasterizes one page at the given resolution.
	Render(ctx context.Context, page, dpi int) (image.Image, error)
}

// Options configures how documents are opened.
type Options struct {
	// PdftoppmPath is the pdftoppm binary used for PDF rendering.
	// Defaults to "pdftoppm" on PATH.
	PdftoppmPath string
	// ScanDPI is the resolution image scans were captured at. Pages are
	// resampled from it to the requested DPI. Defaults to 300.
	ScanDPI int
}

// Open opens a PDF, a single page image, or a directory of page images.
func Open(path string, opts Options) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat document: %w", err)
	}
	if info.IsDir() {
		src, err := OpenImageDir(path, opts)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".pdf":
		src, err := OpenPDF(path, opts)
		if err != nil {
			return nil, err
		}
		return src, nil
	case imageExts[ext]:
		return newImageSource(filepath.Base(path), []string{path}, opts), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
}

func checkPage(src Source, page int) error {
	if page < 0 || page >= src.PageCount() {
		return fmt.Errorf("%w: page %d of %d in %s", ErrPageOutOfRange, page, src.PageCount(), src.Name())
	}
	return nil
}

// Fingerprint returns the hex BLAKE3 digest of a document. For a directory
// the page files are hashed in page order.
func Fingerprint(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("failed to stat document: %w", err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = listImages(path)
		if err != nil {
			return "", err
		}
	}

	h := blake3.New()
	for _, f := range files {
		if err := hashFile(h, f); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

func hashFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return nil
}
