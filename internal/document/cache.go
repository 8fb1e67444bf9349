package document

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
)

// CachedSource stores rendered pages as PNGs under a directory keyed by
// page and DPI, so repeated renders of the same page skip the renderer.
type CachedSource struct {
	Source
	dir    string
	logger *slog.Logger
}

// WithCache wraps src with a page cache rooted at dir. The directory should
// be unique to the document, e.g. named after its fingerprint.
func WithCache(src Source, dir string, logger *slog.Logger) *CachedSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSource{Source: src, dir: dir, logger: logger}
}

// PagePath returns where a rendered page is cached.
func (c *CachedSource) PagePath(page, dpi int) string {
	return filepath.Join(c.dir, fmt.Sprintf("page_%04d_%d.png", page, dpi))
}

// Render returns the cached page when present, otherwise renders and
// stores it. Cache write failures are logged, not returned.
func (c *CachedSource) Render(ctx context.Context, page, dpi int) (image.Image, error) {
	path := c.PagePath(page, dpi)
	if data, err := os.ReadFile(path); err == nil {
		if img, err := png.Decode(bytes.NewReader(data)); err == nil {
			return img, nil
		}
		c.logger.Warn("discarding corrupt cached page", "path", path)
	}

	img, err := c.Source.Render(ctx, page, dpi)
	if err != nil {
		return nil, err
	}

	if err := c.store(path, img); err != nil {
		c.logger.Warn("failed to cache rendered page", "page", page, "dpi", dpi, "error", err)
	}
	return img, nil
}

func (c *CachedSource) store(path string, img image.Image) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
