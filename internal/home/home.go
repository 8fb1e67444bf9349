package home

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultDirName is the default name for the scriptscan home directory.
	DefaultDirName = ".scriptscan"

	// CacheDirName is the subdirectory for rendered page images.
	CacheDirName = "cache"

	// ReportsDirName is the subdirectory for saved run reports.
	ReportsDirName = "reports"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the scriptscan home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.scriptscan).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// CachePath returns the root of the page cache.
func (d *Dir) CachePath() string {
	return filepath.Join(d.path, CacheDirName)
}

// ReportsPath returns the directory reports are saved to.
func (d *Dir) ReportsPath() string {
	return filepath.Join(d.path, ReportsDirName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	for _, dir := range []string{d.CachePath(), d.ReportsPath()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// DocumentCacheDir returns the page cache for one document, keyed by its
// content fingerprint so a renamed file still hits the cache.
func (d *Dir) DocumentCacheDir(fingerprint string) string {
	return filepath.Join(d.CachePath(), fingerprint)
}

// EnsureDocumentCacheDir creates the page cache for a document.
func (d *Dir) EnsureDocumentCacheDir(fingerprint string) (string, error) {
	dir := d.DocumentCacheDir(fingerprint)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}
	return dir, nil
}

// ClearCache removes every cached page.
func (d *Dir) ClearCache() error {
	return os.RemoveAll(d.CachePath())
}

// ReportPath returns a timestamped report path for a command run against
// a document, e.g. reports/extract_bhs_20240102T150405.yaml.
func (d *Dir) ReportPath(command, document, ext string, at time.Time) string {
	base := strings.TrimSuffix(filepath.Base(document), filepath.Ext(document))
	name := fmt.Sprintf("%s_%s_%s.%s", command, sanitize(base), at.UTC().Format("20060102T150405"), ext)
	return filepath.Join(d.ReportsPath(), name)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
