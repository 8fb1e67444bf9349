package home

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	t.Run("with explicit path", func(t *testing.T) {
		dir, err := New("/tmp/test-scriptscan")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir.Path() != "/tmp/test-scriptscan" {
			t.Errorf("expected path /tmp/test-scriptscan, got %s", dir.Path())
		}
	})

	t.Run("with empty path uses default", func(t *testing.T) {
		dir, err := New("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, DefaultDirName)
		if dir.Path() != expected {
			t.Errorf("expected path %s, got %s", expected, dir.Path())
		}
	})
}

func TestDir_Paths(t *testing.T) {
	dir, _ := New("/tmp/test-scriptscan")

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"ConfigPath", dir.ConfigPath(), "/tmp/test-scriptscan/config.yaml"},
		{"CachePath", dir.CachePath(), "/tmp/test-scriptscan/cache"},
		{"ReportsPath", dir.ReportsPath(), "/tmp/test-scriptscan/reports"},
		{"DocumentCacheDir", dir.DocumentCacheDir("abc123"), "/tmp/test-scriptscan/cache/abc123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, tt.got)
			}
		})
	}
}

func TestDir_ReportPath(t *testing.T) {
	dir, _ := New("/tmp/test-scriptscan")
	at := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)

	got := dir.ReportPath("extract", "/scans/BHS Genesis.pdf", "yaml", at)
	expected := "/tmp/test-scriptscan/reports/extract_BHS_Genesis_20240102T150405.yaml"
	if got != expected {
		t.Errorf("expected %s, got %s", expected, got)
	}
}

func TestDir_EnsureExists(t *testing.T) {
	tmpDir := t.TempDir()
	scriptscanDir := filepath.Join(tmpDir, "scriptscan-test")

	dir, err := New(scriptscanDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dir.Exists() {
		t.Error("expected directory to not exist initially")
	}

	if err := dir.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}

	if !dir.Exists() {
		t.Error("expected directory to exist after EnsureExists")
	}
	for _, p := range []string{dir.CachePath(), dir.ReportsPath()} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			t.Errorf("expected %s to exist", p)
		}
	}

	cacheDir, err := dir.EnsureDocumentCacheDir("fp")
	if err != nil {
		t.Fatalf("EnsureDocumentCacheDir failed: %v", err)
	}
	if _, err := os.Stat(cacheDir); err != nil {
		t.Errorf("expected %s to exist", cacheDir)
	}
	if err := dir.ClearCache(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir.CachePath()); !os.IsNotExist(err) {
		t.Error("expected cache to be removed")
	}
}

func TestDir_ConfigExists(t *testing.T) {
	dir, _ := New(t.TempDir())

	if dir.ConfigExists() {
		t.Error("expected config to not exist")
	}
	if err := os.WriteFile(dir.ConfigPath(), []byte("ocr: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !dir.ConfigExists() {
		t.Error("expected config to exist")
	}
}
