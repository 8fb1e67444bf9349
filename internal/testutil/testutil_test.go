package testutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPages(t *testing.T) {
	p := &Pages{Count: 3, Fail: map[int]bool{1: true}}

	img, err := p.Render(context.Background(), 0, 300)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if img.Bounds().Dx() != 15 {
		t.Errorf("expected side 15 at 300 DPI, got %d", img.Bounds().Dx())
	}
	if _, err := p.Render(context.Background(), 1, 300); !errors.Is(err, ErrRender) {
		t.Errorf("expected ErrRender, got %v", err)
	}
	if p.Renders() != 2 {
		t.Errorf("expected 2 renders, got %d", p.Renders())
	}
}

func TestWriteFixtures(t *testing.T) {
	pdf := WritePDF(t, 2, func(i int) string { return "page" })
	if info, err := os.Stat(pdf); err != nil || info.Size() == 0 {
		t.Errorf("expected non-empty PDF at %s", pdf)
	}

	png := filepath.Join(t.TempDir(), "page_1.png")
	WritePNG(t, png, 10, 10)
	if _, err := os.Stat(png); err != nil {
		t.Errorf("expected PNG at %s", png)
	}
}
