package document

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackzampolin/scriptscan/internal/testutil"
)

func writePDF(t *testing.T, pages int) string {
	t.Helper()
	return testutil.WritePDF(t, pages, func(i int) string { return fmt.Sprintf("Genesis 1:%d", i) })
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pdf"), Options{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	_, err = Fingerprint(filepath.Join(t.TempDir(), "missing.pdf"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound from Fingerprint, got %v", err)
	}
}

func TestOpenUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path, Options{}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestPDFPageCount(t *testing.T) {
	path := writePDF(t, 3)
	src, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if src.PageCount() != 3 {
		t.Errorf("expected 3 pages, got %d", src.PageCount())
	}
	if src.Name() != "fixture.pdf" {
		t.Errorf("name = %q", src.Name())
	}

	_, err = src.Render(context.Background(), 3, 72)
	if !errors.Is(err, ErrPageOutOfRange) {
		t.Errorf("expected ErrPageOutOfRange, got %v", err)
	}
	_, err = src.Render(context.Background(), -1, 72)
	if !errors.Is(err, ErrPageOutOfRange) {
		t.Errorf("expected ErrPageOutOfRange for negative page, got %v", err)
	}
}

func TestPDFRender(t *testing.T) {
	testutil.RequireBinary(t, "pdftoppm")
	path := writePDF(t, 2)
	src, err := OpenPDF(path, Options{})
	if err != nil {
		t.Fatal(err)
	}

	img, err := src.Render(context.Background(), 1, 72)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	// A4 at 72 DPI is 595x842 points
	if b := img.Bounds(); b.Dx() < 590 || b.Dx() > 600 {
		t.Errorf("unexpected width %d", b.Dx())
	}
}

func TestImageDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"page_10.png", "page_2.png", "page_1.png", "cover.png"} {
		testutil.WritePNG(t, filepath.Join(dir, name), 60, 40)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := Open(dir, Options{ScanDPI: 300})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if src.PageCount() != 4 {
		t.Fatalf("expected 4 pages, got %d", src.PageCount())
	}

	is := src.(*ImageSource)
	want := []string{"cover.png", "page_1.png", "page_2.png", "page_10.png"}
	for i, f := range is.files {
		if filepath.Base(f) != want[i] {
			t.Errorf("page %d: got %s, want %s", i, filepath.Base(f), want[i])
		}
	}

	img, err := src.Render(context.Background(), 1, 150)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 30 || b.Dy() != 20 {
		t.Errorf("resampled size = %dx%d, want 30x20", b.Dx(), b.Dy())
	}

	img, err = src.Render(context.Background(), 0, 300)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 60 {
		t.Errorf("native size width = %d, want 60", b.Dx())
	}
}

func TestEmptyImageDir(t *testing.T) {
	if _, err := OpenImageDir(t.TempDir(), Options{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")
	os.WriteFile(a, []byte("in the beginning"), 0o644)
	os.WriteFile(b, []byte("in the beginning"), 0o644)

	fa, err := Fingerprint(a)
	if err != nil {
		t.Fatal(err)
	}
	fb, _ := Fingerprint(b)
	if fa != fb {
		t.Errorf("identical content gave different fingerprints: %s vs %s", fa, fb)
	}
	if len(fa) != 64 {
		t.Errorf("fingerprint length = %d, want 64", len(fa))
	}

	os.WriteFile(b, []byte("in the beginning."), 0o644)
	if fb2, _ := Fingerprint(b); fb2 == fa {
		t.Error("different content gave the same fingerprint")
	}
}

type countingSource struct {
	Source
	renders int
}

func (c *countingSource) Render(ctx context.Context, page, dpi int) (image.Image, error) {
	c.renders++
	return c.Source.Render(ctx, page, dpi)
}

func TestCachedSource(t *testing.T) {
	dir := t.TempDir()
	testutil.WritePNG(t, filepath.Join(dir, "page_1.png"), 20, 20)
	inner, err := OpenImageDir(dir, Options{})
	if err != nil {
		t.Fatal(err)
	}
	counter := &countingSource{Source: inner}
	cached := WithCache(counter, filepath.Join(t.TempDir(), "cache"), nil)

	for i := 0; i < 3; i++ {
		if _, err := cached.Render(context.Background(), 0, 300); err != nil {
			t.Fatalf("Render failed: %v", err)
		}
	}
	if counter.renders != 1 {
		t.Errorf("expected 1 underlying render, got %d", counter.renders)
	}
	if _, err := os.Stat(cached.PagePath(0, 300)); err != nil {
		t.Errorf("expected cached file: %v", err)
	}

	if _, err := cached.Render(context.Background(), 0, 150); err != nil {
		t.Fatal(err)
	}
	if counter.renders != 2 {
		t.Errorf("different DPI should miss the cache, renders = %d", counter.renders)
	}
}
