// Package testutil holds fixtures shared by package tests: in-memory page
// sources, generated PDFs and page images, and skips for missing binaries.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"sync/atomic"
	"testing"

	"codeberg.org/go-pdf/fpdf"
)

// ErrRender is returned by Pages for failing pages.
var ErrRender = errors.New("render failed")

// Pages is an in-memory document of blank pages, each with one dark
// pixel in the middle. It satisfies document.Source.
type Pages struct {
	Count   int
	Fail    map[int]bool // pages that fail to render
	FailAll bool

	renders atomic.Int64
}

// Name returns a fixed document name.
func (p *Pages) Name() string { return "fixture.pdf" }

// PageCount returns Count.
func (p *Pages) PageCount() int { return p.Count }

// Render returns a square page whose side scales with dpi.
func (p *Pages) Render(ctx context.Context, page, dpi int) (image.Image, error) {
	p.renders.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.FailAll || p.Fail[page] {
		return nil, fmt.Errorf("%w: page %d", ErrRender, page)
	}
	side := max(dpi/20, 8)
	img := image.NewGray(image.Rect(0, 0, side, side))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetGray(side/2, side/2, color.Gray{Y: 0})
	return img, nil
}

// Renders returns how many times Render was called.
func (p *Pages) Renders() int64 {
	return p.renders.Load()
}

// RequireBinary skips the test when name is not on PATH and returns its
// path otherwise.
func RequireBinary(t testing.TB, name string) string {
	t.Helper()
	path, err := exec.LookPath(name)
	if err != nil {
		t.Skipf("%s not installed in PATH", name)
	}
	return path
}

// WritePDF generates a PDF with one line of text per page, using line(i)
// for the 1-based page i, and returns its path.
func WritePDF(t testing.TB, pages int, line func(i int) string) string {
	t.Helper()
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 18)
	for i := 1; i <= pages; i++ {
		pdf.AddPage()
		pdf.Cell(200, 30, line(i))
	}
	path := filepath.Join(t.TempDir(), "fixture.pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

// WritePNG writes a white w×h page image with one dark pixel.
func WritePNG(t testing.TB, path string, w, h int) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetGray(w/2, h/2, color.Gray{Y: 0})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}
