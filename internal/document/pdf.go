package document

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PDFSource renders PDF pages with pdftoppm (poppler-utils).
type PDFSource struct {
	path      string
	pageCount int
	pdftoppm  string
}

// OpenPDF validates the PDF and reads its page count.
func OpenPDF(path string, opts Options) (*PDFSource, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	pageCount, err := api.PageCount(f, nil)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}

	bin := opts.PdftoppmPath
	if bin == "" {
		bin = "pdftoppm"
	}
	return &PDFSource{path: path, pageCount: pageCount, pdftoppm: bin}, nil
}

// Name returns the PDF's file name.
func (s *PDFSource) Name() string { return filepath.Base(s.path) }

// PageCount returns the number of pages in the PDF.
func (s *PDFSource) PageCount() int { return s.pageCount }

// Render rasterizes one page to a PNG at dpi and decodes it.
func (s *PDFSource) Render(ctx context.Context, page, dpi int) (image.Image, error) {
	if err := checkPage(s, page); err != nil {
		return nil, err
	}
	data, err := s.renderPNG(ctx, page, dpi)
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode rendered page %d: %w", page, err)
	}
	return img, nil
}

func (s *PDFSource) renderPNG(ctx context.Context, page, dpi int) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "scriptscan-page-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outputPrefix := filepath.Join(tmpDir, "page")

	// -singlefile: no page-number suffix on the output name
	pageStr := strconv.Itoa(page + 1)
	cmd := exec.CommandContext(ctx, s.pdftoppm,
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", strconv.Itoa(dpi),
		"-singlefile",
		s.path,
		outputPrefix,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("pdftoppm interrupted: %w", ctx.Err())
		}
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(output))
	}

	data, err := os.ReadFile(outputPrefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm did not create expected output: %w", err)
	}
	return data, nil
}
