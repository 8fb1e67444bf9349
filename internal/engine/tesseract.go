package engine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// TesseractConfig configures the command-line engine.
type TesseractConfig struct {
	// Binary is the tesseract executable. Defaults to "tesseract" on PATH.
	Binary string
	// TessdataDir overrides the trained-data directory.
	TessdataDir string
}

// Tesseract runs the tesseract CLI once per image. It is the only engine
// that honours every Settings field, OEM included.
type Tesseract struct {
	binary      string
	tessdataDir string
}

// NewTesseract creates a CLI-backed engine.
func NewTesseract(cfg TesseractConfig) *Tesseract {
	bin := cfg.Binary
	if bin == "" {
		bin = "tesseract"
	}
	return &Tesseract{binary: bin, tessdataDir: cfg.TessdataDir}
}

// Name returns "tesseract".
func (t *Tesseract) Name() string { return "tesseract" }

// Args builds the tesseract argument list; the image is read from stdin and
// text written to stdout.
func (t *Tesseract) Args(lang string, s Settings) []string {
	args := []string{"stdin", "stdout"}
	if lang != "" {
		args = append(args, "-l", lang)
	}
	args = append(args,
		"--psm", strconv.Itoa(s.PSM),
		"--oem", strconv.Itoa(s.OEM),
	)
	if s.DPI > 0 {
		args = append(args, "--dpi", strconv.Itoa(s.DPI))
	}
	if t.tessdataDir != "" {
		args = append(args, "--tessdata-dir", t.tessdataDir)
	}
	return args
}

// Recognize pipes the image through tesseract.
func (t *Tesseract) Recognize(ctx context.Context, image []byte, lang string, s Settings) (string, error) {
	cmd := exec.CommandContext(ctx, t.binary, t.Args(lang, s)...)
	cmd.Stdin = bytes.NewReader(image)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: tesseract interrupted: %w", ErrRecognition, ctx.Err())
		}
		return "", fmt.Errorf("%w: tesseract: %w (stderr: %s)", ErrRecognition, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

var _ Engine = (*Tesseract)(nil)
