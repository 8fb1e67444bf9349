// Package gosseract provides the in-process Tesseract engine. It links
// libtesseract through cgo, so it lives apart from the engine package and
// registers the "gosseract" type when imported.
package gosseract

import (
	"context"
	"fmt"
	"strconv"

	"github.com/otiai10/gosseract/v2"

	"github.com/jackzampolin/scriptscan/internal/engine"
)

func init() {
	engine.RegisterType("gosseract", func(cfg engine.Config) (engine.Engine, error) {
		return New(cfg.TessdataDir), nil
	})
}

// Engine recognizes text through the libtesseract bindings. The engine
// mode is fixed when the library initializes, so Settings.OEM is ignored.
type Engine struct {
	clientFactory func() *gosseract.Client
	tessdataDir   string
}

// New creates an in-process Tesseract engine. tessdataDir may be empty to
// use the library default.
func New(tessdataDir string) *Engine {
	return &Engine{clientFactory: gosseract.NewClient, tessdataDir: tessdataDir}
}

// Name returns "gosseract".
func (g *Engine) Name() string { return "gosseract" }

// Recognize runs one image through a fresh client.
func (g *Engine) Recognize(ctx context.Context, image []byte, lang string, s engine.Settings) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := g.clientFactory()
	defer c.Close()

	if g.tessdataDir != "" {
		if err := c.SetTessdataPrefix(g.tessdataDir); err != nil {
			return "", fmt.Errorf("%w: set tessdata prefix: %w", engine.ErrRecognition, err)
		}
	}
	if langs := engine.Languages(lang); len(langs) > 0 {
		if err := c.SetLanguage(langs...); err != nil {
			return "", fmt.Errorf("%w: set languages: %w", engine.ErrRecognition, err)
		}
	}
	if err := c.SetPageSegMode(gosseract.PageSegMode(s.PSM)); err != nil {
		return "", fmt.Errorf("%w: set page seg mode: %w", engine.ErrRecognition, err)
	}
	if s.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(s.DPI)); err != nil {
			return "", fmt.Errorf("%w: set dpi: %w", engine.ErrRecognition, err)
		}
	}
	if err := c.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("%w: set image: %w", engine.ErrRecognition, err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("%w: recognize text: %w", engine.ErrRecognition, err)
	}
	return text, nil
}

var _ engine.Engine = (*Engine)(nil)
