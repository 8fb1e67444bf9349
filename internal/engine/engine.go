// Package engine wraps OCR engines behind a single Recognize call.
//
// Engines are black boxes: a PNG page image, a language hint such as
// "heb+eng", and page-segmentation/engine-mode settings go in; recognized
// text comes out. An empty result means nothing was recognized and is not
// an error.
package engine

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrRecognition wraps failures signalled by the engine itself.
	ErrRecognition = errors.New("recognition failed")
	// ErrNotFound is returned for an engine name that is not registered.
	ErrNotFound = errors.New("engine not found")
)

// Settings are the engine knobs for one recognition call.
type Settings struct {
	// PSM is the Tesseract page segmentation mode (e.g. 3 auto, 6 block,
	// 11 sparse text).
	PSM int `json:"psm" yaml:"psm"`
	// OEM is the Tesseract engine mode (e.g. 1 LSTM, 3 default).
	OEM int `json:"oem" yaml:"oem"`
	// DPI is the resolution the image was rendered at; 0 lets the engine
	// guess.
	DPI int `json:"dpi,omitempty" yaml:"dpi,omitempty"`
}

// DefaultSettings match Tesseract's "--psm 6 --oem 3".
func DefaultSettings() Settings {
	return Settings{PSM: 6, OEM: 3}
}

// Engine recognizes text in an image.
type Engine interface {
	// Name returns the engine identifier (e.g. "tesseract").
	Name() string

	// Recognize returns the text found in a PNG image.
	Recognize(ctx context.Context, image []byte, lang string, s Settings) (string, error)
}

// Languages splits a Tesseract-style language hint ("heb+eng") into codes.
func Languages(lang string) []string {
	var out []string
	for _, l := range strings.Split(lang, "+") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
