package pipeline

import (
	"fmt"

	"github.com/jackzampolin/scriptscan/internal/engine"
	"github.com/jackzampolin/scriptscan/internal/imaging"
)

// OCRConfig is one rendering + preprocessing + engine configuration.
type OCRConfig struct {
	DPI      int     `json:"dpi" yaml:"dpi"`
	Contrast float64 `json:"contrast" yaml:"contrast"`
	Sharpen  bool    `json:"sharpen" yaml:"sharpen"`
	Denoise  bool    `json:"denoise" yaml:"denoise"`
	Binarize bool    `json:"binarize" yaml:"binarize"`
	PSM      int     `json:"psm" yaml:"psm"`
	OEM      int     `json:"oem" yaml:"oem"`
}

// DefaultOCRConfig renders at 300 DPI with mild contrast, sharpening and
// denoising, and runs the engine in single-block mode.
func DefaultOCRConfig() OCRConfig {
	return OCRConfig{
		DPI:      300,
		Contrast: 1.5,
		Sharpen:  true,
		Denoise:  true,
		Binarize: false,
		PSM:      6,
		OEM:      3,
	}
}

// Preprocess returns the imaging options for c.
func (c OCRConfig) Preprocess() imaging.Options {
	return imaging.Options{
		Contrast: c.Contrast,
		Sharpen:  c.Sharpen,
		Denoise:  c.Denoise,
		Binarize: c.Binarize,
	}
}

// Settings returns the engine settings for c.
func (c OCRConfig) Settings() engine.Settings {
	return engine.Settings{PSM: c.PSM, OEM: c.OEM, DPI: c.DPI}
}

// Validate reports obviously unusable values.
func (c OCRConfig) Validate() error {
	if c.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %d", c.DPI)
	}
	if c.Contrast < 0 {
		return fmt.Errorf("contrast must not be negative, got %v", c.Contrast)
	}
	if c.PSM < 0 || c.PSM > 13 {
		return fmt.Errorf("psm must be between 0 and 13, got %d", c.PSM)
	}
	if c.OEM < 0 || c.OEM > 3 {
		return fmt.Errorf("oem must be between 0 and 3, got %d", c.OEM)
	}
	return nil
}

func (c OCRConfig) String() string {
	return fmt.Sprintf("dpi=%d contrast=%.2f sharpen=%t denoise=%t binarize=%t psm=%d oem=%d",
		c.DPI, c.Contrast, c.Sharpen, c.Denoise, c.Binarize, c.PSM, c.OEM)
}
