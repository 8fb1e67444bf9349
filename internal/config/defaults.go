package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackzampolin/scriptscan/internal/document"
	"github.com/jackzampolin/scriptscan/internal/engine"
	"github.com/jackzampolin/scriptscan/internal/explore"
	"github.com/jackzampolin/scriptscan/internal/locate"
	"github.com/jackzampolin/scriptscan/internal/pipeline"
	"github.com/jackzampolin/scriptscan/internal/script"
	"github.com/jackzampolin/scriptscan/internal/verify"
)

// ErrInvalid is returned by Validate for unusable configuration.
var ErrInvalid = errors.New("invalid config")

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	ocr := pipeline.DefaultOCRConfig()
	vopts := verify.DefaultOptions()

	var candidates []CandidateCfg
	for _, c := range explore.DefaultCandidates() {
		candidates = append(candidates, candidateCfg(c))
	}

	return &Config{
		LogLevel: "info",
		OCR: OCRCfg{
			Engine:   "tesseract",
			Language: "heb+grc+eng",
			DPI:      ocr.DPI,
			Contrast: ocr.Contrast,
			Sharpen:  ocr.Sharpen,
			Denoise:  ocr.Denoise,
			Binarize: ocr.Binarize,
			PSM:      ocr.PSM,
			OEM:      ocr.OEM,
		},
		Engines: map[string]EngineCfg{
			"tesseract": {
				Type:    "tesseract",
				Binary:  "tesseract",
				Enabled: true,
			},
			"gosseract": {
				Type:    "gosseract",
				Enabled: false,
			},
			"documentai": {
				Type:            "documentai",
				ProjectID:       "${GOOGLE_CLOUD_PROJECT}",
				Location:        "us",
				ProcessorID:     "${DOCUMENTAI_PROCESSOR_ID}",
				CredentialsFile: "${GOOGLE_APPLICATION_CREDENTIALS}",
				RateLimit:       120,
				Enabled:         false,
			},
		},
		Document: DocumentCfg{
			Pdftoppm:   "pdftoppm",
			ScanDPI:    300,
			CachePages: true,
		},
		Pipeline: PipelineCfg{
			MaxWorkers:         0,
			PageTimeoutSeconds: 120,
			Retries:            2,
			RetryDelayMillis:   1000,
		},
		Explore: ExploreCfg{
			Target:     string(script.Hebrew),
			Candidates: candidates,
		},
		Locate: LocateCfg{
			DefaultBook: "genesis",
			Merge:       string(locate.MergeAppend),
		},
		Verify: VerifyCfg{
			Script:         string(vopts.Script),
			MaxVerses:      vopts.MaxVerses,
			MatchThreshold: vopts.MatchThreshold,
		},
	}
}

// Validate reports the first problem found in c.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if err := c.OCRConfig().Validate(); err != nil {
		return fmt.Errorf("%w: ocr: %v", ErrInvalid, err)
	}
	if c.OCR.Engine != "" {
		ec, ok := c.Engines[c.OCR.Engine]
		if !ok {
			return fmt.Errorf("%w: ocr.engine %q is not configured", ErrInvalid, c.OCR.Engine)
		}
		if !ec.Enabled {
			return fmt.Errorf("%w: ocr.engine %q is disabled", ErrInvalid, c.OCR.Engine)
		}
	}
	for name, ec := range c.Engines {
		switch ec.Type {
		case "tesseract", "gosseract", "documentai", "mock":
		default:
			return fmt.Errorf("%w: engines.%s: unknown type %q", ErrInvalid, name, ec.Type)
		}
		if ec.RateLimit < 0 {
			return fmt.Errorf("%w: engines.%s: rate_limit must be >= 0", ErrInvalid, name)
		}
	}
	for _, cand := range c.Explore.Candidates {
		if cand.Label == "" {
			return fmt.Errorf("%w: explore candidate without label", ErrInvalid)
		}
		if err := cand.candidate().Config.Validate(); err != nil {
			return fmt.Errorf("%w: explore candidate %q: %v", ErrInvalid, cand.Label, err)
		}
	}
	if lang := script.ParseLanguage(c.Explore.Target); lang == script.Unknown {
		return fmt.Errorf("%w: explore.target %q", ErrInvalid, c.Explore.Target)
	}
	if lang := script.ParseLanguage(c.Verify.Script); lang == script.Unknown {
		return fmt.Errorf("%w: verify.script %q", ErrInvalid, c.Verify.Script)
	}
	if c.Verify.MaxVerses < 0 {
		return fmt.Errorf("%w: verify.max_verses must be >= 0", ErrInvalid)
	}
	switch locate.MergePolicy(c.Locate.Merge) {
	case "", locate.MergeAppend, locate.MergeOverwrite:
	default:
		return fmt.Errorf("%w: locate.merge %q", ErrInvalid, c.Locate.Merge)
	}
	return nil
}

// Level parses LogLevel. An empty level is info.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return lvl, nil
}

// OCRConfig returns the default recognition configuration.
func (c *Config) OCRConfig() pipeline.OCRConfig {
	return pipeline.OCRConfig{
		DPI:      c.OCR.DPI,
		Contrast: c.OCR.Contrast,
		Sharpen:  c.OCR.Sharpen,
		Denoise:  c.OCR.Denoise,
		Binarize: c.OCR.Binarize,
		PSM:      c.OCR.PSM,
		OEM:      c.OCR.OEM,
	}
}

// ToEngineRegistryConfig converts the config to a format suitable for
// engine.Registry. It resolves all ${ENV_VAR} references.
func (c *Config) ToEngineRegistryConfig() map[string]engine.Config {
	cfgs := make(map[string]engine.Config, len(c.Engines))
	for name, ec := range c.Engines {
		cfgs[name] = engine.Config{
			Type:            ec.Type,
			Binary:          ResolveEnvVars(ec.Binary),
			TessdataDir:     ResolveEnvVars(ec.TessdataDir),
			RateLimit:       ec.RateLimit,
			ProjectID:       ResolveEnvVars(ec.ProjectID),
			Location:        ec.Location,
			ProcessorID:     ResolveEnvVars(ec.ProcessorID),
			CredentialsFile: ResolveEnvVars(ec.CredentialsFile),
			Enabled:         ec.Enabled,
		}
	}
	return cfgs
}

// DocumentOptions returns the options used to open documents.
func (c *Config) DocumentOptions() document.Options {
	return document.Options{
		PdftoppmPath: ResolveEnvVars(c.Document.Pdftoppm),
		ScanDPI:      c.Document.ScanDPI,
	}
}

// PageTimeout returns the per-page deadline, or zero for none.
func (c *Config) PageTimeout() time.Duration {
	return time.Duration(c.Pipeline.PageTimeoutSeconds) * time.Second
}

// RetryDelay returns the base delay between page retries.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Pipeline.RetryDelayMillis) * time.Millisecond
}

// Candidates returns the explore candidates, falling back to the built-in
// set when none are configured.
func (c *Config) Candidates() []explore.Candidate {
	if len(c.Explore.Candidates) == 0 {
		return explore.DefaultCandidates()
	}
	out := make([]explore.Candidate, len(c.Explore.Candidates))
	for i, cand := range c.Explore.Candidates {
		out[i] = cand.candidate()
	}
	return out
}

// VerifyOptions returns the accuracy verification options.
func (c *Config) VerifyOptions() verify.Options {
	return verify.Options{
		Script:         script.ParseLanguage(c.Verify.Script),
		MaxVerses:      c.Verify.MaxVerses,
		MatchThreshold: c.Verify.MatchThreshold,
	}
}

// LocateConfig returns the locator configuration without registry or logger.
func (c *Config) LocateConfig() locate.Config {
	return locate.Config{
		DefaultBook: c.Locate.DefaultBook,
		Books:       c.Locate.Books,
		Merge:       locate.MergePolicy(c.Locate.Merge),
	}
}

func (cc CandidateCfg) candidate() explore.Candidate {
	return explore.Candidate{
		Label: cc.Label,
		Config: pipeline.OCRConfig{
			DPI:      cc.DPI,
			Contrast: cc.Contrast,
			Sharpen:  cc.Sharpen,
			Denoise:  cc.Denoise,
			Binarize: cc.Binarize,
			PSM:      cc.PSM,
			OEM:      cc.OEM,
		},
	}
}

func candidateCfg(c explore.Candidate) CandidateCfg {
	return CandidateCfg{
		Label:    c.Label,
		DPI:      c.Config.DPI,
		Contrast: c.Config.Contrast,
		Sharpen:  c.Config.Sharpen,
		Denoise:  c.Config.Denoise,
		Binarize: c.Config.Binarize,
		PSM:      c.Config.PSM,
		OEM:      c.Config.OEM,
	}
}
