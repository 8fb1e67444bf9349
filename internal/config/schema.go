package config

// Config holds scriptscan configuration.
// Stored at: {home}/config.yaml
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	OCR      OCRCfg               `mapstructure:"ocr" yaml:"ocr"`
	Engines  map[string]EngineCfg `mapstructure:"engines" yaml:"engines"`
	Document DocumentCfg          `mapstructure:"document" yaml:"document"`
	Pipeline PipelineCfg          `mapstructure:"pipeline" yaml:"pipeline"`
	Explore  ExploreCfg           `mapstructure:"explore" yaml:"explore"`
	Locate   LocateCfg            `mapstructure:"locate" yaml:"locate"`
	Verify   VerifyCfg            `mapstructure:"verify" yaml:"verify"`
}

// OCRCfg is the default recognition setup.
type OCRCfg struct {
	Engine   string  `mapstructure:"engine" yaml:"engine"`     // name of an entry in engines
	Language string  `mapstructure:"language" yaml:"language"` // e.g. "heb+eng", "grc+eng"
	DPI      int     `mapstructure:"dpi" yaml:"dpi"`
	Contrast float64 `mapstructure:"contrast" yaml:"contrast"`
	Sharpen  bool    `mapstructure:"sharpen" yaml:"sharpen"`
	Denoise  bool    `mapstructure:"denoise" yaml:"denoise"`
	Binarize bool    `mapstructure:"binarize" yaml:"binarize"`
	PSM      int     `mapstructure:"psm" yaml:"psm"`
	OEM      int     `mapstructure:"oem" yaml:"oem"`
}

// EngineCfg configures an OCR engine.
type EngineCfg struct {
	Type        string `mapstructure:"type" yaml:"type"` // "tesseract", "gosseract", "documentai", "mock"
	Binary      string `mapstructure:"binary" yaml:"binary,omitempty"`
	TessdataDir string `mapstructure:"tessdata_dir" yaml:"tessdata_dir,omitempty"`
	RateLimit   int    `mapstructure:"rate_limit" yaml:"rate_limit"` // Requests per minute, 0 = unlimited

	// Document AI
	ProjectID       string `mapstructure:"project_id" yaml:"project_id,omitempty"`             // supports ${ENV_VAR} syntax
	Location        string `mapstructure:"location" yaml:"location,omitempty"`                 // "us", "eu"
	ProcessorID     string `mapstructure:"processor_id" yaml:"processor_id,omitempty"`         // supports ${ENV_VAR} syntax
	CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file,omitempty"` // supports ${ENV_VAR} syntax

	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// DocumentCfg controls how pages are rendered.
type DocumentCfg struct {
	Pdftoppm   string `mapstructure:"pdftoppm" yaml:"pdftoppm"`
	ScanDPI    int    `mapstructure:"scan_dpi" yaml:"scan_dpi"`       // resolution of image scans
	CachePages bool   `mapstructure:"cache_pages" yaml:"cache_pages"` // keep rendered pages under the home dir
}

// PipelineCfg controls page-level concurrency and failure handling.
type PipelineCfg struct {
	MaxWorkers         int `mapstructure:"max_workers" yaml:"max_workers"` // 0 = one per CPU
	PageTimeoutSeconds int `mapstructure:"page_timeout_seconds" yaml:"page_timeout_seconds"`
	Retries            int `mapstructure:"retries" yaml:"retries"`
	RetryDelayMillis   int `mapstructure:"retry_delay_ms" yaml:"retry_delay_ms"`
}

// ExploreCfg lists the configurations tried by "scriptscan explore".
type ExploreCfg struct {
	Target     string         `mapstructure:"target" yaml:"target"` // "hebrew" or "greek"
	Candidates []CandidateCfg `mapstructure:"candidates" yaml:"candidates"`
}

// CandidateCfg is a labeled OCR configuration.
type CandidateCfg struct {
	Label    string  `mapstructure:"label" yaml:"label"`
	DPI      int     `mapstructure:"dpi" yaml:"dpi"`
	Contrast float64 `mapstructure:"contrast" yaml:"contrast"`
	Sharpen  bool    `mapstructure:"sharpen" yaml:"sharpen"`
	Denoise  bool    `mapstructure:"denoise" yaml:"denoise"`
	Binarize bool    `mapstructure:"binarize" yaml:"binarize"`
	PSM      int     `mapstructure:"psm" yaml:"psm"`
	OEM      int     `mapstructure:"oem" yaml:"oem"`
}

// VerifyCfg controls accuracy verification.
type VerifyCfg struct {
	Script         string  `mapstructure:"script" yaml:"script"`
	MaxVerses      int     `mapstructure:"max_verses" yaml:"max_verses"` // 0 = all
	MatchThreshold float64 `mapstructure:"match_threshold" yaml:"match_threshold"`
}

// LocateCfg controls verse location.
type LocateCfg struct {
	DefaultBook string   `mapstructure:"default_book" yaml:"default_book"`
	Books       []string `mapstructure:"books" yaml:"books"` // empty = every book
	Merge       string   `mapstructure:"merge" yaml:"merge"` // "append" or "overwrite"
}
