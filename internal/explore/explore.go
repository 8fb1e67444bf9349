// Package explore searches preprocessing and engine settings for the one
// that recognizes the most text in a target script on a sample page.
package explore

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"

	"github.com/jackzampolin/scriptscan/internal/document"
	"github.com/jackzampolin/scriptscan/internal/engine"
	"github.com/jackzampolin/scriptscan/internal/metrics"
	"github.com/jackzampolin/scriptscan/internal/pipeline"
	"github.com/jackzampolin/scriptscan/internal/script"
)

// SampleLength is the number of characters kept as a sample of each
// candidate's output.
const SampleLength = 100

// ErrNoCandidates is returned when there is nothing to explore.
var ErrNoCandidates = errors.New("no candidate configurations")

// Candidate is a labeled configuration to try.
type Candidate struct {
	Label  string             `json:"label" yaml:"label"`
	Config pipeline.OCRConfig `json:"config" yaml:"config"`
}

// DefaultCandidates varies one setting of the default configuration at a
// time.
func DefaultCandidates() []Candidate {
	base := pipeline.DefaultOCRConfig()
	with := func(fn func(*pipeline.OCRConfig)) pipeline.OCRConfig {
		c := base
		fn(&c)
		return c
	}
	return []Candidate{
		{Label: "default", Config: base},
		{Label: "high_contrast", Config: with(func(c *pipeline.OCRConfig) { c.Contrast = 2.0 })},
		{Label: "threshold", Config: with(func(c *pipeline.OCRConfig) { c.Binarize = true })},
		{Label: "high_dpi", Config: with(func(c *pipeline.OCRConfig) { c.DPI = 400 })},
		{Label: "psm3", Config: with(func(c *pipeline.OCRConfig) { c.PSM = 3 })},
		{Label: "psm11", Config: with(func(c *pipeline.OCRConfig) { c.PSM = 11 })},
	}
}

// Yield is what one candidate produced.
type Yield struct {
	Label       string             `json:"label" yaml:"label"`
	Config      pipeline.OCRConfig `json:"config" yaml:"config"`
	HebrewCount int                `json:"hebrew_count" yaml:"hebrew_count"`
	GreekCount  int                `json:"greek_count" yaml:"greek_count"`
	TotalChars  int                `json:"total_chars" yaml:"total_chars"`
	Sample      string             `json:"sample" yaml:"sample"`
	Score       float64            `json:"score" yaml:"score"`
	Error       string             `json:"error,omitempty" yaml:"error,omitempty"`
}

// Scorer rates a candidate's yield. Higher is better.
type Scorer func(c Candidate, y Yield) float64

// ScriptYield scores by the number of segments found in target's script.
// Aramaic is written in Hebrew script and scores like Hebrew.
func ScriptYield(target script.Language) Scorer {
	return func(_ Candidate, y Yield) float64 {
		if target == script.Greek {
			return float64(y.GreekCount)
		}
		return float64(y.HebrewCount)
	}
}

// Request configures an exploration.
type Request struct {
	Source     document.Source
	Engine     engine.Engine
	Page       int
	Language   string
	Target     script.Language // default Hebrew
	Candidates []Candidate     // default DefaultCandidates()
	Scorer     Scorer          // default ScriptYield(Target)
	Logger     *slog.Logger
	Metrics    *metrics.Recorder
}

// Report is the outcome of an exploration. Results keep candidate order.
type Report struct {
	Document string          `json:"document" yaml:"document"`
	Page     int             `json:"page" yaml:"page"`
	Target   script.Language `json:"target" yaml:"target"`
	Results  []Yield         `json:"results" yaml:"results"`
	Best     string          `json:"best" yaml:"best"`
}

// Result returns the yield for label.
func (r *Report) Result(label string) (Yield, bool) {
	for _, y := range r.Results {
		if y.Label == label {
			return y, true
		}
	}
	return Yield{}, false
}

// Explore runs every candidate against one page and picks the best by
// score. Ties go to the earliest candidate. A candidate that fails is
// reported with its error and never chosen.
func Explore(ctx context.Context, req Request) (*Report, error) {
	logger := req.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "explore")

	if req.Source == nil || req.Engine == nil {
		return nil, fmt.Errorf("explore requires a document and an engine")
	}
	if req.Page < 0 || req.Page >= req.Source.PageCount() {
		return nil, fmt.Errorf("%w: page %d of %d in %s", document.ErrPageOutOfRange, req.Page, req.Source.PageCount(), req.Source.Name())
	}
	candidates := req.Candidates
	if candidates == nil {
		candidates = DefaultCandidates()
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	target := req.Target
	if target == "" || target == script.Unknown {
		target = script.Hebrew
	}
	scorer := req.Scorer
	if scorer == nil {
		scorer = ScriptYield(target)
	}

	src := &renderOnce{Source: req.Source, pages: make(map[[2]int]image.Image)}
	report := &Report{
		Document: req.Source.Name(),
		Page:     req.Page,
		Target:   target,
		Results:  make([]Yield, 0, len(candidates)),
	}

	bestScore := 0.0
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("exploration interrupted: %w", err)
		}
		y := Yield{Label: c.Label, Config: c.Config}

		res, err := pipeline.ProcessPage(ctx, pipeline.PageJob{
			Source:   src,
			Engine:   req.Engine,
			Page:     req.Page,
			Language: req.Language,
			Config:   c.Config,
			Metrics:  req.Metrics,
		})
		if err != nil {
			logger.Warn("candidate failed", "label", c.Label, "error", err)
			y.Error = err.Error()
			report.Results = append(report.Results, y)
			continue
		}

		hebrew := res.ScriptSegments[script.Hebrew]
		greek := res.ScriptSegments[script.Greek]
		y.HebrewCount = len(hebrew)
		y.GreekCount = len(greek)
		y.TotalChars = len([]rune(res.RawText))
		if len(hebrew) > 0 {
			y.Sample = truncate(strings.Join(hebrew, " "), SampleLength)
		} else {
			y.Sample = truncate(strings.Join(greek, " "), SampleLength)
		}
		y.Score = scorer(c, y)
		logger.Debug("candidate scored", "label", c.Label, "hebrew", y.HebrewCount, "greek", y.GreekCount, "score", y.Score)

		if report.Best == "" || y.Score > bestScore {
			report.Best = c.Label
			bestScore = y.Score
		}
		report.Results = append(report.Results, y)
	}

	logger.Info("exploration complete", "page", req.Page, "target", target, "best", report.Best)
	return report, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// renderOnce memoizes renders so candidates sharing a DPI rasterize the
// page once.
type renderOnce struct {
	document.Source
	mu    sync.Mutex
	pages map[[2]int]image.Image
}

func (r *renderOnce) Render(ctx context.Context, page, dpi int) (image.Image, error) {
	key := [2]int{page, dpi}
	r.mu.Lock()
	defer r.mu.Unlock()
	if img, ok := r.pages[key]; ok {
		return img, nil
	}
	img, err := r.Source.Render(ctx, page, dpi)
	if err != nil {
		return nil, err
	}
	r.pages[key] = img
	return img, nil
}
