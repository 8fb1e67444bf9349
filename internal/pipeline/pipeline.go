// Package pipeline turns document pages into recognized, script-segmented
// text.
//
// Pages are independent, so Run processes them on a bounded worker pool.
// A page that fails to render or recognize is recorded and skipped; it
// never stops the rest of the run. Per-page results are reduced by a single
// aggregator goroutine.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jackzampolin/scriptscan/internal/document"
	"github.com/jackzampolin/scriptscan/internal/engine"
	"github.com/jackzampolin/scriptscan/internal/locate"
	"github.com/jackzampolin/scriptscan/internal/metrics"
	"github.com/jackzampolin/scriptscan/internal/script"
)

// ErrInvalidRequest is returned when a Request cannot be run.
var ErrInvalidRequest = errors.New("invalid pipeline request")

// Request describes an extraction run over a range of pages.
type Request struct {
	Source   document.Source
	Engine   engine.Engine
	Language string // engine language hint, e.g. "heb+eng"
	Config   OCRConfig

	Start int // first page, 0-based
	Pages int // number of pages; 0 means through the last page

	Workers     int           // default runtime.NumCPU()
	PageTimeout time.Duration // per recognition attempt; 0 = unbounded
	Retries     int
	RetryDelay  time.Duration

	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

// Result aggregates a run. Pages are sorted by index.
type Result struct {
	Pages              []*PageResult           `json:"pages" yaml:"pages"`
	Failures           []Failure               `json:"failures" yaml:"failures"`
	PagesProcessed     int                     `json:"pages_processed" yaml:"pages_processed"`
	SegmentsByLanguage map[script.Language]int `json:"segments_by_language" yaml:"segments_by_language"`
	SegmentsTotal      int                     `json:"segments_total" yaml:"segments_total"`
}

// Text returns the raw text of every processed page, in page order.
func (r *Result) Text() []string {
	out := make([]string, len(r.Pages))
	for i, p := range r.Pages {
		out[i] = p.RawText
	}
	return out
}

// LocatorPages returns every processed page's text plus a missing entry for
// each failed page, so the locator can tell where text is absent.
func (r *Result) LocatorPages() []locate.Page {
	seen := make(map[int]bool, len(r.Pages))
	out := make([]locate.Page, 0, len(r.Pages)+len(r.Failures))
	for _, p := range r.Pages {
		seen[p.PageIndex] = true
		out = append(out, locate.Page{Index: p.PageIndex, Text: p.RawText})
	}
	for _, f := range r.Failures {
		if seen[f.Page] {
			continue
		}
		seen[f.Page] = true
		out = append(out, locate.Page{Index: f.Page, Missing: true})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Segments returns every segment of lang across all pages, in page order.
func (r *Result) Segments(lang script.Language) []string {
	var out []string
	for _, p := range r.Pages {
		out = append(out, p.ScriptSegments[lang]...)
	}
	return out
}

type outcome struct {
	page *PageResult
	err  *PageError
}

// Run processes the requested pages. Page failures are collected in
// Result.Failures. An error is returned only for an invalid request or when
// ctx is cancelled; in the latter case the partial result is returned too.
func Run(ctx context.Context, req Request) (*Result, error) {
	logger := req.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "pipeline")

	first, last, err := pageRange(req)
	if err != nil {
		return nil, err
	}

	workers := req.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	eng := engine.WithRetry(req.Engine, engine.RetryConfig{
		Retries:        req.Retries,
		Delay:          req.RetryDelay,
		AttemptTimeout: req.PageTimeout,
		Logger:         logger,
	})

	logger.Info("starting extraction",
		"document", req.Source.Name(),
		"engine", req.Engine.Name(),
		"first_page", first,
		"last_page", last-1,
		"workers", workers,
		"config", req.Config.String())

	results := make(chan outcome)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	go func() {
		defer close(results)
		for page := first; page < last; page++ {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				res, err := ProcessPage(gctx, PageJob{
					Source:   req.Source,
					Engine:   eng,
					Page:     page,
					Language: req.Language,
					Config:   req.Config,
					Metrics:  req.Metrics,
				})
				if err != nil {
					var pe *PageError
					if !errors.As(err, &pe) {
						pe = &PageError{Page: page, Stage: StageRecognize, Err: err}
					}
					results <- outcome{err: pe}
					return nil
				}
				results <- outcome{page: res}
				return nil
			})
		}
		_ = g.Wait()
	}()

	result := aggregate(results, logger)

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("extraction interrupted: %w", err)
	}

	logger.Info("extraction complete",
		"pages_processed", result.PagesProcessed,
		"failures", len(result.Failures),
		"segments_total", result.SegmentsTotal)
	return result, nil
}

// aggregate is the only writer of the Result.
func aggregate(results <-chan outcome, logger *slog.Logger) *Result {
	result := &Result{
		Pages:              []*PageResult{},
		Failures:           []Failure{},
		SegmentsByLanguage: make(map[script.Language]int),
	}
	for out := range results {
		if out.err != nil {
			logger.Warn("page failed", "page", out.err.Page, "stage", out.err.Stage, "error", out.err.Err)
			result.Failures = append(result.Failures, Failure{
				Page:  out.err.Page,
				Stage: out.err.Stage,
				Error: out.err.Err.Error(),
			})
			continue
		}
		p := out.page
		logger.Debug("page processed", "page", p.PageIndex, "chars", len([]rune(p.RawText)), "segments", p.Segments())
		result.Pages = append(result.Pages, p)
		result.PagesProcessed++
		for lang, segs := range p.ScriptSegments {
			result.SegmentsByLanguage[lang] += len(segs)
			result.SegmentsTotal += len(segs)
		}
	}
	sort.Slice(result.Pages, func(i, j int) bool { return result.Pages[i].PageIndex < result.Pages[j].PageIndex })
	sort.Slice(result.Failures, func(i, j int) bool { return result.Failures[i].Page < result.Failures[j].Page })
	return result
}

func pageRange(req Request) (int, int, error) {
	if req.Source == nil {
		return 0, 0, fmt.Errorf("%w: no document", ErrInvalidRequest)
	}
	if req.Engine == nil {
		return 0, 0, fmt.Errorf("%w: no engine", ErrInvalidRequest)
	}
	if err := req.Config.Validate(); err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	count := req.Source.PageCount()
	if req.Start < 0 || req.Start >= count {
		return 0, 0, fmt.Errorf("%w: start page %d of %d in %s", document.ErrPageOutOfRange, req.Start, count, req.Source.Name())
	}
	last := count
	if req.Pages > 0 && req.Start+req.Pages < count {
		last = req.Start + req.Pages
	}
	return req.Start, last, nil
}
