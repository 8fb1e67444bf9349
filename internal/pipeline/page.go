package pipeline

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackzampolin/scriptscan/internal/document"
	"github.com/jackzampolin/scriptscan/internal/engine"
	"github.com/jackzampolin/scriptscan/internal/imaging"
	"github.com/jackzampolin/scriptscan/internal/metrics"
	"github.com/jackzampolin/scriptscan/internal/script"
)

// Stage names the step of page processing that failed.
type Stage string

const (
	StageRender     Stage = "render"
	StagePreprocess Stage = "preprocess"
	StageRecognize  Stage = "recognize"
)

// PageError is a failure confined to one page.
type PageError struct {
	Page  int   `json:"page"`
	Stage Stage `json:"stage"`
	Err   error `json:"-"`
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: %s: %v", e.Page, e.Stage, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// Failure is the serializable form of a PageError.
type Failure struct {
	Page  int    `json:"page" yaml:"page"`
	Stage Stage  `json:"stage" yaml:"stage"`
	Error string `json:"error" yaml:"error"`
}

// PageResult is the outcome of processing one page.
type PageResult struct {
	PageIndex      int                          `json:"page_index" yaml:"page_index"`
	RawText        string                       `json:"raw_text" yaml:"raw_text"`
	ScriptSegments map[script.Language][]string `json:"script_segments" yaml:"script_segments"`
	ConfigUsed     OCRConfig                    `json:"config_used" yaml:"config_used"`
	VerseRefs      []string                     `json:"verse_refs,omitempty" yaml:"verse_refs,omitempty"`
}

// Segments returns the total number of script segments on the page.
func (p *PageResult) Segments() int {
	n := 0
	for _, segs := range p.ScriptSegments {
		n += len(segs)
	}
	return n
}

var verseRefPattern = regexp.MustCompile(`(\d+)[:.](\d+)`)

// VerseRefs returns every chapter:verse style reference in text, in order.
// A period separator ("1.1") is accepted as well as a colon.
func VerseRefs(text string) []string {
	var refs []string
	for _, m := range verseRefPattern.FindAllStringSubmatch(text, -1) {
		refs = append(refs, m[1]+":"+m[2])
	}
	return refs
}

// PageJob is everything needed to process a single page.
type PageJob struct {
	Source   document.Source
	Engine   engine.Engine
	Page     int
	Language string
	Config   OCRConfig
	Metrics  *metrics.Recorder
}

// ProcessPage renders, preprocesses and recognizes one page. Failures are
// returned as *PageError.
func ProcessPage(ctx context.Context, job PageJob) (*PageResult, error) {
	opts := metrics.RecordOpts{ItemKey: metrics.ItemKey(job.Page), Engine: job.Engine.Name()}

	start := time.Now()
	img, err := job.Source.Render(ctx, job.Page, job.Config.DPI)
	opts.Stage = string(StageRender)
	if err != nil {
		job.Metrics.RecordError(opts, errorType(err), time.Since(start))
		return nil, &PageError{Page: job.Page, Stage: StageRender, Err: err}
	}
	job.Metrics.RecordStep(opts, time.Since(start), 0)

	start = time.Now()
	opts.Stage = string(StagePreprocess)
	gray, err := imaging.Preprocess(img, job.Config.Preprocess())
	var png []byte
	if err == nil {
		png, err = imaging.EncodePNG(gray)
	}
	if err != nil {
		job.Metrics.RecordError(opts, errorType(err), time.Since(start))
		return nil, &PageError{Page: job.Page, Stage: StagePreprocess, Err: err}
	}
	job.Metrics.RecordStep(opts, time.Since(start), 0)

	start = time.Now()
	opts.Stage = string(StageRecognize)
	text, err := job.Engine.Recognize(ctx, png, job.Language, job.Config.Settings())
	if err != nil {
		job.Metrics.RecordError(opts, errorType(err), time.Since(start))
		return nil, &PageError{Page: job.Page, Stage: StageRecognize, Err: err}
	}
	job.Metrics.RecordStep(opts, time.Since(start), len([]rune(text)))

	return &PageResult{
		PageIndex:      job.Page,
		RawText:        text,
		ScriptSegments: script.Extract(text),
		ConfigUsed:     job.Config,
		VerseRefs:      VerseRefs(text),
	}, nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, document.ErrPageOutOfRange):
		return "page_out_of_range"
	case errors.Is(err, engine.ErrRecognition):
		return "recognition"
	}
	return "error"
}
