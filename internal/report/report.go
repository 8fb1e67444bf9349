// Package report assembles and renders the outcome of a run.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/scriptscan/internal/explore"
	"github.com/jackzampolin/scriptscan/internal/locate"
	"github.com/jackzampolin/scriptscan/internal/metrics"
	"github.com/jackzampolin/scriptscan/internal/pipeline"
	"github.com/jackzampolin/scriptscan/internal/script"
	"github.com/jackzampolin/scriptscan/internal/verify"
)

// Metadata identifies a run.
type Metadata struct {
	RunID       string             `json:"run_id" yaml:"run_id"`
	Version     string             `json:"version,omitempty" yaml:"version,omitempty"`
	Document    string             `json:"document" yaml:"document"`
	Fingerprint string             `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	Engine      string             `json:"engine,omitempty" yaml:"engine,omitempty"`
	Language    string             `json:"language,omitempty" yaml:"language,omitempty"`
	Config      pipeline.OCRConfig `json:"config" yaml:"config"`
	GeneratedAt time.Time          `json:"generated_at" yaml:"generated_at"`
}

// NewMetadata stamps a fresh run id and the current time.
func NewMetadata(document string) Metadata {
	return Metadata{
		RunID:       uuid.NewString(),
		Document:    document,
		GeneratedAt: time.Now().UTC(),
	}
}

// PageSummary is the per-page part of a report.
type PageSummary struct {
	Page      int                     `json:"page" yaml:"page"`
	Chars     int                     `json:"chars" yaml:"chars"`
	Segments  map[script.Language]int `json:"segments" yaml:"segments"`
	VerseRefs []string                `json:"verse_refs,omitempty" yaml:"verse_refs,omitempty"`
}

// Verse is a located verse.
type Verse struct {
	Key  string `json:"key" yaml:"key"`
	Text string `json:"text" yaml:"text"`
}

// Report is the output of an extract or verify run.
type Report struct {
	Metadata Metadata `json:"metadata" yaml:"metadata"`

	PagesProcessed     int                     `json:"pages_processed" yaml:"pages_processed"`
	SegmentsTotal      int                     `json:"segments_total" yaml:"segments_total"`
	SegmentsByLanguage map[script.Language]int `json:"segments_by_language" yaml:"segments_by_language"`
	Pages              []PageSummary           `json:"pages" yaml:"pages"`
	Failures           []pipeline.Failure      `json:"failures" yaml:"failures"`

	Locator     *locate.Stats   `json:"locator,omitempty" yaml:"locator,omitempty"`
	Verses      []Verse         `json:"verses,omitempty" yaml:"verses,omitempty"`
	Validations map[string]bool `json:"validations,omitempty" yaml:"validations,omitempty"`
	Accuracy    *verify.Report  `json:"accuracy,omitempty" yaml:"accuracy,omitempty"`

	Timing map[string]*metrics.DetailedStats `json:"timing,omitempty" yaml:"timing,omitempty"`
}

// New creates an empty report.
func New(meta Metadata) *Report {
	return &Report{
		Metadata:           meta,
		SegmentsByLanguage: map[script.Language]int{},
		Pages:              []PageSummary{},
		Failures:           []pipeline.Failure{},
	}
}

// AddExtraction records the pages of a pipeline run and validates the
// extracted text against the known anchor verses.
func (r *Report) AddExtraction(res *pipeline.Result) {
	r.PagesProcessed = res.PagesProcessed
	r.SegmentsTotal = res.SegmentsTotal
	for lang, n := range res.SegmentsByLanguage {
		r.SegmentsByLanguage[lang] = n
	}
	for _, p := range res.Pages {
		segs := make(map[script.Language]int, len(p.ScriptSegments))
		for lang, s := range p.ScriptSegments {
			segs[lang] = len(s)
		}
		r.Pages = append(r.Pages, PageSummary{
			Page:      p.PageIndex,
			Chars:     len([]rune(p.RawText)),
			Segments:  segs,
			VerseRefs: p.VerseRefs,
		})
	}
	r.Failures = append(r.Failures, res.Failures...)
	r.Validations = ValidateKnown(
		strings.Join(res.Segments(script.Hebrew), " "),
		strings.Join(res.Segments(script.Greek), " "),
	)
}

// AddLocator records located verses in canonical order.
func (r *Report) AddLocator(res locate.Result) {
	stats := res.Stats
	r.Locator = &stats
	r.Verses = make([]Verse, 0, len(res.Verses))
	for _, k := range res.Keys() {
		r.Verses = append(r.Verses, Verse{Key: k.String(), Text: res.Verses[k]})
	}
}

// AddAccuracy attaches a verification report.
func (r *Report) AddAccuracy(acc *verify.Report) {
	r.Accuracy = acc
}

// AddTiming attaches per-stage timing statistics.
func (r *Report) AddTiming(rec *metrics.Recorder) {
	if rec == nil {
		return
	}
	r.Timing = rec.StageDetailedStats()
}

// anchor is a well-known opening phrase used as a sanity check.
type anchor struct {
	key    string
	lang   script.Language
	phrase string
}

var anchors = []anchor{
	{"genesis-1-1", script.Hebrew, "בְּרֵאשִׁית"},
	{"genesis-1-3", script.Hebrew, "יְהִי אוֹר"},
	{"psalms-23-1", script.Hebrew, "יְהוָה רֹעִי"},
	{"john-1-1", script.Greek, "Ἐν ἀρχῇ ἦν ὁ λόγος"},
	{"john-3-16", script.Greek, "οὕτως γὰρ ἠγάπησεν"},
}

// ValidateKnown reports, for each anchor verse, whether its opening phrase
// appears in the extracted text of its script. Marks are ignored.
func ValidateKnown(hebrew, greek string) map[string]bool {
	text := map[script.Language]string{
		script.Hebrew: verify.Normalize(hebrew),
		script.Greek:  verify.Normalize(greek),
	}
	out := make(map[string]bool, len(anchors))
	for _, a := range anchors {
		out[fmt.Sprintf("%s_%s", a.lang, a.key)] = strings.Contains(text[a.lang], verify.Normalize(a.phrase))
	}
	return out
}

// ExploreReport wraps an exploration with run metadata.
type ExploreReport struct {
	Metadata Metadata        `json:"metadata" yaml:"metadata"`
	Explore  *explore.Report `json:"explore" yaml:"explore"`
}

func sortedLanguages(m map[script.Language]int) []script.Language {
	out := make([]script.Language, 0, len(m))
	for l := range m {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
