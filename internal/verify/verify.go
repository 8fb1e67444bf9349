// Package verify measures OCR output against a trusted reference corpus.
//
// Matching is lenient: the expected verse is looked for as a substring,
// then by its first word, and only then by whole-string similarity.
package verify

import (
	"strings"

	"github.com/jackzampolin/scriptscan/internal/corpus"
	"github.com/jackzampolin/scriptscan/internal/script"
)

// DefaultMaxVerses is how many reference verses are checked by default.
const DefaultMaxVerses = 20

// Grade summarizes the average accuracy.
type Grade string

const (
	Good    Grade = "good"
	Partial Grade = "partial"
	Poor    Grade = "poor"
)

// GradeFor maps an average accuracy to a grade.
func GradeFor(accuracy float64) Grade {
	switch {
	case accuracy >= 0.7:
		return Good
	case accuracy >= 0.4:
		return Partial
	}
	return Poor
}

// Options configures a verification.
type Options struct {
	// Script selects which runs of the OCR text are compared. Default Hebrew.
	Script script.Language
	// MaxVerses limits the check to the first N reference verses in
	// canonical order. 0 checks every verse.
	MaxVerses int
	// MatchThreshold is the similarity a found verse needs to count as a
	// match. Default 0.3.
	MatchThreshold float64
}

// DefaultOptions checks the first 20 Hebrew verses.
func DefaultOptions() Options {
	return Options{Script: script.Hebrew, MaxVerses: DefaultMaxVerses, MatchThreshold: 0.3}
}

// Record is the result for one reference verse.
type Record struct {
	VerseKey        string  `json:"verse_key" yaml:"verse_key"`
	Found           bool    `json:"found" yaml:"found"`
	Similarity      float64 `json:"similarity" yaml:"similarity"`
	MatchedFragment string  `json:"matched_fragment" yaml:"matched_fragment"`
	Expected        string  `json:"expected,omitempty" yaml:"expected,omitempty"`
}

// Report aggregates a verification.
type Report struct {
	Script          script.Language `json:"script" yaml:"script"`
	Records         []Record        `json:"records" yaml:"records"`
	Matches         []string        `json:"matches" yaml:"matches"`
	Misses          []string        `json:"misses" yaml:"misses"`
	AverageAccuracy float64         `json:"average_accuracy" yaml:"average_accuracy"`
	PagesChecked    int             `json:"pages_checked" yaml:"pages_checked"`
	SegmentsTotal   int             `json:"segments_total" yaml:"segments_total"`
	VersesFound     int             `json:"verses_found" yaml:"verses_found"`
	Status          Grade           `json:"status" yaml:"status"`
}

// FindVerse looks for expected in the script runs of ocrText.
func FindVerse(ocrText, expected string, pattern script.Ranges) (found bool, similarity float64, fragment string) {
	combined := Normalize(strings.Join(script.Runs(ocrText, pattern), " "))
	want := Normalize(expected)
	if want == "" || combined == "" {
		return false, 0, ""
	}

	if strings.Contains(combined, want) {
		return true, 1.0, want
	}

	first := strings.Fields(want)[0]
	similarity = ratio(want, combined)
	if strings.Contains(combined, first) {
		return true, similarity, first
	}
	return similarity > 0.5, similarity, ""
}

// Verify checks ocrText against the reference corpus.
func Verify(ocrText string, c *corpus.Corpus, opts Options) *Report {
	if opts.Script == "" || opts.Script == script.Unknown {
		opts.Script = script.Hebrew
	}
	if opts.MatchThreshold <= 0 {
		opts.MatchThreshold = 0.3
	}
	pattern := script.Pattern(opts.Script)

	report := &Report{
		Script:        opts.Script,
		Records:       []Record{},
		Matches:       []string{},
		Misses:        []string{},
		SegmentsTotal: len(script.Runs(ocrText, pattern)),
	}
	if c == nil {
		report.Status = GradeFor(0)
		return report
	}

	var sum float64
	for _, e := range c.Entries(opts.MaxVerses) {
		found, sim, frag := FindVerse(ocrText, e.Text, pattern)
		key := e.Key.String()
		report.Records = append(report.Records, Record{
			VerseKey:        key,
			Found:           found,
			Similarity:      sim,
			MatchedFragment: frag,
			Expected:        preview(e.Text, 50),
		})
		sum += sim
		if found && sim > opts.MatchThreshold {
			report.Matches = append(report.Matches, key)
			report.VersesFound++
		} else {
			report.Misses = append(report.Misses, key)
		}
	}
	if n := len(report.Records); n > 0 {
		report.AverageAccuracy = sum / float64(n)
	}
	report.Status = GradeFor(report.AverageAccuracy)
	return report
}

// VerifyPages checks the concatenated text of several pages and records
// how many pages were checked.
func VerifyPages(pages []string, c *corpus.Corpus, opts Options) *Report {
	report := Verify(strings.Join(pages, " "), c, opts)
	report.PagesChecked = len(pages)
	return report
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
