// Package script identifies which writing system and language a span of
// recognized text belongs to.
//
// Scripts are detected by Unicode block. Aramaic written in Hebrew square
// script cannot be told apart by code point, so the classifier also consults
// a table of known Aramaic passages and an Aramaic vocabulary list.
package script

import (
	"strings"

	"github.com/jackzampolin/scriptscan/internal/books"
)

// Language is the classified language of a span.
type Language string

const (
	Hebrew  Language = "hebrew"
	Greek   Language = "greek"
	Aramaic Language = "aramaic"
	Unknown Language = "unknown"
)

// ParseLanguage maps a name to a Language, returning Unknown for anything
// unrecognized.
func ParseLanguage(s string) Language {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case Hebrew:
		return Hebrew
	case Greek:
		return Greek
	case Aramaic:
		return Aramaic
	}
	return Unknown
}

// Hints locate the text being classified. All three fields must be set for
// the passage table to be consulted.
type Hints struct {
	Book    string
	Chapter int
	Verse   int
}

func (h Hints) complete() bool {
	return h.Book != "" && h.Chapter > 0 && h.Verse > 0
}

// Span is the result of classifying one piece of text.
type Span struct {
	Text              string   `json:"text" yaml:"text"`
	Language          Language `json:"language" yaml:"language"`
	Confidence        float64  `json:"confidence" yaml:"confidence"`
	Matches           []string `json:"matches" yaml:"matches"`
	HebrewCount       int      `json:"hebrew_count" yaml:"hebrew_count"`
	GreekCount        int      `json:"greek_count" yaml:"greek_count"`
	AramaicCount      int      `json:"aramaic_count" yaml:"aramaic_count"`
	MatchedVocabulary []string `json:"matched_vocabulary" yaml:"matched_vocabulary"`
	IsKnownPassage    bool     `json:"is_known_passage" yaml:"is_known_passage"`
	Rule              string   `json:"rule,omitempty" yaml:"rule,omitempty"`
}

// Evidence is everything the rules can look at. It is computed once per
// Classify call.
type Evidence struct {
	HebrewRuns           []string
	GreekRuns            []string
	ImperialRuns         []string
	KnownPassage         bool
	Vocabulary           []string
	VocabularyConfidence float64
}

// Outcome is what a rule decides.
type Outcome struct {
	Language     Language
	Confidence   float64
	Matches      []string
	AramaicCount int
}

// Rule is one step of the decision chain. Rules are evaluated in order and
// the first whose When returns true decides the outcome.
type Rule struct {
	Name string
	When func(Evidence) bool
	Then func(Evidence) Outcome
}

// DefaultRules is the built-in decision chain:
//
//  1. known-passage: known Aramaic passage with Hebrew script present
//  2. imperial-aramaic: any Imperial Aramaic code points
//  3. aramaic-vocabulary: vocabulary confidence above 0.5 with Hebrew script
//  4. hebrew: any Hebrew script
//  5. greek: any Greek script
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "known-passage",
			When: func(e Evidence) bool { return e.KnownPassage && len(e.HebrewRuns) > 0 },
			Then: func(e Evidence) Outcome {
				return Outcome{Aramaic, 0.95, e.HebrewRuns, len(e.HebrewRuns)}
			},
		},
		{
			Name: "imperial-aramaic",
			When: func(e Evidence) bool { return len(e.ImperialRuns) > 0 },
			Then: func(e Evidence) Outcome {
				matches := append(append([]string(nil), e.HebrewRuns...), e.ImperialRuns...)
				total := len(e.HebrewRuns) + len(e.GreekRuns) + len(e.ImperialRuns)
				return Outcome{Aramaic, ratio(len(matches), total), matches, len(matches)}
			},
		},
		{
			Name: "aramaic-vocabulary",
			When: func(e Evidence) bool { return e.VocabularyConfidence > 0.5 && len(e.HebrewRuns) > 0 },
			Then: func(e Evidence) Outcome {
				return Outcome{Aramaic, e.VocabularyConfidence, e.HebrewRuns, len(e.HebrewRuns)}
			},
		},
		{
			Name: "hebrew",
			When: func(e Evidence) bool { return len(e.HebrewRuns) > 0 },
			Then: func(e Evidence) Outcome {
				return Outcome{Hebrew, ratio(len(e.HebrewRuns), len(e.HebrewRuns)+len(e.GreekRuns)), e.HebrewRuns, 0}
			},
		},
		{
			Name: "greek",
			When: func(e Evidence) bool { return len(e.GreekRuns) > 0 },
			Then: func(e Evidence) Outcome {
				return Outcome{Greek, ratio(len(e.GreekRuns), len(e.HebrewRuns)+len(e.GreekRuns)), e.GreekRuns, 0}
			},
		},
	}
}

// ratio returns n/total, or 1 when total is zero.
func ratio(n, total int) float64 {
	if total == 0 {
		return 1.0
	}
	return float64(n) / float64(total)
}

// Classifier assigns a language to text. It holds no mutable state and is
// safe for concurrent use.
type Classifier struct {
	tables   Tables
	rules    []Rule
	registry *books.Registry
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithRules replaces the decision chain.
func WithRules(rules []Rule) Option {
	return func(c *Classifier) { c.rules = append([]Rule(nil), rules...) }
}

// WithRegistry sets the registry used to canonicalize book hints.
func WithRegistry(r *books.Registry) Option {
	return func(c *Classifier) { c.registry = r }
}

// NewClassifier creates a classifier over the given reference tables.
func NewClassifier(tables Tables, opts ...Option) *Classifier {
	c := &Classifier{
		tables:   tables,
		rules:    DefaultRules(),
		registry: books.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultClassifier = NewClassifier(DefaultTables())

// Default returns a classifier over the built-in tables.
func Default() *Classifier {
	return defaultClassifier
}

// Rules returns the names of the decision chain, in evaluation order.
func (c *Classifier) Rules() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.Name
	}
	return names
}

// IsKnownPassage reports whether book chapter:verse is a known Aramaic
// passage. Book may be any spelling the registry understands.
func (c *Classifier) IsKnownPassage(book string, chapter, verse int) bool {
	return c.tables.Passages.IsKnownPassage(c.registry.Canonical(book), chapter, verse)
}

// Classify determines the language of text. Empty text classifies as
// Unknown with all counts zero; Classify never fails.
func (c *Classifier) Classify(text string, hints Hints) Span {
	span := Span{
		Text:     text,
		Language: Unknown,
		Matches:  []string{},
	}
	if strings.TrimSpace(text) == "" {
		span.MatchedVocabulary = []string{}
		return span
	}

	ev := Evidence{
		HebrewRuns:   Runs(text, HebrewBlock),
		GreekRuns:    Runs(text, GreekBlock),
		ImperialRuns: Runs(text, ImperialAramaicBlock),
	}
	if hints.complete() {
		ev.KnownPassage = c.IsKnownPassage(hints.Book, hints.Chapter, hints.Verse)
	}
	ev.Vocabulary = c.tables.Vocabulary.Match(text)
	ev.VocabularyConfidence = c.tables.Vocabulary.Confidence(ev.Vocabulary)

	span.HebrewCount = len(ev.HebrewRuns)
	span.GreekCount = len(ev.GreekRuns)
	span.IsKnownPassage = ev.KnownPassage
	span.MatchedVocabulary = ev.Vocabulary
	if span.MatchedVocabulary == nil {
		span.MatchedVocabulary = []string{}
	}

	for _, rule := range c.rules {
		if !rule.When(ev) {
			continue
		}
		out := rule.Then(ev)
		span.Language = out.Language
		span.Confidence = out.Confidence
		span.Matches = append([]string{}, out.Matches...)
		span.AramaicCount = out.AramaicCount
		span.Rule = rule.Name
		break
	}
	return span
}
