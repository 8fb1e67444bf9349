// Package locate attributes recognized lines of text to verses.
//
// The Scanner walks lines in document order, tracking the current book,
// chapter and verse from headings and chapter:verse numerals, and appends
// the script text of each line to the verse it falls under. It has no
// lookahead: a misdetected boundary misattributes text until the next one.
package locate

import (
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/jackzampolin/scriptscan/internal/books"
	"github.com/jackzampolin/scriptscan/internal/script"
)

// MergePolicy decides what happens when text is attributed to a verse that
// already has text.
type MergePolicy string

const (
	// MergeAppend joins the new text to the existing text with a space.
	MergeAppend MergePolicy = "append"
	// MergeOverwrite replaces the existing text.
	MergeOverwrite MergePolicy = "overwrite"
)

var (
	verseRefPattern = regexp.MustCompile(`(\d+):(\d+)`)
	chapterPattern  = regexp.MustCompile(`(?i)\b(?:chapter|ch\.?)\s*(\d+)\b`)
)

// DefaultScripts is every script the locator extracts unless configured
// otherwise.
var DefaultScripts = script.Ranges{
	{Lo: 0x0590, Hi: 0x05FF},
	{Lo: 0xFB1D, Hi: 0xFB4F},
	{Lo: 0x0370, Hi: 0x03FF},
	{Lo: 0x1F00, Hi: 0x1FFF},
	{Lo: 0x10840, Hi: 0x1085F},
}

// Config configures a Scanner.
type Config struct {
	// DefaultBook is the book assumed before any heading is seen.
	// Defaults to "genesis".
	DefaultBook string

	// Books restricts heading detection to these books (any spelling the
	// registry understands). Empty means every book in the registry.
	Books []string

	// Scripts selects which code points count as attributable text.
	Scripts script.Ranges

	Merge    MergePolicy
	Registry *books.Registry
	Logger   *slog.Logger
}

// Stats summarizes a scan.
type Stats struct {
	Lines        int `json:"lines" yaml:"lines"`
	Attributed   int `json:"attributed_lines" yaml:"attributed_lines"`
	Unattributed int `json:"unattributed_lines" yaml:"unattributed_lines"`
	BookChanges  int `json:"book_changes" yaml:"book_changes"`
	BackwardRefs int `json:"backward_refs" yaml:"backward_refs"`
	Gaps         int `json:"gaps,omitempty" yaml:"gaps,omitempty"`
	Verses       int `json:"verses_located" yaml:"verses_located"`
}

// Position is the scanner's current location.
type Position struct {
	Book    string
	Chapter int
	Verse   int
}

// Scanner is the sequential verse-attribution state machine. It is not safe
// for concurrent use; feed it lines in document order.
type Scanner struct {
	registry *books.Registry
	allowed  map[string]bool
	scripts  script.Ranges
	merge    MergePolicy
	logger   *slog.Logger

	pos Position
	// floor is the verse a gap interrupted; references below it stay
	// backward until the scanner moves on.
	floor  int
	verses map[books.VerseKey]string
	order  []books.VerseKey
	stats  Stats
}

// NewScanner creates a scanner positioned before the first verse of the
// default book.
func NewScanner(cfg Config) *Scanner {
	reg := cfg.Registry
	if reg == nil {
		reg = books.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	scripts := cfg.Scripts
	if len(scripts) == 0 {
		scripts = DefaultScripts
	}
	merge := cfg.Merge
	if merge == "" {
		merge = MergeAppend
	}
	book := cfg.DefaultBook
	if book == "" {
		book = "genesis"
	}

	var allowed map[string]bool
	if len(cfg.Books) > 0 {
		allowed = make(map[string]bool, len(cfg.Books))
		for _, b := range cfg.Books {
			allowed[reg.Canonical(b)] = true
		}
	}

	return &Scanner{
		registry: reg,
		allowed:  allowed,
		scripts:  scripts,
		merge:    merge,
		logger:   logger.With("component", "locator"),
		pos:      Position{Book: reg.Canonical(book), Chapter: 1, Verse: 0},
		verses:   make(map[books.VerseKey]string),
	}
}

// Position returns where the scanner currently is.
func (s *Scanner) Position() Position {
	return s.pos
}

// Feed processes one line.
func (s *Scanner) Feed(line string) {
	s.stats.Lines++

	if b, ok := s.registry.MatchHeading(line); ok && (s.allowed == nil || s.allowed[b.ID]) {
		s.pos = Position{Book: b.ID, Chapter: 1, Verse: 0}
		s.floor = 0
		s.stats.BookChanges++
		s.logger.Debug("book heading", "book", b.ID, "line", s.stats.Lines)
	}

	if m := chapterPattern.FindStringSubmatch(line); m != nil {
		if ch, err := strconv.Atoi(m[1]); err == nil && ch >= 1 {
			s.advance(ch, 0)
		}
	}

	if m := verseRefPattern.FindStringSubmatch(line); m != nil {
		ch, errC := strconv.Atoi(m[1])
		v, errV := strconv.Atoi(m[2])
		if errC == nil && errV == nil && ch >= 1 && v >= 1 {
			s.advance(ch, v)
		}
	}

	runs := script.Runs(line, s.scripts)
	if len(runs) == 0 || s.pos.Verse == 0 {
		if strings.TrimSpace(line) != "" {
			s.stats.Unattributed++
		}
		return
	}
	s.attribute(strings.Join(runs, " "))
	s.stats.Attributed++
}

// Gap marks text missing from the stream, such as a page that failed to
// render. Lines after a gap stay unattributed until the next verse
// reference, so they are not filed under the verse before the gap.
func (s *Scanner) Gap() {
	s.stats.Gaps++
	if s.pos.Verse != 0 {
		s.logger.Debug("gap in text", "book", s.pos.Book, "chapter", s.pos.Chapter, "verse", s.pos.Verse)
		s.floor = s.pos.Verse
	}
	s.pos.Verse = 0
}

// advance moves to chapter:verse unless that would move backwards within the
// current book.
func (s *Scanner) advance(chapter, verse int) {
	if chapter < s.pos.Chapter || (chapter == s.pos.Chapter && verse < max(s.pos.Verse, s.floor)) {
		s.stats.BackwardRefs++
		s.logger.Debug("ignoring backward reference",
			"book", s.pos.Book,
			"at", strconv.Itoa(s.pos.Chapter)+":"+strconv.Itoa(s.pos.Verse),
			"ref", strconv.Itoa(chapter)+":"+strconv.Itoa(verse))
		return
	}
	if chapter > s.pos.Chapter || verse > 0 {
		s.floor = 0
	}
	s.pos.Chapter, s.pos.Verse = chapter, verse
}

func (s *Scanner) attribute(text string) {
	key := books.VerseKey{Book: s.pos.Book, Chapter: s.pos.Chapter, Verse: s.pos.Verse}
	existing, ok := s.verses[key]
	switch {
	case !ok:
		s.verses[key] = text
		s.order = append(s.order, key)
	case s.merge == MergeOverwrite:
		s.verses[key] = text
	default:
		s.verses[key] = existing + " " + text
	}
}

// Result returns a snapshot of everything attributed so far.
func (s *Scanner) Result() Result {
	verses := make(map[books.VerseKey]string, len(s.verses))
	for k, v := range s.verses {
		verses[k] = v
	}
	stats := s.stats
	stats.Verses = len(verses)
	return Result{
		Verses:   verses,
		Order:    slices.Clone(s.order),
		Stats:    stats,
		registry: s.registry,
	}
}

// Locate runs a fresh scanner over lines.
func Locate(lines []string, cfg Config) Result {
	s := NewScanner(cfg)
	for _, line := range lines {
		s.Feed(line)
	}
	return s.Result()
}

// Page is one page of text for LocatePages. Missing marks a page whose text
// could not be produced.
type Page struct {
	Index   int
	Text    string
	Missing bool
}

// LocatePages scans pages in index order, splitting each into lines and
// marking a gap at every missing page.
func LocatePages(pages []Page, cfg Config) Result {
	sorted := slices.Clone(pages)
	slices.SortStableFunc(sorted, func(a, b Page) int { return a.Index - b.Index })

	s := NewScanner(cfg)
	for _, p := range sorted {
		if p.Missing {
			s.Gap()
			continue
		}
		for _, line := range strings.Split(p.Text, "\n") {
			s.Feed(line)
		}
	}
	return s.Result()
}

// Result is the output of a scan.
type Result struct {
	Verses map[books.VerseKey]string
	// Order lists keys in the order they were first attributed.
	Order []books.VerseKey
	Stats Stats

	registry *books.Registry
}

// Keys returns the located verse keys in canonical order.
func (r Result) Keys() []books.VerseKey {
	reg := r.registry
	if reg == nil {
		reg = books.Default()
	}
	keys := make([]books.VerseKey, 0, len(r.Verses))
	for k := range r.Verses {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, reg.Compare)
	return keys
}

// ByKeyString returns the verses keyed by their "book-chapter-verse" form.
func (r Result) ByKeyString() map[string]string {
	out := make(map[string]string, len(r.Verses))
	for k, v := range r.Verses {
		out[k.String()] = v
	}
	return out
}
