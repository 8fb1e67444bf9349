package script

import (
	"sort"
	"strings"
)

// ChapterRange is an inclusive chapter:verse span, e.g. Daniel 2:4-7:28.
type ChapterRange struct {
	StartChapter, StartVerse int
	EndChapter, EndVerse     int
}

// Contains applies the range rule: chapters strictly inside the span always
// count; the start chapter counts from StartVerse on; the end chapter counts
// up to EndVerse.
func (cr ChapterRange) Contains(chapter, verse int) bool {
	if chapter < cr.StartChapter || chapter > cr.EndChapter {
		return false
	}
	if chapter == cr.StartChapter && verse >= cr.StartVerse {
		return true
	}
	if chapter == cr.EndChapter && verse <= cr.EndVerse {
		return true
	}
	return chapter > cr.StartChapter && chapter < cr.EndChapter
}

type chapterVerse struct {
	chapter, verse int
}

// Passage is the set of Aramaic verses for one book.
type Passage struct {
	Ranges []ChapterRange
	verses map[chapterVerse]struct{}
}

// NewPassage builds a passage from whole-chapter ranges plus a list of
// individual (chapter, verse) pairs.
func NewPassage(ranges []ChapterRange, verses ...[2]int) Passage {
	p := Passage{
		Ranges: append([]ChapterRange(nil), ranges...),
		verses: make(map[chapterVerse]struct{}, len(verses)),
	}
	for _, cv := range verses {
		p.verses[chapterVerse{cv[0], cv[1]}] = struct{}{}
	}
	return p
}

// Contains reports whether chapter:verse is part of the passage.
func (p Passage) Contains(chapter, verse int) bool {
	if _, ok := p.verses[chapterVerse{chapter, verse}]; ok {
		return true
	}
	for _, r := range p.Ranges {
		if r.Contains(chapter, verse) {
			return true
		}
	}
	return false
}

// PassageTable maps canonical book ids to their Aramaic passages.
// It is read-only after construction.
type PassageTable map[string]Passage

// IsKnownPassage reports whether book chapter:verse is a known Aramaic
// passage. The book must already be a canonical id.
func (t PassageTable) IsKnownPassage(book string, chapter, verse int) bool {
	p, ok := t[book]
	if !ok {
		return false
	}
	return p.Contains(chapter, verse)
}

// verseSpan expands chapter:from-to into individual pairs.
func verseSpan(chapter, from, to int) [][2]int {
	out := make([][2]int, 0, to-from+1)
	for v := from; v <= to; v++ {
		out = append(out, [2]int{chapter, v})
	}
	return out
}

func concat(spans ...[][2]int) [][2]int {
	var out [][2]int
	for _, s := range spans {
		out = append(out, s...)
	}
	return out
}

// DefaultPassages returns the Biblical Aramaic sections written in Hebrew
// square script: Daniel 2:4-7:28, Ezra 4:8-6:18 and 7:12-26, Jeremiah 10:11
// and Genesis 31:47.
func DefaultPassages() PassageTable {
	return PassageTable{
		"daniel": NewPassage([]ChapterRange{{2, 4, 7, 28}}),
		"ezra": NewPassage(nil, concat(
			verseSpan(4, 8, 24),
			verseSpan(5, 1, 17),
			verseSpan(6, 1, 18),
			verseSpan(7, 12, 26),
		)...),
		"jeremiah": NewPassage(nil, [2]int{10, 11}),
		"genesis":  NewPassage(nil, [2]int{31, 47}),
	}
}

// VocabularyTable is an immutable set of Aramaic-distinctive word forms.
type VocabularyTable struct {
	words []string
}

// NewVocabularyTable builds a table from words, dropping blanks and
// duplicates.
func NewVocabularyTable(words ...string) VocabularyTable {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	sort.Strings(out)
	return VocabularyTable{words: out}
}

// DefaultVocabulary returns the built-in Aramaic word list, each form
// pointed and unpointed.
func DefaultVocabulary() VocabularyTable {
	return NewVocabularyTable(
		"דִּי", "די", // relative particle
		"מַלְכָּא", "מלכא", // the king, emphatic state
		"אֱלָהּ", "אלה", // God
		"קֳדָם", "קדם", // before
		"כְּעַן", "כען", // now
		"לָא", "לא", // negation
		"הֲוָא", "הוא", // was
	)
}

// Words returns the table's entries in sorted order.
func (v VocabularyTable) Words() []string {
	return append([]string(nil), v.words...)
}

// Len returns the number of entries.
func (v VocabularyTable) Len() int {
	return len(v.words)
}

// Match returns, in sorted order, every entry that occurs as a literal
// substring of text.
func (v VocabularyTable) Match(text string) []string {
	if text == "" {
		return nil
	}
	var matched []string
	for _, w := range v.words {
		if strings.Contains(text, w) {
			matched = append(matched, w)
		}
	}
	return matched
}

// Confidence scores a vocabulary match: one third per distinct word,
// capped at 1.
func (v VocabularyTable) Confidence(matched []string) float64 {
	return min(float64(len(matched))/3, 1.0)
}

// Tables bundles the read-only reference data the classifier consults.
type Tables struct {
	Passages   PassageTable
	Vocabulary VocabularyTable
}

// DefaultTables returns the built-in passage and vocabulary tables.
func DefaultTables() Tables {
	return Tables{
		Passages:   DefaultPassages(),
		Vocabulary: DefaultVocabulary(),
	}
}
