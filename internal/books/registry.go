// Package books holds the canonical book registry and verse addressing.
//
// Every other package resolves book names through this registry so that
// names, abbreviations and native-script titles live in one table.
package books

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Testament identifies which canon section a book belongs to.
type Testament string

const (
	OldTestament Testament = "OT"
	NewTestament Testament = "NT"
)

// Book is one entry of the canonical registry. ID is the stable key used in
// verse keys ("1-samuel"); Native is the Hebrew (OT) or Greek (NT) title.
type Book struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Abbrev    string    `json:"abbrev" yaml:"abbrev"`
	Native    string    `json:"native" yaml:"native"`
	Chapters  int       `json:"chapters" yaml:"chapters"`
	Testament Testament `json:"testament" yaml:"testament"`
	Order     int       `json:"order" yaml:"order"`
}

// canon is the single source of truth for book metadata.
var canon = []Book{
	{ID: "genesis", Name: "Genesis", Abbrev: "Gen", Native: "בראשית", Chapters: 50},
	{ID: "exodus", Name: "Exodus", Abbrev: "Exod", Native: "שמות", Chapters: 40},
	{ID: "leviticus", Name: "Leviticus", Abbrev: "Lev", Native: "ויקרא", Chapters: 27},
	{ID: "numbers", Name: "Numbers", Abbrev: "Num", Native: "במדבר", Chapters: 36},
	{ID: "deuteronomy", Name: "Deuteronomy", Abbrev: "Deut", Native: "דברים", Chapters: 34},
	{ID: "joshua", Name: "Joshua", Abbrev: "Josh", Native: "יהושע", Chapters: 24},
	{ID: "judges", Name: "Judges", Abbrev: "Judg", Native: "שופטים", Chapters: 21},
	{ID: "ruth", Name: "Ruth", Abbrev: "Ruth", Native: "רות", Chapters: 4},
	{ID: "1-samuel", Name: "1 Samuel", Abbrev: "1Sam", Native: "שמואל א", Chapters: 31},
	{ID: "2-samuel", Name: "2 Samuel", Abbrev: "2Sam", Native: "שמואל ב", Chapters: 24},
	{ID: "1-kings", Name: "1 Kings", Abbrev: "1Kgs", Native: "מלכים א", Chapters: 22},
	{ID: "2-kings", Name: "2 Kings", Abbrev: "2Kgs", Native: "מלכים ב", Chapters: 25},
	{ID: "1-chronicles", Name: "1 Chronicles", Abbrev: "1Chr", Native: "דברי הימים א", Chapters: 29},
	{ID: "2-chronicles", Name: "2 Chronicles", Abbrev: "2Chr", Native: "דברי הימים ב", Chapters: 36},
	{ID: "ezra", Name: "Ezra", Abbrev: "Ezra", Native: "עזרא", Chapters: 10},
	{ID: "nehemiah", Name: "Nehemiah", Abbrev: "Neh", Native: "נחמיה", Chapters: 13},
	{ID: "esther", Name: "Esther", Abbrev: "Esth", Native: "אסתר", Chapters: 10},
	{ID: "job", Name: "Job", Abbrev: "Job", Native: "איוב", Chapters: 42},
	{ID: "psalms", Name: "Psalms", Abbrev: "Ps", Native: "תהלים", Chapters: 150},
	{ID: "proverbs", Name: "Proverbs", Abbrev: "Prov", Native: "משלי", Chapters: 31},
	{ID: "ecclesiastes", Name: "Ecclesiastes", Abbrev: "Eccl", Native: "קהלת", Chapters: 12},
	{ID: "song-of-solomon", Name: "Song of Solomon", Abbrev: "Song", Native: "שיר השירים", Chapters: 8},
	{ID: "isaiah", Name: "Isaiah", Abbrev: "Isa", Native: "ישעיהו", Chapters: 66},
	{ID: "jeremiah", Name: "Jeremiah", Abbrev: "Jer", Native: "ירמיהו", Chapters: 52},
	{ID: "lamentations", Name: "Lamentations", Abbrev: "Lam", Native: "איכה", Chapters: 5},
	{ID: "ezekiel", Name: "Ezekiel", Abbrev: "Ezek", Native: "יחזקאל", Chapters: 48},
	{ID: "daniel", Name: "Daniel", Abbrev: "Dan", Native: "דניאל", Chapters: 12},
	{ID: "hosea", Name: "Hosea", Abbrev: "Hos", Native: "הושע", Chapters: 14},
	{ID: "joel", Name: "Joel", Abbrev: "Joel", Native: "יואל", Chapters: 3},
	{ID: "amos", Name: "Amos", Abbrev: "Amos", Native: "עמוס", Chapters: 9},
	{ID: "obadiah", Name: "Obadiah", Abbrev: "Obad", Native: "עובדיה", Chapters: 1},
	{ID: "jonah", Name: "Jonah", Abbrev: "Jonah", Native: "יונה", Chapters: 4},
	{ID: "micah", Name: "Micah", Abbrev: "Mic", Native: "מיכה", Chapters: 7},
	{ID: "nahum", Name: "Nahum", Abbrev: "Nah", Native: "נחום", Chapters: 3},
	{ID: "habakkuk", Name: "Habakkuk", Abbrev: "Hab", Native: "חבקוק", Chapters: 3},
	{ID: "zephaniah", Name: "Zephaniah", Abbrev: "Zeph", Native: "צפניה", Chapters: 3},
	{ID: "haggai", Name: "Haggai", Abbrev: "Hag", Native: "חגי", Chapters: 2},
	{ID: "zechariah", Name: "Zechariah", Abbrev: "Zech", Native: "זכריה", Chapters: 14},
	{ID: "malachi", Name: "Malachi", Abbrev: "Mal", Native: "מלאכי", Chapters: 4},

	{ID: "matthew", Name: "Matthew", Abbrev: "Matt", Native: "ΚΑΤΑ ΜΑΘΘΑΙΟΝ", Chapters: 28},
	{ID: "mark", Name: "Mark", Abbrev: "Mark", Native: "ΚΑΤΑ ΜΑΡΚΟΝ", Chapters: 16},
	{ID: "luke", Name: "Luke", Abbrev: "Luke", Native: "ΚΑΤΑ ΛΟΥΚΑΝ", Chapters: 24},
	{ID: "john", Name: "John", Abbrev: "John", Native: "ΚΑΤΑ ΙΩΑΝΝΗΝ", Chapters: 21},
	{ID: "acts", Name: "Acts", Abbrev: "Acts", Native: "ΠΡΑΞΕΙΣ ΑΠΟΣΤΟΛΩΝ", Chapters: 28},
	{ID: "romans", Name: "Romans", Abbrev: "Rom", Native: "ΠΡΟΣ ΡΩΜΑΙΟΥΣ", Chapters: 16},
	{ID: "1-corinthians", Name: "1 Corinthians", Abbrev: "1Cor", Native: "ΠΡΟΣ ΚΟΡΙΝΘΙΟΥΣ Α", Chapters: 16},
	{ID: "2-corinthians", Name: "2 Corinthians", Abbrev: "2Cor", Native: "ΠΡΟΣ ΚΟΡΙΝΘΙΟΥΣ Β", Chapters: 13},
	{ID: "galatians", Name: "Galatians", Abbrev: "Gal", Native: "ΠΡΟΣ ΓΑΛΑΤΑΣ", Chapters: 6},
	{ID: "ephesians", Name: "Ephesians", Abbrev: "Eph", Native: "ΠΡΟΣ ΕΦΕΣΙΟΥΣ", Chapters: 6},
	{ID: "philippians", Name: "Philippians", Abbrev: "Phil", Native: "ΠΡΟΣ ΦΙΛΙΠΠΗΣΙΟΥΣ", Chapters: 4},
	{ID: "colossians", Name: "Colossians", Abbrev: "Col", Native: "ΠΡΟΣ ΚΟΛΟΣΣΑΕΙΣ", Chapters: 4},
	{ID: "1-thessalonians", Name: "1 Thessalonians", Abbrev: "1Thess", Native: "ΠΡΟΣ ΘΕΣΣΑΛΟΝΙΚΕΙΣ Α", Chapters: 5},
	{ID: "2-thessalonians", Name: "2 Thessalonians", Abbrev: "2Thess", Native: "ΠΡΟΣ ΘΕΣΣΑΛΟΝΙΚΕΙΣ Β", Chapters: 3},
	{ID: "1-timothy", Name: "1 Timothy", Abbrev: "1Tim", Native: "ΠΡΟΣ ΤΙΜΟΘΕΟΝ Α", Chapters: 6},
	{ID: "2-timothy", Name: "2 Timothy", Abbrev: "2Tim", Native: "ΠΡΟΣ ΤΙΜΟΘΕΟΝ Β", Chapters: 4},
	{ID: "titus", Name: "Titus", Abbrev: "Titus", Native: "ΠΡΟΣ ΤΙΤΟΝ", Chapters: 3},
	{ID: "philemon", Name: "Philemon", Abbrev: "Phlm", Native: "ΠΡΟΣ ΦΙΛΗΜΟΝΑ", Chapters: 1},
	{ID: "hebrews", Name: "Hebrews", Abbrev: "Heb", Native: "ΠΡΟΣ ΕΒΡΑΙΟΥΣ", Chapters: 13},
	{ID: "james", Name: "James", Abbrev: "Jas", Native: "ΙΑΚΩΒΟΥ", Chapters: 5},
	{ID: "1-peter", Name: "1 Peter", Abbrev: "1Pet", Native: "ΠΕΤΡΟΥ Α", Chapters: 5},
	{ID: "2-peter", Name: "2 Peter", Abbrev: "2Pet", Native: "ΠΕΤΡΟΥ Β", Chapters: 3},
	{ID: "1-john", Name: "1 John", Abbrev: "1John", Native: "ΙΩΑΝΝΟΥ Α", Chapters: 5},
	{ID: "2-john", Name: "2 John", Abbrev: "2John", Native: "ΙΩΑΝΝΟΥ Β", Chapters: 1},
	{ID: "3-john", Name: "3 John", Abbrev: "3John", Native: "ΙΩΑΝΝΟΥ Γ", Chapters: 1},
	{ID: "jude", Name: "Jude", Abbrev: "Jude", Native: "ΙΟΥΔΑ", Chapters: 1},
	{ID: "revelation", Name: "Revelation", Abbrev: "Rev", Native: "ΑΠΟΚΑΛΥΨΙΣ ΙΩΑΝΝΟΥ", Chapters: 22},
}

// Registry provides derived lookups over the canonical book list.
// A Registry is immutable after construction and safe for concurrent use.
type Registry struct {
	books   []Book
	byID    map[string]int
	byAlias map[string]int
}

var defaultRegistry = NewRegistry(canon)

// Default returns the registry built from the full 66-book canon.
func Default() *Registry {
	return defaultRegistry
}

// NewRegistry builds a registry from the given books. Order and testament
// are filled in from slice position when unset; the first 39 entries of the
// canon are OT.
func NewRegistry(list []Book) *Registry {
	r := &Registry{
		books:   make([]Book, len(list)),
		byID:    make(map[string]int, len(list)),
		byAlias: make(map[string]int, len(list)*6),
	}
	copy(r.books, list)

	for i := range r.books {
		b := &r.books[i]
		if b.Order == 0 {
			b.Order = i + 1
		}
		if b.Testament == "" {
			b.Testament = OldTestament
			if b.Order > 39 {
				b.Testament = NewTestament
			}
		}
		r.byID[b.ID] = i
		for _, alias := range aliases(*b) {
			if _, taken := r.byAlias[alias]; !taken {
				r.byAlias[alias] = i
			}
		}
	}
	return r
}

// aliases derives every lookup spelling for a book.
func aliases(b Book) []string {
	out := []string{
		normalizeName(b.ID),
		normalizeName(b.Name),
		normalizeName(b.Abbrev),
	}
	if b.Native != "" {
		out = append(out, normalizeName(b.Native))
	}
	// "1samuel" -> "samuel1", the ordinal-suffix spelling some corpora use.
	id := normalizeName(b.ID)
	if len(id) > 1 && id[0] >= '1' && id[0] <= '3' {
		out = append(out, id[1:]+id[:1])
	}
	return out
}

// normalizeName folds case and drops spaces, hyphens, periods and underscores.
func normalizeName(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '-', '.', '_', '\t':
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Books returns the registry entries in canonical order.
func (r *Registry) Books() []Book {
	out := make([]Book, len(r.books))
	copy(out, r.books)
	return out
}

// Get returns the book with the given stable id.
func (r *Registry) Get(id string) (Book, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Book{}, false
	}
	return r.books[i], true
}

// Lookup resolves any known spelling (id, name, abbreviation, native title,
// ordinal-suffix form) to a book.
func (r *Registry) Lookup(name string) (Book, bool) {
	i, ok := r.byAlias[normalizeName(strings.TrimSpace(name))]
	if !ok {
		return Book{}, false
	}
	return r.books[i], true
}

// Canonical returns the stable id for name, or name lowercased with spaces
// turned into hyphens when the book is not in the registry.
func (r *Registry) Canonical(name string) string {
	if b, ok := r.Lookup(name); ok {
		return b.ID
	}
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// Order returns the 1-based canonical position of a book id, or 0 when the
// id is unknown.
func (r *Registry) Order(id string) int {
	if i, ok := r.byID[id]; ok {
		return r.books[i].Order
	}
	return 0
}

// MatchHeading reports the book a line introduces. A line is a heading when
// it starts with a book's English name or id (case-insensitive) or its
// unpointed native-script title, and nothing after the name is a letter or
// combining mark: "GENESIS 1:1-5" is a heading, "Job answered" is not.
// Pointed text never matches a native title, so verse lines that open with
// a book's name stay text. Longer names are tried first so "1 John" wins
// over "John".
func (r *Registry) MatchHeading(line string) (Book, bool) {
	line = norm.NFC.String(strings.ToLower(strings.TrimSpace(line)))
	if line == "" {
		return Book{}, false
	}
	var (
		best    Book
		bestLen int
	)
	for _, b := range r.books {
		for _, cand := range []string{b.Name, strings.ReplaceAll(b.ID, "-", " "), b.Native} {
			if cand == "" {
				continue
			}
			c := norm.NFC.String(strings.ToLower(cand))
			if len(c) <= bestLen || !strings.HasPrefix(line, c) || !headingTail(line[len(c):]) {
				continue
			}
			best, bestLen = b, len(c)
		}
	}
	return best, bestLen > 0
}

// headingTail reports whether rest, the text after a book name, carries only
// references and punctuation.
func headingTail(rest string) bool {
	for _, r := range rest {
		if unicode.IsLetter(r) || unicode.Is(unicode.Mn, r) {
			return false
		}
	}
	return true
}
