package books

import (
	"fmt"
	"strconv"
	"strings"
)

// VerseKey addresses a single verse as (book id, chapter, verse).
type VerseKey struct {
	Book    string `json:"book" yaml:"book"`
	Chapter int    `json:"chapter" yaml:"chapter"`
	Verse   int    `json:"verse" yaml:"verse"`
}

// String renders the key in its canonical "book-chapter-verse" form,
// e.g. "genesis-1-1" or "1-samuel-3-4".
func (k VerseKey) String() string {
	return fmt.Sprintf("%s-%d-%d", k.Book, k.Chapter, k.Verse)
}

// Valid reports whether the key names a book and positive chapter/verse.
func (k VerseKey) Valid() bool {
	return k.Book != "" && k.Chapter >= 1 && k.Verse >= 1
}

// ParseVerseKey parses a "book-chapter-verse" key. Book ids may themselves
// contain hyphens ("song-of-solomon-2-1"), so chapter and verse are taken
// from the right.
func ParseVerseKey(s string) (VerseKey, error) {
	s = strings.TrimSpace(s)
	vi := strings.LastIndexByte(s, '-')
	if vi <= 0 {
		return VerseKey{}, fmt.Errorf("invalid verse key %q", s)
	}
	ci := strings.LastIndexByte(s[:vi], '-')
	if ci <= 0 {
		return VerseKey{}, fmt.Errorf("invalid verse key %q", s)
	}
	chapter, err := strconv.Atoi(s[ci+1 : vi])
	if err != nil {
		return VerseKey{}, fmt.Errorf("invalid chapter in verse key %q: %w", s, err)
	}
	verse, err := strconv.Atoi(s[vi+1:])
	if err != nil {
		return VerseKey{}, fmt.Errorf("invalid verse in verse key %q: %w", s, err)
	}
	k := VerseKey{Book: s[:ci], Chapter: chapter, Verse: verse}
	if !k.Valid() {
		return VerseKey{}, fmt.Errorf("invalid verse key %q", s)
	}
	return k, nil
}

// Compare orders keys canonically: by the registry position of the book,
// then chapter, then verse. Books unknown to r sort after known books, by id.
func (r *Registry) Compare(a, b VerseKey) int {
	if a.Book != b.Book {
		oa, ob := r.Order(a.Book), r.Order(b.Book)
		switch {
		case oa == 0 && ob == 0:
			return strings.Compare(a.Book, b.Book)
		case oa == 0:
			return 1
		case ob == 0:
			return -1
		case oa != ob:
			return oa - ob
		}
	}
	if a.Chapter != b.Chapter {
		return a.Chapter - b.Chapter
	}
	return a.Verse - b.Verse
}
