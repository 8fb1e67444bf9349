// Package corpus loads reference verse text used to check OCR accuracy.
//
// A corpus maps verse keys ("genesis-1-1") to trusted text. It is loaded
// once and never modified, so it can be shared between goroutines.
package corpus

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/jackzampolin/scriptscan/internal/books"
)

var (
	// ErrNotFound is returned when the corpus file does not exist.
	ErrNotFound = errors.New("reference corpus not found")
	// ErrInvalid is returned for corpus data that does not have the
	// expected shape.
	ErrInvalid = errors.New("invalid reference corpus")
)

// Entry is one reference verse.
type Entry struct {
	Key  books.VerseKey
	Text string
}

// Corpus is an immutable verse-key to text mapping.
type Corpus struct {
	verses   map[string]string
	keys     []books.VerseKey
	registry *books.Registry
}

// New builds a corpus from a key/text map. Book names in keys are
// canonicalized through the registry, so "Genesis-1-1" and "gen-1-1" both
// become "genesis-1-1". Later duplicates of the same canonical key are
// joined with a space.
func New(verses map[string]string, registry *books.Registry) (*Corpus, error) {
	if registry == nil {
		registry = books.Default()
	}
	c := &Corpus{
		verses:   make(map[string]string, len(verses)),
		registry: registry,
	}

	raw := make([]string, 0, len(verses))
	for k := range verses {
		raw = append(raw, k)
	}
	sort.Strings(raw)

	for _, k := range raw {
		key, err := books.ParseVerseKey(k)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		key.Book = registry.Canonical(key.Book)
		c.add(key, verses[k])
	}
	c.sortKeys()
	return c, nil
}

func (c *Corpus) add(key books.VerseKey, text string) {
	s := key.String()
	if prev, ok := c.verses[s]; ok {
		c.verses[s] = strings.TrimSpace(prev + " " + text)
		return
	}
	c.verses[s] = strings.TrimSpace(text)
	c.keys = append(c.keys, key)
}

func (c *Corpus) sortKeys() {
	sort.SliceStable(c.keys, func(i, j int) bool {
		return c.registry.Compare(c.keys[i], c.keys[j]) < 0
	})
}

// Len returns the number of verses.
func (c *Corpus) Len() int { return len(c.keys) }

// Get returns the text for a verse key string.
func (c *Corpus) Get(key string) (string, bool) {
	t, ok := c.verses[key]
	return t, ok
}

// Keys returns the verse keys in canonical order.
func (c *Corpus) Keys() []books.VerseKey {
	return append([]books.VerseKey(nil), c.keys...)
}

// Entries returns the verses in canonical order. When limit > 0 only the
// first limit entries are returned.
func (c *Corpus) Entries(limit int) []Entry {
	n := len(c.keys)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Entry, n)
	for i := 0; i < n; i++ {
		out[i] = Entry{Key: c.keys[i], Text: c.verses[c.keys[i].String()]}
	}
	return out
}

// Map returns a copy of the verse map.
func (c *Corpus) Map() map[string]string {
	out := make(map[string]string, len(c.verses))
	for k, v := range c.verses {
		out[k] = v
	}
	return out
}

// Load reads a corpus file, choosing the format from its extension:
// .json, .xml or .osis, each optionally compressed with xz (".json.xz").
func Load(path string, registry *books.Registry) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to open xz stream: %w", ErrInvalid, err)
		}
		r = xr
		name = strings.TrimSuffix(name, ".xz")
	}

	switch filepath.Ext(name) {
	case ".json":
		return LoadJSON(r, registry)
	case ".xml", ".osis":
		return LoadOSIS(r, registry)
	}
	return nil, fmt.Errorf("%w: unsupported corpus format %s", ErrInvalid, filepath.Base(path))
}
