package corpus

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/jackzampolin/scriptscan/internal/books"
)

// LoadOSIS reads verses from an OSIS document. Both container verses
// (<verse osisID="Gen.1.1">text</verse>) and milestone verses
// (<verse sID="..."/>text<verse eID="..."/>) are understood. Notes are
// skipped.
func LoadOSIS(r io.Reader, registry *books.Registry) (*Corpus, error) {
	if registry == nil {
		registry = books.Default()
	}
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	w := &osisWalker{
		corpus:   &Corpus{verses: make(map[string]string), registry: registry},
		registry: registry,
	}
	if err := w.walk(doc); err != nil {
		return nil, err
	}
	w.flush()
	if w.verses == 0 {
		return nil, fmt.Errorf("%w: no verse elements", ErrInvalid)
	}
	w.corpus.sortKeys()
	return w.corpus, nil
}

type osisWalker struct {
	corpus   *Corpus
	registry *books.Registry
	verses   int

	// open milestone verse, if any
	open *books.VerseKey
	buf  strings.Builder
}

func (w *osisWalker) walk(n *xmlquery.Node) error {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if w.open != nil {
				w.buf.WriteString(child.Data)
			}
		case xmlquery.ElementNode:
			switch child.Data {
			case "note":
				continue
			case "verse":
				if err := w.verse(child); err != nil {
					return err
				}
				continue
			}
			if err := w.walk(child); err != nil {
				return err
			}
		default:
			if err := w.walk(child); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *osisWalker) verse(n *xmlquery.Node) error {
	w.verses++
	if sid := n.SelectAttr("sID"); sid != "" {
		w.flush()
		id := n.SelectAttr("osisID")
		if id == "" {
			id = sid
		}
		key, err := parseOSISRef(id, w.registry)
		if err != nil {
			return err
		}
		w.open = &key
		return nil
	}
	if n.SelectAttr("eID") != "" {
		w.flush()
		return nil
	}

	id := n.SelectAttr("osisID")
	if id == "" {
		return nil
	}
	key, err := parseOSISRef(id, w.registry)
	if err != nil {
		return err
	}
	var sb strings.Builder
	collectText(n, &sb)
	w.corpus.add(key, collapse(sb.String()))
	return nil
}

func (w *osisWalker) flush() {
	if w.open == nil {
		return
	}
	w.corpus.add(*w.open, collapse(w.buf.String()))
	w.open = nil
	w.buf.Reset()
}

func collectText(n *xmlquery.Node, sb *strings.Builder) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			sb.WriteString(child.Data)
		case xmlquery.ElementNode:
			if child.Data == "note" {
				continue
			}
			collectText(child, sb)
		}
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// parseOSISRef turns "Gen.1.1" (optionally "Bible.KJV:Gen.1.1", or a
// space-separated list whose first entry is used) into a verse key.
func parseOSISRef(id string, registry *books.Registry) (books.VerseKey, error) {
	ref := strings.Fields(id)
	if len(ref) == 0 {
		return books.VerseKey{}, fmt.Errorf("%w: empty osisID", ErrInvalid)
	}
	s := ref[0]
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		s = s[i+1:]
	}
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return books.VerseKey{}, fmt.Errorf("%w: unsupported osisID %q", ErrInvalid, id)
	}
	chapter, err := strconv.Atoi(parts[1])
	if err != nil {
		return books.VerseKey{}, fmt.Errorf("%w: invalid chapter in osisID %q", ErrInvalid, id)
	}
	verse, err := strconv.Atoi(parts[2])
	if err != nil {
		return books.VerseKey{}, fmt.Errorf("%w: invalid verse in osisID %q", ErrInvalid, id)
	}
	key := books.VerseKey{Book: registry.Canonical(parts[0]), Chapter: chapter, Verse: verse}
	if !key.Valid() {
		return books.VerseKey{}, fmt.Errorf("%w: invalid osisID %q", ErrInvalid, id)
	}
	return key, nil
}
