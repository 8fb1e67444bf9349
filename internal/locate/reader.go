package locate

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ErrParse is returned when structured input cannot be read completely.
// Lines read before the failure are still returned alongside it.
var ErrParse = errors.New("malformed input")

// ReadLines splits plain text into lines.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return lines, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return lines, nil
}

// hOCR classes whose content is one line of text.
var lineClasses = []string{"ocr_line", "ocrx_line", "ocr_header", "ocr_caption", "ocr_textfloat"}

// Elements that never have an end tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "source": true, "wbr": true,
}

// ReadHOCRLines extracts the text of each hOCR line element in document
// order. Words are separated by single spaces. If the markup ends inside an
// open line, or contains no line elements at all, the lines collected so
// far are returned with an error wrapping ErrParse.
func ReadHOCRLines(r io.Reader) ([]string, error) {
	z := html.NewTokenizer(r)

	var (
		lines     []string
		current   strings.Builder
		inLine    bool
		depth     int // element depth inside the open line
		seenPages bool
	)

	flush := func() {
		if text := strings.Join(strings.Fields(current.String()), " "); text != "" {
			lines = append(lines, text)
		}
		current.Reset()
		inLine = false
		depth = 0
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			err := z.Err()
			if errors.Is(err, io.EOF) {
				if inLine {
					flush()
					return lines, fmt.Errorf("%w: unterminated ocr_line", ErrParse)
				}
				if len(lines) == 0 && !seenPages {
					return lines, fmt.Errorf("%w: no hOCR line elements found", ErrParse)
				}
				return lines, nil
			}
			if inLine {
				flush()
			}
			return lines, fmt.Errorf("%w: %v", ErrParse, err)

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			class := attr(tok, "class")
			if hasClass(class, "ocr_page") {
				seenPages = true
			}
			if tt == html.SelfClosingTagToken || voidElements[tok.Data] {
				if inLine {
					current.WriteByte(' ')
				}
				continue
			}
			if inLine {
				depth++
				if hasClass(class, "ocrx_word") {
					current.WriteByte(' ')
				}
				continue
			}
			for _, lc := range lineClasses {
				if hasClass(class, lc) {
					inLine = true
					depth = 0
					break
				}
			}

		case html.EndTagToken:
			if !inLine {
				continue
			}
			if depth == 0 {
				flush()
				continue
			}
			depth--

		case html.TextToken:
			if inLine {
				current.Write(z.Text())
			}
		}
	}
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(classAttr, class string) bool {
	for _, c := range strings.Fields(classAttr) {
		if c == class {
			return true
		}
	}
	return false
}
