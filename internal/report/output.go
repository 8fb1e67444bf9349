package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// Format is an output format.
type Format string

const (
	FormatYAML     Format = "yaml"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// DefaultFormat is used when no format is given.
const DefaultFormat = FormatYAML

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown output format: %s", s)
}

// Markdowner can render itself as Markdown.
type Markdowner interface {
	Markdown() string
}

// Write renders data to w. Markdown and HTML need data to implement
// Markdowner.
func Write(w io.Writer, format Format, data any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	case FormatMarkdown, FormatHTML:
		md, ok := data.(Markdowner)
		if !ok {
			return fmt.Errorf("%T cannot be rendered as %s", data, format)
		}
		if format == FormatMarkdown {
			_, err := io.WriteString(w, md.Markdown())
			return err
		}
		return WriteHTML(w, md.Markdown())
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

const htmlHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>scriptscan report</title>
<style>
body { font-family: sans-serif; max-width: 60em; margin: 2em auto; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 0.2em 0.6em; }
</style>
</head>
<body>
`

// WriteHTML converts markdown to a standalone HTML page.
func WriteHTML(w io.Writer, markdown string) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}
	if _, err := io.WriteString(w, htmlHead); err != nil {
		return err
	}
	if _, err := buf.WriteTo(w); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}
