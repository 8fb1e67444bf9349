package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/scriptscan/internal/document"
	"github.com/jackzampolin/scriptscan/internal/engine"
	"github.com/jackzampolin/scriptscan/internal/locate"
	"github.com/jackzampolin/scriptscan/internal/report"
	"github.com/jackzampolin/scriptscan/internal/svcctx"
)

// openSource opens a document and, when enabled, wraps it with the page
// cache for its fingerprint.
func openSource(ctx context.Context, path string) (document.Source, string, error) {
	cfg := svcctx.ConfigFrom(ctx)
	logger := svcctx.LoggerFrom(ctx)

	src, err := document.Open(path, cfg.DocumentOptions())
	if err != nil {
		return nil, "", err
	}
	fp, err := document.Fingerprint(path)
	if err != nil {
		return nil, "", err
	}

	h := svcctx.HomeFrom(ctx)
	if !cfg.Document.CachePages || h == nil {
		return src, fp, nil
	}
	dir, err := h.EnsureDocumentCacheDir(fp)
	if err != nil {
		logger.Warn("page cache disabled", "error", err)
		return src, fp, nil
	}
	return document.WithCache(src, dir, logger), fp, nil
}

// resolveEngine returns the named engine, or the configured default.
func resolveEngine(ctx context.Context, name string) (engine.Engine, error) {
	if name == "" {
		name = svcctx.ConfigFrom(ctx).OCR.Engine
	}
	reg := svcctx.EnginesFrom(ctx)
	if reg == nil {
		return nil, fmt.Errorf("%w: %s", engine.ErrNotFound, name)
	}
	e, err := reg.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w (enabled: %s)", err, strings.Join(reg.List(), ", "))
	}
	return e, nil
}

// locateConfig builds the locator configuration from config and flags.
func locateConfig(ctx context.Context, defaultBook string, restrict []string) locate.Config {
	lc := svcctx.ConfigFrom(ctx).LocateConfig()
	if defaultBook != "" {
		lc.DefaultBook = defaultBook
	}
	if len(restrict) > 0 {
		lc.Books = restrict
	}
	lc.Registry = svcctx.BooksFrom(ctx)
	lc.Logger = svcctx.LoggerFrom(ctx)
	return lc
}

// emit writes data to stdout in the selected format and, when save is set,
// to a timestamped file under the reports directory.
func emit(cmd *cobra.Command, data any, save bool, command, doc string) error {
	if err := report.Write(cmd.OutOrStdout(), format, data); err != nil {
		return err
	}
	if !save {
		return nil
	}

	h := svcctx.HomeFrom(cmd.Context())
	if h == nil {
		return fmt.Errorf("no home directory to save report to")
	}
	if err := h.EnsureExists(); err != nil {
		return err
	}
	path := h.ReportPath(command, doc, extension(format), time.Now())
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()
	if err := report.Write(f, format, data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	svcctx.LoggerFrom(cmd.Context()).Info("saved report", "path", path)
	return nil
}

func extension(f report.Format) string {
	switch f {
	case report.FormatJSON:
		return "json"
	case report.FormatMarkdown:
		return "md"
	case report.FormatHTML:
		return "html"
	default:
		return "yaml"
	}
}

// readInput reads a file, or stdin for "-".
func readInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, nil
}
