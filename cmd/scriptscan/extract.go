package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/scriptscan/internal/corpus"
	"github.com/jackzampolin/scriptscan/internal/locate"
	"github.com/jackzampolin/scriptscan/internal/metrics"
	"github.com/jackzampolin/scriptscan/internal/pipeline"
	"github.com/jackzampolin/scriptscan/internal/report"
	"github.com/jackzampolin/scriptscan/internal/script"
	"github.com/jackzampolin/scriptscan/internal/svcctx"
	"github.com/jackzampolin/scriptscan/version"
)

// extractOptions are the flags shared by extract and verify.
type extractOptions struct {
	document   string
	engine     string
	lang       string
	start      int
	pages      int
	dpi        int
	workers    int
	book       string
	books      []string
	reference  string
	script     string
	maxVerses  int
	skipLocate bool
	save       bool
}

func (o *extractOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.document, "pdf", "", "PDF file, page image, or directory of page images")
	f.StringVar(&o.engine, "engine", "", "OCR engine name (default: ocr.engine from config)")
	f.StringVar(&o.lang, "lang", "", "OCR language hint, e.g. heb+eng (default: ocr.language from config)")
	f.IntVar(&o.start, "start", 0, "first page, 0-based")
	f.IntVar(&o.pages, "pages", 10, "number of pages, 0 for all")
	f.IntVar(&o.dpi, "dpi", 0, "render DPI (default: ocr.dpi from config)")
	f.IntVar(&o.workers, "workers", 0, "concurrent pages (default: pipeline.max_workers from config)")
	f.StringVar(&o.book, "book", "", "book assumed before the first heading")
	f.StringSliceVar(&o.books, "books", nil, "restrict heading detection to these books")
	f.StringVar(&o.script, "script", "", "script to verify: hebrew, greek or aramaic (default: verify.script)")
	f.IntVar(&o.maxVerses, "max-verses", -1, "reference verses to check, 0 for all (default: verify.max_verses)")
	f.BoolVar(&o.save, "save", false, "also save the report under the home directory")
	_ = cmd.MarkFlagRequired("pdf")
}

var extractOpts extractOptions

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract scripture text from a scanned document",
	Long: `Extract renders, preprocesses and recognizes each page, splits the text
into Hebrew, Aramaic and Greek segments, and locates verses.

With --reference, the extracted text is also checked against a reference
corpus (JSON, OSIS XML, optionally xz-compressed).

Examples:
  scriptscan extract --pdf bhs.pdf --pages 5
  scriptscan extract --pdf scans/ --lang grc+eng --book john
  scriptscan extract --pdf bhs.pdf --reference genesis.json -o markdown`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := runExtract(cmd.Context(), extractOpts)
		if rep == nil {
			return err
		}
		if werr := emit(cmd, rep, extractOpts.save, "extract", extractOpts.document); werr != nil {
			return werr
		}
		return err
	},
}

// runExtract runs the pipeline and assembles the report. On cancellation
// the partial report is returned along with the error.
func runExtract(ctx context.Context, o extractOptions) (*report.Report, error) {
	cfg := svcctx.ConfigFrom(ctx)
	logger := svcctx.LoggerFrom(ctx)
	registry := svcctx.BooksFrom(ctx)

	// Load the reference first so a bad path fails before any OCR.
	var ref *corpus.Corpus
	if o.reference != "" {
		var err error
		if ref, err = corpus.Load(o.reference, registry); err != nil {
			return nil, err
		}
	}

	src, fp, err := openSource(ctx, o.document)
	if err != nil {
		return nil, err
	}
	eng, err := resolveEngine(ctx, o.engine)
	if err != nil {
		return nil, err
	}

	lang := o.lang
	if lang == "" {
		lang = cfg.OCR.Language
	}
	ocr := cfg.OCRConfig()
	if o.dpi > 0 {
		ocr.DPI = o.dpi
	}
	if err := ocr.Validate(); err != nil {
		return nil, err
	}
	workers := o.workers
	if workers <= 0 {
		workers = cfg.Pipeline.MaxWorkers
	}

	meta := report.NewMetadata(src.Name())
	meta.Version = version.GitRelease
	meta.Fingerprint = fp
	meta.Engine = eng.Name()
	meta.Language = lang
	meta.Config = ocr

	rec := metrics.NewRecorder(meta.RunID)
	res, runErr := pipeline.Run(ctx, pipeline.Request{
		Source:      src,
		Engine:      eng,
		Language:    lang,
		Config:      ocr,
		Start:       o.start,
		Pages:       o.pages,
		Workers:     workers,
		PageTimeout: cfg.PageTimeout(),
		Retries:     cfg.Pipeline.Retries,
		RetryDelay:  cfg.RetryDelay(),
		Logger:      logger,
		Metrics:     rec,
	})
	if res == nil {
		return nil, runErr
	}

	rep := report.New(meta)
	rep.AddExtraction(res)

	if !o.skipLocate {
		located := locate.LocatePages(res.LocatorPages(), locateConfig(ctx, o.book, o.books))
		rep.AddLocator(located)
	}

	if ref != nil {
		vopts := cfg.VerifyOptions()
		if o.script != "" {
			if vopts.Script = script.ParseLanguage(o.script); vopts.Script == script.Unknown {
				return nil, fmt.Errorf("unknown script: %s", o.script)
			}
		}
		if o.maxVerses >= 0 {
			vopts.MaxVerses = o.maxVerses
		}
		acc := verifyResult(res, ref, vopts)
		rep.AddAccuracy(acc)
		logger.Info("verification complete",
			"script", acc.Script,
			"average_accuracy", fmt.Sprintf("%.2f", acc.AverageAccuracy),
			"matches", len(acc.Matches),
			"misses", len(acc.Misses),
			"status", acc.Status)
	}
	rep.AddTiming(rec)

	if errors.Is(runErr, context.Canceled) {
		logger.Warn("extraction interrupted, reporting partial result", "pages", res.PagesProcessed)
	}
	return rep, runErr
}

func init() {
	extractOpts.bind(extractCmd)
	extractCmd.Flags().StringVar(&extractOpts.reference, "reference", "", "reference corpus to verify against")
	rootCmd.AddCommand(extractCmd)
}
