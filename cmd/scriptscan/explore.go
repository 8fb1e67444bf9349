package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/scriptscan/internal/explore"
	"github.com/jackzampolin/scriptscan/internal/metrics"
	"github.com/jackzampolin/scriptscan/internal/report"
	"github.com/jackzampolin/scriptscan/internal/script"
	"github.com/jackzampolin/scriptscan/internal/svcctx"
	"github.com/jackzampolin/scriptscan/version"
)

var (
	exploreDocument string
	exploreEngine   string
	exploreLang     string
	explorePage     int
	exploreTarget   string
	exploreSave     bool
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Try OCR configurations on one page and pick the best",
	Long: `Explore recognizes a single page with each candidate configuration from
the config file (explore.candidates) and ranks them by how many segments of
the target script they yield.

Examples:
  scriptscan explore --pdf bhs.pdf --page 12
  scriptscan explore --pdf na28.pdf --target greek --lang grc+eng -o markdown`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := svcctx.ConfigFrom(ctx)
		logger := svcctx.LoggerFrom(ctx)

		target := cfg.Explore.Target
		if exploreTarget != "" {
			target = exploreTarget
		}
		lang := script.ParseLanguage(target)
		if lang == script.Unknown {
			return fmt.Errorf("unknown target script: %s", target)
		}
		ocrLang := exploreLang
		if ocrLang == "" {
			ocrLang = cfg.OCR.Language
		}

		src, fp, err := openSource(ctx, exploreDocument)
		if err != nil {
			return err
		}
		eng, err := resolveEngine(ctx, exploreEngine)
		if err != nil {
			return err
		}

		meta := report.NewMetadata(src.Name())
		meta.Version = version.GitRelease
		meta.Fingerprint = fp
		meta.Engine = eng.Name()
		meta.Language = ocrLang
		meta.Config = cfg.OCRConfig()

		res, err := explore.Explore(ctx, explore.Request{
			Source:     src,
			Engine:     eng,
			Page:       explorePage,
			Language:   ocrLang,
			Target:     lang,
			Candidates: cfg.Candidates(),
			Logger:     logger,
			Metrics:    metrics.NewRecorder(meta.RunID),
		})
		if err != nil {
			return err
		}
		if best, ok := res.Result(res.Best); ok {
			meta.Config = best.Config
		}

		return emit(cmd, &report.ExploreReport{Metadata: meta, Explore: res}, exploreSave, "explore", exploreDocument)
	},
}

func init() {
	f := exploreCmd.Flags()
	f.StringVar(&exploreDocument, "pdf", "", "PDF file, page image, or directory of page images")
	f.StringVar(&exploreEngine, "engine", "", "OCR engine name (default: ocr.engine from config)")
	f.StringVar(&exploreLang, "lang", "", "OCR language hint (default: ocr.language from config)")
	f.IntVar(&explorePage, "page", 0, "page to sample, 0-based")
	f.StringVar(&exploreTarget, "target", "", "script to maximize: hebrew or greek (default: explore.target)")
	f.BoolVar(&exploreSave, "save", false, "also save the report under the home directory")
	_ = exploreCmd.MarkFlagRequired("pdf")

	rootCmd.AddCommand(exploreCmd)
}
