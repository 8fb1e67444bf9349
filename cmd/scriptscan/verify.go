package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/scriptscan/internal/corpus"
	"github.com/jackzampolin/scriptscan/internal/pipeline"
	"github.com/jackzampolin/scriptscan/internal/verify"
)

var (
	verifyOpts   extractOptions
	verifyLocate bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Measure OCR accuracy against a reference corpus",
	Long: `Verify extracts text from a document and compares it verse by verse with
a reference corpus. Each checked verse gets a similarity score; the run is
graded good (>= 0.7), partial (>= 0.4) or poor.

Examples:
  scriptscan verify --pdf bhs.pdf --reference genesis.json
  scriptscan verify --pdf na28/ --reference john.osis.xml.xz --script greek --max-verses 0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		verifyOpts.skipLocate = !verifyLocate
		rep, err := runExtract(cmd.Context(), verifyOpts)
		if rep == nil {
			return err
		}
		if werr := emit(cmd, rep, verifyOpts.save, "verify", verifyOpts.document); werr != nil {
			return werr
		}
		return err
	},
}

// verifyResult checks the recognized pages of res against ref.
func verifyResult(res *pipeline.Result, ref *corpus.Corpus, opts verify.Options) *verify.Report {
	return verify.VerifyPages(res.Text(), ref, opts)
}

func init() {
	verifyOpts.bind(verifyCmd)
	verifyCmd.Flags().StringVar(&verifyOpts.reference, "reference", "", "reference corpus (JSON or OSIS, optionally .xz)")
	verifyCmd.Flags().BoolVar(&verifyLocate, "locate", false, "also locate verses in the extracted text")
	_ = verifyCmd.MarkFlagRequired("reference")
	rootCmd.AddCommand(verifyCmd)
}
