package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/scriptscan/internal/locate"
	"github.com/jackzampolin/scriptscan/internal/report"
	"github.com/jackzampolin/scriptscan/internal/svcctx"
)

var (
	locateInput string
	locateHOCR  bool
	locateBook  string
	locateBooks []string
	locateMerge string
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Assign lines of OCR output to verses",
	Long: `Locate scans OCR output line by line, following book headings, chapter
headings and chapter:verse references, and attributes the biblical-script
text of each line to the current verse.

Input is plain text or hOCR (--hocr), from a file or stdin.

Examples:
  scriptscan locate --input page.txt --book genesis
  tesseract page.png - -l heb hocr | scriptscan locate --hocr`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		in, err := readInput(locateInput)
		if err != nil {
			return err
		}
		defer in.Close()

		read := locate.ReadLines
		if locateHOCR {
			read = locate.ReadHOCRLines
		}
		lines, err := read(in)
		if err != nil {
			if len(lines) == 0 {
				return err
			}
			svcctx.LoggerFrom(ctx).Warn("input truncated", "lines", len(lines), "error", err)
		}

		lc := locateConfig(ctx, locateBook, locateBooks)
		if locateMerge != "" {
			switch p := locate.MergePolicy(locateMerge); p {
			case locate.MergeAppend, locate.MergeOverwrite:
				lc.Merge = p
			default:
				return fmt.Errorf("unknown merge policy: %s", locateMerge)
			}
		}

		name := locateInput
		if name == "" {
			name = "-"
		}
		rep := report.New(report.NewMetadata(name))
		rep.AddLocator(locate.Locate(lines, lc))
		return emit(cmd, rep, false, "locate", name)
	},
}

func init() {
	f := locateCmd.Flags()
	f.StringVar(&locateInput, "input", "-", "text or hOCR file, - for stdin")
	f.BoolVar(&locateHOCR, "hocr", false, "input is hOCR")
	f.StringVar(&locateBook, "book", "", "book assumed before the first heading")
	f.StringSliceVar(&locateBooks, "books", nil, "restrict heading detection to these books")
	f.StringVar(&locateMerge, "merge", "", "append or overwrite repeated verses (default: locate.merge)")

	rootCmd.AddCommand(locateCmd)
}
