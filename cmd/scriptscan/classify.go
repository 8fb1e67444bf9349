package main

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/scriptscan/internal/script"
	"github.com/jackzampolin/scriptscan/internal/svcctx"
)

var (
	classifyBook    string
	classifyChapter int
	classifyVerse   int
)

var classifyCmd = &cobra.Command{
	Use:   "classify [text...]",
	Short: "Classify text as Hebrew, Aramaic or Greek",
	Long: `Classify decides the language of a piece of text from its script, the
Aramaic vocabulary it contains and, when book/chapter/verse are given,
whether the passage is one of the known Aramaic sections.

Text is read from the arguments, or from stdin when none are given.

Examples:
  scriptscan classify 'בְּרֵאשִׁית בָּרָא אֱלֹהִים'
  scriptscan classify --book daniel --chapter 2 --verse 4 < verse.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if len(args) == 0 {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			text = string(data)
		}

		c := script.NewClassifier(script.DefaultTables(), script.WithRegistry(svcctx.BooksFrom(cmd.Context())))
		span := c.Classify(text, script.Hints{
			Book:    classifyBook,
			Chapter: classifyChapter,
			Verse:   classifyVerse,
		})
		return emit(cmd, span, false, "classify", "")
	},
}

func init() {
	f := classifyCmd.Flags()
	f.StringVar(&classifyBook, "book", "", "book of the passage")
	f.IntVar(&classifyChapter, "chapter", 0, "chapter of the passage")
	f.IntVar(&classifyVerse, "verse", 0, "verse of the passage")

	rootCmd.AddCommand(classifyCmd)
}
