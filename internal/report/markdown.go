package report

import (
	"fmt"
	"sort"
	"strings"
)

// Markdown renders the report for humans.
func (r *Report) Markdown() string {
	var b strings.Builder
	m := r.Metadata

	fmt.Fprintf(&b, "# Scripture OCR report\n\n")
	fmt.Fprintf(&b, "- **Document:** %s\n", m.Document)
	if m.Fingerprint != "" {
		fmt.Fprintf(&b, "- **Fingerprint:** `%s`\n", m.Fingerprint)
	}
	fmt.Fprintf(&b, "- **Run:** `%s`\n", m.RunID)
	if m.Engine != "" {
		fmt.Fprintf(&b, "- **Engine:** %s (%s)\n", m.Engine, m.Language)
	}
	fmt.Fprintf(&b, "- **Config:** %s\n", m.Config)
	fmt.Fprintf(&b, "- **Generated:** %s\n\n", m.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	fmt.Fprintf(&b, "## Extraction\n\n")
	fmt.Fprintf(&b, "%d pages processed, %d failed, %d segments.\n\n", r.PagesProcessed, len(r.Failures), r.SegmentsTotal)
	if len(r.SegmentsByLanguage) > 0 {
		b.WriteString("| Script | Segments |\n|---|---|\n")
		for _, lang := range sortedLanguages(r.SegmentsByLanguage) {
			fmt.Fprintf(&b, "| %s | %d |\n", lang, r.SegmentsByLanguage[lang])
		}
		b.WriteString("\n")
	}

	if len(r.Pages) > 0 {
		b.WriteString("| Page | Chars | Hebrew | Greek | Aramaic | Refs |\n|---|---|---|---|---|---|\n")
		for _, p := range r.Pages {
			fmt.Fprintf(&b, "| %d | %d | %d | %d | %d | %s |\n",
				p.Page+1, p.Chars, p.Segments["hebrew"], p.Segments["greek"], p.Segments["aramaic"],
				strings.Join(p.VerseRefs, " "))
		}
		b.WriteString("\n")
	}

	if len(r.Failures) > 0 {
		b.WriteString("### Failures\n\n| Page | Stage | Error |\n|---|---|---|\n")
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "| %d | %s | %s |\n", f.Page+1, f.Stage, escape(f.Error))
		}
		b.WriteString("\n")
	}

	if len(r.Validations) > 0 {
		b.WriteString("### Known verses\n\n")
		keys := make([]string, 0, len(r.Validations))
		for k := range r.Validations {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			mark := "missing"
			if r.Validations[k] {
				mark = "found"
			}
			fmt.Fprintf(&b, "- %s: %s\n", k, mark)
		}
		b.WriteString("\n")
	}

	if r.Locator != nil {
		s := r.Locator
		fmt.Fprintf(&b, "## Verses\n\n%d verses located from %d lines (%d unattributed, %d backward references ignored).\n\n",
			s.Verses, s.Lines, s.Unattributed, s.BackwardRefs)
		if s.Gaps > 0 {
			fmt.Fprintf(&b, "Text resumed after %d missing pages; lines after each gap wait for the next verse reference.\n\n", s.Gaps)
		}
		if len(r.Verses) > 0 {
			b.WriteString("| Verse | Text |\n|---|---|\n")
			for _, v := range r.Verses {
				fmt.Fprintf(&b, "| %s | %s |\n", v.Key, escape(v.Text))
			}
			b.WriteString("\n")
		}
	}

	if a := r.Accuracy; a != nil {
		fmt.Fprintf(&b, "## Accuracy\n\n")
		fmt.Fprintf(&b, "Average accuracy **%.2f** (%s), %d of %d verses matched, %d %s segments over %d pages.\n\n",
			a.AverageAccuracy, a.Status, a.VersesFound, len(a.Records), a.SegmentsTotal, a.Script, a.PagesChecked)
		if len(a.Records) > 0 {
			b.WriteString("| Verse | Found | Similarity | Fragment |\n|---|---|---|---|\n")
			for _, rec := range a.Records {
				fmt.Fprintf(&b, "| %s | %t | %.2f | %s |\n", rec.VerseKey, rec.Found, rec.Similarity, escape(rec.MatchedFragment))
			}
			b.WriteString("\n")
		}
	}

	if len(r.Timing) > 0 {
		b.WriteString("## Timing\n\n| Stage | Count | Errors | p50 (s) | p95 (s) | max (s) |\n|---|---|---|---|---|---|\n")
		stages := make([]string, 0, len(r.Timing))
		for s := range r.Timing {
			stages = append(stages, s)
		}
		sort.Strings(stages)
		for _, s := range stages {
			t := r.Timing[s]
			fmt.Fprintf(&b, "| %s | %d | %d | %.3f | %.3f | %.3f |\n", s, t.Count, t.ErrorCount, t.LatencyP50, t.LatencyP95, t.LatencyMax)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Markdown renders the exploration as a table of candidates.
func (r *ExploreReport) Markdown() string {
	var b strings.Builder
	e := r.Explore
	fmt.Fprintf(&b, "# Configuration search\n\n")
	fmt.Fprintf(&b, "- **Document:** %s\n- **Page:** %d\n- **Target:** %s\n- **Best:** %s\n\n", e.Document, e.Page+1, e.Target, e.Best)
	b.WriteString("| Config | Hebrew | Greek | Chars | Score | Sample |\n|---|---|---|---|---|---|\n")
	for _, y := range e.Results {
		sample := y.Sample
		if y.Error != "" {
			sample = "error: " + y.Error
		}
		label := y.Label
		if y.Label == e.Best {
			label = "**" + label + "**"
		}
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %.0f | %s |\n", label, y.HebrewCount, y.GreekCount, y.TotalChars, y.Score, escape(sample))
	}
	return b.String()
}

// escape keeps cell text from breaking a table row.
func escape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
