package script

import "strings"

// ExtractHebrew returns the Hebrew runs of text, space-joined. Presentation
// forms are included.
func ExtractHebrew(text string) string {
	return strings.Join(Runs(text, HebrewExtended), " ")
}

// ExtractGreek returns the Greek runs of text, space-joined.
func ExtractGreek(text string) string {
	return strings.Join(Runs(text, GreekBlock), " ")
}

// ExtractAramaic returns Hebrew and Imperial Aramaic runs, space-joined, but
// only when Imperial Aramaic code points are present. Hebrew script on its
// own is treated as Hebrew and yields "".
func ExtractAramaic(text string) string {
	imperial := Runs(text, ImperialAramaicBlock)
	if len(imperial) == 0 {
		return ""
	}
	return strings.Join(append(Runs(text, HebrewBlock), imperial...), " ")
}

// Pattern returns the code-point ranges used to extract lang's script.
// Aramaic shares the Hebrew script; Unknown yields nil.
func Pattern(lang Language) Ranges {
	switch lang {
	case Hebrew, Aramaic:
		return HebrewExtended
	case Greek:
		return GreekBlock
	}
	return nil
}

// Extract returns the runs of every script found in text, keyed by the
// language each script is normally read as. Languages with no runs are
// omitted.
func Extract(text string) map[Language][]string {
	out := make(map[Language][]string, 3)
	if runs := Runs(text, HebrewExtended); len(runs) > 0 {
		out[Hebrew] = runs
	}
	if runs := Runs(text, GreekBlock); len(runs) > 0 {
		out[Greek] = runs
	}
	if runs := Runs(text, ImperialAramaicBlock); len(runs) > 0 {
		out[Aramaic] = runs
	}
	return out
}
