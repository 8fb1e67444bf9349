package script

import "unicode/utf8"

// Range is an inclusive span of code points.
type Range struct {
	Lo, Hi rune
}

// Ranges is a set of code-point spans that together define one script.
type Ranges []Range

// Contains reports whether r falls inside any span.
func (rs Ranges) Contains(r rune) bool {
	for _, rg := range rs {
		if r >= rg.Lo && r <= rg.Hi {
			return true
		}
	}
	return false
}

// Script block definitions.
var (
	// HebrewBlock is the base Hebrew block, used by the classifier.
	HebrewBlock = Ranges{{0x0590, 0x05FF}}
	// HebrewExtended adds the alphabetic presentation forms that OCR engines
	// emit for precomposed pointed letters.
	HebrewExtended = Ranges{{0x0590, 0x05FF}, {0xFB1D, 0xFB4F}}
	// GreekBlock covers Greek and Coptic plus Greek Extended (polytonic).
	GreekBlock = Ranges{{0x0370, 0x03FF}, {0x1F00, 0x1FFF}}
	// ImperialAramaicBlock is the Imperial Aramaic block.
	ImperialAramaicBlock = Ranges{{0x10840, 0x1085F}}
)

// Runs returns the maximal contiguous runs of text whose code points all
// fall inside rs, in order of appearance. Invalid UTF-8 bytes break runs.
func Runs(text string, rs Ranges) []string {
	var (
		runs  []string
		start = -1
	)
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		in := !(r == utf8.RuneError && size == 1) && rs.Contains(r)
		switch {
		case in && start < 0:
			start = i
		case !in && start >= 0:
			runs = append(runs, text[start:i])
			start = -1
		}
		i += size
	}
	if start >= 0 {
		runs = append(runs, text[start:])
	}
	return runs
}

// CountRuns returns the number of maximal runs of rs in text.
func CountRuns(text string, rs Ranges) int {
	n := 0
	inRun := false
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		in := !(r == utf8.RuneError && size == 1) && rs.Contains(r)
		if in && !inRun {
			n++
		}
		inRun = in
		i += size
	}
	return n
}
