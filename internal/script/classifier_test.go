package script

import (
	"reflect"
	"testing"
)

func TestClassifyHebrewOnly(t *testing.T) {
	c := Default()
	tests := []string{
		"בְּרֵאשִׁית בָּרָא אֱלֹהִים",
		"שמע ישראל",
		"וַיֹּאמֶר",
	}
	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			span := c.Classify(text, Hints{})
			if span.Language != Hebrew {
				t.Errorf("language = %s, want hebrew (rule %s)", span.Language, span.Rule)
			}
			if span.Confidence != 1.0 {
				t.Errorf("confidence = %v, want 1.0", span.Confidence)
			}
			if span.IsKnownPassage {
				t.Error("expected is_known_passage=false without hints")
			}
		})
	}
}

func TestClassifyKnownPassage(t *testing.T) {
	c := Default()
	span := c.Classify("מַלְכָּא לְעָלְמִין חֱיִי", Hints{Book: "daniel", Chapter: 2, Verse: 4})

	if !span.IsKnownPassage {
		t.Fatal("expected Daniel 2:4 to be a known passage")
	}
	if span.Language != Aramaic {
		t.Errorf("language = %s, want aramaic", span.Language)
	}
	if span.Confidence != 0.95 {
		t.Errorf("confidence = %v, want 0.95", span.Confidence)
	}
	if span.AramaicCount != span.HebrewCount {
		t.Errorf("aramaic_count = %d, want %d", span.AramaicCount, span.HebrewCount)
	}
	if span.Rule != "known-passage" {
		t.Errorf("rule = %q", span.Rule)
	}
}

func TestClassifyKnownPassageNeedsHebrew(t *testing.T) {
	c := Default()
	span := c.Classify("Ἐν ἀρχῇ ἦν ὁ λόγος", Hints{Book: "daniel", Chapter: 3, Verse: 1})
	if !span.IsKnownPassage {
		t.Fatal("expected Daniel 3:1 to be a known passage")
	}
	if span.Language != Greek {
		t.Errorf("language = %s, want greek", span.Language)
	}
}

func TestIsKnownPassage(t *testing.T) {
	c := Default()
	tests := []struct {
		book    string
		chapter int
		verse   int
		want    bool
	}{
		{"ezra", 4, 8, true},
		{"ezra", 4, 7, false},
		{"ezra", 4, 24, true},
		{"ezra", 6, 18, true},
		{"ezra", 6, 19, false},
		{"ezra", 7, 11, false},
		{"ezra", 7, 26, true},
		{"genesis", 31, 47, true},
		{"genesis", 31, 46, false},
		{"jeremiah", 10, 11, true},
		{"jeremiah", 10, 12, false},
		{"daniel", 2, 3, false},
		{"daniel", 2, 4, true},
		{"daniel", 5, 1, true},
		{"daniel", 7, 28, true},
		{"daniel", 8, 1, false},
		{"Daniel", 2, 4, true},
		{"Dan", 3, 1, true},
		{"psalms", 23, 1, false},
		{"enoch", 1, 1, false},
	}
	for _, tt := range tests {
		got := c.IsKnownPassage(tt.book, tt.chapter, tt.verse)
		if got != tt.want {
			t.Errorf("IsKnownPassage(%q, %d, %d) = %v, want %v", tt.book, tt.chapter, tt.verse, got, tt.want)
		}
	}
}

func TestClassifyVocabulary(t *testing.T) {
	c := Default()
	span := c.Classify("די מלכא כען", Hints{})

	if len(span.MatchedVocabulary) != 3 {
		t.Fatalf("matched vocabulary = %v, want 3 words", span.MatchedVocabulary)
	}
	if span.Language != Aramaic {
		t.Errorf("language = %s, want aramaic", span.Language)
	}
	if span.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", span.Confidence)
	}
	if span.Rule != "aramaic-vocabulary" {
		t.Errorf("rule = %q", span.Rule)
	}
}

func TestClassifySingleVocabularyWordStaysHebrew(t *testing.T) {
	c := Default()
	span := c.Classify("מלכא שמע", Hints{})
	if span.Language != Hebrew {
		t.Errorf("language = %s, want hebrew", span.Language)
	}
	if len(span.MatchedVocabulary) != 1 {
		t.Errorf("matched vocabulary = %v", span.MatchedVocabulary)
	}
}

func TestClassifyImperialAramaic(t *testing.T) {
	c := Default()
	// two Hebrew runs, one Imperial Aramaic run, one Greek run
	text := "שלום עולם \U00010840\U00010841 λόγος"
	span := c.Classify(text, Hints{})

	if span.Language != Aramaic {
		t.Fatalf("language = %s, want aramaic", span.Language)
	}
	if span.AramaicCount != 3 {
		t.Errorf("aramaic_count = %d, want 3", span.AramaicCount)
	}
	if span.Confidence != 0.75 {
		t.Errorf("confidence = %v, want 0.75", span.Confidence)
	}
}

func TestClassifyMixed(t *testing.T) {
	c := Default()
	span := c.Classify("שמע λόγος ἦν", Hints{})
	if span.Language != Hebrew {
		t.Fatalf("language = %s, want hebrew", span.Language)
	}
	if want := 1.0 / 3.0; span.Confidence != want {
		t.Errorf("confidence = %v, want %v", span.Confidence, want)
	}

	span = c.Classify("Ἐν ἀρχῇ ἦν ὁ λόγος", Hints{})
	if span.Language != Greek || span.Confidence != 1.0 {
		t.Errorf("got %s/%v, want greek/1.0", span.Language, span.Confidence)
	}
	if span.GreekCount != 5 {
		t.Errorf("greek_count = %d, want 5", span.GreekCount)
	}
}

func TestClassifyDegenerate(t *testing.T) {
	c := Default()
	for _, text := range []string{"", "   ", "In the beginning", "12:34", "\xff\xfe"} {
		span := c.Classify(text, Hints{Book: "daniel", Chapter: 2, Verse: 4})
		if span.Language != Unknown {
			t.Errorf("Classify(%q) language = %s, want unknown", text, span.Language)
		}
		if span.Confidence != 0 || span.HebrewCount != 0 || span.GreekCount != 0 || span.AramaicCount != 0 {
			t.Errorf("Classify(%q) = %+v, want zero counters", text, span)
		}
	}
}

func TestClassifyIdempotent(t *testing.T) {
	c := Default()
	inputs := []struct {
		text  string
		hints Hints
	}{
		{"מַלְכָּא לְעָלְמִין חֱיִי", Hints{Book: "daniel", Chapter: 2, Verse: 4}},
		{"די מלכא כען אלה", Hints{}},
		{"Ἐν ἀρχῇ", Hints{}},
		{"", Hints{}},
	}
	for _, in := range inputs {
		a := c.Classify(in.text, in.hints)
		b := c.Classify(in.text, in.hints)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("Classify(%q) not idempotent:\n%+v\n%+v", in.text, a, b)
		}
	}
}

func TestCustomRules(t *testing.T) {
	c := NewClassifier(DefaultTables(), WithRules([]Rule{
		{
			Name: "always-greek",
			When: func(Evidence) bool { return true },
			Then: func(Evidence) Outcome { return Outcome{Language: Greek, Confidence: 0.5} },
		},
	}))
	span := c.Classify("שמע", Hints{})
	if span.Language != Greek || span.Rule != "always-greek" {
		t.Errorf("got %s via %q", span.Language, span.Rule)
	}
	if got := c.Rules(); !reflect.DeepEqual(got, []string{"always-greek"}) {
		t.Errorf("Rules() = %v", got)
	}
}

func TestDefaultRuleOrder(t *testing.T) {
	want := []string{"known-passage", "imperial-aramaic", "aramaic-vocabulary", "hebrew", "greek"}
	if got := Default().Rules(); !reflect.DeepEqual(got, want) {
		t.Errorf("Rules() = %v, want %v", got, want)
	}
}
