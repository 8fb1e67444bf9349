package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/jackzampolin/scriptscan/internal/explore"
	"github.com/jackzampolin/scriptscan/internal/locate"
	"github.com/jackzampolin/scriptscan/internal/metrics"
	"github.com/jackzampolin/scriptscan/internal/pipeline"
	"github.com/jackzampolin/scriptscan/internal/script"
	"github.com/jackzampolin/scriptscan/internal/verify"
)

func sampleReport() *Report {
	meta := NewMetadata("bhs.pdf")
	meta.Engine = "mock"
	meta.Language = "heb"
	meta.Config = pipeline.DefaultOCRConfig()
	r := New(meta)

	r.AddExtraction(&pipeline.Result{
		Pages: []*pipeline.PageResult{{
			PageIndex: 4,
			RawText:   "Genesis 1:1 בְּרֵאשִׁית בָּרָא | 1:3 יְהִי אוֹר",
			ScriptSegments: map[script.Language][]string{
				script.Hebrew: {"בְּרֵאשִׁית", "בָּרָא", "יְהִי", "אוֹר"},
			},
			VerseRefs: []string{"1:1", "1:3"},
		}},
		Failures:           []pipeline.Failure{{Page: 5, Stage: pipeline.StageRender, Error: "boom"}},
		PagesProcessed:     1,
		SegmentsByLanguage: map[script.Language]int{script.Hebrew: 4},
		SegmentsTotal:      4,
	})
	r.AddLocator(locate.Locate([]string{"Genesis", "1:1", "בְּרֵאשִׁית בָּרָא"}, locate.Config{}))
	r.AddAccuracy(&verify.Report{
		Script:          script.Hebrew,
		Records:         []verify.Record{{VerseKey: "genesis-1-1", Found: true, Similarity: 1, MatchedFragment: "בראשית"}},
		AverageAccuracy: 1,
		VersesFound:     1,
		Status:          verify.Good,
	})
	rec := metrics.NewRecorder(meta.RunID)
	rec.RecordStep(metrics.RecordOpts{Stage: "render", ItemKey: metrics.ItemKey(4)}, 0, 0)
	r.AddTiming(rec)
	return r
}

func TestNewMetadata(t *testing.T) {
	m := NewMetadata("doc.pdf")
	if _, err := uuid.Parse(m.RunID); err != nil {
		t.Errorf("run id %q is not a uuid: %v", m.RunID, err)
	}
	if m.GeneratedAt.IsZero() || m.Document != "doc.pdf" {
		t.Errorf("unexpected metadata: %+v", m)
	}
	if NewMetadata("doc.pdf").RunID == m.RunID {
		t.Error("run ids should be unique")
	}
}

func TestValidateKnown(t *testing.T) {
	got := ValidateKnown("בראשית ברא אלהים ויאמר אלהים יהי אור", "Ἐν ἀρχῇ ἦν ὁ λόγος")
	want := map[string]bool{
		"hebrew_genesis-1-1": true,
		"hebrew_genesis-1-3": true,
		"hebrew_psalms-23-1": false,
		"greek_john-1-1":     true,
		"greek_john-3-16":    false,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d validations, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}

func TestAddExtraction(t *testing.T) {
	r := sampleReport()
	if r.PagesProcessed != 1 || r.SegmentsTotal != 4 {
		t.Errorf("counts = %d pages, %d segments", r.PagesProcessed, r.SegmentsTotal)
	}
	if len(r.Pages) != 1 || r.Pages[0].Segments[script.Hebrew] != 4 || r.Pages[0].Page != 4 {
		t.Errorf("pages = %+v", r.Pages)
	}
	if len(r.Failures) != 1 {
		t.Errorf("failures = %+v", r.Failures)
	}
	if !r.Validations["hebrew_genesis-1-1"] || !r.Validations["hebrew_genesis-1-3"] {
		t.Errorf("validations = %v", r.Validations)
	}
	if r.Locator == nil || r.Locator.Verses != 1 {
		t.Errorf("locator = %+v", r.Locator)
	}
	if len(r.Verses) != 1 || r.Verses[0].Key != "genesis-1-1" {
		t.Errorf("verses = %+v", r.Verses)
	}
	if r.Timing["render"] == nil {
		t.Error("timing missing render stage")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatYAML, false},
		{"yaml", FormatYAML, false},
		{"json", FormatJSON, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"html", FormatHTML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWrite(t *testing.T) {
	r := sampleReport()

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(&buf, FormatJSON, r); err != nil {
			t.Fatal(err)
		}
		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		for _, key := range []string{"metadata", "pages", "failures", "accuracy", "validations", "verses"} {
			if _, ok := decoded[key]; !ok {
				t.Errorf("json missing %q", key)
			}
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(&buf, FormatYAML, r); err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"run_id:", "pages_processed: 1", "unattributed_lines:", "average_accuracy: 1"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("yaml missing %q", want)
			}
		}
	})

	t.Run("markdown", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(&buf, FormatMarkdown, r); err != nil {
			t.Fatal(err)
		}
		out := buf.String()
		for _, want := range []string{"# Scripture OCR report", "| 5 | ", "| 6 | render | boom |", "genesis-1-1", "Average accuracy **1.00** (good)"} {
			if !strings.Contains(out, want) {
				t.Errorf("markdown missing %q", want)
			}
		}
		if strings.Contains(out, "בָּרָא | 1:3") {
			t.Error("pipes in cell text must be escaped")
		}
	})

	t.Run("html", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(&buf, FormatHTML, r); err != nil {
			t.Fatal(err)
		}
		out := buf.String()
		for _, want := range []string{"<!DOCTYPE html>", "<h1>Scripture OCR report</h1>", "<table>", "</html>"} {
			if !strings.Contains(out, want) {
				t.Errorf("html missing %q", want)
			}
		}
	})

	t.Run("markdown needs Markdowner", func(t *testing.T) {
		if err := Write(&bytes.Buffer{}, FormatMarkdown, map[string]int{"a": 1}); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestExploreMarkdown(t *testing.T) {
	er := &ExploreReport{
		Metadata: NewMetadata("bhs.pdf"),
		Explore: &explore.Report{
			Document: "bhs.pdf",
			Page:     0,
			Target:   script.Hebrew,
			Best:     "psm11",
			Results: []explore.Yield{
				{Label: "default", HebrewCount: 2, Score: 2, Sample: "בראשית ברא"},
				{Label: "psm11", HebrewCount: 5, Score: 5},
				{Label: "psm3", Error: "recognition failed"},
			},
		},
	}
	out := er.Markdown()
	for _, want := range []string{"**Best:** psm11", "| **psm11** | 5 |", "error: recognition failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}
