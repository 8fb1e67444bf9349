package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackzampolin/scriptscan/internal/document"
	"github.com/jackzampolin/scriptscan/internal/engine"
	"github.com/jackzampolin/scriptscan/internal/locate"
	"github.com/jackzampolin/scriptscan/internal/metrics"
	"github.com/jackzampolin/scriptscan/internal/script"
	"github.com/jackzampolin/scriptscan/internal/testutil"
)

var _ document.Source = (*testutil.Pages)(nil)

const pageText = "Genesis 1:1\nבראשית ברא אלהים\nJohn 1.1 Ἐν ἀρχῇ ἦν ὁ λόγος"

func TestVerseRefs(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"", nil},
		{"Genesis 1:1", []string{"1:1"}},
		{"1:1 and 2.4 then 10:12", []string{"1:1", "2:4", "10:12"}},
		{"no refs here", nil},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := VerseRefs(tt.text)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("VerseRefs(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestOCRConfig(t *testing.T) {
	c := DefaultOCRConfig()
	if c.DPI != 300 || c.Contrast != 1.5 || !c.Sharpen || !c.Denoise || c.Binarize || c.PSM != 6 || c.OEM != 3 {
		t.Errorf("unexpected default config: %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	s := c.Settings()
	if s.PSM != 6 || s.OEM != 3 || s.DPI != 300 {
		t.Errorf("settings = %+v", s)
	}
	p := c.Preprocess()
	if p.Contrast != 1.5 || !p.Sharpen || !p.Denoise || p.Binarize {
		t.Errorf("preprocess = %+v", p)
	}

	bad := []OCRConfig{
		{DPI: 0, PSM: 6, OEM: 3},
		{DPI: 300, Contrast: -1, PSM: 6, OEM: 3},
		{DPI: 300, PSM: 14, OEM: 3},
		{DPI: 300, PSM: 6, OEM: 4},
	}
	for _, b := range bad {
		if err := b.Validate(); err == nil {
			t.Errorf("expected %+v to be invalid", b)
		}
	}
}

func TestProcessPage(t *testing.T) {
	src := &testutil.Pages{Count: 1}
	eng := engine.NewMockEngine(pageText)
	rec := metrics.NewRecorder("test")

	res, err := ProcessPage(context.Background(), PageJob{
		Source:   src,
		Engine:   eng,
		Page:     0,
		Language: "heb+grc",
		Config:   DefaultOCRConfig(),
		Metrics:  rec,
	})
	if err != nil {
		t.Fatalf("ProcessPage failed: %v", err)
	}
	if res.RawText != pageText {
		t.Errorf("raw text = %q", res.RawText)
	}
	if got := len(res.ScriptSegments[script.Hebrew]); got != 3 {
		t.Errorf("expected 3 hebrew segments, got %d", got)
	}
	if got := len(res.ScriptSegments[script.Greek]); got != 5 {
		t.Errorf("expected 5 greek segments, got %d", got)
	}
	if _, ok := res.ScriptSegments[script.Aramaic]; ok {
		t.Error("unexpected aramaic segments")
	}
	if strings.Join(res.VerseRefs, ",") != "1:1,1:1" {
		t.Errorf("verse refs = %v", res.VerseRefs)
	}

	calls := eng.Calls()
	if len(calls) != 1 || calls[0].Language != "heb+grc" || calls[0].Settings.PSM != 6 {
		t.Errorf("unexpected engine calls: %+v", calls)
	}
	if calls[0].ImageBytes == 0 {
		t.Error("engine received an empty image")
	}

	stats := rec.StageDetailedStats()
	for _, stage := range []Stage{StageRender, StagePreprocess, StageRecognize} {
		if stats[string(stage)] == nil || stats[string(stage)].SuccessCount != 1 {
			t.Errorf("stage %s not recorded: %+v", stage, stats[string(stage)])
		}
	}
}

func TestProcessPageRenderFailure(t *testing.T) {
	src := &testutil.Pages{Count: 1, Fail: map[int]bool{0: true}}
	eng := engine.NewMockEngine(pageText)

	_, err := ProcessPage(context.Background(), PageJob{Source: src, Engine: eng, Config: DefaultOCRConfig()})
	var pe *PageError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *PageError, got %v", err)
	}
	if pe.Stage != StageRender || pe.Page != 0 {
		t.Errorf("unexpected page error: %+v", pe)
	}
	if eng.RequestCount() != 0 {
		t.Error("engine should not be called after a render failure")
	}
}

func TestRun(t *testing.T) {
	src := &testutil.Pages{Count: 6, Fail: map[int]bool{2: true}}
	eng := engine.NewMockEngine(pageText)
	rec := metrics.NewRecorder("run")

	result, err := Run(context.Background(), Request{
		Source:   src,
		Engine:   eng,
		Language: "heb",
		Config:   DefaultOCRConfig(),
		Start:    1,
		Pages:    4,
		Workers:  3,
		Metrics:  rec,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.PagesProcessed != 3 {
		t.Errorf("expected 3 pages processed, got %d", result.PagesProcessed)
	}
	var indexes []int
	for _, p := range result.Pages {
		indexes = append(indexes, p.PageIndex)
	}
	if fmt.Sprint(indexes) != "[1 3 4]" {
		t.Errorf("pages = %v, want [1 3 4]", indexes)
	}
	if len(result.Failures) != 1 || result.Failures[0].Page != 2 || result.Failures[0].Stage != StageRender {
		t.Errorf("failures = %+v", result.Failures)
	}
	if result.SegmentsByLanguage[script.Hebrew] != 9 || result.SegmentsByLanguage[script.Greek] != 15 {
		t.Errorf("segments by language = %v", result.SegmentsByLanguage)
	}
	if result.SegmentsTotal != 24 {
		t.Errorf("segments total = %d", result.SegmentsTotal)
	}
	if got := len(result.Segments(script.Hebrew)); got != 9 {
		t.Errorf("Segments(hebrew) = %d", got)
	}
	if got := src.Renders(); got != 4 {
		t.Errorf("expected 4 renders, got %d", got)
	}
	if got := rec.ErrorsByStage()[string(StageRender)]; got != 1 {
		t.Errorf("expected 1 render error recorded, got %d", got)
	}
}

func TestResultLocatorPages(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   []locate.Page
	}{
		{
			name: "failed page between successes",
			result: Result{
				Pages:    []*PageResult{{PageIndex: 1, RawText: "a"}, {PageIndex: 3, RawText: "c"}},
				Failures: []Failure{{Page: 2, Stage: StageRender, Error: "boom"}},
			},
			want: []locate.Page{{Index: 1, Text: "a"}, {Index: 2, Missing: true}, {Index: 3, Text: "c"}},
		},
		{
			name: "failure recorded once per page",
			result: Result{
				Failures: []Failure{{Page: 0, Stage: StageRender}, {Page: 0, Stage: StageRecognize}},
			},
			want: []locate.Page{{Index: 0, Missing: true}},
		},
		{
			name:   "empty",
			result: Result{},
			want:   []locate.Page{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.result.LocatorPages()
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRunAllPages(t *testing.T) {
	src := &testutil.Pages{Count: 3}
	result, err := Run(context.Background(), Request{
		Source: src,
		Engine: engine.NewMockEngine(""),
		Config: DefaultOCRConfig(),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.PagesProcessed != 3 {
		t.Errorf("expected 3 pages, got %d", result.PagesProcessed)
	}
	// Empty recognition output is "no text found", not a failure.
	if len(result.Failures) != 0 || result.SegmentsTotal != 0 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestRunRecognitionTimeout(t *testing.T) {
	src := &testutil.Pages{Count: 2}
	eng := engine.NewMockEngine(pageText)
	eng.Latency = time.Second

	result, err := Run(context.Background(), Request{
		Source:      src,
		Engine:      eng,
		Config:      DefaultOCRConfig(),
		PageTimeout: 20 * time.Millisecond,
		Retries:     1,
		RetryDelay:  time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.PagesProcessed != 0 || len(result.Failures) != 2 {
		t.Fatalf("expected 2 failures, got %+v", result)
	}
	for _, f := range result.Failures {
		if f.Stage != StageRecognize {
			t.Errorf("expected recognize failure, got %+v", f)
		}
	}
	if got := eng.RequestCount(); got != 4 {
		t.Errorf("expected 4 attempts (2 pages x 2), got %d", got)
	}
}

func TestRunRetriesFlakyEngine(t *testing.T) {
	src := &testutil.Pages{Count: 1}
	var calls atomic.Int64
	eng := &engine.MockEngine{
		Respond: func(image []byte, lang string, s engine.Settings) (string, error) {
			if calls.Add(1) == 1 {
				return "", fmt.Errorf("%w: transient", engine.ErrRecognition)
			}
			return pageText, nil
		},
	}

	result, err := Run(context.Background(), Request{
		Source:     src,
		Engine:     eng,
		Config:     DefaultOCRConfig(),
		Retries:    2,
		RetryDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.PagesProcessed != 1 || len(result.Failures) != 0 {
		t.Errorf("expected the retry to succeed, got %+v", result)
	}
}

func TestRunInvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want error
	}{
		{"no source", Request{Engine: engine.NewMockEngine(""), Config: DefaultOCRConfig()}, ErrInvalidRequest},
		{"no engine", Request{Source: &testutil.Pages{Count: 1}, Config: DefaultOCRConfig()}, ErrInvalidRequest},
		{"bad config", Request{Source: &testutil.Pages{Count: 1}, Engine: engine.NewMockEngine("")}, ErrInvalidRequest},
		{"start past end", Request{Source: &testutil.Pages{Count: 2}, Engine: engine.NewMockEngine(""), Config: DefaultOCRConfig(), Start: 2}, document.ErrPageOutOfRange},
		{"negative start", Request{Source: &testutil.Pages{Count: 2}, Engine: engine.NewMockEngine(""), Config: DefaultOCRConfig(), Start: -1}, document.ErrPageOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Run(ctx, Request{
		Source: &testutil.Pages{Count: 3},
		Engine: engine.NewMockEngine(pageText),
		Config: DefaultOCRConfig(),
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.PagesProcessed != 0 {
		t.Errorf("expected an empty partial result, got %+v", result)
	}
}
