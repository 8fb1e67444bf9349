package metrics

import (
	"sync"
	"time"
)

// Recorder collects metrics in memory for the lifetime of a run. It is safe
// for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	runID   string
	metrics []Metric
}

// NewRecorder creates a recorder that stamps every metric with runID.
func NewRecorder(runID string) *Recorder {
	return &Recorder{runID: runID}
}

// RecordOpts provides attribution for a recording.
type RecordOpts struct {
	Stage   string
	ItemKey string
	Engine  string
}

// Record stores a metric. A nil Recorder discards it.
func (r *Recorder) Record(m Metric) {
	if r == nil {
		return
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.RunID == "" {
		m.RunID = r.runID
	}
	r.metrics = append(r.metrics, m)
}

// RecordStep records a successful step.
func (r *Recorder) RecordStep(opts RecordOpts, duration time.Duration, chars int) {
	r.Record(Metric{
		Stage:   opts.Stage,
		ItemKey: opts.ItemKey,
		Engine:  opts.Engine,
		Chars:   chars,
		Seconds: duration.Seconds(),
		Success: true,
	})
}

// RecordError records a failed step.
func (r *Recorder) RecordError(opts RecordOpts, errorType string, duration time.Duration) {
	r.Record(Metric{
		Stage:     opts.Stage,
		ItemKey:   opts.ItemKey,
		Engine:    opts.Engine,
		Seconds:   duration.Seconds(),
		Success:   false,
		ErrorType: errorType,
	})
}

// Filter selects metrics. Empty fields match everything.
type Filter struct {
	Stage  string
	Engine string
}

func (f Filter) match(m Metric) bool {
	return (f.Stage == "" || m.Stage == f.Stage) && (f.Engine == "" || m.Engine == f.Engine)
}

// List returns the recorded metrics matching f, in recording order.
func (r *Recorder) List(f Filter) []Metric {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Metric
	for _, m := range r.metrics {
		if f.match(m) {
			out = append(out, m)
		}
	}
	return out
}
