// Package metrics records per-page timing and outcome for a run.
package metrics

import (
	"fmt"
	"time"
)

// Metric is a single recorded pipeline step for one page.
type Metric struct {
	// Attribution
	RunID   string `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Stage   string `json:"stage" yaml:"stage"`                           // render, preprocess, recognize
	ItemKey string `json:"item_key,omitempty" yaml:"item_key,omitempty"` // e.g. "page_0001"
	Engine  string `json:"engine,omitempty" yaml:"engine,omitempty"`

	// Output
	Chars int `json:"chars,omitempty" yaml:"chars,omitempty"`

	// Timing
	Seconds float64 `json:"seconds" yaml:"seconds"`

	// Status
	Success   bool   `json:"success" yaml:"success"`
	ErrorType string `json:"error_type,omitempty" yaml:"error_type,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// ItemKey formats a 0-based page index as a 1-based item key.
func ItemKey(page int) string {
	return fmt.Sprintf("page_%04d", page+1)
}
