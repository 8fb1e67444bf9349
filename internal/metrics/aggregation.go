package metrics

import (
	"sort"
	"time"
)

// Summary provides a summary of metrics for a filter.
type Summary struct {
	Count          int           `json:"count" yaml:"count"`
	SuccessCount   int           `json:"success_count" yaml:"success_count"`
	ErrorCount     int           `json:"error_count" yaml:"error_count"`
	TotalChars     int           `json:"total_chars" yaml:"total_chars"`
	TotalTime      time.Duration `json:"total_time" yaml:"total_time"`
	AvgTimeSeconds float64       `json:"avg_time_seconds" yaml:"avg_time_seconds"`
}

// GetSummary returns a summary of metrics matching the filter.
func (r *Recorder) GetSummary(f Filter) *Summary {
	metrics := r.List(f)
	s := &Summary{Count: len(metrics)}
	for _, m := range metrics {
		s.TotalChars += m.Chars
		s.TotalTime += time.Duration(m.Seconds * float64(time.Second))
		if m.Success {
			s.SuccessCount++
		} else {
			s.ErrorCount++
		}
	}
	if s.Count > 0 {
		s.AvgTimeSeconds = s.TotalTime.Seconds() / float64(s.Count)
	}
	return s
}

// DetailedStats adds latency percentiles to the summary counts.
type DetailedStats struct {
	Count        int `json:"count" yaml:"count"`
	SuccessCount int `json:"success_count" yaml:"success_count"`
	ErrorCount   int `json:"error_count" yaml:"error_count"`

	// Latency percentiles (seconds)
	LatencyP50 float64 `json:"latency_p50" yaml:"latency_p50"`
	LatencyP95 float64 `json:"latency_p95" yaml:"latency_p95"`
	LatencyP99 float64 `json:"latency_p99" yaml:"latency_p99"`
	LatencyAvg float64 `json:"latency_avg" yaml:"latency_avg"`
	LatencyMin float64 `json:"latency_min" yaml:"latency_min"`
	LatencyMax float64 `json:"latency_max" yaml:"latency_max"`
}

// GetDetailedStats returns detailed statistics for metrics matching f.
func (r *Recorder) GetDetailedStats(f Filter) *DetailedStats {
	return detailedStats(r.List(f))
}

// StageDetailedStats returns detailed stats grouped by stage.
func (r *Recorder) StageDetailedStats() map[string]*DetailedStats {
	byStage := make(map[string][]Metric)
	for _, m := range r.List(Filter{}) {
		if m.Stage != "" {
			byStage[m.Stage] = append(byStage[m.Stage], m)
		}
	}
	result := make(map[string]*DetailedStats, len(byStage))
	for stage, ms := range byStage {
		result[stage] = detailedStats(ms)
	}
	return result
}

func detailedStats(metrics []Metric) *DetailedStats {
	stats := &DetailedStats{Count: len(metrics)}
	if len(metrics) == 0 {
		return stats
	}

	var latencies []float64
	for _, m := range metrics {
		if m.Success {
			stats.SuccessCount++
		} else {
			stats.ErrorCount++
		}
		if m.Seconds > 0 {
			latencies = append(latencies, m.Seconds)
		}
	}

	if len(latencies) > 0 {
		sort.Float64s(latencies)
		stats.LatencyMin = latencies[0]
		stats.LatencyMax = latencies[len(latencies)-1]
		var sum float64
		for _, l := range latencies {
			sum += l
		}
		stats.LatencyAvg = sum / float64(len(latencies))
		stats.LatencyP50 = percentile(latencies, 50)
		stats.LatencyP95 = percentile(latencies, 95)
		stats.LatencyP99 = percentile(latencies, 99)
	}
	return stats
}

// percentile calculates the p-th percentile from a sorted slice of values.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	n := float64(len(sorted))
	idx := (p / 100.0) * (n - 1)

	lower := int(idx)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := idx - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
