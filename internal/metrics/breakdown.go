package metrics

// ErrorsByStage counts failed steps per stage.
func (r *Recorder) ErrorsByStage() map[string]int {
	out := make(map[string]int)
	for _, m := range r.List(Filter{}) {
		if !m.Success {
			out[m.Stage]++
		}
	}
	return out
}

// ErrorsByType counts failed steps per error type.
func (r *Recorder) ErrorsByType() map[string]int {
	out := make(map[string]int)
	for _, m := range r.List(Filter{}) {
		if !m.Success && m.ErrorType != "" {
			out[m.ErrorType]++
		}
	}
	return out
}

// CharsByEngine totals recognized characters per engine.
func (r *Recorder) CharsByEngine() map[string]int {
	out := make(map[string]int)
	for _, m := range r.List(Filter{Stage: "recognize"}) {
		if m.Success {
			out[m.Engine] += m.Chars
		}
	}
	return out
}
