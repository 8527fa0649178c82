package model

// Report holds the analysis outcome for a single compilation unit.
type Report struct {
	Source      Source
	Diagnostics []Diagnostic
}

// Failed reports whether the unit must not reach code generation.
// Every diagnostic at this layer is a hard error.
func (r Report) Failed() bool {
	return len(r.Diagnostics) > 0
}

// CountByCode tallies the report's diagnostics per code, for summary
// rendering.
func (r Report) CountByCode() map[Code]int {
	counts := make(map[Code]int, len(r.Diagnostics))

	for _, d := range r.Diagnostics {
		counts[d.Code]++
	}

	return counts
}
