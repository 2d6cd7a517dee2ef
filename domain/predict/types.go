package predict

import "strings"

// Result is a validated prediction payload.
type Result struct {
	Label      string
	Confidence float64
	IsHealthy  bool
	// Recommendations are in display order; nil when the service sent none.
	Recommendations []string
	// Alternatives are the service's runner-up classes, best first.
	Alternatives []Candidate
}

// Candidate is one ranked class from the service.
type Candidate struct {
	Label      string
	Confidence float64
}

// LooksHealthy is the service's own labelling rule, used when a response
// omits isHealthy.
func LooksHealthy(label string) bool {
	l := strings.ToLower(label)
	return strings.Contains(l, "healthy") || strings.Contains(l, "normal")
}
