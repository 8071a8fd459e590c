package recommend

import "strings"

// Priority is a presentation-only triage level.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var (
	highKeywords = []string{"critical", "security", "high-severity"}
	lowKeywords  = []string{"add", "implement"}
)

// Classify derives a priority from recommendation text by keyword match.
// High keywords win over low ones; anything else is medium.
func Classify(text string) Priority {
	lower := strings.ToLower(text)
	for _, kw := range highKeywords {
		if strings.Contains(lower, kw) {
			return PriorityHigh
		}
	}
	for _, kw := range lowKeywords {
		if strings.Contains(lower, kw) {
			return PriorityLow
		}
	}
	return PriorityMedium
}

// Counts tallies recommendations per priority.
func Counts(recs []Recommendation) map[Priority]int {
	counts := make(map[Priority]int, 3)
	for _, r := range recs {
		counts[r.Priority]++
	}
	return counts
}
