package summary

import "encoding/json"

// Confidence labels.
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// FallbackSummary is used when no summary text can be derived from the input.
const FallbackSummary = "Document processed successfully"

// Result is the structured summary returned by both summarization paths.
type Result struct {
	ShortSummary         string   `json:"short_summary"`
	RelevanceToOfficials []string `json:"relevance_to_officials"`
	ActionItems          []string `json:"action_items"`
	ConfidenceEstimate   string   `json:"confidence_estimate"`
}

// ConfidenceFor maps the number of fired detectors to a confidence label.
func ConfidenceFor(fired int) string {
	switch {
	case fired >= 3:
		return ConfidenceHigh
	case fired >= 1:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// IsValidConfidence reports whether label is one of low, medium or high.
func IsValidConfidence(label string) bool {
	switch label {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	}
	return false
}

// MarshalJSON keeps empty lists as [] so consumers always see arrays.
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	out := plain(r)
	if out.RelevanceToOfficials == nil {
		out.RelevanceToOfficials = []string{}
	}
	if out.ActionItems == nil {
		out.ActionItems = []string{}
	}
	return json.Marshal(out)
}
