// Package explain turns scored retrieval candidates into human-facing
// recommendation cards, confidence labels, and fallback guidance.
//
// The numeric score binning here is a presentation concern layered on top of
// the engine's [0,1] score; it is not part of the engine contract.
package explain

import (
	"math"

	"github.com/roadwise-ai/intervener/internal/kb"
	"github.com/roadwise-ai/intervener/internal/retrieval"
)

// ConfidenceLabel is the qualitative bin for a numeric score.
type ConfidenceLabel string

const (
	ConfidenceVeryHigh ConfidenceLabel = "Very High"
	ConfidenceHigh     ConfidenceLabel = "High"
	ConfidenceMedium   ConfidenceLabel = "Medium"
	ConfidenceLow      ConfidenceLabel = "Low"
)

// Binning thresholds. The lowest bin starts at the engine's default
// confidence floor so "Low" always means "would have fallen back".
const (
	veryHighFloor = 0.85
	highFloor     = 0.60
	mediumFloor   = retrieval.DefaultMinScore
)

// Label bins a numeric score into a qualitative confidence label.
func Label(score float64) ConfidenceLabel {
	switch {
	case score >= veryHighFloor:
		return ConfidenceVeryHigh
	case score >= highFloor:
		return ConfidenceHigh
	case score >= mediumFloor:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Recommendation is one explainable recommendation card.
type Recommendation struct {
	ID           int             `json:"id"`
	Intervention string          `json:"intervention"`
	Reference    string          `json:"reference"`
	Rationale    string          `json:"rationale"`
	Assumptions  string          `json:"assumptions"`
	Priority     string          `json:"priority"`
	RelevancePct float64         `json:"relevance_score"`
	Confidence   ConfidenceLabel `json:"confidence"`
}

// FormatRecommendation builds a recommendation card from a record and its
// score.
func FormatRecommendation(rec kb.Record, score float64) Recommendation {
	return Recommendation{
		ID:           rec.ID,
		Intervention: rec.Intervention,
		Reference:    rec.Reference,
		Rationale:    rec.Rationale,
		Assumptions:  rec.Assumptions,
		Priority:     string(rec.Priority),
		RelevancePct: math.Round(score*1000) / 10,
		Confidence:   Label(score),
	}
}

// FormatResult builds cards for every candidate in a result.
func FormatResult(result *retrieval.Result) []Recommendation {
	cards := make([]Recommendation, 0, len(result.Candidates))
	for _, c := range result.Candidates {
		cards = append(cards, FormatRecommendation(c.Record, c.Score))
	}
	return cards
}

// FallbackResponse is the caller-facing payload when no candidate clears the
// confidence floor.
type FallbackResponse struct {
	Status         string   `json:"status"`
	Query          string   `json:"query"`
	Message        string   `json:"message"`
	Suggestions    []string `json:"suggestions"`
	FallbackAction string   `json:"fallback_action"`
}

// Fallback builds generic guidance for an unconfident result.
func Fallback(query string) FallbackResponse {
	return FallbackResponse{
		Status:  "no_match",
		Query:   query,
		Message: "No direct IRC-aligned intervention found in knowledge base.",
		Suggestions: []string{
			"Refine your query with specific road type (urban/highway/rural)",
			"Add environment context (e.g., curve, school zone, intersection)",
			"Check for alternative terms related to the issue",
			"Contact administrators to expand knowledge base",
		},
		FallbackAction: "Please consult road safety engineers or refer to IRC SP:84 and IRC SP:87 for general guidance.",
	}
}
