package explain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roadwise-ai/intervener/internal/kb"
	"github.com/roadwise-ai/intervener/internal/retrieval"
)

func TestLabel_Binning(t *testing.T) {
	tests := []struct {
		score float64
		want  ConfidenceLabel
	}{
		{1.0, ConfidenceVeryHigh},
		{0.85, ConfidenceVeryHigh},
		{0.84, ConfidenceHigh},
		{0.60, ConfidenceHigh},
		{0.59, ConfidenceMedium},
		{0.30, ConfidenceMedium},
		{0.29, ConfidenceLow},
		{0.0, ConfidenceLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Label(tt.score), "score %v", tt.score)
	}
}

func TestFormatRecommendation(t *testing.T) {
	rec := kb.Record{
		ID:           4,
		Intervention: "Install chevron alignment markers",
		Reference:    "IRC 67",
		Rationale:    "Reduces vehicle speed at high-risk curves.",
		Assumptions:  "Material-only cost; excludes labor and taxes.",
		Priority:     kb.PriorityHigh,
	}

	card := FormatRecommendation(rec, 0.856)

	assert.Equal(t, 4, card.ID)
	assert.Equal(t, "Install chevron alignment markers", card.Intervention)
	assert.Equal(t, "IRC 67", card.Reference)
	assert.Equal(t, "High", card.Priority)
	// 0.856 rounds to one decimal of a percent.
	assert.Equal(t, 85.6, card.RelevancePct)
	assert.Equal(t, ConfidenceVeryHigh, card.Confidence)
}

func TestFormatResult_PreservesOrder(t *testing.T) {
	result := &retrieval.Result{
		Candidates: []retrieval.Candidate{
			{Record: kb.Record{ID: 1, Intervention: "First", Priority: kb.PriorityHigh}, Score: 0.9},
			{Record: kb.Record{ID: 2, Intervention: "Second", Priority: kb.PriorityLow}, Score: 0.4},
		},
		Confident: true,
	}

	cards := FormatResult(result)
	assert.Len(t, cards, 2)
	assert.Equal(t, 1, cards[0].ID)
	assert.Equal(t, ConfidenceVeryHigh, cards[0].Confidence)
	assert.Equal(t, 2, cards[1].ID)
	assert.Equal(t, ConfidenceMedium, cards[1].Confidence)
}

func TestFallback(t *testing.T) {
	fb := Fallback("hovercraft on the roundabout")

	assert.Equal(t, "no_match", fb.Status)
	assert.Equal(t, "hovercraft on the roundabout", fb.Query)
	assert.Contains(t, fb.Message, "No direct IRC-aligned intervention")
	assert.NotEmpty(t, fb.Suggestions)
	assert.Contains(t, fb.FallbackAction, "IRC SP:84")
}
