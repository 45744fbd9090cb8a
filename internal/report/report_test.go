package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadwise-ai/intervener/internal/explain"
)

func sampleRecs() []explain.Recommendation {
	return []explain.Recommendation{
		{
			ID:           4,
			Intervention: "Install chevron alignment markers",
			Reference:    "IRC 67",
			Rationale:    "Reduces vehicle speed at high-risk curves.",
			Assumptions:  "Material-only cost; excludes labor and taxes.",
			Priority:     "High",
			RelevancePct: 95.0,
			Confidence:   explain.ConfidenceVeryHigh,
		},
	}
}

func TestNew_DefaultsContextLabels(t *testing.T) {
	doc := New(Summary{Query: "blind curve"}, sampleRecs())

	assert.Equal(t, "success", doc.Status)
	assert.Equal(t, "urban (default)", doc.Query.RoadType)
	assert.Equal(t, "general", doc.Query.Environment)
	assert.Equal(t, 1, doc.Total)
	assert.Equal(t, "InterveneR v1.0", doc.Metadata.System)
	assert.False(t, doc.GeneratedAt.IsZero())
}

func TestNew_KeepsExplicitContext(t *testing.T) {
	doc := New(Summary{Query: "blind curve", RoadType: "highway", Environment: "curve"}, sampleRecs())

	assert.Equal(t, "highway", doc.Query.RoadType)
	assert.Equal(t, "curve", doc.Query.Environment)
}

func TestDocument_WriteText(t *testing.T) {
	doc := New(Summary{Query: "blind curve", RoadType: "highway"}, sampleRecs())

	var buf bytes.Buffer
	require.NoError(t, doc.WriteText(&buf))
	out := buf.String()

	assert.Contains(t, out, "ROAD SAFETY INTERVENTION RECOMMENDATION REPORT")
	assert.Contains(t, out, "Issue: blind curve")
	assert.Contains(t, out, "Road Type: highway")
	assert.Contains(t, out, "[Recommendation 1]")
	assert.Contains(t, out, "Intervention: Install chevron alignment markers")
	assert.Contains(t, out, "Confidence: Very High (95.0%)")
	assert.Contains(t, out, "material-only estimates")
	assert.True(t, strings.HasPrefix(out, strings.Repeat("=", 70)))
}

func TestDocument_WriteJSON(t *testing.T) {
	doc := New(Summary{Query: "blind curve"}, sampleRecs())

	var buf bytes.Buffer
	require.NoError(t, doc.WriteJSON(&buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "success", decoded["status"])
	assert.Equal(t, float64(1), decoded["total_recommendations"])

	recs, ok := decoded["recommendations"].([]any)
	require.True(t, ok)
	require.Len(t, recs, 1)
}
