// Package report renders recommendation sets as plain-text reports and
// structured JSON exports.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/roadwise-ai/intervener/internal/explain"
)

const divider = "----------------------------------------------------------------------"

// Summary describes the query a report was generated for.
type Summary struct {
	Query       string `json:"issue"`
	RoadType    string `json:"road_type"`
	Environment string `json:"environment"`
}

// Document is a complete generated report.
type Document struct {
	Status          string                   `json:"status"`
	Query           Summary                  `json:"query"`
	Recommendations []explain.Recommendation `json:"recommendations"`
	Total           int                      `json:"total_recommendations"`
	GeneratedAt     time.Time                `json:"generated_at"`
	Metadata        Metadata                 `json:"metadata"`
}

// Metadata carries fixed report provenance fields.
type Metadata struct {
	System string `json:"system"`
	Note   string `json:"note"`
}

// New builds a report document for a set of recommendations.
func New(summary Summary, recs []explain.Recommendation) Document {
	if summary.RoadType == "" {
		summary.RoadType = "urban (default)"
	}
	if summary.Environment == "" {
		summary.Environment = "general"
	}
	return Document{
		Status:          "success",
		Query:           summary,
		Recommendations: recs,
		Total:           len(recs),
		GeneratedAt:     time.Now().UTC(),
		Metadata: Metadata{
			System: "InterveneR v1.0",
			Note:   "Material-only costs; excludes labor and taxes",
		},
	}
}

// WriteText renders the document as a plain-text report.
func (d Document) WriteText(w io.Writer) error {
	var b strings.Builder

	b.WriteString(strings.Repeat("=", 70) + "\n")
	b.WriteString("INTERVENER - ROAD SAFETY INTERVENTION RECOMMENDATION REPORT\n")
	b.WriteString(strings.Repeat("=", 70) + "\n\n")

	b.WriteString("QUERY DETAILS:\n")
	fmt.Fprintf(&b, "  Issue: %s\n", d.Query.Query)
	fmt.Fprintf(&b, "  Road Type: %s\n", d.Query.RoadType)
	fmt.Fprintf(&b, "  Environment: %s\n\n", d.Query.Environment)

	b.WriteString("RECOMMENDED INTERVENTIONS:\n")
	b.WriteString(divider + "\n")
	for i, rec := range d.Recommendations {
		fmt.Fprintf(&b, "\n[Recommendation %d]\n", i+1)
		fmt.Fprintf(&b, "Intervention: %s\n", rec.Intervention)
		fmt.Fprintf(&b, "Reference: %s\n", rec.Reference)
		fmt.Fprintf(&b, "Rationale: %s\n", rec.Rationale)
		fmt.Fprintf(&b, "Assumptions: %s\n", rec.Assumptions)
		fmt.Fprintf(&b, "Confidence: %s (%.1f%%)\n", rec.Confidence, rec.RelevancePct)
		b.WriteString(divider + "\n")
	}

	b.WriteString("\nNOTE: All recommendations are material-only estimates.\n")
	b.WriteString("Labor, transport, and taxes are excluded from cost calculations.\n")
	b.WriteString(strings.Repeat("=", 70) + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON renders the document as indented JSON.
func (d Document) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
