// Package kb provides the immutable intervention knowledge base.
//
// Records are validated and normalized once at load time; after construction
// the store is read-only and safe for concurrent readers. Replacing the
// collection happens through an atomic whole-snapshot swap.
package kb

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates a lookup by id with no matching record.
var ErrNotFound = errors.New("intervention not found")

// LoadError indicates malformed or inconsistent source data. The whole load
// is rejected; the store is never partially populated.
type LoadError struct {
	RecordID int // 0 when the record has no usable id
	Reason   string
}

func (e *LoadError) Error() string {
	if e.RecordID > 0 {
		return fmt.Sprintf("kb load: record %d: %s", e.RecordID, e.Reason)
	}
	return fmt.Sprintf("kb load: %s", e.Reason)
}

// Priority ranks an intervention's urgency.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// ParsePriority converts a source string into a Priority.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return PriorityHigh, nil
	case "medium", "med":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	default:
		return "", fmt.Errorf("unknown priority %q", s)
	}
}

// Rank returns the sort rank of the priority, lower is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Record is one catalogued road-safety remedy.
type Record struct {
	// ID is a unique positive integer, stable for the store's lifetime.
	ID int
	// IssueKeywords describe the problems this remedy addresses. Normalized
	// to lower-case, trimmed. Never empty: a record without keywords can
	// never be matched.
	IssueKeywords []string
	// Intervention is the human-readable remedy description.
	Intervention string
	// Reference cites the applicable standard and clause (e.g. "IRC 67:2022").
	Reference string
	// Rationale justifies the remedy.
	Rationale string
	// RoadTypes lists applicable road-type tags. Empty means the remedy
	// applies to all road types.
	RoadTypes []string
	// EnvironmentTags lists applicable context tags. Empty means no
	// environment boost applies.
	EnvironmentTags []string
	// Priority is High, Medium, or Low.
	Priority Priority
	// Assumptions qualifies the recommendation (cost scope and similar).
	Assumptions string
}

// validate checks a single record. Set-valued fields must already be
// normalized by normalizeRecord.
func (r Record) validate() error {
	if r.ID <= 0 {
		return &LoadError{Reason: fmt.Sprintf("invalid id %d", r.ID)}
	}
	if len(r.IssueKeywords) == 0 {
		return &LoadError{RecordID: r.ID, Reason: "empty issue keyword set"}
	}
	if strings.TrimSpace(r.Intervention) == "" {
		return &LoadError{RecordID: r.ID, Reason: "missing intervention text"}
	}
	switch r.Priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
	default:
		return &LoadError{RecordID: r.ID, Reason: fmt.Sprintf("unknown priority %q", r.Priority)}
	}
	return nil
}

// normalizeRecord lower-cases and trims all set-valued fields so keyword and
// tag comparisons use the same convention as query tokens. Blank entries are
// dropped.
func normalizeRecord(r Record) Record {
	r.IssueKeywords = normalizeSet(r.IssueKeywords)
	r.RoadTypes = normalizeSet(r.RoadTypes)
	r.EnvironmentTags = normalizeSet(r.EnvironmentTags)
	r.Intervention = strings.TrimSpace(r.Intervention)
	r.Reference = strings.TrimSpace(r.Reference)
	r.Rationale = strings.TrimSpace(r.Rationale)
	return r
}

func normalizeSet(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// clone returns a deep copy so callers cannot mutate store internals.
func (r Record) clone() Record {
	r.IssueKeywords = append([]string(nil), r.IssueKeywords...)
	r.RoadTypes = append([]string(nil), r.RoadTypes...)
	r.EnvironmentTags = append([]string(nil), r.EnvironmentTags...)
	return r
}
