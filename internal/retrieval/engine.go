// Package retrieval turns a free-text road-safety issue into a ranked list of
// knowledge-base interventions with a confidence verdict.
//
// The engine is stateless: every call is a pure function of the request and
// the current knowledge-base snapshot, so identical inputs always produce
// identical output.
package retrieval

import (
	"errors"
	"fmt"
	"sort"

	"github.com/roadwise-ai/intervener/internal/kb"
)

// Engine failure modes. NoConfidentMatch is deliberately not here: an
// unconfident result is an ordinary outcome, reported as Result.Confident.
var (
	// ErrInvalidArgument indicates an out-of-range TopK or MinScore.
	ErrInvalidArgument = errors.New("invalid retrieval argument")
	// ErrEmptyQuery indicates the query normalized to no tokens (blank or
	// all stop-words). Surfaced as "needs more input", never scored as zero.
	ErrEmptyQuery = errors.New("query has no scorable tokens")
)

// Request defaults.
const (
	DefaultTopK     = 3
	DefaultMinScore = 0.3
	// DefaultRoadType is the sentinel category assumed when the caller
	// supplies no road type. Results report when it was used.
	DefaultRoadType = "urban"
)

// Request is a caller-supplied retrieval query.
type Request struct {
	// Query is the free-text issue description.
	Query string
	// RoadType is the optional road context (urban/highway/rural). Empty
	// falls back to DefaultRoadType.
	RoadType string
	// Environment is optional context such as "school zone" or "curve".
	Environment string
	// TopK bounds the number of returned candidates. Must be positive.
	TopK int
	// MinScore is the confidence floor in [0,1] for the verdict.
	MinScore float64
}

// NewRequest builds a request with default TopK and MinScore.
func NewRequest(query string) Request {
	return Request{
		Query:    query,
		TopK:     DefaultTopK,
		MinScore: DefaultMinScore,
	}
}

// Candidate pairs a record with its final confidence score.
type Candidate struct {
	Record kb.Record
	Score  float64
}

// Result is the outcome of one retrieval call.
type Result struct {
	// Candidates is the ranked list, at most TopK long.
	Candidates []Candidate
	// Confident is true iff the top-ranked score meets the MinScore floor.
	// This verdict, not list emptiness, decides fallback presentation.
	Confident bool
	// UsedDefaultRoadType reports that no road type was supplied and the
	// urban sentinel was assumed.
	UsedDefaultRoadType bool
}

// TopScore returns the best candidate score, or 0 for an empty result.
func (r *Result) TopScore() float64 {
	if len(r.Candidates) == 0 {
		return 0
	}
	return r.Candidates[0].Score
}

// Engine scores and ranks knowledge-base records against a query.
type Engine struct {
	store  *kb.Store
	scorer *Scorer
}

// NewEngine creates an engine over the given store.
func NewEngine(store *kb.Store, cfg ScoringConfig) *Engine {
	return &Engine{
		store:  store,
		scorer: NewScorer(cfg),
	}
}

// RetrieveAndRank scores every record, ranks by final score with
// deterministic tie-breaking, truncates to TopK, and reports the confidence
// verdict. An empty knowledge base or a query overlapping nothing yields an
// empty, unconfident result, not an error.
func (e *Engine) RetrieveAndRank(req Request) (*Result, error) {
	if req.TopK < 1 {
		return nil, fmt.Errorf("%w: top_k must be >= 1", ErrInvalidArgument)
	}
	if req.MinScore < 0 || req.MinScore > 1 {
		return nil, fmt.Errorf("%w: min_score must be within [0,1]", ErrInvalidArgument)
	}

	tokens := Tokenize(req.Query)
	if len(tokens) == 0 {
		return nil, ErrEmptyQuery
	}
	normQuery := Normalize(req.Query)

	roadType := req.RoadType
	usedDefault := false
	if roadType == "" {
		roadType = DefaultRoadType
		usedDefault = true
	}

	records := e.store.All()
	candidates := make([]Candidate, 0, len(records))
	for _, rec := range records {
		score := e.scorer.Score(tokens, normQuery, rec, roadType, req.Environment)
		candidates = append(candidates, Candidate{Record: rec, Score: score})
	}

	rank(candidates)
	if len(candidates) > req.TopK {
		candidates = candidates[:req.TopK]
	}

	result := &Result{
		Candidates:          candidates,
		UsedDefaultRoadType: usedDefault,
	}
	result.Confident = len(candidates) > 0 && result.TopScore() >= req.MinScore
	return result, nil
}

// rank orders candidates by score descending, then priority (High before
// Low), then id ascending. The ordering is total, so the result is
// reproducible regardless of scoring order.
func rank(candidates []Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if ra, rb := a.Record.Priority.Rank(), b.Record.Priority.Rank(); ra != rb {
			return ra < rb
		}
		return a.Record.ID < b.Record.ID
	})
}
