package retrieval

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/roadwise-ai/intervener/internal/kb"
)

// Scoring constants. The boost values are the contract; the underlying
// string-distance metric is an implementation choice (see ScoringConfig).
const (
	// RoadTypeBoost applies when the requested road type matches the record
	// or the record applies universally.
	RoadTypeBoost = 0.15
	// EnvBoostMax caps the environment boost; the actual boost scales with
	// the fraction of matched environment tags.
	EnvBoostMax = 0.25

	PriorityWeightHigh   = 0.03
	PriorityWeightMedium = 0.015
	PriorityWeightLow    = 0.005

	// similarityCutoff zeroes weak fuzzy matches so bigram noise between
	// unrelated words never accumulates into a plausible-looking base score.
	similarityCutoff = 0.5
)

// ScoringConfig tunes the scorer. Zero values take the contract defaults.
type ScoringConfig struct {
	RoadTypeBoost    float64
	EnvBoostMax      float64
	SimilarityCutoff float64
}

// DefaultScoringConfig returns the contract scoring constants.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		RoadTypeBoost:    RoadTypeBoost,
		EnvBoostMax:      EnvBoostMax,
		SimilarityCutoff: similarityCutoff,
	}
}

// Scorer computes relevance scores for intervention records. It is a pure
// function over immutable inputs: no state is kept between calls.
type Scorer struct {
	cfg    ScoringConfig
	metric *metrics.SorensenDice
}

// NewScorer creates a scorer. The fuzzy similarity metric is Sorensen-Dice
// over character bigrams, applied token-set style: each keyword token is
// matched against its best query token.
func NewScorer(cfg ScoringConfig) *Scorer {
	if cfg.RoadTypeBoost == 0 {
		cfg.RoadTypeBoost = RoadTypeBoost
	}
	if cfg.EnvBoostMax == 0 {
		cfg.EnvBoostMax = EnvBoostMax
	}
	if cfg.SimilarityCutoff == 0 {
		cfg.SimilarityCutoff = similarityCutoff
	}
	return &Scorer{
		cfg:    cfg,
		metric: metrics.NewSorensenDice(),
	}
}

// Score computes the final [0,1] score for one record: base fuzzy similarity
// plus road-type, environment, and priority boosts, clamped at 1.
func (s *Scorer) Score(tokens []string, normQuery string, rec kb.Record, roadType, environment string) float64 {
	score := s.baseSimilarity(tokens, normQuery, rec) +
		s.roadTypeBoost(rec, roadType) +
		s.environmentBoost(rec, tokens, environment) +
		priorityWeight(rec.Priority)
	return clamp01(score)
}

// baseSimilarity is the maximum fuzzy similarity between the query and any of
// the record's issue keywords. A single strong keyword match dominates many
// weak ones, matching how an auditor judges relevance on one symptom.
func (s *Scorer) baseSimilarity(tokens []string, normQuery string, rec kb.Record) float64 {
	best := 0.0
	for _, kw := range rec.IssueKeywords {
		if sim := s.keywordSimilarity(tokens, normQuery, kw); sim > best {
			best = sim
		}
	}
	return best
}

// keywordSimilarity compares a (possibly multi-word) keyword to the query two
// ways and keeps the higher: whole-string similarity, and the average of each
// keyword token's best-matching query token.
func (s *Scorer) keywordSimilarity(tokens []string, normQuery, keyword string) float64 {
	keyword = Normalize(keyword)
	if keyword == "" {
		return 0
	}

	sim := s.similarity(normQuery, keyword)

	kwTokens := strings.Fields(keyword)
	if len(kwTokens) > 0 && len(tokens) > 0 {
		sum := 0.0
		for _, kt := range kwTokens {
			best := 0.0
			for _, qt := range tokens {
				if v := s.similarity(qt, kt); v > best {
					best = v
				}
			}
			sum += best
		}
		if avg := sum / float64(len(kwTokens)); avg > sim {
			sim = avg
		}
	}
	return sim
}

// similarity is the cutoff-gated Sorensen-Dice similarity in [0,1].
func (s *Scorer) similarity(a, b string) float64 {
	v := strutil.Similarity(a, b, s.metric)
	if v < s.cfg.SimilarityCutoff {
		return 0
	}
	return v
}

// roadTypeBoost applies the full boost when the requested (or defaulted) road
// type is tagged on the record, or when the record has no road-type tags and
// therefore applies to every road.
func (s *Scorer) roadTypeBoost(rec kb.Record, roadType string) float64 {
	if len(rec.RoadTypes) == 0 {
		return s.cfg.RoadTypeBoost
	}
	rt := Normalize(roadType)
	for _, tag := range rec.RoadTypes {
		if tag == rt {
			return s.cfg.RoadTypeBoost
		}
	}
	return 0
}

// environmentBoost scales with the fraction of the record's environment tags
// that textually overlap the query tokens or the supplied environment value.
// Records with no environment tags receive no boost.
func (s *Scorer) environmentBoost(rec kb.Record, tokens []string, environment string) float64 {
	if len(rec.EnvironmentTags) == 0 {
		return 0
	}
	env := Normalize(environment)

	matched := 0
	for _, tag := range rec.EnvironmentTags {
		if tagOverlaps(tag, tokens, env) {
			matched++
		}
	}
	return s.cfg.EnvBoostMax * float64(matched) / float64(len(rec.EnvironmentTags))
}

// tagOverlaps reports whether an environment tag textually overlaps the query
// tokens or the supplied environment value.
func tagOverlaps(tag string, tokens []string, env string) bool {
	if env != "" && (strings.Contains(env, tag) || strings.Contains(tag, env)) {
		return true
	}
	for _, t := range tokens {
		if t == tag || strings.Contains(tag, t) || strings.Contains(t, tag) {
			return true
		}
	}
	return false
}

// priorityWeight is a small deterministic nudge so near-ties surface
// higher-priority remedies first. Bounded well below one unit of base-score
// difference worth surfacing.
func priorityWeight(p kb.Priority) float64 {
	switch p {
	case kb.PriorityHigh:
		return PriorityWeightHigh
	case kb.PriorityMedium:
		return PriorityWeightMedium
	default:
		return PriorityWeightLow
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
