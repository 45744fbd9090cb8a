package kb

import (
	"sync/atomic"
)

// Store owns the immutable set of intervention records.
//
// Readers take a whole-collection snapshot through an atomic pointer, so
// queries never lock and never observe a half-replaced collection. Reload
// swaps the entire snapshot at once.
type Store struct {
	snap atomic.Pointer[snapshot]
}

type snapshot struct {
	records []Record
	byID    map[int]int // id -> index into records
}

// NewStore validates and normalizes records and builds a store. Load order is
// preserved. Any invalid record rejects the whole load with *LoadError.
func NewStore(records []Record) (*Store, error) {
	snap, err := buildSnapshot(records)
	if err != nil {
		return nil, err
	}
	s := &Store{}
	s.snap.Store(snap)
	return s, nil
}

func buildSnapshot(records []Record) (*snapshot, error) {
	snap := &snapshot{
		records: make([]Record, 0, len(records)),
		byID:    make(map[int]int, len(records)),
	}
	for _, r := range records {
		r = normalizeRecord(r)
		if err := r.validate(); err != nil {
			return nil, err
		}
		if _, dup := snap.byID[r.ID]; dup {
			return nil, &LoadError{RecordID: r.ID, Reason: "duplicate id"}
		}
		snap.byID[r.ID] = len(snap.records)
		snap.records = append(snap.records, r)
	}
	return snap, nil
}

// Reload replaces the entire record collection atomically. On validation
// failure the store keeps its current snapshot unchanged.
func (s *Store) Reload(records []Record) error {
	snap, err := buildSnapshot(records)
	if err != nil {
		return err
	}
	s.snap.Store(snap)
	return nil
}

// All returns every record in load order. The returned slice is a copy; the
// store cannot be mutated through it.
func (s *Store) All() []Record {
	snap := s.snap.Load()
	out := make([]Record, len(snap.records))
	for i, r := range snap.records {
		out[i] = r.clone()
	}
	return out
}

// Get returns the record with the given id, or ErrNotFound.
func (s *Store) Get(id int) (Record, error) {
	snap := s.snap.Load()
	idx, ok := snap.byID[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return snap.records[idx].clone(), nil
}

// SearchByKeywords returns records whose issue keywords intersect the given
// set. Intended as a cheap pre-filter for callers outside the ranking engine.
func (s *Store) SearchByKeywords(keywords []string) []Record {
	want := make(map[string]struct{}, len(keywords))
	for _, k := range normalizeSet(keywords) {
		want[k] = struct{}{}
	}
	if len(want) == 0 {
		return nil
	}

	snap := s.snap.Load()
	var out []Record
	for _, r := range snap.records {
		for _, kw := range r.IssueKeywords {
			if _, ok := want[kw]; ok {
				out = append(out, r.clone())
				break
			}
		}
	}
	return out
}

// Len returns the number of records in the current snapshot.
func (s *Store) Len() int {
	return len(s.snap.Load().records)
}

// Stats summarizes the current snapshot for health and admin surfaces.
type Stats struct {
	Total      int            `json:"total"`
	RoadTypes  []string       `json:"road_types"`
	Priorities map[string]int `json:"priorities"`
}

// Stats returns a breakdown of the current snapshot.
func (s *Store) Stats() Stats {
	snap := s.snap.Load()
	stats := Stats{
		Total:      len(snap.records),
		Priorities: make(map[string]int),
	}
	seen := make(map[string]struct{})
	for _, r := range snap.records {
		stats.Priorities[string(r.Priority)]++
		for _, rt := range r.RoadTypes {
			if _, ok := seen[rt]; !ok {
				seen[rt] = struct{}{}
				stats.RoadTypes = append(stats.RoadTypes, rt)
			}
		}
	}
	return stats
}
