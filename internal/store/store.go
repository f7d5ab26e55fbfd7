// Package store holds the in-memory job mapping handed off to external
// consumers. The scheduler builds a fresh Snapshot per cycle and swaps it
// in whole, so readers observe either the pre- or post-cycle state, never
// a mix of two cycles.
package store

import (
	"strings"
	"sync"

	"github.com/job-finders/app/internal/jobs"
)

// DefaultSimilarLimit caps Similar results when the caller passes no limit.
const DefaultSimilarLimit = 8

// Snapshot is one cycle's worth of merged jobs, keyed by normalized ref.
// It is built by a single producer and must not be mutated after being
// swapped into a Store.
type Snapshot struct {
	order []string
	byRef map[string]jobs.Job
}

// NewSnapshot creates an empty Snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{byRef: make(map[string]jobs.Job)}
}

// Merge adds jobs to the snapshot, last writer wins per normalized ref.
// A re-merged ref keeps its original insertion position.
func (s *Snapshot) Merge(list []jobs.Job) {
	for _, job := range list {
		key := jobs.NormalizeRef(job.Ref)
		if key == "" {
			continue
		}
		if _, exists := s.byRef[key]; !exists {
			s.order = append(s.order, key)
		}
		s.byRef[key] = job
	}
}

// Len reports the number of distinct jobs merged so far.
func (s *Snapshot) Len() int {
	return len(s.byRef)
}

// Store is written by exactly one producer (the scheduler, via Swap) and
// read by arbitrary concurrent readers.
type Store struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// New creates an empty Store.
func New() *Store {
	return &Store{snap: NewSnapshot()}
}

// Swap replaces the current snapshot after a full cycle completes.
func (s *Store) Swap(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

// Len reports the number of jobs in the current snapshot.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Len()
}

// ByRef returns the job stored under the normalized form of ref.
func (s *Store) ByRef(ref string) (jobs.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.snap.byRef[jobs.NormalizeRef(ref)]
	return job, ok
}

// BySlug returns the job with the given slug. Linear scan; the store holds
// at most one cycle's worth of listings.
func (s *Store) BySlug(slug string) (jobs.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, key := range s.snap.order {
		if job := s.snap.byRef[key]; job.Slug == slug {
			return job, true
		}
	}
	return jobs.Job{}, false
}

// ByTerm returns all jobs discovered under term, in insertion order.
func (s *Store) ByTerm(term string) []jobs.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []jobs.Job
	for _, key := range s.snap.order {
		if job := s.snap.byRef[key]; job.SearchTerm == term {
			out = append(out, job)
		}
	}
	return out
}

// Similar returns up to limit other jobs under term whose title shares at
// least one case-insensitive token with title, excluding exact title
// matches. Insertion order, not ranked by similarity strength.
func (s *Store) Similar(term, title string, limit int) []jobs.Job {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	want := titleTokens(title)

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []jobs.Job
	for _, key := range s.snap.order {
		if len(out) >= limit {
			break
		}
		job := s.snap.byRef[key]
		if job.SearchTerm != term || strings.EqualFold(job.Title, title) {
			continue
		}
		if sharesToken(want, job.Title) {
			out = append(out, job)
		}
	}
	return out
}

func titleTokens(title string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(title)) {
		tokens[tok] = struct{}{}
	}
	return tokens
}

func sharesToken(want map[string]struct{}, title string) bool {
	for _, tok := range strings.Fields(strings.ToLower(title)) {
		if _, ok := want[tok]; ok {
			return true
		}
	}
	return false
}
