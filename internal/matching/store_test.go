package matching

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/types"
)

type pairKey struct {
	job, candidate uuid.UUID
}

type memStore struct {
	mu         sync.Mutex
	candidates map[uuid.UUID]*types.Candidate
	jobs       map[uuid.UUID]*types.Job
	matches    map[uuid.UUID]*types.MatchResult
	byPair     map[pairKey]uuid.UUID
	seq        int
}

func newMemStore() *memStore {
	return &memStore{
		candidates: map[uuid.UUID]*types.Candidate{},
		jobs:       map[uuid.UUID]*types.Job{},
		matches:    map[uuid.UUID]*types.MatchResult{},
		byPair:     map[pairKey]uuid.UUID{},
	}
}

func (s *memStore) tick() time.Time {
	s.seq++
	return time.Date(2026, 1, 1, 0, 0, s.seq, 0, time.UTC)
}

func (s *memStore) CreateCandidate(_ context.Context, c *types.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = uuid.New()
	c.Embedding.Status = types.EmbeddingPending
	c.CreatedAt = s.tick()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	s.candidates[c.ID] = &cp
	return nil
}

func (s *memStore) GetCandidate(_ context.Context, id uuid.UUID) (*types.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.candidates[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) ListCandidates(_ context.Context) ([]types.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []types.Candidate{}
	for _, c := range s.candidates {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) ReplaceCandidateProfile(_ context.Context, id uuid.UUID, profile *types.CandidateProfile) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.candidates[id]
	if !ok {
		return false, nil
	}
	c.Profile = profile
	c.Embedding = types.EmbeddingState{Status: types.EmbeddingPending}
	return true, nil
}

func (s *memStore) DeleteCandidate(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.candidates[id]; !ok {
		return false, nil
	}
	delete(s.candidates, id)
	for key, mid := range s.byPair {
		if key.candidate == id {
			delete(s.matches, mid)
			delete(s.byPair, key)
		}
	}
	return true, nil
}

func (s *memStore) CreateJob(_ context.Context, j *types.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j.ID = uuid.New()
	j.Embedding.Status = types.EmbeddingPending
	j.CreatedAt = s.tick()
	j.UpdatedAt = j.CreatedAt
	cp := *j
	s.jobs[j.ID] = &cp
	return nil
}

func (s *memStore) GetJob(_ context.Context, id uuid.UUID) (*types.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

func (s *memStore) ListJobs(_ context.Context) ([]types.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []types.Job{}
	for _, j := range s.jobs {
		out = append(out, *j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.Before(out[k].CreatedAt) })
	return out, nil
}

func (s *memStore) ReplaceJobProfile(_ context.Context, id uuid.UUID, profile *types.JobProfile) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return false, nil
	}
	j.Profile = profile
	j.Embedding = types.EmbeddingState{Status: types.EmbeddingPending}
	return true, nil
}

func (s *memStore) DeleteJob(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return false, nil
	}
	delete(s.jobs, id)
	for key, mid := range s.byPair {
		if key.job == id {
			delete(s.matches, mid)
			delete(s.byPair, key)
		}
	}
	return true, nil
}

func (s *memStore) UpsertMatches(_ context.Context, results []types.MatchResult) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created, updated := 0, 0
	for i := range results {
		r := &results[i]
		key := pairKey{r.JobID, r.CandidateID}
		if id, ok := s.byPair[key]; ok {
			existing := s.matches[id]
			r.ID = id
			r.Status = existing.Status
			cp := *r
			cp.Rank = 0
			s.matches[id] = &cp
			updated++
			continue
		}
		r.ID = uuid.New()
		r.Status = types.StatusPending
		cp := *r
		cp.Rank = 0
		s.matches[r.ID] = &cp
		s.byPair[key] = r.ID
		created++
	}
	return created, updated, nil
}

func (s *memStore) ListMatchesForJob(_ context.Context, jobID uuid.UUID) ([]types.MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []types.MatchResult{}
	for _, m := range s.matches {
		if m.JobID == jobID {
			out = append(out, *m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Scores.Final > out[j].Scores.Final })
	return out, nil
}

func (s *memStore) GetMatch(_ context.Context, id uuid.UUID) (*types.MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (s *memStore) UpdateMatchStatus(_ context.Context, id uuid.UUID, status types.MatchStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return false, nil
	}
	m.Status = status
	return true, nil
}

func (s *memStore) setEmbedding(kind types.ProfileKind, id uuid.UUID, status types.EmbeddingStatus, vec []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == types.KindCandidate {
		c := s.candidates[id]
		c.Embedding.Status = status
		if c.Profile != nil {
			c.Profile.Embedding = vec
		}
		return
	}
	j := s.jobs[id]
	j.Embedding.Status = status
	if j.Profile != nil {
		j.Profile.Embedding = vec
	}
}

type recordingEmbedder struct {
	mu      sync.Mutex
	targets []types.EmbeddingTarget
}

func (e *recordingEmbedder) Submit(_ context.Context, target types.EmbeddingTarget) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.targets = append(e.targets, target)
	return nil
}

func (e *recordingEmbedder) SubmitAll(ctx context.Context, targets []types.EmbeddingTarget) (int, error) {
	for _, t := range targets {
		_ = e.Submit(ctx, t)
	}
	return len(targets), nil
}

func (e *recordingEmbedder) submitted() []types.EmbeddingTarget {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]types.EmbeddingTarget(nil), e.targets...)
}
