package embedding

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/types"
)

type fakeProvider struct {
	mu    sync.Mutex
	calls int
	texts []string
	embed func(call int, text string) ([]float32, error)
}

func (p *fakeProvider) Model() string { return "fake-model" }

func (p *fakeProvider) Embed(_ context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	p.calls++
	call := p.calls
	p.texts = append(p.texts, text)
	p.mu.Unlock()
	if p.embed == nil {
		return []float32{0.1, 0.2, 0.3}, nil
	}
	return p.embed(call, text)
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type fakeStore struct {
	mu         sync.Mutex
	candidates map[uuid.UUID]*types.Candidate
	jobs       map[uuid.UUID]*types.Job
	history    map[uuid.UUID][]types.EmbeddingStatus
	last       map[uuid.UUID]types.EmbeddingUpdate
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		candidates: map[uuid.UUID]*types.Candidate{},
		jobs:       map[uuid.UUID]*types.Job{},
		history:    map[uuid.UUID][]types.EmbeddingStatus{},
		last:       map[uuid.UUID]types.EmbeddingUpdate{},
	}
}

func (s *fakeStore) GetCandidate(_ context.Context, id uuid.UUID) (*types.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidates[id], nil
}

func (s *fakeStore) GetJob(_ context.Context, id uuid.UUID) (*types.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id], nil
}

func (s *fakeStore) UpdateEmbedding(_ context.Context, target types.EmbeddingTarget, update types.EmbeddingUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[target.ID] = append(s.history[target.ID], update.Status)
	s.last[target.ID] = update
	return nil
}

func (s *fakeStore) statuses(id uuid.UUID) []types.EmbeddingStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.EmbeddingStatus(nil), s.history[id]...)
}

func (s *fakeStore) lastUpdate(id uuid.UUID) types.EmbeddingUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[id]
}
