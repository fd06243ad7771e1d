// Package matching runs the candidate/job workflow: ingest text into profiles,
// schedule embeddings, rank candidates for a job and track recruiter decisions.
package matching

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/ingestion"
	"github.com/jonathan/talent-matcher/internal/logging"
	"github.com/jonathan/talent-matcher/internal/metrics"
	"github.com/jonathan/talent-matcher/internal/parsing"
	"github.com/jonathan/talent-matcher/internal/ranking"
	"github.com/jonathan/talent-matcher/internal/types"
	"go.uber.org/zap"
)

// Store persists candidates, jobs and matches. Get methods return nil, nil
// for unknown IDs and mutating methods report whether a row was found.
type Store interface {
	CreateCandidate(ctx context.Context, c *types.Candidate) error
	GetCandidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error)
	ListCandidates(ctx context.Context) ([]types.Candidate, error)
	ReplaceCandidateProfile(ctx context.Context, id uuid.UUID, profile *types.CandidateProfile) (bool, error)
	DeleteCandidate(ctx context.Context, id uuid.UUID) (bool, error)

	CreateJob(ctx context.Context, j *types.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error)
	ListJobs(ctx context.Context) ([]types.Job, error)
	ReplaceJobProfile(ctx context.Context, id uuid.UUID, profile *types.JobProfile) (bool, error)
	DeleteJob(ctx context.Context, id uuid.UUID) (bool, error)

	UpsertMatches(ctx context.Context, results []types.MatchResult) (created, updated int, err error)
	ListMatchesForJob(ctx context.Context, jobID uuid.UUID) ([]types.MatchResult, error)
	GetMatch(ctx context.Context, id uuid.UUID) (*types.MatchResult, error)
	UpdateMatchStatus(ctx context.Context, id uuid.UUID, status types.MatchStatus) (bool, error)
}

// Embedder schedules background embedding generation.
type Embedder interface {
	Submit(ctx context.Context, target types.EmbeddingTarget) error
	SubmitAll(ctx context.Context, targets []types.EmbeddingTarget) (int, error)
}

// Options tunes the service.
type Options struct {
	Rank ranking.RankOptions
}

// Service implements the matching workflow on top of a Store.
type Service struct {
	store    Store
	embedder Embedder
	profiler *parsing.Profiler
	opts     Options
	log      *zap.Logger
	now      func() time.Time
}

// NewService creates a Service. A nil embedder disables semantic scoring:
// entities stay pending and embedding requests fail with ErrEmbeddingDisabled.
func NewService(store Store, embedder Embedder, profiler *parsing.Profiler, opts Options, log *zap.Logger) *Service {
	return &Service{
		store:    store,
		embedder: embedder,
		profiler: profiler,
		opts:     opts,
		log:      logging.OrNop(log).Named("matching"),
		now:      time.Now,
	}
}

// CreateCandidateInput is the text of an uploaded resume.
type CreateCandidateInput struct {
	Name     string
	FileName string
	Text     string
}

// CreateCandidate profiles resume text, stores it and schedules its embedding.
func (s *Service) CreateCandidate(ctx context.Context, in CreateCandidateInput) (*types.Candidate, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" && in.FileName != "" {
		base := filepath.Base(in.FileName)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "candidate name is required"}
	}

	text, err := normalizeText(in.Text)
	if err != nil {
		return nil, err
	}

	c := &types.Candidate{
		Name:     name,
		FileName: in.FileName,
		RawText:  text,
		Profile:  s.profiler.GenerateCandidateProfile(text),
	}
	metrics.ProfilesGenerated.WithLabelValues(string(types.KindCandidate)).Inc()

	if err := s.store.CreateCandidate(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info("candidate created",
		zap.String("candidate_id", c.ID.String()),
		zap.Int("skills", len(c.Profile.Skills)),
		zap.Int("years", c.Profile.TotalYearsExperience))

	s.scheduleEmbedding(ctx, types.EmbeddingTarget{Kind: types.KindCandidate, ID: c.ID})
	return c, nil
}

// CreateJobInput is a job opening's title and description.
type CreateJobInput struct {
	Title       string
	Description string
}

// CreateJob profiles a job description, stores it and schedules its embedding.
func (s *Service) CreateJob(ctx context.Context, in CreateJobInput) (*types.Job, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "job title is required"}
	}

	text, err := normalizeText(in.Description)
	if err != nil {
		return nil, err
	}

	j := &types.Job{
		Title:   title,
		RawText: text,
		Profile: s.profiler.GenerateJobProfile(text),
	}
	metrics.ProfilesGenerated.WithLabelValues(string(types.KindJob)).Inc()

	if err := s.store.CreateJob(ctx, j); err != nil {
		return nil, err
	}
	s.log.Info("job created",
		zap.String("job_id", j.ID.String()),
		zap.Int("required", len(j.Profile.RequiredSkills)),
		zap.Int("preferred", len(j.Profile.PreferredSkills)))

	s.scheduleEmbedding(ctx, types.EmbeddingTarget{Kind: types.KindJob, ID: j.ID})
	return j, nil
}

func normalizeText(raw string) (string, error) {
	text, err := ingestion.Normalize(raw)
	if err != nil {
		return "", &ValidationError{Field: "text", Message: err.Error()}
	}
	if text == "" {
		return "", &ValidationError{Field: "text", Message: "text is empty"}
	}
	return text, nil
}

// scheduleEmbedding submits target when an embedder is configured. Failures
// are logged; the entity stays pending and can be retried on demand.
func (s *Service) scheduleEmbedding(ctx context.Context, target types.EmbeddingTarget) {
	if s.embedder == nil {
		return
	}
	if err := s.embedder.Submit(ctx, target); err != nil {
		s.log.Warn("failed to schedule embedding",
			zap.String("kind", string(target.Kind)),
			zap.String("id", target.ID.String()),
			zap.Error(err))
	}
}

// GetCandidate returns a stored candidate.
func (s *Service) GetCandidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error) {
	c, err := s.store.GetCandidate(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &NotFoundError{Resource: "candidate", ID: id.String()}
	}
	return c, nil
}

// ListCandidates returns every stored candidate.
func (s *Service) ListCandidates(ctx context.Context) ([]types.Candidate, error) {
	return s.store.ListCandidates(ctx)
}

// DeleteCandidate removes a candidate and its matches.
func (s *Service) DeleteCandidate(ctx context.Context, id uuid.UUID) error {
	found, err := s.store.DeleteCandidate(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return &NotFoundError{Resource: "candidate", ID: id.String()}
	}
	return nil
}

// RegenerateCandidateProfile re-extracts the profile from the stored resume
// text, replacing the old one, and schedules a fresh embedding.
func (s *Service) RegenerateCandidateProfile(ctx context.Context, id uuid.UUID) (*types.Candidate, error) {
	c, err := s.GetCandidate(ctx, id)
	if err != nil {
		return nil, err
	}

	profile := s.profiler.GenerateCandidateProfile(c.RawText)
	metrics.ProfilesGenerated.WithLabelValues(string(types.KindCandidate)).Inc()
	found, err := s.store.ReplaceCandidateProfile(ctx, id, profile)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &NotFoundError{Resource: "candidate", ID: id.String()}
	}

	s.scheduleEmbedding(ctx, types.EmbeddingTarget{Kind: types.KindCandidate, ID: id})
	return s.GetCandidate(ctx, id)
}

// GetJob returns a stored job.
func (s *Service) GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	j, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, &NotFoundError{Resource: "job", ID: id.String()}
	}
	return j, nil
}

// ListJobs returns every stored job.
func (s *Service) ListJobs(ctx context.Context) ([]types.Job, error) {
	return s.store.ListJobs(ctx)
}

// DeleteJob removes a job and its matches.
func (s *Service) DeleteJob(ctx context.Context, id uuid.UUID) error {
	found, err := s.store.DeleteJob(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return &NotFoundError{Resource: "job", ID: id.String()}
	}
	return nil
}

// RegenerateJobProfile re-extracts the profile from the stored description.
func (s *Service) RegenerateJobProfile(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	j, err := s.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}

	profile := s.profiler.GenerateJobProfile(j.RawText)
	metrics.ProfilesGenerated.WithLabelValues(string(types.KindJob)).Inc()
	found, err := s.store.ReplaceJobProfile(ctx, id, profile)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &NotFoundError{Resource: "job", ID: id.String()}
	}

	s.scheduleEmbedding(ctx, types.EmbeddingTarget{Kind: types.KindJob, ID: id})
	return s.GetJob(ctx, id)
}
