package matching

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/parsing"
	"github.com/jonathan/talent-matcher/internal/ranking"
	"github.com/jonathan/talent-matcher/internal/skills"
	"github.com/jonathan/talent-matcher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const backendJobText = "Python, Python, Python. Docker docker. 5+ years of experience."

func newTestService(t *testing.T, embedder Embedder) (*Service, *memStore) {
	t.Helper()
	store := newMemStore()
	svc := NewService(store, embedder, parsing.NewProfiler(skills.MustDefault()), Options{Rank: ranking.DefaultRankOptions()}, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, store
}

func TestCreateCandidate(t *testing.T) {
	embedder := &recordingEmbedder{}
	svc, _ := newTestService(t, embedder)
	ctx := context.Background()

	c, err := svc.CreateCandidate(ctx, CreateCandidateInput{
		FileName: "uploads/jane_doe.pdf",
		Text:     "Python and Docker engineer\r\n\r\n\r\n6 years of experience",
	})
	require.NoError(t, err)

	assert.Equal(t, "jane_doe", c.Name)
	assert.Equal(t, "Python and Docker engineer\n\n6 years of experience", c.RawText)
	require.NotNil(t, c.Profile)
	assert.Equal(t, 6, c.Profile.TotalYearsExperience)
	assert.ElementsMatch(t, []string{"python", "docker"}, types.SkillNames(c.Profile.Skills))
	assert.Equal(t, []types.EmbeddingTarget{{Kind: types.KindCandidate, ID: c.ID}}, embedder.submitted())
}

func TestCreateCandidate_Validation(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.CreateCandidate(ctx, CreateCandidateInput{Text: "Go developer"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	_, err = svc.CreateCandidate(ctx, CreateCandidateInput{Name: "Jane", Text: "  \n\t "})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "text", verr.Field)
}

func TestCreateJob(t *testing.T) {
	embedder := &recordingEmbedder{}
	svc, _ := newTestService(t, embedder)

	_, err := svc.CreateJob(context.Background(), CreateJobInput{Description: backendJobText})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	j, err := svc.CreateJob(context.Background(), CreateJobInput{
		Title:       "  Backend Engineer ",
		Description: "<ul><li>Python Python Python</li><li>Docker docker</li></ul><p>5+ years of experience</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", j.Title)
	assert.NotContains(t, j.RawText, "<li>")
	assert.Equal(t, []string{"python", "docker"}, types.SkillNames(j.Profile.RequiredSkills))
	assert.Equal(t, 5, j.Profile.TotalYearsRequired)
	assert.Len(t, embedder.submitted(), 1)
}

func seedMatching(t *testing.T, svc *Service) (*types.Job, *types.Candidate, *types.Candidate) {
	t.Helper()
	ctx := context.Background()
	job, err := svc.CreateJob(ctx, CreateJobInput{Title: "Backend Engineer", Description: backendJobText})
	require.NoError(t, err)
	weak, err := svc.CreateCandidate(ctx, CreateCandidateInput{Name: "Weak", Text: "PHP developer"})
	require.NoError(t, err)
	strong, err := svc.CreateCandidate(ctx, CreateCandidateInput{Name: "Strong", Text: "Python and Docker, 6 years of experience"})
	require.NoError(t, err)
	return job, weak, strong
}

func TestRunMatching(t *testing.T) {
	svc, _ := newTestService(t, nil)
	job, _, strong := seedMatching(t, svc)

	summary, err := svc.RunMatching(context.Background(), job.ID)
	require.NoError(t, err)

	assert.Equal(t, job.ID, summary.JobID)
	assert.Equal(t, "Backend Engineer", summary.JobTitle)
	require.Equal(t, 2, summary.Count)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 0, summary.Updated)

	top := summary.Matches[0]
	assert.Equal(t, strong.ID, top.CandidateID)
	assert.Equal(t, "Strong", top.CandidateName)
	assert.Equal(t, 1, top.Rank)
	assert.Equal(t, 60.0, top.Scores.Final)
	assert.Equal(t, types.StatusPending, top.Status)
	assert.NotEqual(t, uuid.Nil, top.ID)
	assert.Equal(t, svc.now(), top.CalculatedAt)

	assert.Equal(t, 2, summary.Matches[1].Rank)
	assert.Equal(t, 2.0, summary.Matches[1].Scores.Final)
	assert.Equal(t, 31.0, summary.AverageScore)
}

func TestRunMatching_NoCandidates(t *testing.T) {
	svc, _ := newTestService(t, nil)
	job, err := svc.CreateJob(context.Background(), CreateJobInput{Title: "Empty", Description: backendJobText})
	require.NoError(t, err)

	summary, err := svc.RunMatching(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Count)
	assert.NotNil(t, summary.Matches)
	assert.Equal(t, 0.0, summary.AverageScore)
}

func TestRunMatching_UnknownJob(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.RunMatching(context.Background(), uuid.New())
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "job", nf.Resource)
}

func TestRunMatching_PreservesStatus(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	job, _, strong := seedMatching(t, svc)

	first, err := svc.RunMatching(ctx, job.ID)
	require.NoError(t, err)
	matchID := first.Matches[0].ID

	updated, err := svc.UpdateStatus(ctx, matchID, "shortlisted")
	require.NoError(t, err)
	assert.Equal(t, types.StatusShortlisted, updated.Status)
	assert.Equal(t, first.Matches[0].Scores, updated.Scores)

	second, err := svc.RunMatching(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Updated)
	require.Equal(t, strong.ID, second.Matches[0].CandidateID)
	assert.Equal(t, matchID, second.Matches[0].ID)
	assert.Equal(t, types.StatusShortlisted, second.Matches[0].Status)
	assert.Equal(t, types.StatusPending, second.Matches[1].Status)
}

func TestRunMatching_UsesReadyEmbeddings(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()
	job, _, strong := seedMatching(t, svc)
	store.setEmbedding(types.KindJob, job.ID, types.EmbeddingReady, []float32{1, 0})
	store.setEmbedding(types.KindCandidate, strong.ID, types.EmbeddingReady, []float32{1, 0})

	summary, err := svc.RunMatching(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, summary.Matches[0].Scores.Semantic)
	assert.Equal(t, 100.0, summary.Matches[0].Scores.Final)
}

func TestUpdateStatus_Invalid(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), "hired")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)
	assert.Contains(t, verr.Message, "pending, shortlisted, rejected")

	_, err = svc.UpdateStatus(context.Background(), uuid.New(), "rejected")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "match", nf.Resource)
}

func TestResults(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	job, _, _ := seedMatching(t, svc)

	empty, err := svc.Results(ctx, job.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = svc.RunMatching(ctx, job.ID)
	require.NoError(t, err)

	results, err := svc.Results(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, 2, results[1].Rank)
	assert.GreaterOrEqual(t, results[0].Scores.Final, results[1].Scores.Final)

	_, err = svc.Results(ctx, uuid.New())
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestMatchDetail(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	job, _, _ := seedMatching(t, svc)
	summary, err := svc.RunMatching(ctx, job.ID)
	require.NoError(t, err)

	detail, err := svc.MatchDetail(ctx, summary.Matches[0].ID)
	require.NoError(t, err)

	assert.Equal(t, types.TierPartial, detail.Interpretation.Tier)
	assert.Contains(t, detail.Interpretation.Strengths, "Covers 100% of required skills")
	assert.Equal(t, "Consider if other candidates are limited", detail.Interpretation.Recommendation)
	assert.NotEmpty(t, detail.Coverage)

	_, err = svc.MatchDetail(ctx, uuid.New())
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestRegenerateCandidateProfile(t *testing.T) {
	embedder := &recordingEmbedder{}
	svc, store := newTestService(t, embedder)
	ctx := context.Background()

	c, err := svc.CreateCandidate(ctx, CreateCandidateInput{Name: "Jane", Text: "Go developer with 4 years of experience"})
	require.NoError(t, err)
	store.setEmbedding(types.KindCandidate, c.ID, types.EmbeddingReady, []float32{1})

	regenerated, err := svc.RegenerateCandidateProfile(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, types.EmbeddingPending, regenerated.Embedding.Status)
	assert.Nil(t, regenerated.Profile.Embedding)
	assert.Equal(t, 4, regenerated.Profile.TotalYearsExperience)
	assert.Len(t, embedder.submitted(), 2)

	_, err = svc.RegenerateCandidateProfile(ctx, uuid.New())
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestRegenerateJobProfile(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	j, err := svc.CreateJob(ctx, CreateJobInput{Title: "Backend", Description: backendJobText})
	require.NoError(t, err)

	regenerated, err := svc.RegenerateJobProfile(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, j.Profile.RequiredSkills, regenerated.Profile.RequiredSkills)
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	job, weak, _ := seedMatching(t, svc)

	require.NoError(t, svc.DeleteCandidate(ctx, weak.ID))
	_, err := svc.GetCandidate(ctx, weak.ID)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
	assert.ErrorAs(t, svc.DeleteCandidate(ctx, weak.ID), &nf)

	require.NoError(t, svc.DeleteJob(ctx, job.ID))
	assert.ErrorAs(t, svc.DeleteJob(ctx, job.ID), &nf)
}

func TestGenerateEmbedding(t *testing.T) {
	ctx := context.Background()

	disabled, _ := newTestService(t, nil)
	c, err := disabled.CreateCandidate(ctx, CreateCandidateInput{Name: "Jane", Text: "Go developer"})
	require.NoError(t, err)
	_, err = disabled.GenerateEmbedding(ctx, types.EmbeddingTarget{Kind: types.KindCandidate, ID: c.ID})
	assert.ErrorIs(t, err, ErrEmbeddingDisabled)

	embedder := &recordingEmbedder{}
	svc, _ := newTestService(t, embedder)
	j, err := svc.CreateJob(ctx, CreateJobInput{Title: "Backend", Description: backendJobText})
	require.NoError(t, err)

	state, err := svc.GenerateEmbedding(ctx, types.EmbeddingTarget{Kind: types.KindJob, ID: j.ID})
	require.NoError(t, err)
	assert.Equal(t, types.EmbeddingPending, state.Status)
	assert.Len(t, embedder.submitted(), 2)

	_, err = svc.GenerateEmbedding(ctx, types.EmbeddingTarget{Kind: types.KindJob, ID: uuid.New()})
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)

	_, err = svc.EmbeddingStatus(ctx, types.EmbeddingTarget{Kind: "resume", ID: j.ID})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestGenerateMissingEmbeddings(t *testing.T) {
	embedder := &recordingEmbedder{}
	svc, store := newTestService(t, embedder)
	ctx := context.Background()

	a, err := svc.CreateCandidate(ctx, CreateCandidateInput{Name: "A", Text: "Go developer"})
	require.NoError(t, err)
	b, err := svc.CreateCandidate(ctx, CreateCandidateInput{Name: "B", Text: "Rust developer"})
	require.NoError(t, err)
	store.setEmbedding(types.KindCandidate, a.ID, types.EmbeddingReady, []float32{1})
	store.setEmbedding(types.KindCandidate, b.ID, types.EmbeddingFailed, nil)

	result, err := svc.GenerateMissingEmbeddings(ctx, types.KindCandidate)
	require.NoError(t, err)
	assert.Equal(t, BatchEmbeddingResult{Submitted: 1, Skipped: 1}, result)
	submitted := embedder.submitted()
	assert.Equal(t, types.EmbeddingTarget{Kind: types.KindCandidate, ID: b.ID}, submitted[len(submitted)-1])

	_, err = svc.GenerateMissingEmbeddings(ctx, "resume")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
