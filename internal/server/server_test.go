package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/config"
	"github.com/jonathan/talent-matcher/internal/matching"
	"github.com/jonathan/talent-matcher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService keeps records in memory and mirrors the service's error types.
type fakeService struct {
	mu           sync.Mutex
	candidates   map[uuid.UUID]*types.Candidate
	jobs         map[uuid.UUID]*types.Job
	matches      map[uuid.UUID]*types.MatchResult
	embedEnabled bool
	embedded     []types.EmbeddingTarget
	runErr       error
}

func newFakeService() *fakeService {
	return &fakeService{
		candidates:   make(map[uuid.UUID]*types.Candidate),
		jobs:         make(map[uuid.UUID]*types.Job),
		matches:      make(map[uuid.UUID]*types.MatchResult),
		embedEnabled: true,
	}
}

func (f *fakeService) CreateCandidate(_ context.Context, in matching.CreateCandidateInput) (*types.Candidate, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, &matching.ValidationError{Field: "text", Message: "text is empty"}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &types.Candidate{
		ID:      uuid.New(),
		Name:    in.Name,
		RawText: in.Text,
		Profile: &types.CandidateProfile{
			Profile: types.Profile{Skills: []types.Skill{{Name: "go", Category: types.CategoryProgramming, Confidence: 0.6}}},
		},
		Embedding: types.EmbeddingState{Status: types.EmbeddingPending},
	}
	f.candidates[c.ID] = c
	return c, nil
}

func (f *fakeService) GetCandidate(_ context.Context, id uuid.UUID) (*types.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.candidates[id]
	if !ok {
		return nil, &matching.NotFoundError{Resource: "candidate", ID: id.String()}
	}
	return c, nil
}

func (f *fakeService) ListCandidates(context.Context) ([]types.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.Candidate
	for _, c := range f.candidates {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeService) DeleteCandidate(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.candidates[id]; !ok {
		return &matching.NotFoundError{Resource: "candidate", ID: id.String()}
	}
	delete(f.candidates, id)
	return nil
}

func (f *fakeService) RegenerateCandidateProfile(ctx context.Context, id uuid.UUID) (*types.Candidate, error) {
	return f.GetCandidate(ctx, id)
}

func (f *fakeService) CreateJob(_ context.Context, in matching.CreateJobInput) (*types.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j := &types.Job{ID: uuid.New(), Title: in.Title, RawText: in.Description, Profile: &types.JobProfile{}}
	f.jobs[j.ID] = j
	return j, nil
}

func (f *fakeService) GetJob(_ context.Context, id uuid.UUID) (*types.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return nil, &matching.NotFoundError{Resource: "job", ID: id.String()}
	}
	return j, nil
}

func (f *fakeService) ListJobs(context.Context) ([]types.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.Job
	for _, j := range f.jobs {
		out = append(out, *j)
	}
	return out, nil
}

func (f *fakeService) DeleteJob(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[id]; !ok {
		return &matching.NotFoundError{Resource: "job", ID: id.String()}
	}
	delete(f.jobs, id)
	return nil
}

func (f *fakeService) RegenerateJobProfile(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	return f.GetJob(ctx, id)
}

func (f *fakeService) EmbeddingStatus(ctx context.Context, target types.EmbeddingTarget) (types.EmbeddingState, error) {
	if target.Kind == types.KindJob {
		j, err := f.GetJob(ctx, target.ID)
		if err != nil {
			return types.EmbeddingState{}, err
		}
		return j.Embedding, nil
	}
	c, err := f.GetCandidate(ctx, target.ID)
	if err != nil {
		return types.EmbeddingState{}, err
	}
	return c.Embedding, nil
}

func (f *fakeService) GenerateEmbedding(ctx context.Context, target types.EmbeddingTarget) (types.EmbeddingState, error) {
	if _, err := f.EmbeddingStatus(ctx, target); err != nil {
		return types.EmbeddingState{}, err
	}
	if !f.embedEnabled {
		return types.EmbeddingState{}, matching.ErrEmbeddingDisabled
	}
	f.mu.Lock()
	f.embedded = append(f.embedded, target)
	f.mu.Unlock()
	return types.EmbeddingState{Status: types.EmbeddingPending}, nil
}

func (f *fakeService) GenerateMissingEmbeddings(_ context.Context, kind types.ProfileKind) (matching.BatchEmbeddingResult, error) {
	if !f.embedEnabled {
		return matching.BatchEmbeddingResult{}, matching.ErrEmbeddingDisabled
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.candidates)
	if kind == types.KindJob {
		n = len(f.jobs)
	}
	return matching.BatchEmbeddingResult{Submitted: n}, nil
}

func (f *fakeService) RunMatching(ctx context.Context, jobID uuid.UUID) (*types.RunSummary, error) {
	if f.runErr != nil {
		return nil, f.runErr
	}
	j, err := f.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	summary := &types.RunSummary{JobID: j.ID, JobTitle: j.Title}
	for _, c := range f.candidates {
		m := types.MatchResult{
			ID:            uuid.New(),
			JobID:         j.ID,
			CandidateID:   c.ID,
			CandidateName: c.Name,
			Scores:        types.Scores{Final: 42},
			Status:        types.StatusPending,
			Rank:          1,
		}
		f.matches[m.ID] = &m
		summary.Matches = append(summary.Matches, m)
	}
	summary.Count = len(summary.Matches)
	summary.Created = summary.Count
	summary.AverageScore = 42
	return summary, nil
}

func (f *fakeService) Results(ctx context.Context, jobID uuid.UUID) ([]types.MatchResult, error) {
	if _, err := f.GetJob(ctx, jobID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.MatchResult
	for _, m := range f.matches {
		if m.JobID == jobID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeService) MatchDetail(_ context.Context, matchID uuid.UUID) (*types.MatchDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[matchID]
	if !ok {
		return nil, &matching.NotFoundError{Resource: "match", ID: matchID.String()}
	}
	return &types.MatchDetail{MatchResult: *m, Coverage: []types.CategoryCoverage{}}, nil
}

func (f *fakeService) UpdateStatus(_ context.Context, matchID uuid.UUID, status string) (*types.MatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[matchID]
	if !ok {
		return nil, &matching.NotFoundError{Resource: "match", ID: matchID.String()}
	}
	m.Status = types.MatchStatus(status)
	return m, nil
}

func newTestServer(t *testing.T, svc Service, opts Options) *Server {
	t.Helper()
	s := New(svc, opts)
	t.Cleanup(s.rateLimiter.Stop)
	return s
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, newFakeService(), Options{})
	w := doRequest(t, s.Handler(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	down := newTestServer(t, newFakeService(), Options{Ready: func(context.Context) error {
		return errors.New("database unreachable")
	}})
	w = doRequest(t, down.Handler(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, newFakeService(), Options{})
	doRequest(t, s.Handler(), http.MethodGet, "/health", nil)

	w := doRequest(t, s.Handler(), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "matcher_http_requests_total")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, newFakeService(), Options{})
	w := doRequest(t, s.Handler(), http.MethodOptions, "/candidates", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestCandidateLifecycle(t *testing.T) {
	svc := newFakeService()
	h := newTestServer(t, svc, Options{}).Handler()

	w := doRequest(t, h, http.MethodPost, "/candidates", CreateCandidateRequest{Name: "Ada", Text: "Go developer"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody(t, w)
	id := created["id"].(string)
	assert.Equal(t, "Ada", created["name"])
	completeness := created["completeness"].(map[string]any)
	assert.Equal(t, float64(25), completeness["score"])

	w = doRequest(t, h, http.MethodGet, "/candidates/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, decodeBody(t, w)["id"])

	w = doRequest(t, h, http.MethodGet, "/candidates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["count"])

	w = doRequest(t, h, http.MethodPost, "/candidates/"+id+"/profile", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, h, http.MethodDelete, "/candidates/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, h, http.MethodGet, "/candidates/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "candidate not found: "+id, decodeBody(t, w)["error"])
}

func TestCreateCandidate_Validation(t *testing.T) {
	h := newTestServer(t, newFakeService(), Options{}).Handler()

	tests := []struct {
		name string
		body any
		want string
	}{
		{name: "malformed JSON", body: "{", want: "validation error: body - invalid request body"},
		{name: "missing text", body: CreateCandidateRequest{Name: "Ada"}, want: "validation error: text - is required"},
		{name: "whitespace text", body: CreateCandidateRequest{Name: "Ada", Text: "   "}, want: "validation error in text: text is empty"},
		{name: "name too long", body: CreateCandidateRequest{Name: strings.Repeat("a", 201), Text: "x"}, want: "validation error: name - must be at most 200 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, h, http.MethodPost, "/candidates", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, decodeBody(t, w)["error"])
		})
	}
}

func TestListCandidates_EmptyIsArray(t *testing.T) {
	h := newTestServer(t, newFakeService(), Options{}).Handler()
	w := doRequest(t, h, http.MethodGet, "/candidates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"candidates":[],"count":0}`, w.Body.String())
}

func TestInvalidPathID(t *testing.T) {
	h := newTestServer(t, newFakeService(), Options{}).Handler()

	for _, path := range []string{"/candidates/not-a-uuid", "/jobs/123", "/matches/abc"} {
		w := doRequest(t, h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestJobMatchingFlow(t *testing.T) {
	svc := newFakeService()
	h := newTestServer(t, svc, Options{}).Handler()

	w := doRequest(t, h, http.MethodPost, "/candidates", CreateCandidateRequest{Name: "Ada", Text: "Go developer"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, h, http.MethodPost, "/jobs", CreateJobRequest{Title: "Backend", Description: "Go, PostgreSQL"})
	require.Equal(t, http.StatusCreated, w.Code)
	jobID := decodeBody(t, w)["id"].(string)

	w = doRequest(t, h, http.MethodPost, "/jobs/"+jobID+"/match", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var summary types.RunSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.Count)
	require.Len(t, summary.Matches, 1)
	matchID := summary.Matches[0].ID.String()

	w = doRequest(t, h, http.MethodGet, "/jobs/"+jobID+"/results", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["count"])

	w = doRequest(t, h, http.MethodGet, "/matches/"+matchID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decodeBody(t, w), "category_coverage")

	w = doRequest(t, h, http.MethodPut, "/matches/"+matchID+"/status", UpdateStatusRequest{Status: "shortlisted"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "shortlisted", decodeBody(t, w)["status"])
}

func TestRunMatching_Errors(t *testing.T) {
	svc := newFakeService()
	h := newTestServer(t, svc, Options{}).Handler()

	w := doRequest(t, h, http.MethodPost, "/jobs/"+uuid.NewString()+"/match", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	svc.runErr = errors.New("connection reset by peer")
	w = doRequest(t, h, http.MethodPost, "/jobs/"+uuid.NewString()+"/match", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decodeBody(t, w)["error"])
}

func TestUpdateStatus_Validation(t *testing.T) {
	h := newTestServer(t, newFakeService(), Options{}).Handler()
	path := "/matches/" + uuid.NewString() + "/status"

	w := doRequest(t, h, http.MethodPut, path, UpdateStatusRequest{Status: "hired"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation error: status - must be one of: pending, shortlisted, rejected", decodeBody(t, w)["error"])

	w = doRequest(t, h, http.MethodPut, path, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation error: status - is required", decodeBody(t, w)["error"])

	w = doRequest(t, h, http.MethodPut, path, UpdateStatusRequest{Status: "rejected"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEmbeddingEndpoints(t *testing.T) {
	svc := newFakeService()
	h := newTestServer(t, svc, Options{}).Handler()

	w := doRequest(t, h, http.MethodPost, "/jobs", CreateJobRequest{Title: "Backend", Description: "Go"})
	require.Equal(t, http.StatusCreated, w.Code)
	jobID := decodeBody(t, w)["id"].(string)

	w = doRequest(t, h, http.MethodGet, "/jobs/"+jobID+"/embedding", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, h, http.MethodPost, "/jobs/"+jobID+"/embedding", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"status":"pending"}`, w.Body.String())
	require.Len(t, svc.embedded, 1)
	assert.Equal(t, types.KindJob, svc.embedded[0].Kind)

	w = doRequest(t, h, http.MethodPost, "/embeddings/job/missing", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"submitted":1,"skipped":0}`, w.Body.String())

	w = doRequest(t, h, http.MethodPost, "/embeddings/resume/missing", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.embedEnabled = false
	w = doRequest(t, h, http.MethodPost, "/jobs/"+jobID+"/embedding", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, matching.ErrEmbeddingDisabled.Error(), decodeBody(t, w)["error"])
}

func TestAuthentication(t *testing.T) {
	jwtService := NewJWTService(config.JWTConfig{Secret: "server-test-secret", ExpirationHours: 1})
	h := newTestServer(t, newFakeService(), Options{JWT: jwtService}).Handler()

	w := doRequest(t, h, http.MethodGet, "/candidates", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	token, err := jwtService.GenerateToken("recruiter-1")
	require.NoError(t, err)
	w = doRequest(t, h, http.MethodGet, "/candidates", nil, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit(t *testing.T) {
	svc := newFakeService()
	h := newTestServer(t, svc, Options{Config: config.ServerConfig{RateLimit: true}}).Handler()
	path := "/jobs/" + uuid.NewString() + "/match"

	for i := 0; i < 5; i++ {
		w := doRequest(t, h, http.MethodPost, path, nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "30", w.Header().Get("X-RateLimit-Limit"))
	}

	w := doRequest(t, h, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	body := decodeBody(t, w)
	assert.Equal(t, "rate_limit_exceeded", body["error"])
	assert.Equal(t, float64(120), body["retry_after"])

	off := newTestServer(t, svc, Options{}).Handler()
	for i := 0; i < 10; i++ {
		w := doRequest(t, off, http.MethodPost, path, nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	}
}

func TestStart_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, newFakeService(), Options{Config: config.ServerConfig{Port: 0, ShutdownTimeout: time.Second}})
	s.httpServer.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
