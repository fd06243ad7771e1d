package server

import (
	"net/http"

	"github.com/jonathan/talent-matcher/internal/matching"
	"github.com/jonathan/talent-matcher/internal/parsing"
	"github.com/jonathan/talent-matcher/internal/types"
)

// ---------------------------------------------------------------------
// Candidate Handlers
// ---------------------------------------------------------------------

// CreateCandidateRequest carries extracted resume text. Name defaults to
// the file name without its extension.
type CreateCandidateRequest struct {
	Name     string `json:"name" validate:"max=200"`
	FileName string `json:"file_name" validate:"max=255"`
	Text     string `json:"text" validate:"required"`
}

// CandidateResponse is a candidate with its profile completeness.
type CandidateResponse struct {
	*types.Candidate
	Completeness types.Completeness `json:"completeness"`
}

func (s *Server) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req CreateCandidateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.serviceError(w, r, err)
		return
	}

	c, err := s.service.CreateCandidate(r.Context(), matching.CreateCandidateInput{
		Name:     req.Name,
		FileName: req.FileName,
		Text:     req.Text,
	})
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, candidateResponse(c))
}

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := s.service.ListCandidates(r.Context())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	if candidates == nil {
		candidates = []types.Candidate{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"candidates": candidates,
		"count":      len(candidates),
	})
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "candidate")
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	c, err := s.service.GetCandidate(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, candidateResponse(c))
}

func (s *Server) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "candidate")
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	if err := s.service.DeleteCandidate(r.Context(), id); err != nil {
		s.serviceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRegenerateCandidateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "candidate")
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	c, err := s.service.RegenerateCandidateProfile(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, candidateResponse(c))
}

func candidateResponse(c *types.Candidate) CandidateResponse {
	return CandidateResponse{Candidate: c, Completeness: parsing.Completeness(c)}
}

// ---------------------------------------------------------------------
// Job Handlers
// ---------------------------------------------------------------------

// CreateJobRequest carries a job title and its description, plain text or HTML.
type CreateJobRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := s.decode(w, r, &req); err != nil {
		s.serviceError(w, r, err)
		return
	}

	j, err := s.service.CreateJob(r.Context(), matching.CreateJobInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, j)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.service.ListJobs(r.Context())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []types.Job{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "job")
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	j, err := s.service.GetJob(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, j)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "job")
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	if err := s.service.DeleteJob(r.Context(), id); err != nil {
		s.serviceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRegenerateJobProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "job")
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	j, err := s.service.RegenerateJobProfile(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, j)
}

// ---------------------------------------------------------------------
// Embedding Handlers
// ---------------------------------------------------------------------

func (s *Server) embeddingStatusHandler(kind types.ProfileKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, string(kind))
		if err != nil {
			s.serviceError(w, r, err)
			return
		}

		state, err := s.service.EmbeddingStatus(r.Context(), types.EmbeddingTarget{Kind: kind, ID: id})
		if err != nil {
			s.serviceError(w, r, err)
			return
		}

		s.jsonResponse(w, http.StatusOK, state)
	}
}

func (s *Server) generateEmbeddingHandler(kind types.ProfileKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, string(kind))
		if err != nil {
			s.serviceError(w, r, err)
			return
		}

		state, err := s.service.GenerateEmbedding(r.Context(), types.EmbeddingTarget{Kind: kind, ID: id})
		if err != nil {
			s.serviceError(w, r, err)
			return
		}

		s.jsonResponse(w, http.StatusAccepted, state)
	}
}

func (s *Server) handleGenerateMissingEmbeddings(w http.ResponseWriter, r *http.Request) {
	kind := types.ProfileKind(r.PathValue("kind"))
	if !kind.IsValid() {
		s.serviceError(w, r, &ErrValidation{Field: "kind", Message: "must be one of: candidate, job"})
		return
	}

	result, err := s.service.GenerateMissingEmbeddings(r.Context(), kind)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusAccepted, result)
}

// ---------------------------------------------------------------------
// Matching Handlers
// ---------------------------------------------------------------------

// UpdateStatusRequest sets the recruiter decision on a match.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending shortlisted rejected"`
}

func (s *Server) handleRunMatching(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "job")
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	summary, err := s.service.RunMatching(r.Context(), jobID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, summary)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "job")
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	results, err := s.service.Results(r.Context(), jobID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	if results == nil {
		results = []types.MatchResult{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"job_id":  jobID,
		"results": results,
		"count":   len(results),
	})
}

func (s *Server) handleMatchDetail(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathID(r, "match")
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	detail, err := s.service.MatchDetail(r.Context(), matchID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, detail)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathID(r, "match")
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	var req UpdateStatusRequest
	if err := s.decode(w, r, &req); err != nil {
		s.serviceError(w, r, err)
		return
	}

	match, err := s.service.UpdateStatus(r.Context(), matchID, req.Status)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, match)
}
