package types

import (
	"time"

	"github.com/google/uuid"
)

// EmbeddingStatus tracks background embedding generation.
type EmbeddingStatus string

// Embedding statuses. Failed is terminal until a retry is requested.
const (
	EmbeddingPending    EmbeddingStatus = "pending"
	EmbeddingProcessing EmbeddingStatus = "processing"
	EmbeddingReady      EmbeddingStatus = "ready"
	EmbeddingFailed     EmbeddingStatus = "failed"
)

// EmbeddingState is the pollable state of an entity's embedding.
type EmbeddingState struct {
	Status     EmbeddingStatus `json:"status"`
	Error      string          `json:"error,omitempty"`
	Model      string          `json:"model,omitempty"`
	Dimensions int             `json:"dimensions,omitempty"`
	UpdatedAt  *time.Time      `json:"updated_at,omitempty"`
}

// Candidate is a stored resume and its profile.
type Candidate struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	FileName  string            `json:"file_name,omitempty"`
	RawText   string            `json:"raw_text,omitempty"`
	Profile   *CandidateProfile `json:"profile,omitempty"`
	Embedding EmbeddingState    `json:"embedding"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Job is a stored job opening and its profile.
type Job struct {
	ID        uuid.UUID      `json:"id"`
	Title     string         `json:"title"`
	RawText   string         `json:"raw_text,omitempty"`
	Profile   *JobProfile    `json:"profile,omitempty"`
	Embedding EmbeddingState `json:"embedding"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Completeness scores how much of a candidate profile is filled in.
type Completeness struct {
	Score       int      `json:"score"`
	Label       string   `json:"label"`
	Suggestions []string `json:"suggestions"`
}

// EmbeddingTarget identifies the entity whose embedding is generated.
type EmbeddingTarget struct {
	Kind ProfileKind `json:"kind"`
	ID   uuid.UUID   `json:"id"`
}

// EmbeddingUpdate is a status transition written by the embedding worker.
// Vector and Model are set only for ready updates, Error only for failed ones.
type EmbeddingUpdate struct {
	Status EmbeddingStatus
	Vector []float32
	Model  string
	Error  string
}
