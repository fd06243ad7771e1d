package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/talent-matcher/internal/types"
)

const matchColumns = `m.id, m.job_id, m.candidate_id, c.name, j.title,
	m.semantic_score, m.skill_score, m.experience_score, m.final_score,
	m.matched_skills, m.missing_skills, m.bonus_skills,
	m.matched_required_count, m.total_required, m.interpretation, m.status, m.calculated_at`

const matchFrom = ` FROM matches m
	JOIN candidates c ON c.id = m.candidate_id
	JOIN jobs j ON j.id = m.job_id`

// UpsertMatches stores scored results keyed by (job, candidate) in one
// transaction. Scores, skills and interpretation are overwritten; status is
// never touched, so a new pair starts pending and an existing pair keeps the
// recruiter's decision. Each result's ID and Status are filled in from the
// stored row. Returns how many rows were created and updated.
func (db *DB) UpsertMatches(ctx context.Context, results []types.MatchResult) (created, updated int, err error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i := range results {
		r := &results[i]
		matched, err := marshalJSON(r.MatchedSkills, "matched skills")
		if err != nil {
			return 0, 0, err
		}
		missing, err := marshalJSON(r.MissingSkills, "missing skills")
		if err != nil {
			return 0, 0, err
		}
		bonus, err := marshalJSON(r.BonusSkills, "bonus skills")
		if err != nil {
			return 0, 0, err
		}
		interp, err := marshalJSON(r.Interpretation, "interpretation")
		if err != nil {
			return 0, 0, err
		}

		var inserted bool
		err = tx.QueryRow(ctx,
			`INSERT INTO matches (job_id, candidate_id, semantic_score, skill_score, experience_score,
			                      final_score, matched_skills, missing_skills, bonus_skills,
			                      matched_required_count, total_required, interpretation, calculated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, '[]'::jsonb), COALESCE($8, '[]'::jsonb),
			         COALESCE($9, '[]'::jsonb), $10, $11, $12, $13)
			 ON CONFLICT (job_id, candidate_id) DO UPDATE SET
			     semantic_score = EXCLUDED.semantic_score,
			     skill_score = EXCLUDED.skill_score,
			     experience_score = EXCLUDED.experience_score,
			     final_score = EXCLUDED.final_score,
			     matched_skills = EXCLUDED.matched_skills,
			     missing_skills = EXCLUDED.missing_skills,
			     bonus_skills = EXCLUDED.bonus_skills,
			     matched_required_count = EXCLUDED.matched_required_count,
			     total_required = EXCLUDED.total_required,
			     interpretation = EXCLUDED.interpretation,
			     calculated_at = EXCLUDED.calculated_at,
			     updated_at = NOW()
			 RETURNING id, status, (xmax = 0)`,
			r.JobID, r.CandidateID, r.Scores.Semantic, r.Scores.SkillMatch, r.Scores.Experience,
			r.Scores.Final, matched, missing, bonus,
			r.MatchedRequiredCount, r.TotalRequired, interp, r.CalculatedAt,
		).Scan(&r.ID, &r.Status, &inserted)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to upsert match: %w", err)
		}
		if inserted {
			created++
		} else {
			updated++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to commit matches: %w", err)
	}
	return created, updated, nil
}

// ListMatchesForJob returns the stored results for a job ordered by final score.
// Ranks are not stored; callers assign them.
func (db *DB) ListMatchesForJob(ctx context.Context, jobID uuid.UUID) ([]types.MatchResult, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+matchColumns+matchFrom+`
		 WHERE m.job_id = $1
		 ORDER BY m.final_score DESC, m.created_at, m.id`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	results := []types.MatchResult{}
	for rows.Next() {
		r, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		results = append(results, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return results, nil
}

// GetMatch retrieves one stored match. Returns nil, nil when absent.
func (db *DB) GetMatch(ctx context.Context, id uuid.UUID) (*types.MatchResult, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+matchColumns+matchFrom+` WHERE m.id = $1`, id)
	r, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return r, nil
}

// UpdateMatchStatus sets the recruiter status without touching scores.
// Returns false when no match has the ID.
func (db *DB) UpdateMatchStatus(ctx context.Context, id uuid.UUID, status types.MatchStatus) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE matches SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return false, fmt.Errorf("failed to update match status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanMatch(row pgx.Row) (*types.MatchResult, error) {
	var r types.MatchResult
	var matched, missing, bonus, interp []byte

	err := row.Scan(&r.ID, &r.JobID, &r.CandidateID, &r.CandidateName, &r.JobTitle,
		&r.Scores.Semantic, &r.Scores.SkillMatch, &r.Scores.Experience, &r.Scores.Final,
		&matched, &missing, &bonus,
		&r.MatchedRequiredCount, &r.TotalRequired, &interp, &r.Status, &r.CalculatedAt)
	if err != nil {
		return nil, err
	}

	r.MatchedSkills = []types.MatchedSkill{}
	r.MissingSkills = []types.MatchedSkill{}
	r.BonusSkills = []types.MatchedSkill{}
	if err := unmarshalJSON(matched, &r.MatchedSkills, "matched skills"); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(missing, &r.MissingSkills, "missing skills"); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(bonus, &r.BonusSkills, "bonus skills"); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(interp, &r.Interpretation, "interpretation"); err != nil {
		return nil, err
	}
	return &r, nil
}
