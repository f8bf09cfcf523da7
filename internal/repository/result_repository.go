package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"jobhunter/internal/database"
	"jobhunter/internal/domain/job"
)

type ResultRepository interface {
	// ReplaceForSubmission swaps the stored result set atomically from
	// the caller's point of view: old rows go, ranked rows come in
	// rank order.
	ReplaceForSubmission(ctx context.Context, submissionID uuid.UUID, results []job.ScoredPosting) error
	ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]job.ScoredPosting, error)
}

type PostgresResultRepository struct {
	db database.DB
}

func NewPostgresResultRepository(db database.DB) *PostgresResultRepository {
	return &PostgresResultRepository{db: db}
}

func (r *PostgresResultRepository) ReplaceForSubmission(ctx context.Context, submissionID uuid.UUID, results []job.ScoredPosting) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM submission_results WHERE submission_id = $1`, submissionID); err != nil {
		return err
	}
	for i, res := range results {
		breakdown, err := json.Marshal(res.Breakdown)
		if err != nil {
			return err
		}
		if _, err := r.db.Exec(ctx,
			`INSERT INTO submission_results
			 (id, submission_id, rank, title, company, location, job_url, site,
			  date_posted, salary, is_remote, score, tier, seniority, breakdown)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			uuid.New(), submissionID, i+1, res.Title, res.Company, res.Location,
			res.JobURL, res.Site, res.DatePosted, res.Salary, res.IsRemote,
			res.Score, res.Tier, res.Seniority, breakdown,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresResultRepository) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]job.ScoredPosting, error) {
	rows, err := r.db.Query(ctx,
		`SELECT title, company, location, job_url, site, date_posted, salary,
		        is_remote, score, tier, seniority, breakdown
		 FROM submission_results
		 WHERE submission_id = $1
		 ORDER BY rank`, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.ScoredPosting, 0)
	for rows.Next() {
		var (
			sp           job.ScoredPosting
			rawBreakdown []byte
		)
		if err := rows.Scan(&sp.Title, &sp.Company, &sp.Location, &sp.JobURL,
			&sp.Site, &sp.DatePosted, &sp.Salary, &sp.IsRemote, &sp.Score,
			&sp.Tier, &sp.Seniority, &rawBreakdown); err != nil {
			return nil, err
		}
		if len(rawBreakdown) > 0 {
			if err := json.Unmarshal(rawBreakdown, &sp.Breakdown); err != nil {
				return nil, err
			}
		}
		out = append(out, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
