package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"jobhunter/internal/database"
	"jobhunter/internal/domain/profile"
	"jobhunter/internal/domain/scoring"
	"jobhunter/internal/domain/submission"
)

var ErrSubmissionNotFound = errors.New("submission not found")

type SubmissionRepository interface {
	Create(ctx context.Context, s submission.Submission) error
	FindByID(ctx context.Context, id uuid.UUID) (submission.Submission, error)
	// CompareAndSetStatus flips status only when the stored status is
	// one of from, returning false without mutation otherwise. This is
	// the concurrency guard for duplicate triggers and late progress
	// reports.
	CompareAndSetStatus(ctx context.Context, id uuid.UUID, from []submission.Status, to submission.Status, errMsg string) (bool, error)
	SaveProfile(ctx context.Context, id uuid.UUID, p profile.Profile) error
	// SaveReview replaces custom skills, preferences and weights in one
	// write while the submission awaits review.
	SaveReview(ctx context.Context, id uuid.UUID, p profile.Profile, prefs profile.Preferences, w scoring.Weights) error
	CountByEmailSince(ctx context.Context, email string, since time.Time) (int, error)
}

type PostgresSubmissionRepository struct {
	db database.DB
}

func NewPostgresSubmissionRepository(db database.DB) *PostgresSubmissionRepository {
	return &PostgresSubmissionRepository{db: db}
}

func (r *PostgresSubmissionRepository) Create(ctx context.Context, s submission.Submission) error {
	prefs, err := marshalPreferences(s.Preferences)
	if err != nil {
		return err
	}
	weights, err := marshalWeights(s.Weights)
	if err != nil {
		return err
	}
	prof, err := marshalProfile(s.Profile)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO submissions (id, email, status, error, profile, preferences, weights, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		s.ID, s.Email, string(s.Status), s.Error, prof, prefs, weights, s.CreatedAt,
	)
	return err
}

func (r *PostgresSubmissionRepository) FindByID(ctx context.Context, id uuid.UUID) (submission.Submission, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, email, status, error, profile, preferences, weights, created_at
		 FROM submissions WHERE id = $1`, id)

	var (
		s          submission.Submission
		status     string
		rawProfile []byte
		rawPrefs   []byte
		rawWeights []byte
	)
	if err := row.Scan(&s.ID, &s.Email, &status, &s.Error, &rawProfile, &rawPrefs, &rawWeights, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			return submission.Submission{}, ErrSubmissionNotFound
		}
		return submission.Submission{}, err
	}

	st, err := submission.ParseStatus(status)
	if err != nil {
		return submission.Submission{}, err
	}
	s.Status = st

	if s.Profile, err = unmarshalProfile(rawProfile); err != nil {
		return submission.Submission{}, err
	}
	if s.Preferences, err = unmarshalPreferences(rawPrefs); err != nil {
		return submission.Submission{}, err
	}
	if s.Weights, err = unmarshalWeights(rawWeights); err != nil {
		return submission.Submission{}, err
	}
	return s, nil
}

func (r *PostgresSubmissionRepository) CompareAndSetStatus(ctx context.Context, id uuid.UUID, from []submission.Status, to submission.Status, errMsg string) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	fromStrs := make([]string, 0, len(from))
	for _, f := range from {
		fromStrs = append(fromStrs, string(f))
	}
	affected, err := r.db.Exec(ctx,
		`UPDATE submissions
		 SET status = $2, error = $3, updated_at = NOW()
		 WHERE id = $1 AND status = ANY($4)`,
		id, string(to), errMsg, fromStrs,
	)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PostgresSubmissionRepository) SaveProfile(ctx context.Context, id uuid.UUID, p profile.Profile) error {
	raw, err := marshalProfile(&p)
	if err != nil {
		return err
	}
	affected, err := r.db.Exec(ctx,
		`UPDATE submissions SET profile = $2, updated_at = NOW() WHERE id = $1`, id, raw)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

func (r *PostgresSubmissionRepository) SaveReview(ctx context.Context, id uuid.UUID, p profile.Profile, prefs profile.Preferences, w scoring.Weights) error {
	rawProfile, err := marshalProfile(&p)
	if err != nil {
		return err
	}
	rawPrefs, err := marshalPreferences(prefs)
	if err != nil {
		return err
	}
	rawWeights, err := marshalWeights(w)
	if err != nil {
		return err
	}
	affected, err := r.db.Exec(ctx,
		`UPDATE submissions
		 SET profile = $2, preferences = $3, weights = $4, updated_at = NOW()
		 WHERE id = $1`,
		id, rawProfile, rawPrefs, rawWeights,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

func (r *PostgresSubmissionRepository) CountByEmailSince(ctx context.Context, email string, since time.Time) (int, error) {
	var n int
	row := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM submissions WHERE email = $1 AND created_at >= $2`,
		email, since)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
