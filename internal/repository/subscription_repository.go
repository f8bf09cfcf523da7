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
	"jobhunter/internal/domain/subscription"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

// SubscriptionRecord carries the digest inputs alongside the lifecycle
// state so the scheduler can trigger a run without a second lookup.
type SubscriptionRecord struct {
	subscription.Subscription
	Profile     *profile.Profile
	Preferences profile.Preferences
	Weights     scoring.Weights
}

type SubscriptionRepository interface {
	Create(ctx context.Context, rec SubscriptionRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (SubscriptionRecord, error)
	// CompareAndSetStatus guards lifecycle changes the same way the
	// submission repository does.
	CompareAndSetStatus(ctx context.Context, id uuid.UUID, from []subscription.Status, to subscription.Status) (bool, error)
	// ListDue returns ACTIVE subscriptions whose nextRunAt has passed.
	// Expiry is the caller's concern; rows are returned as stored.
	ListDue(ctx context.Context, now time.Time) ([]SubscriptionRecord, error)
	// RecordRun appends one immutable run record and advances the
	// cadence clock.
	RecordRun(ctx context.Context, id uuid.UUID, run subscription.Run, nextRunAt time.Time) error
	ListRuns(ctx context.Context, id uuid.UUID) ([]subscription.Run, error)
}

type PostgresSubscriptionRepository struct {
	db database.DB
}

func NewPostgresSubscriptionRepository(db database.DB) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

func (r *PostgresSubscriptionRepository) Create(ctx context.Context, rec SubscriptionRecord) error {
	prof, err := marshalProfile(rec.Profile)
	if err != nil {
		return err
	}
	prefs, err := marshalPreferences(rec.Preferences)
	if err != nil {
		return err
	}
	weights, err := marshalWeights(rec.Weights)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO subscriptions
		 (id, email, status, duration_days, next_run_at, last_run_at, profile, preferences, weights, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.Email, string(rec.Status), rec.DurationDays, rec.NextRunAt,
		rec.LastRunAt, prof, prefs, weights, rec.CreatedAt,
	)
	return err
}

const subscriptionColumns = `id, email, status, duration_days, next_run_at, last_run_at,
	profile, preferences, weights, created_at`

func (r *PostgresSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (SubscriptionRecord, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id)
	rec, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			return SubscriptionRecord{}, ErrSubscriptionNotFound
		}
		return SubscriptionRecord{}, err
	}
	return rec, nil
}

func (r *PostgresSubscriptionRepository) CompareAndSetStatus(ctx context.Context, id uuid.UUID, from []subscription.Status, to subscription.Status) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	fromStrs := make([]string, 0, len(from))
	for _, f := range from {
		fromStrs = append(fromStrs, string(f))
	}
	affected, err := r.db.Exec(ctx,
		`UPDATE subscriptions SET status = $2 WHERE id = $1 AND status = ANY($3)`,
		id, string(to), fromStrs,
	)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PostgresSubscriptionRepository) ListDue(ctx context.Context, now time.Time) ([]SubscriptionRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+subscriptionColumns+`
		 FROM subscriptions
		 WHERE status = $1 AND next_run_at <= $2
		 ORDER BY next_run_at`,
		string(subscription.StatusActive), now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SubscriptionRecord, 0)
	for rows.Next() {
		rec, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresSubscriptionRepository) RecordRun(ctx context.Context, id uuid.UUID, run subscription.Run, nextRunAt time.Time) error {
	if _, err := r.db.Exec(ctx,
		`INSERT INTO subscription_runs (id, subscription_id, status, job_count, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), id, string(run.Status), run.JobCount, run.CreatedAt,
	); err != nil {
		return err
	}
	affected, err := r.db.Exec(ctx,
		`UPDATE subscriptions SET last_run_at = $2, next_run_at = $3 WHERE id = $1`,
		id, run.CreatedAt, nextRunAt,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (r *PostgresSubscriptionRepository) ListRuns(ctx context.Context, id uuid.UUID) ([]subscription.Run, error) {
	rows, err := r.db.Query(ctx,
		`SELECT status, job_count, created_at
		 FROM subscription_runs
		 WHERE subscription_id = $1
		 ORDER BY created_at`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]subscription.Run, 0)
	for rows.Next() {
		var (
			run    subscription.Run
			status string
		)
		if err := rows.Scan(&status, &run.JobCount, &run.CreatedAt); err != nil {
			return nil, err
		}
		run.Status = subscription.RunStatus(status)
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanSubscription(row database.Row) (SubscriptionRecord, error) {
	var (
		rec        SubscriptionRecord
		status     string
		rawProfile []byte
		rawPrefs   []byte
		rawWeights []byte
	)
	if err := row.Scan(&rec.ID, &rec.Email, &status, &rec.DurationDays,
		&rec.NextRunAt, &rec.LastRunAt, &rawProfile, &rawPrefs, &rawWeights,
		&rec.CreatedAt); err != nil {
		return SubscriptionRecord{}, err
	}

	st, err := subscription.ParseStatus(status)
	if err != nil {
		return SubscriptionRecord{}, err
	}
	rec.Status = st

	if rec.Profile, err = unmarshalProfile(rawProfile); err != nil {
		return SubscriptionRecord{}, err
	}
	if rec.Preferences, err = unmarshalPreferences(rawPrefs); err != nil {
		return SubscriptionRecord{}, err
	}
	if rec.Weights, err = unmarshalWeights(rawWeights); err != nil {
		return SubscriptionRecord{}, err
	}
	return rec, nil
}
