package database

import "context"

// schemaStatements creates the tables on startup when they are
// missing. Retention/cleanup of old submissions is handled outside the
// application.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS submissions (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		profile JSONB,
		preferences JSONB NOT NULL DEFAULT '{}'::jsonb,
		weights JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_email_created
		ON submissions (email, created_at)`,
	`CREATE TABLE IF NOT EXISTS submission_results (
		id UUID PRIMARY KEY,
		submission_id UUID NOT NULL REFERENCES submissions(id),
		rank INT NOT NULL,
		title TEXT NOT NULL,
		company TEXT NOT NULL,
		location TEXT NOT NULL,
		job_url TEXT NOT NULL,
		site TEXT NOT NULL,
		date_posted TIMESTAMPTZ,
		salary TEXT NOT NULL DEFAULT '',
		is_remote BOOLEAN NOT NULL DEFAULT FALSE,
		score DOUBLE PRECISION NOT NULL,
		tier TEXT NOT NULL DEFAULT '',
		seniority TEXT NOT NULL DEFAULT '',
		breakdown JSONB NOT NULL DEFAULT '{}'::jsonb
	)`,
	`CREATE INDEX IF NOT EXISTS idx_submission_results_submission
		ON submission_results (submission_id, rank)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL,
		status TEXT NOT NULL,
		duration_days INT NOT NULL DEFAULT 0,
		next_run_at TIMESTAMPTZ NOT NULL,
		last_run_at TIMESTAMPTZ,
		profile JSONB,
		preferences JSONB NOT NULL DEFAULT '{}'::jsonb,
		weights JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_subscriptions_due
		ON subscriptions (status, next_run_at)`,
	`CREATE TABLE IF NOT EXISTS subscription_runs (
		id UUID PRIMARY KEY,
		subscription_id UUID NOT NULL REFERENCES subscriptions(id),
		status TEXT NOT NULL,
		job_count INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

// EnsureSchema applies the schema idempotently.
func EnsureSchema(ctx context.Context, db DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
