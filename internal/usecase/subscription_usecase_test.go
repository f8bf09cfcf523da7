package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobhunter/internal/domain/profile"
	"jobhunter/internal/domain/scoring"
	"jobhunter/internal/domain/subscription"
	"jobhunter/internal/repository"
)

type memSubscriptionRepo struct {
	mu   sync.Mutex
	recs map[uuid.UUID]repository.SubscriptionRecord
	runs map[uuid.UUID][]subscription.Run
}

func newMemSubscriptionRepo() *memSubscriptionRepo {
	return &memSubscriptionRepo{
		recs: make(map[uuid.UUID]repository.SubscriptionRecord),
		runs: make(map[uuid.UUID][]subscription.Run),
	}
}

func (r *memSubscriptionRepo) Create(_ context.Context, rec repository.SubscriptionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs[rec.ID] = rec
	return nil
}

func (r *memSubscriptionRepo) FindByID(_ context.Context, id uuid.UUID) (repository.SubscriptionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[id]
	if !ok {
		return repository.SubscriptionRecord{}, repository.ErrSubscriptionNotFound
	}
	return rec, nil
}

func (r *memSubscriptionRepo) CompareAndSetStatus(_ context.Context, id uuid.UUID, from []subscription.Status, to subscription.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[id]
	if !ok {
		return false, nil
	}
	matched := false
	for _, f := range from {
		if rec.Status == f {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	rec.Status = to
	r.recs[id] = rec
	return true, nil
}

func (r *memSubscriptionRepo) ListDue(_ context.Context, now time.Time) ([]repository.SubscriptionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []repository.SubscriptionRecord
	for _, rec := range r.recs {
		if rec.Status == subscription.StatusActive && !rec.NextRunAt.After(now) {
			due = append(due, rec)
		}
	}
	return due, nil
}

func (r *memSubscriptionRepo) RecordRun(_ context.Context, id uuid.UUID, run subscription.Run, nextRunAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[id]
	if !ok {
		return repository.ErrSubscriptionNotFound
	}
	r.runs[id] = append(r.runs[id], run)
	rec.LastRunAt = &run.CreatedAt
	rec.NextRunAt = nextRunAt
	r.recs[id] = rec
	return nil
}

func (r *memSubscriptionRepo) ListRuns(_ context.Context, id uuid.UUID) ([]subscription.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs[id], nil
}

func (r *memSubscriptionRepo) put(rec repository.SubscriptionRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs[rec.ID] = rec
}

func (r *memSubscriptionRepo) status(t *testing.T, id uuid.UUID) subscription.Status {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[id]
	if !ok {
		t.Fatalf("subscription %s not in repo", id)
	}
	return rec.Status
}

type stubDigestRunner struct {
	mu       sync.Mutex
	jobCount int
	err      error
	ran      []uuid.UUID
}

func (d *stubDigestRunner) RunDigest(_ context.Context, rec repository.SubscriptionRecord) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ran = append(d.ran, rec.ID)
	// A failed run may still report a partial count; recording must
	// zero it.
	return d.jobCount, d.err
}

func (d *stubDigestRunner) runCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.ran)
}

var subTestNow = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

func newTestSubscriptions(repo *memSubscriptionRepo, runner *stubDigestRunner) *Subscriptions {
	u := NewSubscriptionUsecase(repo, runner, zap.NewNop())
	u.now = func() time.Time { return subTestNow }
	return u
}

func activeRecord(email string, durationDays int, createdAgo time.Duration) repository.SubscriptionRecord {
	sub := subscription.New(email, durationDays, subTestNow.Add(-createdAgo))
	sub.NextRunAt = subTestNow.Add(-time.Minute)
	return repository.SubscriptionRecord{
		Subscription: sub,
		Profile:      &profile.Profile{Titles: []string{"software engineer"}},
		Weights:      scoring.DefaultWeights(),
	}
}

func TestCreateSubscription(t *testing.T) {
	repo := newMemSubscriptionRepo()
	u := newTestSubscriptions(repo, &stubDigestRunner{})

	sub, err := u.Create(context.Background(), "User@Example.com", 30, nil, profile.Preferences{}, scoring.DefaultWeights())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sub.Status != subscription.StatusActive {
		t.Errorf("status = %s, want ACTIVE", sub.Status)
	}
	if want := subTestNow.Add(subscription.Cadence); !sub.NextRunAt.Equal(want) {
		t.Errorf("first run at %v, want %v", sub.NextRunAt, want)
	}
}

func TestCreateSubscriptionValidation(t *testing.T) {
	u := newTestSubscriptions(newMemSubscriptionRepo(), &stubDigestRunner{})
	ctx := context.Background()

	if _, err := u.Create(ctx, "nope", 30, nil, profile.Preferences{}, scoring.DefaultWeights()); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad email error = %v, want ErrInvalidInput", err)
	}
	if _, err := u.Create(ctx, "a@b.com", -1, nil, profile.Preferences{}, scoring.DefaultWeights()); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative duration error = %v, want ErrInvalidInput", err)
	}
	bad := scoring.DefaultWeights()
	bad.Recency = -0.1
	if _, err := u.Create(ctx, "a@b.com", 30, nil, profile.Preferences{}, bad); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad weights error = %v, want ErrInvalidInput", err)
	}
}

func TestPauseResumeCancel(t *testing.T) {
	repo := newMemSubscriptionRepo()
	rec := activeRecord("user@example.com", 30, time.Hour)
	repo.put(rec)
	u := newTestSubscriptions(repo, &stubDigestRunner{})
	ctx := context.Background()

	if err := u.Pause(ctx, rec.ID); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if got := repo.status(t, rec.ID); got != subscription.StatusPaused {
		t.Fatalf("status = %s, want PAUSED", got)
	}
	if err := u.Resume(ctx, rec.ID); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if got := repo.status(t, rec.ID); got != subscription.StatusActive {
		t.Fatalf("status = %s, want ACTIVE", got)
	}
	if err := u.Cancel(ctx, rec.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got := repo.status(t, rec.ID); got != subscription.StatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", got)
	}

	// Cancelled is final.
	if err := u.Resume(ctx, rec.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Resume after cancel error = %v, want ErrInvalidState", err)
	}
}

func TestGetExpiresLazily(t *testing.T) {
	repo := newMemSubscriptionRepo()
	// Created 31 days ago with a 30 day duration.
	rec := activeRecord("user@example.com", 30, 31*24*time.Hour)
	repo.put(rec)
	u := newTestSubscriptions(repo, &stubDigestRunner{})

	got, _, err := u.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != subscription.StatusExpired {
		t.Errorf("returned status = %s, want EXPIRED", got.Status)
	}
	if stored := repo.status(t, rec.ID); stored != subscription.StatusExpired {
		t.Errorf("stored status = %s, want EXPIRED", stored)
	}
}

func TestIndefiniteSubscriptionNeverExpires(t *testing.T) {
	repo := newMemSubscriptionRepo()
	// Duration 0, created ten years ago.
	rec := activeRecord("user@example.com", 0, 10*365*24*time.Hour)
	repo.put(rec)
	u := newTestSubscriptions(repo, &stubDigestRunner{})

	got, _, err := u.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != subscription.StatusActive {
		t.Errorf("status = %s, want ACTIVE", got.Status)
	}
}

func TestRunDueExecutesDigests(t *testing.T) {
	repo := newMemSubscriptionRepo()
	rec := activeRecord("user@example.com", 30, time.Hour)
	repo.put(rec)
	runner := &stubDigestRunner{jobCount: 17}
	u := newTestSubscriptions(repo, runner)

	if err := u.RunDue(context.Background(), subTestNow); err != nil {
		t.Fatalf("RunDue: %v", err)
	}
	if runner.runCount() != 1 {
		t.Fatalf("digest ran %d times, want 1", runner.runCount())
	}

	runs, _ := repo.ListRuns(context.Background(), rec.ID)
	if len(runs) != 1 {
		t.Fatalf("recorded %d runs, want 1", len(runs))
	}
	if runs[0].Status != subscription.RunCompleted || runs[0].JobCount != 17 {
		t.Errorf("run = %+v", runs[0])
	}

	got, _ := repo.FindByID(context.Background(), rec.ID)
	if want := subTestNow.Add(subscription.Cadence); !got.NextRunAt.Equal(want) {
		t.Errorf("next run at %v, want %v", got.NextRunAt, want)
	}
}

func TestRunDueRecordsFailures(t *testing.T) {
	repo := newMemSubscriptionRepo()
	rec := activeRecord("user@example.com", 30, time.Hour)
	repo.put(rec)
	runner := &stubDigestRunner{jobCount: 5, err: errors.New("smtp down")}
	u := newTestSubscriptions(repo, runner)

	if err := u.RunDue(context.Background(), subTestNow); err != nil {
		t.Fatalf("RunDue: %v", err)
	}

	runs, _ := repo.ListRuns(context.Background(), rec.ID)
	if len(runs) != 1 || runs[0].Status != subscription.RunFailed {
		t.Fatalf("runs = %+v, want one failed run", runs)
	}
	if runs[0].JobCount != 0 {
		t.Errorf("failed run jobCount = %d, want 0", runs[0].JobCount)
	}

	// The cadence clock still advances so one broken run does not wedge
	// the subscription.
	got, _ := repo.FindByID(context.Background(), rec.ID)
	if want := subTestNow.Add(subscription.Cadence); !got.NextRunAt.Equal(want) {
		t.Errorf("next run at %v, want %v", got.NextRunAt, want)
	}
}

func TestRunDueSkipsExpired(t *testing.T) {
	repo := newMemSubscriptionRepo()
	rec := activeRecord("user@example.com", 30, 31*24*time.Hour)
	repo.put(rec)
	runner := &stubDigestRunner{jobCount: 5}
	u := newTestSubscriptions(repo, runner)

	if err := u.RunDue(context.Background(), subTestNow); err != nil {
		t.Fatalf("RunDue: %v", err)
	}
	if runner.runCount() != 0 {
		t.Errorf("expired subscription still ran")
	}
	if got := repo.status(t, rec.ID); got != subscription.StatusExpired {
		t.Errorf("status = %s, want EXPIRED", got)
	}
}

func TestRunDueSkipsPaused(t *testing.T) {
	repo := newMemSubscriptionRepo()
	rec := activeRecord("user@example.com", 30, time.Hour)
	rec.Status = subscription.StatusPaused
	repo.put(rec)
	runner := &stubDigestRunner{jobCount: 5}
	u := newTestSubscriptions(repo, runner)

	if err := u.RunDue(context.Background(), subTestNow); err != nil {
		t.Fatalf("RunDue: %v", err)
	}
	if runner.runCount() != 0 {
		t.Errorf("paused subscription still ran")
	}
}
