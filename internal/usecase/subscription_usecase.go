package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobhunter/internal/domain/profile"
	"jobhunter/internal/domain/scoring"
	"jobhunter/internal/domain/subscription"
	"jobhunter/internal/repository"
)

// DigestRunner executes one digest run for a subscription: scrape,
// rank, email. It returns how many postings made the digest.
type DigestRunner interface {
	RunDigest(ctx context.Context, rec repository.SubscriptionRecord) (int, error)
}

type SubscriptionUsecase interface {
	Create(ctx context.Context, email string, durationDays int, prof *profile.Profile, prefs profile.Preferences, w scoring.Weights) (subscription.Subscription, error)
	Get(ctx context.Context, id uuid.UUID) (repository.SubscriptionRecord, []subscription.Run, error)
	Pause(ctx context.Context, id uuid.UUID) error
	Resume(ctx context.Context, id uuid.UUID) error
	Cancel(ctx context.Context, id uuid.UUID) error
	RunDue(ctx context.Context, now time.Time) error
}

type Subscriptions struct {
	repo   repository.SubscriptionRepository
	runner DigestRunner
	logger *zap.Logger
	now    func() time.Time
}

func NewSubscriptionUsecase(repo repository.SubscriptionRepository, runner DigestRunner, logger *zap.Logger) *Subscriptions {
	return &Subscriptions{repo: repo, runner: runner, logger: logger, now: time.Now}
}

func (u *Subscriptions) Create(ctx context.Context, email string, durationDays int, prof *profile.Profile, prefs profile.Preferences, w scoring.Weights) (subscription.Subscription, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return subscription.Subscription{}, fmt.Errorf("%w: email", ErrInvalidInput)
	}
	if durationDays < 0 {
		return subscription.Subscription{}, fmt.Errorf("%w: duration must be >= 0 days", ErrInvalidInput)
	}
	if err := w.Validate(); err != nil {
		return subscription.Subscription{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	sub := subscription.New(email, durationDays, u.now().UTC())
	rec := repository.SubscriptionRecord{
		Subscription: sub,
		Profile:      prof,
		Preferences:  prefs,
		Weights:      w,
	}
	if err := u.repo.Create(ctx, rec); err != nil {
		u.logger.Error("subscription create failed", zap.Error(err))
		return subscription.Subscription{}, ErrInternal
	}
	u.logger.Info("subscription created",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("email", email),
		zap.Int("duration_days", durationDays))
	return sub, nil
}

// Get returns the subscription with expiry applied lazily: a read is
// enough to flip an overdue ACTIVE record to EXPIRED.
func (u *Subscriptions) Get(ctx context.Context, id uuid.UUID) (repository.SubscriptionRecord, []subscription.Run, error) {
	rec, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return repository.SubscriptionRecord{}, nil, u.mapErr(err)
	}
	if expired, err := u.expireLazily(ctx, &rec); err != nil {
		return repository.SubscriptionRecord{}, nil, err
	} else if expired {
		rec.Status = subscription.StatusExpired
	}

	runs, err := u.repo.ListRuns(ctx, id)
	if err != nil {
		return repository.SubscriptionRecord{}, nil, ErrInternal
	}
	return rec, runs, nil
}

func (u *Subscriptions) Pause(ctx context.Context, id uuid.UUID) error {
	return u.transition(ctx, id, subscription.StatusPaused)
}

func (u *Subscriptions) Resume(ctx context.Context, id uuid.UUID) error {
	return u.transition(ctx, id, subscription.StatusActive)
}

func (u *Subscriptions) Cancel(ctx context.Context, id uuid.UUID) error {
	return u.transition(ctx, id, subscription.StatusCancelled)
}

func (u *Subscriptions) transition(ctx context.Context, id uuid.UUID, to subscription.Status) error {
	rec, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return u.mapErr(err)
	}
	if expired, err := u.expireLazily(ctx, &rec); err != nil {
		return err
	} else if expired {
		rec.Status = subscription.StatusExpired
	}

	if !subscription.CanTransition(rec.Status, to) {
		return ErrInvalidState
	}
	ok, err := u.repo.CompareAndSetStatus(ctx, id, []subscription.Status{rec.Status}, to)
	if err != nil {
		return ErrInternal
	}
	if !ok {
		return ErrInvalidState
	}
	return nil
}

// RunDue fires a digest run for every due subscription. Failures are
// recorded on the run and never abort the sweep.
func (u *Subscriptions) RunDue(ctx context.Context, now time.Time) error {
	due, err := u.repo.ListDue(ctx, now)
	if err != nil {
		u.logger.Error("listing due subscriptions failed", zap.Error(err))
		return ErrInternal
	}

	for _, rec := range due {
		if expired, err := u.expireLazily(ctx, &rec); err != nil || expired {
			continue
		}
		if !rec.Due(now) {
			continue
		}

		jobCount, runErr := u.runner.RunDigest(ctx, rec)
		status := subscription.RunCompleted
		if runErr != nil {
			status = subscription.RunFailed
			u.logger.Warn("digest run failed",
				zap.String("subscription_id", rec.ID.String()),
				zap.Error(runErr))
		}

		// The domain method owns the cadence math and run shape; the
		// repository just persists what it produced.
		rec.RecordRun(status, jobCount, now)
		run := rec.Runs[len(rec.Runs)-1]
		if err := u.repo.RecordRun(ctx, rec.ID, run, rec.NextRunAt); err != nil {
			u.logger.Error("recording digest run failed",
				zap.String("subscription_id", rec.ID.String()),
				zap.Error(err))
		}
	}
	return nil
}

func (u *Subscriptions) expireLazily(ctx context.Context, rec *repository.SubscriptionRecord) (bool, error) {
	if rec.Status != subscription.StatusActive || !rec.IsExpired(u.now()) {
		return false, nil
	}
	_, err := u.repo.CompareAndSetStatus(ctx, rec.ID,
		[]subscription.Status{subscription.StatusActive}, subscription.StatusExpired)
	if err != nil {
		return false, ErrInternal
	}
	return true, nil
}

func (u *Subscriptions) mapErr(err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return ErrSubscriptionNotFound
	}
	u.logger.Error("subscription repository error", zap.Error(err))
	return ErrInternal
}
