package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobhunter/internal/domain/job"
	"jobhunter/internal/domain/profile"
	"jobhunter/internal/domain/scoring"
	"jobhunter/internal/domain/submission"
	"jobhunter/internal/infrastructure/parser"
	"jobhunter/internal/repository"
)

// RateLimiter guards submission creation. Allow counts one attempt and
// reports whether it stayed within the rolling window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// ScrapeTrigger hands a confirmed submission to the background worker.
// The call must return immediately; the worker reports progress back
// through Report, never by touching submission state directly.
type ScrapeTrigger interface {
	Trigger(sub submission.Submission)
}

// Notifier pushes status transitions to connected clients. Optional.
type Notifier interface {
	SubmissionStatusChanged(id uuid.UUID, status submission.Status, errMsg string)
}

const (
	// RateLimitWindow is the rolling window for new submissions per
	// email.
	RateLimitWindow = 24 * time.Hour
	defaultRateMax  = 3
)

// Report statuses accepted on the report-in interface.
const (
	ReportScraping  = "scraping"
	ReportScoring   = "scoring"
	ReportSending   = "sending"
	ReportCompleted = "completed"
	ReportFailed    = "failed"
)

type SubmissionUsecase interface {
	Create(ctx context.Context, email string) (submission.Submission, error)
	SubmitResume(ctx context.Context, id uuid.UUID, pdf []byte) error
	UpdateReview(ctx context.Context, id uuid.UUID, customSkills []profile.Skill, prefs profile.Preferences, w scoring.Weights) error
	StartScrape(ctx context.Context, id uuid.UUID) error
	Cancel(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (submission.Submission, []job.ScoredPosting, error)
	Report(ctx context.Context, id uuid.UUID, status string, jobCount int, errMsg string) error
}

type Submissions struct {
	repo     repository.SubmissionRepository
	results  repository.ResultRepository
	limiter  RateLimiter
	parser   parser.Parser
	trigger  ScrapeTrigger
	notifier Notifier
	logger   *zap.Logger

	rateMax int
	now     func() time.Time
}

func NewSubmissionUsecase(
	repo repository.SubmissionRepository,
	results repository.ResultRepository,
	limiter RateLimiter,
	p parser.Parser,
	trigger ScrapeTrigger,
	notifier Notifier,
	logger *zap.Logger,
	rateMax int,
) *Submissions {
	if rateMax <= 0 {
		rateMax = defaultRateMax
	}
	return &Submissions{
		repo:     repo,
		results:  results,
		limiter:  limiter,
		parser:   p,
		trigger:  trigger,
		notifier: notifier,
		logger:   logger,
		rateMax:  rateMax,
		now:      time.Now,
	}
}

func (u *Submissions) Create(ctx context.Context, email string) (submission.Submission, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return submission.Submission{}, fmt.Errorf("%w: email", ErrInvalidInput)
	}

	// The limiter counts atomically, so concurrent creates for one
	// email cannot slip past the cap together.
	ok, err := u.limiter.Allow(ctx, email, u.rateMax, RateLimitWindow)
	if err != nil {
		u.logger.Error("rate limiter unavailable", zap.Error(err))
		return submission.Submission{}, ErrInternal
	}
	if !ok {
		return submission.Submission{}, ErrRateLimited
	}

	sub := submission.New(email, u.now().UTC())
	if err := u.repo.Create(ctx, sub); err != nil {
		return submission.Submission{}, ErrInternal
	}
	u.logger.Info("submission created",
		zap.String("submission_id", sub.ID.String()),
		zap.String("email", email))
	return sub, nil
}

// SubmitResume moves PENDING → PARSING and runs the AI extraction in
// the background. The call returns as soon as the hand-off happened.
// FAILED is also accepted so a parse failure can be retried with a
// fresh upload; the CAS clears the recorded error.
func (u *Submissions) SubmitResume(ctx context.Context, id uuid.UUID, pdf []byte) error {
	if len(pdf) == 0 {
		return fmt.Errorf("%w: empty resume upload", ErrInvalidInput)
	}
	if _, err := u.repo.FindByID(ctx, id); err != nil {
		return u.mapRepoErr(err)
	}

	ok, err := u.repo.CompareAndSetStatus(ctx, id,
		[]submission.Status{submission.StatusPending, submission.StatusFailed},
		submission.StatusParsing, "")
	if err != nil {
		return ErrInternal
	}
	if !ok {
		return ErrInvalidState
	}
	u.notify(id, submission.StatusParsing, "")

	go u.runParse(id, pdf)
	return nil
}

func (u *Submissions) runParse(id uuid.UUID, pdf []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	prof, err := u.parser.Parse(ctx, pdf)
	if err != nil {
		u.logger.Warn("resume parsing failed",
			zap.String("submission_id", id.String()), zap.Error(err))
		u.failFrom(ctx, id, submission.StatusParsing, err.Error())
		return
	}

	if err := u.repo.SaveProfile(ctx, id, prof); err != nil {
		u.failFrom(ctx, id, submission.StatusParsing, "could not store parsed profile")
		return
	}
	ok, err := u.repo.CompareAndSetStatus(ctx, id,
		[]submission.Status{submission.StatusParsing}, submission.StatusAwaitingReview, "")
	if err != nil || !ok {
		// Lost to a concurrent cancel; nothing to do.
		return
	}
	u.notify(id, submission.StatusAwaitingReview, "")
}

// UpdateReview stores user edits while the submission awaits
// confirmation. Editing never changes state.
func (u *Submissions) UpdateReview(ctx context.Context, id uuid.UUID, customSkills []profile.Skill, prefs profile.Preferences, w scoring.Weights) error {
	if err := w.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	sub, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return u.mapRepoErr(err)
	}
	if sub.Status != submission.StatusAwaitingReview {
		return ErrInvalidState
	}
	if sub.Profile == nil {
		return ErrInvalidState
	}

	p := *sub.Profile
	p.CustomSkills = customSkills
	if err := u.repo.SaveReview(ctx, id, p, prefs, w); err != nil {
		return u.mapRepoErr(err)
	}
	return nil
}

// StartScrape is the confirm trigger: a compare-and-swap from
// AWAITING_REVIEW or FAILED into SCRAPING, then a fire-and-forget
// hand-off to the worker. Duplicate concurrent triggers lose the CAS
// and get ErrInvalidState.
func (u *Submissions) StartScrape(ctx context.Context, id uuid.UUID) error {
	sub, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return u.mapRepoErr(err)
	}
	if !submission.CanStartScrape(sub.Status) {
		return ErrInvalidState
	}
	if sub.Profile == nil {
		return fmt.Errorf("%w: no parsed profile to search with", ErrInvalidState)
	}

	ok, err := u.repo.CompareAndSetStatus(ctx, id,
		[]submission.Status{submission.StatusAwaitingReview, submission.StatusFailed},
		submission.StatusScraping, "")
	if err != nil {
		return ErrInternal
	}
	if !ok {
		return ErrInvalidState
	}

	sub.Status = submission.StatusScraping
	sub.Error = ""
	u.notify(id, submission.StatusScraping, "")
	u.logger.Info("scrape triggered", zap.String("submission_id", id.String()))

	u.trigger.Trigger(sub)
	return nil
}

// Cancel marks any non-terminal submission FAILED. The in-flight
// worker is not interrupted; its later progress reports become
// no-ops.
func (u *Submissions) Cancel(ctx context.Context, id uuid.UUID) error {
	sub, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return u.mapRepoErr(err)
	}
	if submission.IsTerminal(sub.Status) {
		return ErrInvalidState
	}

	nonTerminal := []submission.Status{
		submission.StatusPending, submission.StatusParsing,
		submission.StatusAwaitingReview, submission.StatusScraping,
		submission.StatusScoring, submission.StatusSending,
	}
	ok, err := u.repo.CompareAndSetStatus(ctx, id, nonTerminal,
		submission.StatusFailed, submission.ErrCancelledByUser)
	if err != nil {
		return ErrInternal
	}
	if !ok {
		return ErrInvalidState
	}
	u.notify(id, submission.StatusFailed, submission.ErrCancelledByUser)
	return nil
}

func (u *Submissions) Get(ctx context.Context, id uuid.UUID) (submission.Submission, []job.ScoredPosting, error) {
	sub, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return submission.Submission{}, nil, u.mapRepoErr(err)
	}
	results, err := u.results.ListBySubmission(ctx, id)
	if err != nil {
		return submission.Submission{}, nil, ErrInternal
	}
	return sub, results, nil
}

// Report is the sole channel the worker advances the machine through.
// Progress against a terminal submission is dropped silently; only an
// unknown id is an error.
func (u *Submissions) Report(ctx context.Context, id uuid.UUID, status string, jobCount int, errMsg string) error {
	if _, err := u.repo.FindByID(ctx, id); err != nil {
		return u.mapRepoErr(err)
	}

	var (
		from []submission.Status
		to   submission.Status
	)
	switch status {
	case ReportScraping:
		// Start acknowledgment; the trigger already set SCRAPING.
		return nil
	case ReportScoring:
		from, to = []submission.Status{submission.StatusScraping}, submission.StatusScoring
	case ReportSending:
		from, to = []submission.Status{submission.StatusScoring}, submission.StatusSending
	case ReportCompleted:
		from, to = []submission.Status{submission.StatusSending}, submission.StatusComplete
	case ReportFailed:
		from = []submission.Status{
			submission.StatusScraping, submission.StatusScoring, submission.StatusSending,
		}
		to = submission.StatusFailed
		if errMsg == "" {
			errMsg = "worker reported failure"
		}
	default:
		return fmt.Errorf("%w: report status %q", ErrInvalidInput, status)
	}

	ok, err := u.repo.CompareAndSetStatus(ctx, id, from, to, errMsg)
	if err != nil {
		return ErrInternal
	}
	if !ok {
		// Late report after cancel or completion. Deliberately ignored.
		u.logger.Debug("stale progress report dropped",
			zap.String("submission_id", id.String()),
			zap.String("status", status))
		return nil
	}

	if to == submission.StatusComplete {
		u.logger.Info("submission complete",
			zap.String("submission_id", id.String()),
			zap.Int("job_count", jobCount))
	}
	u.notify(id, to, errMsg)
	return nil
}

func (u *Submissions) failFrom(ctx context.Context, id uuid.UUID, from submission.Status, errMsg string) {
	ok, err := u.repo.CompareAndSetStatus(ctx, id,
		[]submission.Status{from}, submission.StatusFailed, errMsg)
	if err != nil || !ok {
		return
	}
	u.notify(id, submission.StatusFailed, errMsg)
}

func (u *Submissions) notify(id uuid.UUID, status submission.Status, errMsg string) {
	if u.notifier == nil {
		return
	}
	u.notifier.SubmissionStatusChanged(id, status, errMsg)
}

func (u *Submissions) mapRepoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case isNotFound(err):
		return ErrSubmissionNotFound
	default:
		u.logger.Error("submission repository error", zap.Error(err))
		return ErrInternal
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrSubmissionNotFound) ||
		errors.Is(err, repository.ErrSubscriptionNotFound)
}
