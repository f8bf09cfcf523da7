// Package worker executes the scrape → score → email pipeline behind
// a submission or subscription run. It never mutates submission state
// itself; every transition goes through the report-in interface so the
// guard logic stays in one place.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobhunter/internal/domain/job"
	"jobhunter/internal/domain/profile"
	"jobhunter/internal/domain/ranking"
	"jobhunter/internal/domain/submission"
	"jobhunter/internal/infrastructure/mail"
	"jobhunter/internal/repository"
	"jobhunter/internal/scraper"
)

// Reporter is the report-in channel back to the submission machine.
type Reporter interface {
	Report(ctx context.Context, id uuid.UUID, status string, jobCount int, errMsg string) error
}

// StatusReader lets the worker check for cancellation before writing
// results. Cancellation is cooperative: a cancelled submission simply
// stops receiving writes.
type StatusReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (submission.Submission, error)
}

// JobSource runs the configured site scrapers.
type JobSource interface {
	Run(ctx context.Context, terms, locations []string, recencyHours, limit int) ([]job.Posting, error)
}

// Report status strings, mirrored from the report-in contract.
const (
	reportScraping  = "scraping"
	reportScoring   = "scoring"
	reportSending   = "sending"
	reportCompleted = "completed"
	reportFailed    = "failed"
)

type Config struct {
	RecencyHours     int
	ResultsPerSearch int
	TopN             int
	// PublicBaseURL prefixes the manage links in digest emails, e.g.
	// "https://jobhunter.example.com". Empty disables the links.
	PublicBaseURL string
}

// ManageLinker signs the pause/cancel tokens embedded in digests.
type ManageLinker interface {
	Generate(subscriptionID uuid.UUID) (string, error)
}

type Worker struct {
	source   JobSource
	pipeline *ranking.Pipeline
	results  repository.ResultRepository
	statuses StatusReader
	reporter Reporter
	mailer   mail.Mailer
	links    ManageLinker
	logger   *zap.Logger
	cfg      Config
	now      func() time.Time
}

func New(
	source JobSource,
	pipeline *ranking.Pipeline,
	results repository.ResultRepository,
	statuses StatusReader,
	reporter Reporter,
	mailer mail.Mailer,
	logger *zap.Logger,
	cfg Config,
) *Worker {
	if cfg.RecencyHours <= 0 {
		cfg.RecencyHours = 72
	}
	if cfg.ResultsPerSearch <= 0 {
		cfg.ResultsPerSearch = 30
	}
	return &Worker{
		source:   source,
		pipeline: pipeline,
		results:  results,
		statuses: statuses,
		reporter: reporter,
		mailer:   mailer,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// WithManageLinks enables the pause/cancel footer in subscription
// digests.
func (w *Worker) WithManageLinks(links ManageLinker) *Worker {
	w.links = links
	return w
}

// Trigger starts the pipeline for a confirmed submission and returns
// immediately.
func (w *Worker) Trigger(sub submission.Submission) {
	go w.runSubmission(sub)
}

func (w *Worker) runSubmission(sub submission.Submission) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	log := w.logger.With(zap.String("submission_id", sub.ID.String()))
	log.Info("scrape job started", zap.String("email", sub.Email))

	_ = w.reporter.Report(ctx, sub.ID, reportScraping, 0, "")

	var prof profile.Profile
	if sub.Profile != nil {
		prof = *sub.Profile
	}

	postings, err := w.scrape(ctx, prof, sub.Preferences, log)
	if err != nil {
		_ = w.reporter.Report(ctx, sub.ID, reportFailed, 0, "scraping failed: "+err.Error())
		return
	}

	if err := w.reporter.Report(ctx, sub.ID, reportScoring, 0, ""); err != nil {
		log.Warn("scoring report rejected", zap.Error(err))
		return
	}

	refDate := w.now().UTC()
	ranked := w.pipeline.Rank(postings, prof, sub.Weights, sub.Preferences,
		ranking.Options{TopN: w.cfg.TopN, RefDate: refDate})

	// Cooperative cancellation check before the result write. A late
	// write against a cancelled submission must be a no-op.
	if current, err := w.statuses.FindByID(ctx, sub.ID); err != nil || submission.IsTerminal(current.Status) {
		log.Info("submission no longer running, dropping results")
		return
	}
	if err := w.results.ReplaceForSubmission(ctx, sub.ID, ranked); err != nil {
		_ = w.reporter.Report(ctx, sub.ID, reportFailed, 0, "storing results failed: "+err.Error())
		return
	}

	if err := w.reporter.Report(ctx, sub.ID, reportSending, 0, ""); err != nil {
		return
	}
	if err := w.sendDigest(ctx, sub.Email, ranked, refDate); err != nil {
		_ = w.reporter.Report(ctx, sub.ID, reportFailed, 0, "email delivery failed: "+err.Error())
		return
	}

	_ = w.reporter.Report(ctx, sub.ID, reportCompleted, len(ranked), "")
	log.Info("scrape job finished", zap.Int("job_count", len(ranked)))
}

// RunDigest executes one subscription run synchronously and returns
// the digest size.
func (w *Worker) RunDigest(ctx context.Context, rec repository.SubscriptionRecord) (int, error) {
	var prof profile.Profile
	if rec.Profile != nil {
		prof = *rec.Profile
	}
	log := w.logger.With(zap.String("subscription_id", rec.ID.String()))

	postings, err := w.scrape(ctx, prof, rec.Preferences, log)
	if err != nil {
		return 0, fmt.Errorf("scraping failed: %w", err)
	}

	refDate := w.now().UTC()
	ranked := w.pipeline.Rank(postings, prof, rec.Weights, rec.Preferences,
		ranking.Options{TopN: w.cfg.TopN, RefDate: refDate})

	subject := mail.DigestSubject(ranked, refDate)
	var body string
	if len(ranked) == 0 {
		subject = fmt.Sprintf("Job Hunter: No jobs found (%s)", refDate.Format("02 Jan 2006"))
		body = mail.RenderEmptyHTML(refDate)
	} else {
		body = mail.RenderDigestHTML(ranked, refDate)
	}
	body += w.manageFooter(rec.ID, log)

	if err := w.mailer.Send(ctx, rec.Email, subject, body); err != nil {
		return 0, fmt.Errorf("email delivery failed: %w", err)
	}
	return len(ranked), nil
}

func (w *Worker) manageFooter(id uuid.UUID, log *zap.Logger) string {
	if w.links == nil || w.cfg.PublicBaseURL == "" {
		return ""
	}
	token, err := w.links.Generate(id)
	if err != nil {
		log.Warn("manage link generation failed", zap.Error(err))
		return ""
	}
	return mail.RenderManageFooter(w.cfg.PublicBaseURL, token)
}

func (w *Worker) scrape(ctx context.Context, prof profile.Profile, prefs profile.Preferences, log *zap.Logger) ([]job.Posting, error) {
	terms := prefs.Roles
	if len(terms) == 0 {
		terms = prof.Titles
	}
	locations := scraper.ResolveLocations(prefs.Locations)

	log.Info("scraping boards",
		zap.Int("terms", len(terms)),
		zap.Int("locations", len(locations)))

	postings, err := w.source.Run(ctx, terms, locations, w.cfg.RecencyHours, w.cfg.ResultsPerSearch)
	if err != nil {
		return nil, err
	}

	filtered := scraper.FilterTargetLocations(postings)
	if dropped := len(postings) - len(filtered); dropped > 0 {
		log.Info("dropped postings outside target cities", zap.Int("dropped", dropped))
	}
	return filtered, nil
}

func (w *Worker) sendDigest(ctx context.Context, to string, ranked []job.ScoredPosting, refDate time.Time) error {
	subject := mail.DigestSubject(ranked, refDate)
	var body string
	if len(ranked) == 0 {
		subject = fmt.Sprintf("Job Hunter: No jobs found (%s)", refDate.Format("02 Jan 2006"))
		body = mail.RenderEmptyHTML(refDate)
	} else {
		body = mail.RenderDigestHTML(ranked, refDate)
	}
	return w.mailer.Send(ctx, to, subject, body)
}
