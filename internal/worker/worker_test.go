package worker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobhunter/internal/domain/job"
	"jobhunter/internal/domain/profile"
	"jobhunter/internal/domain/ranking"
	"jobhunter/internal/domain/scoring"
	"jobhunter/internal/domain/submission"
	"jobhunter/internal/repository"
)

type stubSource struct {
	postings []job.Posting
	err      error
}

func (s *stubSource) Run(_ context.Context, _, _ []string, _, _ int) ([]job.Posting, error) {
	return s.postings, s.err
}

type reportCall struct {
	status   string
	jobCount int
	errMsg   string
}

type stubReporter struct {
	mu    sync.Mutex
	calls []reportCall
}

func (r *stubReporter) Report(_ context.Context, _ uuid.UUID, status string, jobCount int, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, reportCall{status, jobCount, errMsg})
	return nil
}

func (r *stubReporter) statuses() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.status
	}
	return out
}

func (r *stubReporter) last() reportCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

type stubStatuses struct {
	status submission.Status
}

func (s *stubStatuses) FindByID(_ context.Context, id uuid.UUID) (submission.Submission, error) {
	return submission.Submission{ID: id, Status: s.status}, nil
}

type memResults struct {
	mu     sync.Mutex
	stored map[uuid.UUID][]job.ScoredPosting
}

func newMemResults() *memResults {
	return &memResults{stored: make(map[uuid.UUID][]job.ScoredPosting)}
}

func (r *memResults) ReplaceForSubmission(_ context.Context, id uuid.UUID, results []job.ScoredPosting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored[id] = results
	return nil
}

func (r *memResults) ListBySubmission(_ context.Context, id uuid.UUID) ([]job.ScoredPosting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stored[id], nil
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type stubMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *stubMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

func samplePostings() []job.Posting {
	posted := time.Date(2025, 6, 2, 7, 0, 0, 0, time.UTC)
	return []job.Posting{
		{Title: "Graduate Software Engineer", Company: "Canva", Location: "Adelaide SA", JobURL: "https://seek.com.au/job/1", Site: "seek", DatePosted: &posted},
		{Title: "Frontend Developer", Company: "Acme", Location: "Sydney NSW", JobURL: "https://au.indeed.com/job/2", Site: "indeed"},
		{Title: "Software Engineer", Company: "Initech", Location: "Austin, TX", JobURL: "https://example.com/3", Site: "indeed"},
	}
}

func scrapingSubmission() submission.Submission {
	return submission.Submission{
		ID:     uuid.New(),
		Email:  "user@example.com",
		Status: submission.StatusScraping,
		Profile: &profile.Profile{
			Skills: []profile.Skill{{Name: "React", Tier: profile.TierCore}},
			Titles: []string{"software engineer"},
		},
		Weights: scoring.DefaultWeights(),
	}
}

func newTestWorker(source *stubSource, results *memResults, statuses *stubStatuses, reporter *stubReporter, mailer *stubMailer) *Worker {
	pipeline := ranking.NewPipeline(scoring.NewEngine(scoring.DefaultTables()))
	w := New(source, pipeline, results, statuses, reporter, mailer, zap.NewNop(), Config{})
	w.now = func() time.Time { return time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC) }
	return w
}

func TestRunSubmissionHappyPath(t *testing.T) {
	source := &stubSource{postings: samplePostings()}
	results := newMemResults()
	reporter := &stubReporter{}
	mailer := &stubMailer{}
	w := newTestWorker(source, results, &stubStatuses{status: submission.StatusScoring}, reporter, mailer)

	sub := scrapingSubmission()
	w.runSubmission(sub)

	want := []string{"scraping", "scoring", "sending", "completed"}
	got := reporter.statuses()
	if len(got) != len(want) {
		t.Fatalf("reports = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("report %d = %s, want %s", i, got[i], want[i])
		}
	}

	stored, _ := results.ListBySubmission(context.Background(), sub.ID)
	// The Austin posting is outside the target locations.
	if len(stored) != 2 {
		t.Fatalf("stored %d results, want 2: %+v", len(stored), stored)
	}
	if stored[0].Company != "Canva" {
		t.Errorf("top result = %s, want Canva", stored[0].Company)
	}
	if last := reporter.last(); last.jobCount != 2 {
		t.Errorf("completion report jobCount = %d, want 2", last.jobCount)
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(mailer.sent))
	}
	if mailer.sent[0].to != "user@example.com" {
		t.Errorf("mail to %s", mailer.sent[0].to)
	}
	if !strings.Contains(mailer.sent[0].body, "Canva") {
		t.Errorf("digest body missing top result")
	}
}

func TestRunSubmissionScrapeFailure(t *testing.T) {
	source := &stubSource{err: errors.New("all boards unreachable")}
	reporter := &stubReporter{}
	w := newTestWorker(source, newMemResults(), &stubStatuses{status: submission.StatusScraping}, reporter, &stubMailer{})

	w.runSubmission(scrapingSubmission())

	last := reporter.last()
	if last.status != "failed" {
		t.Fatalf("final report = %s, want failed", last.status)
	}
	if !strings.Contains(last.errMsg, "scraping failed") {
		t.Errorf("failure message = %q", last.errMsg)
	}
}

func TestRunSubmissionDropsResultsWhenCancelled(t *testing.T) {
	source := &stubSource{postings: samplePostings()}
	results := newMemResults()
	reporter := &stubReporter{}
	// Cancelled mid-flight: the stored status is already terminal by
	// the time the worker goes to write.
	w := newTestWorker(source, results, &stubStatuses{status: submission.StatusFailed}, reporter, &stubMailer{})

	sub := scrapingSubmission()
	w.runSubmission(sub)

	stored, _ := results.ListBySubmission(context.Background(), sub.ID)
	if len(stored) != 0 {
		t.Fatalf("cancelled submission still got %d results", len(stored))
	}
	for _, s := range reporter.statuses() {
		if s == "sending" || s == "completed" {
			t.Fatalf("cancelled submission still reported %s", s)
		}
	}
}

func TestRunSubmissionMailFailure(t *testing.T) {
	source := &stubSource{postings: samplePostings()}
	reporter := &stubReporter{}
	w := newTestWorker(source, newMemResults(), &stubStatuses{status: submission.StatusScoring}, reporter, &stubMailer{err: errors.New("smtp refused")})

	w.runSubmission(scrapingSubmission())

	last := reporter.last()
	if last.status != "failed" || !strings.Contains(last.errMsg, "email delivery failed") {
		t.Fatalf("final report = %+v, want email delivery failure", last)
	}
}

func TestRunDigest(t *testing.T) {
	source := &stubSource{postings: samplePostings()}
	mailer := &stubMailer{}
	w := newTestWorker(source, newMemResults(), &stubStatuses{status: submission.StatusScraping}, &stubReporter{}, mailer)

	rec := repository.SubscriptionRecord{
		Profile: &profile.Profile{Titles: []string{"software engineer"}},
		Weights: scoring.DefaultWeights(),
	}
	rec.ID = uuid.New()
	rec.Email = "digest@example.com"

	n, err := w.RunDigest(context.Background(), rec)
	if err != nil {
		t.Fatalf("RunDigest: %v", err)
	}
	if n != 2 {
		t.Errorf("digest size = %d, want 2", n)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].to != "digest@example.com" {
		t.Fatalf("sent = %+v", mailer.sent)
	}
}

func TestRunDigestEmptyBatchStillMails(t *testing.T) {
	source := &stubSource{}
	mailer := &stubMailer{}
	w := newTestWorker(source, newMemResults(), &stubStatuses{status: submission.StatusScraping}, &stubReporter{}, mailer)

	rec := repository.SubscriptionRecord{Weights: scoring.DefaultWeights()}
	rec.ID = uuid.New()
	rec.Email = "digest@example.com"

	n, err := w.RunDigest(context.Background(), rec)
	if err != nil {
		t.Fatalf("RunDigest: %v", err)
	}
	if n != 0 {
		t.Errorf("digest size = %d, want 0", n)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(mailer.sent))
	}
	if !strings.Contains(mailer.sent[0].subject, "No jobs found") {
		t.Errorf("subject = %q", mailer.sent[0].subject)
	}
}
