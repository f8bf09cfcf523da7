package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobhunter/internal/domain/job"
	"jobhunter/internal/domain/profile"
	"jobhunter/internal/domain/scoring"
	"jobhunter/internal/domain/submission"
	"jobhunter/internal/repository"
)

type memSubmissionRepo struct {
	mu   sync.Mutex
	subs map[uuid.UUID]submission.Submission

	failNext error
}

func newMemSubmissionRepo() *memSubmissionRepo {
	return &memSubmissionRepo{subs: make(map[uuid.UUID]submission.Submission)}
}

func (r *memSubmissionRepo) Create(_ context.Context, s submission.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	r.subs[s.ID] = s
	return nil
}

func (r *memSubmissionRepo) FindByID(_ context.Context, id uuid.UUID) (submission.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return submission.Submission{}, repository.ErrSubmissionNotFound
	}
	return s, nil
}

func (r *memSubmissionRepo) CompareAndSetStatus(_ context.Context, id uuid.UUID, from []submission.Status, to submission.Status, errMsg string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return false, nil
	}
	matched := false
	for _, f := range from {
		if s.Status == f {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	s.Status = to
	s.Error = errMsg
	r.subs[id] = s
	return true, nil
}

func (r *memSubmissionRepo) SaveProfile(_ context.Context, id uuid.UUID, p profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return repository.ErrSubmissionNotFound
	}
	s.Profile = &p
	r.subs[id] = s
	return nil
}

func (r *memSubmissionRepo) SaveReview(_ context.Context, id uuid.UUID, p profile.Profile, prefs profile.Preferences, w scoring.Weights) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return repository.ErrSubmissionNotFound
	}
	s.Profile = &p
	s.Preferences = prefs
	s.Weights = w
	r.subs[id] = s
	return nil
}

func (r *memSubmissionRepo) CountByEmailSince(_ context.Context, email string, _ time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.subs {
		if s.Email == email {
			n++
		}
	}
	return n, nil
}

func (r *memSubmissionRepo) status(t *testing.T, id uuid.UUID) submission.Status {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		t.Fatalf("submission %s not in repo", id)
	}
	return s.Status
}

// waitForStatus polls until the background parse settles in want.
func waitForStatus(t *testing.T, repo *memSubmissionRepo, id uuid.UUID, want submission.Status) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if repo.status(t, id) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("status = %s, want %s", repo.status(t, id), want)
}

func (r *memSubmissionRepo) put(s submission.Submission) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[s.ID] = s
}

type memResultRepo struct {
	mu      sync.Mutex
	results map[uuid.UUID][]job.ScoredPosting
}

func newMemResultRepo() *memResultRepo {
	return &memResultRepo{results: make(map[uuid.UUID][]job.ScoredPosting)}
}

func (r *memResultRepo) ReplaceForSubmission(_ context.Context, id uuid.UUID, results []job.ScoredPosting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[id] = results
	return nil
}

func (r *memResultRepo) ListBySubmission(_ context.Context, id uuid.UUID) ([]job.ScoredPosting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.results[id], nil
}

type stubLimiter struct {
	allow bool
	err   error
	calls int
}

func (l *stubLimiter) Allow(_ context.Context, _ string, _ int, _ time.Duration) (bool, error) {
	l.calls++
	return l.allow, l.err
}

type stubParser struct {
	prof profile.Profile
	err  error
}

func (p *stubParser) Parse(_ context.Context, _ []byte) (profile.Profile, error) {
	return p.prof, p.err
}

type stubTrigger struct {
	mu        sync.Mutex
	triggered []submission.Submission
}

func (t *stubTrigger) Trigger(sub submission.Submission) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.triggered = append(t.triggered, sub)
}

func (t *stubTrigger) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.triggered)
}

func newTestSubmissions(repo *memSubmissionRepo, results *memResultRepo, limiter *stubLimiter, p *stubParser, trig *stubTrigger) *Submissions {
	u := NewSubmissionUsecase(repo, results, limiter, p, trig, nil, zap.NewNop(), 3)
	u.now = func() time.Time { return time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC) }
	return u
}

func reviewedSubmission(email string) submission.Submission {
	sub := submission.New(email, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))
	sub.Status = submission.StatusAwaitingReview
	sub.Profile = &profile.Profile{
		Skills: []profile.Skill{{Name: "Go", Tier: profile.TierCore}},
		Titles: []string{"software engineer"},
	}
	return sub
}

func TestCreateSubmission(t *testing.T) {
	repo := newMemSubmissionRepo()
	limiter := &stubLimiter{allow: true}
	u := newTestSubmissions(repo, newMemResultRepo(), limiter, &stubParser{}, &stubTrigger{})

	sub, err := u.Create(context.Background(), "  User@Example.COM ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sub.Email != "user@example.com" {
		t.Errorf("email not normalized, got %q", sub.Email)
	}
	if sub.Status != submission.StatusPending {
		t.Errorf("new submission status = %s, want PENDING", sub.Status)
	}
	if limiter.calls != 1 {
		t.Errorf("limiter called %d times, want 1", limiter.calls)
	}
}

func TestCreateSubmissionInvalidEmail(t *testing.T) {
	u := newTestSubmissions(newMemSubmissionRepo(), newMemResultRepo(), &stubLimiter{allow: true}, &stubParser{}, &stubTrigger{})

	for _, email := range []string{"", "   ", "not-an-email"} {
		if _, err := u.Create(context.Background(), email); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Create(%q) error = %v, want ErrInvalidInput", email, err)
		}
	}
}

func TestCreateSubmissionRateLimited(t *testing.T) {
	u := newTestSubmissions(newMemSubmissionRepo(), newMemResultRepo(), &stubLimiter{allow: false}, &stubParser{}, &stubTrigger{})

	if _, err := u.Create(context.Background(), "user@example.com"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("Create error = %v, want ErrRateLimited", err)
	}
}

func TestSubmitResumeMovesToParsing(t *testing.T) {
	repo := newMemSubmissionRepo()
	sub := submission.New("user@example.com", time.Now())
	repo.put(sub)
	u := newTestSubmissions(repo, newMemResultRepo(), &stubLimiter{allow: true}, &stubParser{
		prof: profile.Profile{Skills: []profile.Skill{{Name: "Go", Tier: profile.TierCore}}},
	}, &stubTrigger{})

	if err := u.SubmitResume(context.Background(), sub.ID, []byte("%PDF-1.4 resume")); err != nil {
		t.Fatalf("SubmitResume: %v", err)
	}

	// Parsing happens in the background; poll until the machine settles.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if repo.status(t, sub.ID) == submission.StatusAwaitingReview {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := repo.status(t, sub.ID); got != submission.StatusAwaitingReview {
		t.Fatalf("status after parse = %s, want AWAITING_REVIEW", got)
	}
}

func TestSubmitResumeParseFailure(t *testing.T) {
	repo := newMemSubmissionRepo()
	sub := submission.New("user@example.com", time.Now())
	repo.put(sub)
	u := newTestSubmissions(repo, newMemResultRepo(), &stubLimiter{allow: true}, &stubParser{
		err: errors.New("could not extract readable text"),
	}, &stubTrigger{})

	if err := u.SubmitResume(context.Background(), sub.ID, []byte("junk")); err != nil {
		t.Fatalf("SubmitResume: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if repo.status(t, sub.ID) == submission.StatusFailed {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := repo.status(t, sub.ID); got != submission.StatusFailed {
		t.Fatalf("status after failed parse = %s, want FAILED", got)
	}
}

func TestSubmitResumeRetryAfterParseFailure(t *testing.T) {
	repo := newMemSubmissionRepo()
	sub := submission.New("user@example.com", time.Now())
	repo.put(sub)
	parser := &stubParser{err: errors.New("could not extract readable text")}
	u := newTestSubmissions(repo, newMemResultRepo(), &stubLimiter{allow: true}, parser, &stubTrigger{})

	if err := u.SubmitResume(context.Background(), sub.ID, []byte("junk")); err != nil {
		t.Fatalf("SubmitResume: %v", err)
	}
	waitForStatus(t, repo, sub.ID, submission.StatusFailed)

	// A fresh upload retries from FAILED with a readable file.
	parser.err = nil
	parser.prof = profile.Profile{Skills: []profile.Skill{{Name: "Go", Tier: profile.TierCore}}}
	if err := u.SubmitResume(context.Background(), sub.ID, []byte("%PDF-1.4 resume")); err != nil {
		t.Fatalf("SubmitResume retry: %v", err)
	}
	waitForStatus(t, repo, sub.ID, submission.StatusAwaitingReview)

	got, err := repo.FindByID(context.Background(), sub.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Error != "" {
		t.Fatalf("error after retry = %q, want cleared", got.Error)
	}
	if got.Profile == nil {
		t.Fatal("profile not stored after retry")
	}
}

func TestSubmitResumeRejectsWrongState(t *testing.T) {
	repo := newMemSubmissionRepo()
	sub := reviewedSubmission("user@example.com")
	repo.put(sub)
	u := newTestSubmissions(repo, newMemResultRepo(), &stubLimiter{allow: true}, &stubParser{}, &stubTrigger{})

	if err := u.SubmitResume(context.Background(), sub.ID, []byte("pdf")); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("SubmitResume from AWAITING_REVIEW error = %v, want ErrInvalidState", err)
	}
}

func TestUpdateReviewRejectsBadWeights(t *testing.T) {
	repo := newMemSubmissionRepo()
	sub := reviewedSubmission("user@example.com")
	repo.put(sub)
	u := newTestSubmissions(repo, newMemResultRepo(), &stubLimiter{allow: true}, &stubParser{}, &stubTrigger{})

	w := scoring.DefaultWeights()
	w.Location = 2.5
	err := u.UpdateReview(context.Background(), sub.ID, nil, profile.Preferences{}, w)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("UpdateReview error = %v, want ErrInvalidInput", err)
	}
}

func TestUpdateReviewStoresEdits(t *testing.T) {
	repo := newMemSubmissionRepo()
	sub := reviewedSubmission("user@example.com")
	repo.put(sub)
	u := newTestSubmissions(repo, newMemResultRepo(), &stubLimiter{allow: true}, &stubParser{}, &stubTrigger{})

	custom := []profile.Skill{{Name: "Rust", Tier: profile.TierCore}}
	prefs := profile.Preferences{Locations: []string{"adelaide"}}
	w := scoring.DefaultWeights()
	w.Skills = 1.5
	if err := u.UpdateReview(context.Background(), sub.ID, custom, prefs, w); err != nil {
		t.Fatalf("UpdateReview: %v", err)
	}

	got, err := repo.FindByID(context.Background(), sub.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != submission.StatusAwaitingReview {
		t.Errorf("review edit changed status to %s", got.Status)
	}
	if got.Weights.Skills != 1.5 {
		t.Errorf("weights not stored, skills weight = %v", got.Weights.Skills)
	}
	if len(got.Profile.CustomSkills) != 1 || got.Profile.CustomSkills[0].Name != "Rust" {
		t.Errorf("custom skills not stored: %+v", got.Profile.CustomSkills)
	}
}

func TestStartScrapeFromAwaitingReview(t *testing.T) {
	repo := newMemSubmissionRepo()
	sub := reviewedSubmission("user@example.com")
	repo.put(sub)
	trig := &stubTrigger{}
	u := newTestSubmissions(repo, newMemResultRepo(), &stubLimiter{allow: true}, &stubParser{}, trig)

	if err := u.StartScrape(context.Background(), sub.ID); err != nil {
		t.Fatalf("StartScrape: %v", err)
	}
	if got := repo.status(t, sub.ID); got != submission.StatusScraping {
		t.Errorf("status = %s, want SCRAPING", got)
	}
	if trig.count() != 1 {
		t.Errorf("worker triggered %d times, want 1", trig.count())
	}
}

func TestStartScrapeRetryFromFailed(t *testing.T) {
	repo := newMemSubmissionRepo()
	sub := reviewedSubmission("user@example.com")
	sub.Status = submission.StatusFailed
	sub.Error = "scraping failed: timeout"
	repo.put(sub)
	u := newTestSubmissions(repo, newMemResultRepo(), &stubLimiter{allow: true}, &stubParser{}, &stubTrigger{})

	if err := u.StartScrape(context.Background(), sub.ID); err != nil {
		t.Fatalf("retry StartScrape: %v", err)
	}
	got, _ := repo.FindByID(context.Background(), sub.ID)
	if got.Status != submission.StatusScraping {
		t.Errorf("status = %s, want SCRAPING", got.Status)
	}
	if got.Error != "" {
		t.Errorf("retry kept stale error %q", got.Error)
	}
}

func TestStartScrapeRejectedFromComplete(t *testing.T) {
	repo := newMemSubmissionRepo()
	sub := reviewedSubmission("user@example.com")
	sub.Status = submission.StatusComplete
	repo.put(sub)
	trig := &stubTrigger{}
	u := newTestSubmissions(repo, newMemResultRepo(), &stubLimiter{allow: true}, &stubParser{}, trig)

	if err := u.StartScrape(context.Background(), sub.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("StartScrape from COMPLETE error = %v, want ErrInvalidState", err)
	}
	if got := repo.status(t, sub.ID); got != submission.StatusComplete {
		t.Errorf("rejected trigger mutated status to %s", got)
	}
	if trig.count() != 0 {
		t.Errorf("rejected trigger still reached the worker")
	}
}

func TestStartScrapeWithoutProfile(t *testing.T) {
	repo := newMemSubmissionRepo()
	sub := submission.New("user@example.com", time.Now())
	sub.Status = submission.StatusAwaitingReview
	repo.put(sub)
	u := newTestSubmissions(repo, newMemResultRepo(), &stubLimiter{allow: true}, &stubParser{}, &stubTrigger{})

	if err := u.StartScrape(context.Background(), sub.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("StartScrape without profile error = %v, want ErrInvalidState", err)
	}
}

func TestCancelFromEveryNonTerminalState(t *testing.T) {
	states := []submission.Status{
		submission.StatusPending,
		submission.StatusParsing,
		submission.StatusAwaitingReview,
		submission.StatusScraping,
		submission.StatusScoring,
		submission.StatusSending,
	}
	for _, state := range states {
		t.Run(string(state), func(t *testing.T) {
			repo := newMemSubmissionRepo()
			sub := reviewedSubmission("user@example.com")
			sub.Status = state
			repo.put(sub)
			u := newTestSubmissions(repo, newMemResultRepo(), &stubLimiter{allow: true}, &stubParser{}, &stubTrigger{})

			if err := u.Cancel(context.Background(), sub.ID); err != nil {
				t.Fatalf("Cancel from %s: %v", state, err)
			}
			got, _ := repo.FindByID(context.Background(), sub.ID)
			if got.Status != submission.StatusFailed {
				t.Errorf("status = %s, want FAILED", got.Status)
			}
			if got.Error != submission.ErrCancelledByUser {
				t.Errorf("error = %q, want %q", got.Error, submission.ErrCancelledByUser)
			}
		})
	}
}

func TestCancelRejectedWhenTerminal(t *testing.T) {
	for _, state := range []submission.Status{submission.StatusComplete, submission.StatusFailed} {
		repo := newMemSubmissionRepo()
		sub := reviewedSubmission("user@example.com")
		sub.Status = state
		repo.put(sub)
		u := newTestSubmissions(repo, newMemResultRepo(), &stubLimiter{allow: true}, &stubParser{}, &stubTrigger{})

		if err := u.Cancel(context.Background(), sub.ID); !errors.Is(err, ErrInvalidState) {
			t.Errorf("Cancel from %s error = %v, want ErrInvalidState", state, err)
		}
	}
}

func TestReportAdvancesPipeline(t *testing.T) {
	repo := newMemSubmissionRepo()
	sub := reviewedSubmission("user@example.com")
	sub.Status = submission.StatusScraping
	repo.put(sub)
	u := newTestSubmissions(repo, newMemResultRepo(), &stubLimiter{allow: true}, &stubParser{}, &stubTrigger{})
	ctx := context.Background()

	steps := []struct {
		report string
		want   submission.Status
	}{
		{ReportScraping, submission.StatusScraping},
		{ReportScoring, submission.StatusScoring},
		{ReportSending, submission.StatusSending},
		{ReportCompleted, submission.StatusComplete},
	}
	for _, step := range steps {
		if err := u.Report(ctx, sub.ID, step.report, 12, ""); err != nil {
			t.Fatalf("Report(%s): %v", step.report, err)
		}
		if got := repo.status(t, sub.ID); got != step.want {
			t.Fatalf("after report %s status = %s, want %s", step.report, got, step.want)
		}
	}
}

func TestReportFailure(t *testing.T) {
	for _, state := range []submission.Status{
		submission.StatusScraping, submission.StatusScoring, submission.StatusSending,
	} {
		repo := newMemSubmissionRepo()
		sub := reviewedSubmission("user@example.com")
		sub.Status = state
		repo.put(sub)
		u := newTestSubmissions(repo, newMemResultRepo(), &stubLimiter{allow: true}, &stubParser{}, &stubTrigger{})

		if err := u.Report(context.Background(), sub.ID, ReportFailed, 0, "site timeout"); err != nil {
			t.Fatalf("Report(failed) from %s: %v", state, err)
		}
		got, _ := repo.FindByID(context.Background(), sub.ID)
		if got.Status != submission.StatusFailed {
			t.Errorf("from %s: status = %s, want FAILED", state, got.Status)
		}
		if got.Error != "site timeout" {
			t.Errorf("from %s: error = %q", state, got.Error)
		}
	}
}

func TestStaleReportDroppedSilently(t *testing.T) {
	repo := newMemSubmissionRepo()
	sub := reviewedSubmission("user@example.com")
	sub.Status = submission.StatusFailed
	sub.Error = submission.ErrCancelledByUser
	repo.put(sub)
	u := newTestSubmissions(repo, newMemResultRepo(), &stubLimiter{allow: true}, &stubParser{}, &stubTrigger{})

	// The worker finished after the user cancelled. Its report must not
	// resurrect the submission or surface an error.
	if err := u.Report(context.Background(), sub.ID, ReportCompleted, 30, ""); err != nil {
		t.Fatalf("stale report returned error: %v", err)
	}
	got, _ := repo.FindByID(context.Background(), sub.ID)
	if got.Status != submission.StatusFailed {
		t.Errorf("stale report changed status to %s", got.Status)
	}
	if got.Error != submission.ErrCancelledByUser {
		t.Errorf("stale report overwrote error with %q", got.Error)
	}
}

func TestReportUnknownStatus(t *testing.T) {
	repo := newMemSubmissionRepo()
	sub := reviewedSubmission("user@example.com")
	repo.put(sub)
	u := newTestSubmissions(repo, newMemResultRepo(), &stubLimiter{allow: true}, &stubParser{}, &stubTrigger{})

	if err := u.Report(context.Background(), sub.ID, "resting", 0, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Report(resting) error = %v, want ErrInvalidInput", err)
	}
}

func TestReportUnknownSubmission(t *testing.T) {
	u := newTestSubmissions(newMemSubmissionRepo(), newMemResultRepo(), &stubLimiter{allow: true}, &stubParser{}, &stubTrigger{})

	if err := u.Report(context.Background(), uuid.New(), ReportScoring, 0, ""); !errors.Is(err, ErrSubmissionNotFound) {
		t.Fatalf("Report on unknown id error = %v, want ErrSubmissionNotFound", err)
	}
}

func TestGetReturnsResults(t *testing.T) {
	repo := newMemSubmissionRepo()
	results := newMemResultRepo()
	sub := reviewedSubmission("user@example.com")
	sub.Status = submission.StatusComplete
	repo.put(sub)
	results.results[sub.ID] = []job.ScoredPosting{
		{Posting: job.Posting{Title: "Graduate Software Engineer", Company: "Canva"}, Score: 55},
	}
	u := newTestSubmissions(repo, results, &stubLimiter{allow: true}, &stubParser{}, &stubTrigger{})

	got, ranked, err := u.Get(context.Background(), sub.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != submission.StatusComplete {
		t.Errorf("status = %s", got.Status)
	}
	if len(ranked) != 1 || ranked[0].Score != 55 {
		t.Errorf("results = %+v", ranked)
	}
}

func TestGetUnknownSubmission(t *testing.T) {
	u := newTestSubmissions(newMemSubmissionRepo(), newMemResultRepo(), &stubLimiter{allow: true}, &stubParser{}, &stubTrigger{})

	if _, _, err := u.Get(context.Background(), uuid.New()); !errors.Is(err, ErrSubmissionNotFound) {
		t.Fatalf("Get error = %v, want ErrSubmissionNotFound", err)
	}
}
