package job

import (
	"strings"
	"time"
)

// Posting is one scraped job ad. Immutable once fetched from a site.
type Posting struct {
	Title       string
	Company     string
	Location    string
	Description string
	JobURL      string
	Site        string
	DatePosted  *time.Time
	Salary      string
	IsRemote    bool
}

// IdentityKey is the deduplication identity: the job URL when present,
// otherwise title+company+location. Case-insensitive.
func (p Posting) IdentityKey() string {
	if u := strings.TrimSpace(strings.ToLower(p.JobURL)); u != "" {
		return u
	}
	return strings.ToLower(strings.TrimSpace(p.Title)) + "|" +
		strings.ToLower(strings.TrimSpace(p.Company)) + "|" +
		strings.ToLower(strings.TrimSpace(p.Location))
}

// ScoredPosting is a Posting with its computed fit score attached.
// Derived data, never persisted without its posting.
type ScoredPosting struct {
	Posting
	Score     float64
	Breakdown map[string]float64
	Tier      string
	Seniority string
}
