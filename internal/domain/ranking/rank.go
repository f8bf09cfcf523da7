// Package ranking turns a raw scrape batch into the ordered list that
// goes into a digest. Pure transformation; scrapers and profile are
// supplied by the caller.
package ranking

import (
	"sort"
	"strings"
	"time"

	"jobhunter/internal/domain/job"
	"jobhunter/internal/domain/profile"
	"jobhunter/internal/domain/scoring"
)

// DefaultTopN caps how many postings survive ranking unless the caller
// overrides it.
const DefaultTopN = 50

// Options tune one ranking run.
type Options struct {
	TopN int
	// RefDate anchors the recency factor so every posting in a batch is
	// scored against the same day.
	RefDate time.Time
}

// Pipeline ranks scraped postings with a scoring engine.
type Pipeline struct {
	engine *scoring.Engine
}

func NewPipeline(engine *scoring.Engine) *Pipeline {
	return &Pipeline{engine: engine}
}

// Rank filters by preferences, deduplicates (first seen wins), scores,
// sorts and truncates. Input order is the tie-break of last resort, so
// callers must feed sites in a fixed order for reproducible output.
func (pl *Pipeline) Rank(jobs []job.Posting, prof profile.Profile, w scoring.Weights, prefs profile.Preferences, opts Options) []job.ScoredPosting {
	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	filtered := filterByPreferences(jobs, prefs)
	deduped := Deduplicate(filtered)

	scored := make([]job.ScoredPosting, 0, len(deduped))
	for _, p := range deduped {
		res := pl.engine.Score(p, prof, w, opts.RefDate)
		scored = append(scored, job.ScoredPosting{
			Posting:   p,
			Score:     res.Total,
			Breakdown: factorMap(res.Breakdown),
			Tier:      res.Tier,
			Seniority: res.Seniority,
		})
	}

	// Stable sort keeps input order as the final tie-break.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return postedAfter(scored[i].DatePosted, scored[j].DatePosted)
	})

	if len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}

// Deduplicate keeps the first-seen posting per identity key.
// Idempotent: running it over already-deduplicated input returns the
// same list.
func Deduplicate(jobs []job.Posting) []job.Posting {
	seen := make(map[string]struct{}, len(jobs))
	out := make([]job.Posting, 0, len(jobs))
	for _, p := range jobs {
		key := p.IdentityKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

func filterByPreferences(jobs []job.Posting, prefs profile.Preferences) []job.Posting {
	if !prefs.HasLocationFilter() && !prefs.HasRoleFilter() {
		return jobs
	}
	out := make([]job.Posting, 0, len(jobs))
	for _, p := range jobs {
		if prefs.HasLocationFilter() && !locationMatches(p, prefs.Locations) {
			continue
		}
		if prefs.HasRoleFilter() && !roleMatches(p, prefs.Roles) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func locationMatches(p job.Posting, locations []string) bool {
	loc := strings.ToLower(p.Location)
	for _, want := range locations {
		w := strings.ToLower(strings.TrimSpace(want))
		if w == "" {
			continue
		}
		if strings.Contains(loc, w) {
			return true
		}
		if w == "remote" && p.IsRemote {
			return true
		}
	}
	return false
}

func roleMatches(p job.Posting, roles []string) bool {
	title := strings.ToLower(p.Title)
	for _, r := range roles {
		kw := strings.ToLower(strings.TrimSpace(r))
		if kw == "" {
			continue
		}
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

func postedAfter(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.After(*b)
}

func factorMap(in map[scoring.Factor]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[string(k)] = v
	}
	return out
}
