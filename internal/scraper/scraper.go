// Package scraper queries job boards and aggregates their postings.
// Each board is a Site; a failing site degrades to an empty
// contribution instead of aborting the batch.
package scraper

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"jobhunter/internal/domain/job"
)

// Query is one search against one board.
type Query struct {
	Term         string
	Location     string
	RecencyHours int
	Limit        int
}

// Site is one job-board adapter.
type Site interface {
	Name() string
	Search(ctx context.Context, q Query) ([]job.Posting, error)
}

// DefaultRoleSearches seed the search terms when a profile carries no
// titles and the user set no role preference.
var DefaultRoleSearches = []string{
	"graduate software engineer",
	"junior developer",
	"frontend developer",
	"software engineer",
}

// Runner fans searches out across sites. Sites run in the order they
// were registered; dedup downstream depends on that order staying
// fixed.
type Runner struct {
	sites   []Site
	workers int
	logger  *zap.Logger
}

func NewRunner(logger *zap.Logger, sites ...Site) *Runner {
	return &Runner{sites: sites, workers: 4, logger: logger}
}

// Run executes every (term × location) search on every site and
// returns the postings ordered by (site, term, location) submission
// order. Per-search failures are logged and skipped; Run fails only
// when the context dies.
func (r *Runner) Run(ctx context.Context, terms, locations []string, recencyHours, limit int) ([]job.Posting, error) {
	if len(terms) == 0 {
		terms = DefaultRoleSearches
	}
	if len(locations) == 0 {
		locations = DefaultLocations()
	}

	pool := newWorkerPool(r.workers, len(r.sites)*len(terms)*len(locations))
	seq := 0
	for _, site := range r.sites {
		for _, term := range terms {
			for _, loc := range locations {
				site, term, loc := site, term, loc
				pool.submit(fetchTask{
					seq: seq,
					run: func(ctx context.Context) ([]job.Posting, error) {
						postings, err := site.Search(ctx, Query{
							Term:         term,
							Location:     loc,
							RecencyHours: recencyHours,
							Limit:        limit,
						})
						if err != nil {
							r.logger.Warn("site search failed",
								zap.String("site", site.Name()),
								zap.String("term", term),
								zap.String("location", loc),
								zap.Error(err))
							return nil, err
						}
						return postings, nil
					},
				})
				seq++
			}
		}
	}
	pool.close()

	results := make([]fetchResult, 0, seq)
	for res := range pool.run(ctx) {
		results = append(results, res)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Restore submission order so "first seen" in dedup is stable.
	sort.Slice(results, func(i, j int) bool { return results[i].seq < results[j].seq })

	out := make([]job.Posting, 0)
	for _, res := range results {
		if res.err != nil {
			continue
		}
		out = append(out, res.postings...)
	}
	return out, nil
}

// FilterTargetLocations drops postings outside the Australian target
// cities, keeping remote roles. Boards occasionally leak interstate or
// overseas ads into localized searches.
func FilterTargetLocations(postings []job.Posting) []job.Posting {
	targets := []string{"adelaide", "sydney", "melbourne", "remote", "australia"}
	out := make([]job.Posting, 0, len(postings))
	for _, p := range postings {
		if p.IsRemote {
			out = append(out, p)
			continue
		}
		loc := strings.ToLower(p.Location)
		for _, t := range targets {
			if strings.Contains(loc, t) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
