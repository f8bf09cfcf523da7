package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobhunter/internal/domain/job"
	"jobhunter/internal/domain/profile"
	"jobhunter/internal/domain/ranking"
	"jobhunter/internal/domain/scoring"
	"jobhunter/internal/scraper"
)

var (
	searchLocations []string
	searchRole      string
	searchSince     time.Duration
	searchCompanies string
	searchTop       int
	searchHeadless  bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Scrape the boards once and print ranked postings",
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringSliceVar(&searchLocations, "locations", nil,
		"target locations (e.g. adelaide,sydney); aliases like 'sa' expand")
	searchCmd.Flags().StringVar(&searchRole, "role", "",
		"role to search for; defaults to the config profile titles")
	searchCmd.Flags().DurationVar(&searchSince, "since", 72*time.Hour,
		"only postings newer than this")
	searchCmd.Flags().StringVar(&searchCompanies, "companies", "all",
		"company filter: all or big-tech")
	searchCmd.Flags().IntVar(&searchTop, "top", ranking.DefaultTopN,
		"how many results to print")
	searchCmd.Flags().BoolVar(&searchHeadless, "linkedin", false,
		"also scrape LinkedIn via headless Chrome")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := LoadFileConfig(configPath)
	if err != nil {
		return err
	}
	if searchCompanies != "all" && searchCompanies != "big-tech" {
		return fmt.Errorf("--companies must be 'all' or 'big-tech', got %q", searchCompanies)
	}

	logger := zap.NewNop()
	sites := []scraper.Site{scraper.NewIndeedSite(), scraper.NewSeekSite()}
	if searchHeadless {
		sites = append(sites, scraper.NewLinkedInSite())
	}
	runner := scraper.NewRunner(logger, sites...)

	prof := cfg.ToProfile()
	terms := cfg.Preferences.Roles
	if searchRole != "" {
		terms = []string{searchRole}
	}
	if len(terms) == 0 {
		terms = prof.Titles
	}

	locations := searchLocations
	if len(locations) == 0 {
		locations = cfg.Preferences.Locations
	}
	locations = scraper.ResolveLocations(locations)

	fmt.Fprintf(cmd.OutOrStdout(), "Searching %d board(s) for %s in %s...\n",
		len(sites), describeTerms(terms), strings.Join(locations, ", "))

	postings, err := runner.Run(cmd.Context(), terms, locations, int(searchSince.Hours()), 30)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	postings = scraper.FilterTargetLocations(postings)

	// Location targeting already happened at scrape time, so no
	// preference filter here.
	pipeline := ranking.NewPipeline(scoring.NewEngine(scoring.DefaultTables()))
	ranked := pipeline.Rank(postings, prof, cfg.ToWeights(), profile.Preferences{},
		ranking.Options{TopN: searchTop, RefDate: time.Now().UTC()})

	if searchCompanies == "big-tech" {
		ranked = filterBigTech(ranked)
	}

	if len(ranked) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No postings found.")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Found %d posting(s):\n\n", len(ranked))
	return renderTable(cmd.OutOrStdout(), ranked)
}

func describeTerms(terms []string) string {
	if len(terms) == 0 {
		return "default roles"
	}
	return strings.Join(terms, ", ")
}

func filterBigTech(ranked []job.ScoredPosting) []job.ScoredPosting {
	out := make([]job.ScoredPosting, 0, len(ranked))
	for _, r := range ranked {
		if r.Tier == scoring.TierBigTech {
			out = append(out, r)
		}
	}
	return out
}
