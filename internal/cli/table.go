package cli

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"jobhunter/internal/domain/job"
)

func renderTable(w io.Writer, ranked []job.ScoredPosting) error {
	table := tablewriter.NewTable(w)
	table.Header("#", "Score", "Title", "Company", "Location", "Posted", "URL")

	for i, r := range ranked {
		posted := ""
		if r.DatePosted != nil {
			posted = r.DatePosted.Format("02 Jan")
		}
		if err := table.Append(
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%.0f", r.Score),
			truncate(r.Title, 40),
			truncate(r.Company, 24),
			truncate(r.Location, 20),
			posted,
			truncate(r.JobURL, 48),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
