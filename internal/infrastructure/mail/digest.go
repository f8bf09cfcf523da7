package mail

import (
	"fmt"
	"html"
	"strings"
	"time"

	"jobhunter/internal/domain/job"
)

// MinRelevantScore is the digest threshold: postings at or above it
// count as "relevant" in the subject line.
const MinRelevantScore = 20.0

// DigestSubject builds the subject for a ranked batch.
func DigestSubject(jobs []job.ScoredPosting, date time.Time) string {
	day := date.Format("02 Jan 2006")
	relevant := 0
	for _, j := range jobs {
		if j.Score >= MinRelevantScore {
			relevant++
		}
	}
	if relevant == 0 {
		return fmt.Sprintf("Job Hunter: No strong matches today (%s)", day)
	}
	return fmt.Sprintf("Job Hunter: %d relevant jobs (%s)", relevant, day)
}

// RenderDigestHTML renders the ranked list as a simple table. Postings
// below the relevance threshold are listed after a divider so the
// reader sees the strong matches first.
func RenderDigestHTML(jobs []job.ScoredPosting, date time.Time) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><body style="font-family:sans-serif;padding:20px;">`)
	b.WriteString(fmt.Sprintf("<h2>Job Hunter digest - %s</h2>", date.Format("02 Jan 2006")))
	b.WriteString(`<table cellpadding="6" style="border-collapse:collapse;">`)
	b.WriteString("<tr><th align=\"left\">Score</th><th align=\"left\">Title</th><th align=\"left\">Company</th><th align=\"left\">Location</th></tr>")

	divider := false
	for _, j := range jobs {
		if !divider && j.Score < MinRelevantScore {
			b.WriteString(`<tr><td colspan="4"><hr></td></tr>`)
			divider = true
		}
		title := html.EscapeString(j.Title)
		if strings.TrimSpace(j.JobURL) != "" {
			title = fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(j.JobURL), title)
		}
		b.WriteString(fmt.Sprintf(
			"<tr><td>%.0f</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			j.Score, title, html.EscapeString(j.Company), html.EscapeString(j.Location)))
	}
	b.WriteString("</table></body></html>")
	return b.String()
}

// RenderManageFooter appends the signed pause/cancel links to a
// subscription digest.
func RenderManageFooter(baseURL, token string) string {
	manage := fmt.Sprintf("%s/api/v1/subscriptions/manage?token=%s", strings.TrimRight(baseURL, "/"), token)
	return fmt.Sprintf(`<p style="font-size:12px;color:#888;">
<a href="%s&action=pause">Pause</a> | <a href="%s&action=cancel">Unsubscribe</a>
</p>`, manage, manage)
}

// RenderEmptyHTML is the brief notification for a run that found
// nothing.
func RenderEmptyHTML(date time.Time) string {
	return fmt.Sprintf(`<!DOCTYPE html><html><body style="font-family:sans-serif;padding:20px;">
<h2>Job Hunter - No Jobs Found</h2>
<p>Your search on %s returned no results.</p>
<p>This can happen if the job boards are rate-limiting or if the search criteria are too narrow.</p>
<p>Try broadening your location or role preferences.</p>
</body></html>`, date.Format("02 Jan 2006"))
}
