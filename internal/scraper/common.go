package scraper

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

func hostFromBaseURL(baseURL string) string {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Host
}

func httpHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-AU,en;q=0.9",
	}
}

var relativeDateRe = regexp.MustCompile(`(?i)(\d+)\+?\s*(minute|min|hour|hr|day|d)s?\s*ago`)

// parseRelativeDate turns board phrasing like "3 days ago" or "Posted
// today" into an absolute timestamp against now. Returns nil when the
// text carries no recognizable date.
func parseRelativeDate(text string, now time.Time) *time.Time {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return nil
	}
	if strings.Contains(t, "just posted") || strings.Contains(t, "today") {
		return &now
	}
	if strings.Contains(t, "yesterday") {
		d := now.AddDate(0, 0, -1)
		return &d
	}
	m := relativeDateRe.FindStringSubmatch(t)
	if len(m) != 3 {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	var d time.Time
	switch {
	case strings.HasPrefix(m[2], "minute"), m[2] == "min":
		d = now.Add(-time.Duration(n) * time.Minute)
	case strings.HasPrefix(m[2], "hour"), m[2] == "hr":
		d = now.Add(-time.Duration(n) * time.Hour)
	default:
		d = now.AddDate(0, 0, -n)
	}
	return &d
}

func itoa(n int) string { return strconv.Itoa(n) }
