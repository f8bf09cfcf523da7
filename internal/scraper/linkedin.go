package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"jobhunter/internal/domain/job"
)

// LinkedInSite drives a headless browser against the public LinkedIn
// job search, which renders its cards client-side.
type LinkedInSite struct {
	baseURL string
}

func NewLinkedInSite() *LinkedInSite {
	return &LinkedInSite{baseURL: "https://www.linkedin.com"}
}

func (s *LinkedInSite) Name() string { return "linkedin" }

type linkedinCard struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	Link     string `json:"link"`
	Posted   string `json:"posted"`
}

func (s *LinkedInSite) Search(ctx context.Context, q Query) ([]job.Posting, error) {
	params := url.Values{}
	params.Set("keywords", q.Term)
	params.Set("location", q.Location)
	if q.RecencyHours > 0 {
		params.Set("f_TPR", fmt.Sprintf("r%d", q.RecencyHours*3600))
	}
	searchURL := s.baseURL + "/jobs/search?" + params.Encode()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(httpHeaders()["User-Agent"]),
		)...,
	)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	reqCtx, reqCancel := context.WithTimeout(browserCtx, 30*time.Second)
	defer reqCancel()

	var cards []linkedinCard
	err := chromedp.Run(reqCtx,
		chromedp.Navigate(searchURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500*time.Millisecond),
		chromedp.EvaluateAsDevTools(`Array.from(document.querySelectorAll('div.base-search-card')).map(c => ({
			title: c.querySelector('h3.base-search-card__title')?.innerText?.trim() || '',
			company: c.querySelector('h4.base-search-card__subtitle')?.innerText?.trim() || '',
			location: c.querySelector('span.job-search-card__location')?.innerText?.trim() || '',
			link: c.querySelector('a.base-card__full-link')?.href || '',
			posted: c.querySelector('time')?.getAttribute('datetime') || ''
		}))`, &cards),
	)
	if err != nil {
		return nil, err
	}

	postings := make([]job.Posting, 0, len(cards))
	for _, c := range cards {
		if q.Limit > 0 && len(postings) >= q.Limit {
			break
		}
		if strings.TrimSpace(c.Title) == "" {
			continue
		}
		p := job.Posting{
			Title:    c.Title,
			Company:  c.Company,
			Location: c.Location,
			JobURL:   c.Link,
			Site:     s.Name(),
			IsRemote: strings.Contains(strings.ToLower(c.Location), "remote"),
		}
		if c.Posted != "" {
			if t, perr := time.Parse("2006-01-02", c.Posted); perr == nil {
				p.DatePosted = &t
			}
		}
		postings = append(postings, p)
	}
	return postings, nil
}
