package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"jobhunter/internal/domain/job"
)

// IndeedSite scrapes Indeed AU search result pages.
type IndeedSite struct {
	baseURL     string
	allowedHost string
}

func NewIndeedSite() *IndeedSite {
	return NewIndeedSiteWithBaseURL("https://au.indeed.com")
}

func NewIndeedSiteWithBaseURL(baseURL string) *IndeedSite {
	s := &IndeedSite{baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
	if s.baseURL == "" {
		s.baseURL = "https://au.indeed.com"
	}
	s.allowedHost = hostFromBaseURL(s.baseURL)
	return s
}

func (s *IndeedSite) Name() string { return "indeed" }

func (s *IndeedSite) Search(ctx context.Context, q Query) ([]job.Posting, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	params := url.Values{}
	params.Set("q", q.Term)
	params.Set("l", q.Location)
	if q.RecencyHours > 0 {
		days := (q.RecencyHours + 23) / 24
		params.Set("fromage", fmt.Sprintf("%d", days))
	}
	searchURL := s.baseURL + "/jobs?" + params.Encode()

	c := colly.NewCollector(colly.AllowedDomains(s.allowedHost))
	_ = c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 2, RandomDelay: 800 * time.Millisecond, Delay: 400 * time.Millisecond})

	c.OnRequest(func(r *colly.Request) {
		for k, v := range httpHeaders() {
			r.Headers.Set(k, v)
		}
	})

	postings := make([]job.Posting, 0)
	c.OnHTML("div.job_seen_beacon", func(e *colly.HTMLElement) {
		if q.Limit > 0 && len(postings) >= q.Limit {
			return
		}
		title := strings.TrimSpace(e.ChildText("h2.jobTitle"))
		if title == "" {
			return
		}
		href := e.ChildAttr("h2.jobTitle a", "href")
		loc := strings.TrimSpace(e.ChildText("div[data-testid='text-location']"))
		p := job.Posting{
			Title:       title,
			Company:     strings.TrimSpace(e.ChildText("span[data-testid='company-name']")),
			Location:    loc,
			Description: strings.TrimSpace(e.ChildText("div.job-snippet")),
			JobURL:      e.Request.AbsoluteURL(href),
			Site:        s.Name(),
			Salary:      strings.TrimSpace(e.ChildText("div.metadata.salary-snippet-container")),
			IsRemote:    strings.Contains(strings.ToLower(loc), "remote"),
		}
		if posted := parseRelativeDate(e.ChildText("span.date"), time.Now()); posted != nil {
			p.DatePosted = posted
		}
		postings = append(postings, p)
	})

	var reqErr error
	c.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	if err := c.Visit(searchURL); err != nil {
		return nil, err
	}
	c.Wait()
	if reqErr != nil {
		return nil, reqErr
	}
	return postings, nil
}
