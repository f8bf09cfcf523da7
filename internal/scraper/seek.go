package scraper

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"jobhunter/internal/domain/job"
)

// SeekSite scrapes seek.com.au search result pages.
type SeekSite struct {
	baseURL     string
	allowedHost string
}

func NewSeekSite() *SeekSite {
	return NewSeekSiteWithBaseURL("https://www.seek.com.au")
}

func NewSeekSiteWithBaseURL(baseURL string) *SeekSite {
	s := &SeekSite{baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
	if s.baseURL == "" {
		s.baseURL = "https://www.seek.com.au"
	}
	s.allowedHost = hostFromBaseURL(s.baseURL)
	return s
}

func (s *SeekSite) Name() string { return "seek" }

func (s *SeekSite) Search(ctx context.Context, q Query) ([]job.Posting, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Seek encodes the search as path segments with a daterange query.
	slug := strings.ReplaceAll(strings.TrimSpace(strings.ToLower(q.Term)), " ", "-")
	city := seekLocationSlug(q.Location)
	searchURL := s.baseURL + "/" + slug + "-jobs"
	if city != "" {
		searchURL += "/in-" + city
	}
	params := url.Values{}
	if q.RecencyHours > 0 {
		days := (q.RecencyHours + 23) / 24
		params.Set("daterange", itoa(days))
	}
	if enc := params.Encode(); enc != "" {
		searchURL += "?" + enc
	}

	c := colly.NewCollector(colly.AllowedDomains(s.allowedHost))
	_ = c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 2, RandomDelay: 800 * time.Millisecond, Delay: 400 * time.Millisecond})

	c.OnRequest(func(r *colly.Request) {
		for k, v := range httpHeaders() {
			r.Headers.Set(k, v)
		}
	})

	postings := make([]job.Posting, 0)
	c.OnHTML("article[data-card-type='JobCard']", func(e *colly.HTMLElement) {
		if q.Limit > 0 && len(postings) >= q.Limit {
			return
		}
		title := strings.TrimSpace(e.ChildText("a[data-automation='jobTitle']"))
		if title == "" {
			return
		}
		loc := strings.TrimSpace(e.ChildText("a[data-automation='jobLocation']"))
		workType := strings.ToLower(e.ChildText("p[data-automation='jobListingDate'] ~ *"))
		p := job.Posting{
			Title:       title,
			Company:     strings.TrimSpace(e.ChildText("a[data-automation='jobCompany']")),
			Location:    loc,
			Description: strings.TrimSpace(e.ChildText("span[data-automation='jobShortDescription']")),
			JobURL:      e.Request.AbsoluteURL(e.ChildAttr("a[data-automation='jobTitle']", "href")),
			Site:        s.Name(),
			Salary:      strings.TrimSpace(e.ChildText("span[data-automation='jobSalary']")),
			IsRemote:    strings.Contains(strings.ToLower(loc), "remote") || strings.Contains(workType, "remote"),
		}
		if posted := parseRelativeDate(e.ChildText("span[data-automation='jobListingDate']"), time.Now()); posted != nil {
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

func seekLocationSlug(location string) string {
	city := strings.ToLower(strings.TrimSpace(location))
	if i := strings.IndexAny(city, ","); i >= 0 {
		city = strings.TrimSpace(city[:i])
	}
	switch city {
	case "adelaide":
		return "All-Adelaide-SA"
	case "sydney":
		return "All-Sydney-NSW"
	case "melbourne":
		return "All-Melbourne-VIC"
	case "":
		return ""
	}
	return strings.ReplaceAll(city, " ", "-")
}
