package dto

import (
	"time"

	"jobhunter/internal/domain/job"
)

type ScoredJobResponse struct {
	Rank       int                `json:"rank"`
	Title      string             `json:"title"`
	Company    string             `json:"company"`
	Location   string             `json:"location"`
	JobURL     string             `json:"jobUrl"`
	Site       string             `json:"site"`
	Salary     string             `json:"salary,omitempty"`
	IsRemote   bool               `json:"isRemote"`
	DatePosted *time.Time         `json:"datePosted,omitempty"`
	Score      float64            `json:"score"`
	Breakdown  map[string]float64 `json:"breakdown"`
	Tier       string             `json:"tier,omitempty"`
	Seniority  string             `json:"seniority,omitempty"`
}

func NewScoredJobResponses(ranked []job.ScoredPosting) []ScoredJobResponse {
	out := make([]ScoredJobResponse, len(ranked))
	for i, r := range ranked {
		out[i] = ScoredJobResponse{
			Rank:       i + 1,
			Title:      r.Title,
			Company:    r.Company,
			Location:   r.Location,
			JobURL:     r.JobURL,
			Site:       r.Site,
			Salary:     r.Salary,
			IsRemote:   r.IsRemote,
			DatePosted: r.DatePosted,
			Score:      r.Score,
			Breakdown:  r.Breakdown,
			Tier:       r.Tier,
			Seniority:  r.Seniority,
		}
	}
	return out
}
