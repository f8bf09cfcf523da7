package dto

import (
	"time"

	"github.com/google/uuid"

	"jobhunter/internal/domain/subscription"
)

type RunDTO struct {
	CreatedAt time.Time `json:"createdAt"`
	Status    string    `json:"status"`
	JobCount  int       `json:"jobCount"`
}

type SubscriptionResponse struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Status       string     `json:"status"`
	DurationDays int        `json:"durationDays"`
	NextRunAt    time.Time  `json:"nextRunAt"`
	LastRunAt    *time.Time `json:"lastRunAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	Runs         []RunDTO   `json:"runs,omitempty"`
}

func NewSubscriptionResponse(sub subscription.Subscription, runs []subscription.Run) SubscriptionResponse {
	res := SubscriptionResponse{
		ID:           sub.ID,
		Email:        sub.Email,
		Status:       string(sub.Status),
		DurationDays: sub.DurationDays,
		NextRunAt:    sub.NextRunAt,
		LastRunAt:    sub.LastRunAt,
		CreatedAt:    sub.CreatedAt,
	}
	for _, r := range runs {
		res.Runs = append(res.Runs, RunDTO{CreatedAt: r.CreatedAt, Status: string(r.Status), JobCount: r.JobCount})
	}
	return res
}
