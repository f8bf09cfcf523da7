package submission

import (
	"time"

	"github.com/google/uuid"

	"jobhunter/internal/domain/profile"
	"jobhunter/internal/domain/scoring"
)

// Submission is one resume-upload-to-email lifecycle instance. It owns
// zero-or-one parsed profile and the scored results of its run.
type Submission struct {
	ID        uuid.UUID
	Email     string
	Status    Status
	Error     string
	CreatedAt time.Time

	Profile     *profile.Profile
	Preferences profile.Preferences
	Weights     scoring.Weights
}

// New creates a PENDING submission with default weights.
func New(email string, now time.Time) Submission {
	return Submission{
		ID:        uuid.New(),
		Email:     email,
		Status:    StatusPending,
		CreatedAt: now,
		Weights:   scoring.DefaultWeights(),
	}
}
