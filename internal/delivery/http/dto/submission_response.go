package dto

import (
	"time"

	"github.com/google/uuid"

	"jobhunter/internal/domain/profile"
	"jobhunter/internal/domain/scoring"
	"jobhunter/internal/domain/submission"
)

type SkillDTO struct {
	Name string `json:"name"`
	Tier string `json:"tier"`
}

type ExperienceDTO struct {
	Years float64 `json:"years"`
	Level string  `json:"level"`
}

type ProfileDTO struct {
	Skills       []SkillDTO    `json:"skills"`
	Titles       []string      `json:"titles"`
	Keywords     []string      `json:"keywords"`
	Experience   *ExperienceDTO `json:"experience,omitempty"`
	CustomSkills []SkillDTO     `json:"customSkills,omitempty"`
}

type PreferencesDTO struct {
	Locations []string `json:"locations"`
	Roles     []string `json:"roles"`
}

type WeightsDTO struct {
	CompanyTier float64 `json:"companyTier"`
	Location    float64 `json:"location"`
	TitleMatch  float64 `json:"titleMatch"`
	Skills      float64 `json:"skills"`
	Sponsorship float64 `json:"sponsorship"`
	Recency     float64 `json:"recency"`
}

type SubmissionResponse struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	Status      string         `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	Profile     *ProfileDTO    `json:"profile,omitempty"`
	Preferences PreferencesDTO `json:"preferences"`
	Weights     WeightsDTO     `json:"weights"`
}

func NewSubmissionResponse(sub submission.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:          sub.ID,
		Email:       sub.Email,
		Status:      string(sub.Status),
		Error:       sub.Error,
		CreatedAt:   sub.CreatedAt,
		Profile:     NewProfileDTO(sub.Profile),
		Preferences: PreferencesDTO{Locations: sub.Preferences.Locations, Roles: sub.Preferences.Roles},
		Weights:     NewWeightsDTO(sub.Weights),
	}
}

func NewProfileDTO(p *profile.Profile) *ProfileDTO {
	if p == nil {
		return nil
	}
	d := &ProfileDTO{
		Skills:       newSkillDTOs(p.Skills),
		Titles:       p.Titles,
		Keywords:     p.Keywords,
		CustomSkills: newSkillDTOs(p.CustomSkills),
	}
	if p.Experience != nil {
		d.Experience = &ExperienceDTO{
			Years: p.Experience.Years,
			Level: string(p.Experience.Level),
		}
	}
	return d
}

func NewWeightsDTO(w scoring.Weights) WeightsDTO {
	return WeightsDTO{
		CompanyTier: w.CompanyTier,
		Location:    w.Location,
		TitleMatch:  w.TitleMatch,
		Skills:      w.Skills,
		Sponsorship: w.Sponsorship,
		Recency:     w.Recency,
	}
}

func (w WeightsDTO) ToDomain() scoring.Weights {
	return scoring.Weights{
		CompanyTier: w.CompanyTier,
		Location:    w.Location,
		TitleMatch:  w.TitleMatch,
		Skills:      w.Skills,
		Sponsorship: w.Sponsorship,
		Recency:     w.Recency,
	}
}

func newSkillDTOs(skills []profile.Skill) []SkillDTO {
	if len(skills) == 0 {
		return nil
	}
	out := make([]SkillDTO, len(skills))
	for i, s := range skills {
		out[i] = SkillDTO{Name: s.Name, Tier: string(s.Tier)}
	}
	return out
}
