package repository

import (
	"encoding/json"

	"jobhunter/internal/domain/profile"
	"jobhunter/internal/domain/scoring"
)

// JSONB codecs for the profile, preferences and weights columns. The
// wire keys match the review UI payloads so a stored record round-trips
// through the API unchanged.

type skillRecord struct {
	Name string `json:"name"`
	Tier string `json:"tier"`
}

type experienceRecord struct {
	Years float64 `json:"years"`
	Level string  `json:"level"`
}

type profileRecord struct {
	Skills       []skillRecord     `json:"skills"`
	Titles       []string          `json:"titles"`
	Keywords     []string          `json:"keywords"`
	Experience   *experienceRecord `json:"experience,omitempty"`
	CustomSkills []skillRecord     `json:"customSkills,omitempty"`
}

type preferencesRecord struct {
	Locations []string `json:"locations,omitempty"`
	Roles     []string `json:"roles,omitempty"`
}

type weightsRecord struct {
	CompanyTier float64 `json:"companyTier"`
	Location    float64 `json:"location"`
	TitleMatch  float64 `json:"titleMatch"`
	Skills      float64 `json:"skills"`
	Sponsorship float64 `json:"sponsorship"`
	Recency     float64 `json:"recency"`
}

func encodeSkills(in []profile.Skill) []skillRecord {
	out := make([]skillRecord, 0, len(in))
	for _, s := range in {
		out = append(out, skillRecord{Name: s.Name, Tier: string(s.Tier)})
	}
	return out
}

func decodeSkills(in []skillRecord) []profile.Skill {
	out := make([]profile.Skill, 0, len(in))
	for _, s := range in {
		out = append(out, profile.Skill{Name: s.Name, Tier: profile.ParseTier(s.Tier)})
	}
	return out
}

func marshalProfile(p *profile.Profile) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	rec := profileRecord{
		Skills:       encodeSkills(p.Skills),
		Titles:       p.Titles,
		Keywords:     p.Keywords,
		CustomSkills: encodeSkills(p.CustomSkills),
	}
	if p.Experience != nil {
		rec.Experience = &experienceRecord{Years: p.Experience.Years, Level: string(p.Experience.Level)}
	}
	return json.Marshal(rec)
}

func unmarshalProfile(raw []byte) (*profile.Profile, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var rec profileRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	p := &profile.Profile{
		Skills:       decodeSkills(rec.Skills),
		Titles:       rec.Titles,
		Keywords:     rec.Keywords,
		CustomSkills: decodeSkills(rec.CustomSkills),
	}
	if rec.Experience != nil {
		p.Experience = &profile.Experience{
			Years: rec.Experience.Years,
			Level: profile.ExperienceLevel(rec.Experience.Level),
		}
	}
	return p, nil
}

func marshalPreferences(p profile.Preferences) ([]byte, error) {
	return json.Marshal(preferencesRecord{Locations: p.Locations, Roles: p.Roles})
}

func unmarshalPreferences(raw []byte) (profile.Preferences, error) {
	if len(raw) == 0 {
		return profile.Preferences{}, nil
	}
	var rec preferencesRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return profile.Preferences{}, err
	}
	return profile.Preferences{Locations: rec.Locations, Roles: rec.Roles}, nil
}

func marshalWeights(w scoring.Weights) ([]byte, error) {
	return json.Marshal(weightsRecord{
		CompanyTier: w.CompanyTier,
		Location:    w.Location,
		TitleMatch:  w.TitleMatch,
		Skills:      w.Skills,
		Sponsorship: w.Sponsorship,
		Recency:     w.Recency,
	})
}

func unmarshalWeights(raw []byte) (scoring.Weights, error) {
	if len(raw) == 0 || string(raw) == "{}" {
		return scoring.DefaultWeights(), nil
	}
	var rec weightsRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return scoring.Weights{}, err
	}
	return scoring.Weights{
		CompanyTier: rec.CompanyTier,
		Location:    rec.Location,
		TitleMatch:  rec.TitleMatch,
		Skills:      rec.Skills,
		Sponsorship: rec.Sponsorship,
		Recency:     rec.Recency,
	}, nil
}
