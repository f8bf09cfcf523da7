package profile

import "strings"

// Tier classifies how prominent a skill is in the candidate's resume.
type Tier string

const (
	TierCore       Tier = "core"
	TierStrong     Tier = "strong"
	TierPeripheral Tier = "peripheral"
)

// tierRank orders tiers for scoring only, never for display.
var tierRank = map[Tier]int{
	TierCore:       3,
	TierStrong:     2,
	TierPeripheral: 1,
}

// ParseTier normalizes a raw tier string, defaulting unknown values
// to peripheral the way the AI parser output is treated.
func ParseTier(s string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierCore:
		return TierCore
	case TierStrong:
		return TierStrong
	case TierPeripheral:
		return TierPeripheral
	}
	return TierPeripheral
}

func (t Tier) Rank() int { return tierRank[t] }

type Skill struct {
	Name string
	Tier Tier
}

type ExperienceLevel string

const (
	LevelIntern ExperienceLevel = "intern"
	LevelJunior ExperienceLevel = "junior"
	LevelMid    ExperienceLevel = "mid"
	LevelSenior ExperienceLevel = "senior"
)

type Experience struct {
	Years float64
	Level ExperienceLevel
}

// Profile is the candidate representation derived from a resume.
// It is immutable once parsed; user edits land in CustomSkills and
// Preferences, which fully replace rather than merge.
type Profile struct {
	Skills       []Skill
	Titles       []string
	Keywords     []string
	Experience   *Experience
	CustomSkills []Skill
}

// EffectiveSkills returns CustomSkills when the user has overridden the
// parsed set, otherwise the parsed skills. Duplicate names keep the
// first occurrence.
func (p Profile) EffectiveSkills() []Skill {
	src := p.Skills
	if len(p.CustomSkills) > 0 {
		src = p.CustomSkills
	}
	seen := make(map[string]struct{}, len(src))
	out := make([]Skill, 0, len(src))
	for _, s := range src {
		key := strings.ToLower(strings.TrimSpace(s.Name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Preferences narrow which postings the candidate wants ranked.
// Empty slices mean no filter on that axis.
type Preferences struct {
	Locations []string
	Roles     []string
}

func (p Preferences) HasLocationFilter() bool { return len(p.Locations) > 0 }
func (p Preferences) HasRoleFilter() bool     { return len(p.Roles) > 0 }
