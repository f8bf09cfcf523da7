package cli

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"jobhunter/internal/domain/profile"
	"jobhunter/internal/domain/scoring"
)

// FileConfig is the optional TOML profile for CLI searches.
type FileConfig struct {
	Profile struct {
		Skills []struct {
			Name string `toml:"name"`
			Tier string `toml:"tier"`
		} `toml:"skills"`
		Titles   []string `toml:"titles"`
		Keywords []string `toml:"keywords"`
	} `toml:"profile"`

	Preferences struct {
		Locations []string `toml:"locations"`
		Roles     []string `toml:"roles"`
	} `toml:"preferences"`

	Weights struct {
		CompanyTier *float64 `toml:"company_tier"`
		Location    *float64 `toml:"location"`
		TitleMatch  *float64 `toml:"title_match"`
		Skills      *float64 `toml:"skills"`
		Sponsorship *float64 `toml:"sponsorship"`
		Recency     *float64 `toml:"recency"`
	} `toml:"weights"`
}

// LoadFileConfig parses the TOML file. A missing path returns zero
// config so every flag still works without a file.
func LoadFileConfig(path string) (FileConfig, error) {
	var cfg FileConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func (c FileConfig) ToProfile() profile.Profile {
	p := profile.Profile{
		Titles:   c.Profile.Titles,
		Keywords: c.Profile.Keywords,
	}
	for _, s := range c.Profile.Skills {
		p.Skills = append(p.Skills, profile.Skill{Name: s.Name, Tier: profile.ParseTier(s.Tier)})
	}
	return p
}

func (c FileConfig) ToWeights() scoring.Weights {
	w := scoring.DefaultWeights()
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&w.CompanyTier, c.Weights.CompanyTier)
	set(&w.Location, c.Weights.Location)
	set(&w.TitleMatch, c.Weights.TitleMatch)
	set(&w.Skills, c.Weights.Skills)
	set(&w.Sponsorship, c.Weights.Sponsorship)
	set(&w.Recency, c.Weights.Recency)
	return w
}
