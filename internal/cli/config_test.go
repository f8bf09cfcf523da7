package cli

import (
	"os"
	"path/filepath"
	"testing"

	"jobhunter/internal/domain/profile"
)

const sampleConfig = `
[profile]
titles = ["software engineer", "frontend developer"]
keywords = ["react", "typescript"]

[[profile.skills]]
name = "React"
tier = "core"

[[profile.skills]]
name = "Docker"
tier = "peripheral"

[preferences]
locations = ["adelaide"]
roles = ["graduate software engineer"]

[weights]
location = 1.5
recency = 0.0
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hunt.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFileConfig(t *testing.T) {
	cfg, err := LoadFileConfig(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}

	p := cfg.ToProfile()
	if len(p.Skills) != 2 || p.Skills[0].Name != "React" || p.Skills[0].Tier != profile.TierCore {
		t.Errorf("skills = %+v", p.Skills)
	}
	if len(p.Titles) != 2 {
		t.Errorf("titles = %v", p.Titles)
	}
	if len(cfg.Preferences.Locations) != 1 || cfg.Preferences.Locations[0] != "adelaide" {
		t.Errorf("locations = %v", cfg.Preferences.Locations)
	}

	w := cfg.ToWeights()
	if w.Location != 1.5 {
		t.Errorf("location weight = %v, want 1.5 from file", w.Location)
	}
	if w.Recency != 0 {
		t.Errorf("recency weight = %v, want 0 from file", w.Recency)
	}
	// Unset weights keep their defaults.
	if w.CompanyTier != 1 {
		t.Errorf("companyTier weight = %v, want default 1", w.CompanyTier)
	}
}

func TestLoadFileConfigEmptyPath(t *testing.T) {
	cfg, err := LoadFileConfig("")
	if err != nil {
		t.Fatalf("empty path should not error: %v", err)
	}
	if w := cfg.ToWeights(); w.Location != 1 {
		t.Errorf("zero config should yield default weights, got %+v", w)
	}
}

func TestLoadFileConfigBadToml(t *testing.T) {
	if _, err := LoadFileConfig(writeConfig(t, "not [valid")); err == nil {
		t.Fatal("expected parse error")
	}
}
