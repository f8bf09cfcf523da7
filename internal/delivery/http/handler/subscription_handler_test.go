package handler

import (
	"testing"

	"jobhunter/internal/delivery/http/dto"
	"jobhunter/internal/domain/profile"
)

func TestProfileFromDTO_WithoutExperience(t *testing.T) {
	p := profileFromDTO(dto.ProfileDTO{
		Titles: []string{"Graduate Software Engineer"},
		Skills: []dto.SkillDTO{{Name: "React", Tier: "core"}},
	})
	if p.Experience != nil {
		t.Fatalf("Experience = %+v, want nil", p.Experience)
	}
	if len(p.Skills) != 1 || p.Skills[0].Tier != profile.TierCore {
		t.Fatalf("Skills = %+v", p.Skills)
	}
}

func TestProfileFromDTO_WithExperience(t *testing.T) {
	p := profileFromDTO(dto.ProfileDTO{
		Experience: &dto.ExperienceDTO{Years: 2, Level: "junior"},
	})
	if p.Experience == nil {
		t.Fatal("Experience = nil, want mapped value")
	}
	if p.Experience.Years != 2 || p.Experience.Level != profile.LevelJunior {
		t.Fatalf("Experience = %+v", p.Experience)
	}
}
