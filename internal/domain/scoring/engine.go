// Package scoring computes a deterministic fit score for one posting
// against one candidate profile. No I/O, no side effects; callers run
// it in parallel across independent submissions.
package scoring

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"jobhunter/internal/domain/job"
	"jobhunter/internal/domain/profile"
)

// Factor names the scoring categories reported in a breakdown.
type Factor string

const (
	FactorCompanyTier Factor = "companyTier"
	FactorLocation    Factor = "location"
	FactorTitleMatch  Factor = "titleMatch"
	FactorSkills      Factor = "skills"
	FactorSponsorship Factor = "sponsorship"
	FactorRecency     Factor = "recency"
	FactorSeniority   Factor = "seniority"
)

// Raw point values per factor trigger.
const (
	pointsBigTech    = 12.0
	pointsNotable    = 10.0
	pointsTopTech    = 8.0
	pointsPrimary    = 15.0
	pointsSecondary  = 12.0
	pointsRemote     = 5.0
	pointsGraduate   = 18.0
	pointsFrontend   = 15.0
	pointsEngineer   = 14.0
	pointsNegative   = -20.0
	pointsSkillCore  = 5.0
	pointsSkillStrng = 3.0
	pointsSkillPerip = 1.0
	pointsSponsor    = 4.0
	sponsorCap       = 12.0
	pointsRecency    = 10.0
	pointsSeniority  = -5.0
)

// Company tier labels carried onto scored postings.
const (
	TierBigTech   = "big-tech"
	TierAUNotable = "au-notable"
	TierTopTech   = "top-tech"
)

// Weights scale each factor's raw points. Values live in [0, 2]; zero
// disables a factor, values above one amplify it. Factors are summed,
// not averaged, so weights are not normalized against each other.
type Weights struct {
	CompanyTier float64
	Location    float64
	TitleMatch  float64
	Skills      float64
	Sponsorship float64
	Recency     float64
}

func DefaultWeights() Weights {
	return Weights{
		CompanyTier: 1,
		Location:    1,
		TitleMatch:  1,
		Skills:      1,
		Sponsorship: 1,
		Recency:     1,
	}
}

var ErrWeightOutOfRange = errors.New("scoring weight out of range")

// Validate rejects out-of-range weights. The engine clamps anyway, but
// API callers must see bad input rejected rather than silently fixed.
func (w Weights) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"companyTier", w.CompanyTier},
		{"location", w.Location},
		{"titleMatch", w.TitleMatch},
		{"skills", w.Skills},
		{"sponsorship", w.Sponsorship},
		{"recency", w.Recency},
	}
	for _, f := range fields {
		if f.v < 0 || f.v > 2 {
			return fmt.Errorf("%w: %s=%v (want [0, 2])", ErrWeightOutOfRange, f.name, f.v)
		}
	}
	return nil
}

func (w Weights) clamped() Weights {
	return Weights{
		CompanyTier: clamp(w.CompanyTier, 0, 2),
		Location:    clamp(w.Location, 0, 2),
		TitleMatch:  clamp(w.TitleMatch, 0, 2),
		Skills:      clamp(w.Skills, 0, 2),
		Sponsorship: clamp(w.Sponsorship, 0, 2),
		Recency:     clamp(w.Recency, 0, 2),
	}
}

// Result is one posting's computed score with its per-factor breakdown.
type Result struct {
	Total     float64
	Breakdown map[Factor]float64
	Tier      string
	Seniority string
}

// Engine scores postings against a fixed table set.
type Engine struct {
	tables Tables
}

func NewEngine(tables Tables) *Engine {
	return &Engine{tables: tables}
}

// Score computes the weighted fit score for one posting. Missing
// optional fields contribute zero to their factor; the total may be
// negative. The reference date decides recency, so a whole scrape run
// scores against one consistent "today".
func (e *Engine) Score(p job.Posting, prof profile.Profile, w Weights, refDate time.Time) Result {
	w = w.clamped()

	title := strings.ToLower(p.Title)
	haystack := title + " " + strings.ToLower(p.Description)

	breakdown := make(map[Factor]float64, 7)

	tierLabel, tierPoints := e.classifyCompany(p.Company)
	breakdown[FactorCompanyTier] = tierPoints * w.CompanyTier

	breakdown[FactorLocation] = e.locationPoints(p) * w.Location

	_, titlePoints := e.matchTitle(title)
	breakdown[FactorTitleMatch] = titlePoints * w.TitleMatch

	var skillPoints float64
	for _, s := range prof.EffectiveSkills() {
		if !containsKeyword(haystack, s.Name) {
			continue
		}
		switch s.Tier {
		case profile.TierCore:
			skillPoints += pointsSkillCore
		case profile.TierStrong:
			skillPoints += pointsSkillStrng
		default:
			skillPoints += pointsSkillPerip
		}
	}
	breakdown[FactorSkills] = skillPoints * w.Skills

	var sponsorPoints float64
	desc := strings.ToLower(p.Description)
	for _, phrase := range e.tables.SponsorshipPhrases {
		if containsKeyword(desc, phrase) {
			sponsorPoints += pointsSponsor
		}
	}
	if sponsorPoints > sponsorCap {
		sponsorPoints = sponsorCap
	}
	breakdown[FactorSponsorship] = sponsorPoints * w.Sponsorship

	var recencyPoints float64
	if p.DatePosted != nil && sameDay(*p.DatePosted, refDate) {
		recencyPoints = pointsRecency
	}
	breakdown[FactorRecency] = recencyPoints * w.Recency

	seniority := e.detectSeniority(title)
	if seniority != "" {
		breakdown[FactorSeniority] = pointsSeniority
	} else {
		breakdown[FactorSeniority] = 0
	}

	var total float64
	for _, v := range breakdown {
		total += v
	}

	return Result{
		Total:     total,
		Breakdown: breakdown,
		Tier:      tierLabel,
		Seniority: seniority,
	}
}

// ClassifyCompany returns the matched tier label, or "" for unlisted
// employers.
func (e *Engine) ClassifyCompany(company string) string {
	label, _ := e.classifyCompany(company)
	return label
}

// DetectSeniority returns "senior" for Senior/Lead/Principal style
// titles, "" otherwise.
func (e *Engine) DetectSeniority(title string) string {
	return e.detectSeniority(strings.ToLower(title))
}

// MatchTitle returns the winning title category, or "" when nothing
// matches. Categories are mutually exclusive; the negative list wins
// over every positive one.
func (e *Engine) MatchTitle(title string) string {
	cat, _ := e.matchTitle(strings.ToLower(title))
	return cat
}

func (e *Engine) classifyCompany(company string) (string, float64) {
	c := strings.ToLower(strings.TrimSpace(company))
	if c == "" {
		return "", 0
	}
	if matchesAny(c, e.tables.BigTechCompanies) {
		return TierBigTech, pointsBigTech
	}
	if matchesAny(c, e.tables.NotableCompanies) {
		return TierAUNotable, pointsNotable
	}
	if matchesAny(c, e.tables.TopTechCompanies) {
		return TierTopTech, pointsTopTech
	}
	return "", 0
}

// locationPoints awards the city match and an independent remote
// bonus. A remote posting in a target city gets both.
func (e *Engine) locationPoints(p job.Posting) float64 {
	loc := strings.ToLower(p.Location)
	var pts float64
	if matchesAny(loc, e.tables.PrimaryLocations) {
		pts = pointsPrimary
	} else if matchesAny(loc, e.tables.SecondaryLocations) {
		pts = pointsSecondary
	}
	if p.IsRemote {
		pts += pointsRemote
	}
	return pts
}

func (e *Engine) matchTitle(title string) (string, float64) {
	if title == "" {
		return "", 0
	}
	if matchesAny(title, e.tables.NegativeTitles) {
		return "negative", pointsNegative
	}
	if matchesAny(title, e.tables.GraduateTitles) {
		return "graduate", pointsGraduate
	}
	if matchesAny(title, e.tables.FrontendTitles) {
		return "frontend", pointsFrontend
	}
	if matchesAny(title, e.tables.EngineerTitles) {
		return "software-engineer", pointsEngineer
	}
	return "", 0
}

func (e *Engine) detectSeniority(title string) string {
	if matchesAny(title, e.tables.SeniorTitles) {
		return "senior"
	}
	return ""
}

func matchesAny(haystack string, keywords []string) bool {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func containsKeyword(haystack, keyword string) bool {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return false
	}
	return strings.Contains(haystack, kw)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
