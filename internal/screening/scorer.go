package screening

import (
	"strings"

	"github.com/yoockh/talentpool/internal/models"
)

// Point values. The base plus every bonus exceeds 100, so a résumé that
// meets all four conditions is capped at the maximum.
const (
	BaseScore         = 50.0
	ExperiencePoints  = 20.0
	SkillPoints       = 30.0
	DescriptionPoints = 20.0
	EducationPoints   = 10.0

	MinScore = 0.0
	MaxScore = 100.0
)

type Rules struct {
	SentinelSkill       string
	SentinelDegree      string
	MinYears            int // strictly greater than
	MinDescriptionWords int // strictly greater than
}

func DefaultRules() Rules {
	return Rules{
		SentinelSkill:       "Python",
		SentinelDegree:      "Bachelor's Degree",
		MinYears:            3,
		MinDescriptionWords: 50,
	}
}

// Breakdown records which conditions contributed to a score.
type Breakdown struct {
	Experience  bool    `json:"experience"`
	Skill       bool    `json:"skill"`
	Description bool    `json:"description"`
	Education   bool    `json:"education"`
	Total       float64 `json:"total"`
}

// Score is deterministic: the same parsed record and description always
// produce the same result, clamped to [MinScore, MaxScore].
func (r Rules) Score(p models.ParsedResume, description string) Breakdown {
	b := Breakdown{
		Experience:  p.YearsExperience > r.MinYears,
		Skill:       hasSkill(p.Skills, r.SentinelSkill),
		Description: len(strings.Fields(description)) > r.MinDescriptionWords,
		Education:   hasDegree(p, r.SentinelDegree),
	}

	total := BaseScore
	if b.Experience {
		total += ExperiencePoints
	}
	if b.Skill {
		total += SkillPoints
	}
	if b.Description {
		total += DescriptionPoints
	}
	if b.Education {
		total += EducationPoints
	}
	b.Total = Clamp(total)
	return b
}

func Clamp(v float64) float64 {
	switch {
	case v < MinScore:
		return MinScore
	case v > MaxScore:
		return MaxScore
	default:
		return v
	}
}

func hasSkill(skills []string, want string) bool {
	if want == "" {
		return false
	}
	for _, s := range skills {
		if strings.EqualFold(strings.TrimSpace(s), want) {
			return true
		}
	}
	return false
}

// hasDegree matches against every degree found, not only the highest, so a
// Master's holder who also lists a Bachelor's still meets a Bachelor's rule.
func hasDegree(p models.ParsedResume, degree string) bool {
	if degree == "" {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(p.Education), degree) {
		return true
	}
	for _, d := range p.Degrees {
		if strings.EqualFold(strings.TrimSpace(d), degree) {
			return true
		}
	}
	return false
}
