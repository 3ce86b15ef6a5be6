package screening

import (
	"strings"
	"testing"

	"github.com/yoockh/talentpool/internal/models"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestScoreAllFactorsCapsAtMax(t *testing.T) {
	r := DefaultRules()
	p := models.ParsedResume{
		YearsExperience: 5,
		Skills:          []string{"Django", "Python"},
		Education:       "Bachelor's Degree",
	}
	b := r.Score(p, words(51))
	if b.Total != 100 {
		t.Fatalf("Total = %v, want 100", b.Total)
	}
	if !b.Experience || !b.Skill || !b.Description || !b.Education {
		t.Errorf("expected every factor to apply: %+v", b)
	}
}

func TestScoreFactors(t *testing.T) {
	r := DefaultRules()
	tests := []struct {
		name   string
		parsed models.ParsedResume
		desc   string
		want   float64
	}{
		{"nothing", models.ParsedResume{}, "short", BaseScore},
		{"exactly three years does not count", models.ParsedResume{YearsExperience: 3}, "", BaseScore},
		{"experience only", models.ParsedResume{YearsExperience: 4}, "", BaseScore + ExperiencePoints},
		{"skill case-insensitive", models.ParsedResume{Skills: []string{"python"}}, "", BaseScore + SkillPoints},
		{"fifty words does not count", models.ParsedResume{}, words(50), BaseScore},
		{"long description", models.ParsedResume{}, words(51), BaseScore + DescriptionPoints},
		{"education", models.ParsedResume{Education: "Bachelor's Degree"}, "", BaseScore + EducationPoints},
		{"other degree", models.ParsedResume{Education: "Master's Degree"}, "", BaseScore},
		{"lower degree listed too", models.ParsedResume{Education: "Master's Degree", Degrees: []string{"Master's Degree", "Bachelor's Degree"}}, "", BaseScore + EducationPoints},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Score(tt.parsed, tt.desc).Total; got != tt.want {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreAlwaysWithinBounds(t *testing.T) {
	rules := []Rules{DefaultRules(), {}, {SentinelSkill: "Go", SentinelDegree: "PhD", MinYears: -1, MinDescriptionWords: -1}}
	parsed := []models.ParsedResume{
		{},
		{YearsExperience: 40, Skills: []string{"Python", "Go"}, Education: "PhD"},
		{YearsExperience: -10},
	}
	for _, r := range rules {
		for _, p := range parsed {
			for _, d := range []string{"", words(10), words(500)} {
				got := r.Score(p, d).Total
				if got < MinScore || got > MaxScore {
					t.Fatalf("Score out of bounds: %v (rules=%+v parsed=%+v)", got, r, p)
				}
			}
		}
	}
}

func TestClamp(t *testing.T) {
	if Clamp(-5) != 0 || Clamp(130) != 100 || Clamp(42.5) != 42.5 {
		t.Fatal("Clamp did not clamp to [0,100]")
	}
}

func TestFeedbackMentionsGaps(t *testing.T) {
	r := DefaultRules()
	p := models.ParsedResume{YearsExperience: 1, JobTitle: "Analyst", Company: "Initech"}
	b := r.Score(p, "tiny")
	fb := r.Feedback(p, b)

	for _, want := range []string{"Resume score: 50/100.", "Analyst at Initech", "Python skills", "Bachelor's Degree", "short"} {
		if !strings.Contains(fb, want) {
			t.Errorf("feedback %q missing %q", fb, want)
		}
	}
}

func TestEmbedIsNormalisedAndStable(t *testing.T) {
	a := Embed("Python developer with Django experience")
	b := Embed("python DEVELOPER with django experience")
	if len(a.Slice()) != models.EmbeddingDims {
		t.Fatalf("dims = %d", len(a.Slice()))
	}
	var norm float64
	for i, v := range a.Slice() {
		if v != b.Slice()[i] {
			t.Fatalf("embedding not case-insensitive at %d", i)
		}
		norm += float64(v) * float64(v)
	}
	if norm < 0.999 || norm > 1.001 {
		t.Errorf("norm^2 = %v, want 1", norm)
	}
}
