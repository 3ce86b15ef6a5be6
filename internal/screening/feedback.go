package screening

import (
	"fmt"
	"strings"

	"github.com/yoockh/talentpool/internal/models"
)

// Feedback renders the deterministic reviewer note for a scored résumé.
func (r Rules) Feedback(p models.ParsedResume, b Breakdown) string {
	var strengths, gaps []string

	if b.Experience {
		strengths = append(strengths, fmt.Sprintf("%d years of experience", p.YearsExperience))
	} else {
		gaps = append(gaps, fmt.Sprintf("more than %d years of experience", r.MinYears))
	}
	if b.Skill {
		strengths = append(strengths, r.SentinelSkill+" skills")
	} else {
		gaps = append(gaps, r.SentinelSkill+" skills")
	}
	if b.Education {
		strengths = append(strengths, r.SentinelDegree)
	} else {
		gaps = append(gaps, r.SentinelDegree)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Resume score: %.0f/100.", b.Total)
	if p.JobTitle != "" {
		fmt.Fprintf(&sb, " Current role: %s", p.JobTitle)
		if p.Company != "" {
			fmt.Fprintf(&sb, " at %s", p.Company)
		}
		sb.WriteString(".")
	}
	if len(strengths) > 0 {
		fmt.Fprintf(&sb, " Strengths: %s.", strings.Join(strengths, ", "))
	}
	if len(gaps) > 0 {
		fmt.Fprintf(&sb, " Not evident: %s.", strings.Join(gaps, ", "))
	}
	if !b.Description {
		sb.WriteString(" The job description is short, so the match is approximate.")
	}
	return sb.String()
}

func feedbackPrompt(job *models.Job, p models.ParsedResume, draft string) string {
	return "You are a recruiting assistant. Rewrite the screening note below as two or three " +
		"concise sentences for a recruiter. Keep the numeric score unchanged.\n\n" +
		"Job title: " + job.Title + "\n" +
		"Candidate skills: " + strings.Join(p.Skills, ", ") + "\n" +
		"Screening note: " + draft
}
