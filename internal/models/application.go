package models

import "time"

type ApplicationStatus string

const (
	AppApplied      ApplicationStatus = "applied"
	AppScreening    ApplicationStatus = "screening"
	AppInterviewing ApplicationStatus = "interviewing"
	AppAssessment   ApplicationStatus = "assessment"
	AppOffer        ApplicationStatus = "offer"
	AppRejected     ApplicationStatus = "rejected"
	AppHired        ApplicationStatus = "hired"
	AppWithdrawn    ApplicationStatus = "withdrawn"
)

// ApplicationStatuses lists every status in workflow order.
var ApplicationStatuses = []ApplicationStatus{
	AppApplied, AppScreening, AppInterviewing, AppAssessment,
	AppOffer, AppRejected, AppHired, AppWithdrawn,
}

func (s ApplicationStatus) Valid() bool {
	for _, v := range ApplicationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Application struct {
	ID          string            `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CandidateID string            `gorm:"column:candidate_id;type:text;not null;uniqueIndex:uniq_application_candidate_job,priority:1" json:"candidate_id"`
	JobID       string            `gorm:"column:job_id;type:uuid;not null;uniqueIndex:uniq_application_candidate_job,priority:2;index" json:"job_id"`
	Status      ApplicationStatus `gorm:"column:status;type:varchar(20);not null;default:applied" json:"status"`

	ResumeScore    *float64 `gorm:"column:resume_score" json:"resume_score,omitempty"`
	InterviewScore *float64 `gorm:"column:interview_score" json:"interview_score,omitempty"`
	FeedbackNotes  *string  `gorm:"column:feedback_notes;type:text" json:"feedback_notes,omitempty"`

	AppliedAt time.Time `gorm:"column:applied_at;type:timestamptz;index" json:"applied_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`

	Candidate *Candidate `gorm:"foreignKey:CandidateID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Job       *Job       `gorm:"foreignKey:JobID;references:ID;constraint:OnDelete:CASCADE" json:"job,omitempty"`
}

func (Application) TableName() string { return "applications" }

// RankedApplicant pairs an application with the distance between its
// candidate's latest résumé and the job description.
type RankedApplicant struct {
	ApplicationID string            `json:"application_id"`
	CandidateID   string            `json:"candidate_id"`
	ResumeID      string            `json:"resume_id"`
	Status        ApplicationStatus `json:"status"`
	ResumeScore   *float64          `json:"resume_score,omitempty"`
	Distance      float64           `json:"distance"`
}
