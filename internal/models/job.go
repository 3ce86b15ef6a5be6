package models

import "time"

type JobStatus string

const (
	JobDraft  JobStatus = "draft"
	JobOpen   JobStatus = "open"
	JobClosed JobStatus = "closed"
	JobOnHold JobStatus = "on_hold"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobDraft, JobOpen, JobClosed, JobOnHold:
		return true
	}
	return false
}

type Job struct {
	ID               string  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Title            string  `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Description      string  `gorm:"column:description;type:text;not null" json:"description"`
	Responsibilities *string `gorm:"column:responsibilities;type:text" json:"responsibilities,omitempty"`
	Requirements     *string `gorm:"column:requirements;type:text" json:"requirements,omitempty"`
	Location         *string `gorm:"column:location;type:varchar(255)" json:"location,omitempty"`
	EmploymentType   *string `gorm:"column:employment_type;type:varchar(100)" json:"employment_type,omitempty"`
	SalaryRange      *string `gorm:"column:salary_range;type:varchar(100)" json:"salary_range,omitempty"`

	// nil once the poster's profile is removed
	PostedBy *string `gorm:"column:posted_by;type:text;index" json:"posted_by,omitempty"`

	Status        JobStatus `gorm:"column:status;type:varchar(10);not null;default:draft;index:idx_jobs_public,priority:2" json:"status"`
	IsActive      bool      `gorm:"column:is_active;not null;default:true;index:idx_jobs_public,priority:1" json:"is_active"`
	PublishedDate time.Time `gorm:"column:published_date;type:timestamptz" json:"published_date"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`

	Poster *UserProfile `gorm:"foreignKey:PostedBy;references:UserID;constraint:OnDelete:SET NULL" json:"-"`
}

func (Job) TableName() string { return "jobs" }

// PubliclyVisible reports whether the posting appears in the public listing.
func (j *Job) PubliclyVisible() bool {
	return j.IsActive && j.Status == JobOpen
}

// OwnedBy reports whether userID posted the job.
func (j *Job) OwnedBy(userID string) bool {
	return j.PostedBy != nil && *j.PostedBy == userID
}
