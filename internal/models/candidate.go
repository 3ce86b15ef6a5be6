package models

import "time"

// Candidate shares its primary key with the owning UserProfile.
type Candidate struct {
	UserID             string  `gorm:"column:user_id;type:text;primaryKey" json:"user_id"`
	LinkedInProfileURL *string `gorm:"column:linkedin_profile_url;type:text" json:"linkedin_profile_url,omitempty"`
	GitHubProfileURL   *string `gorm:"column:github_profile_url;type:text" json:"github_profile_url,omitempty"`
	PortfolioURL       *string `gorm:"column:portfolio_url;type:text" json:"portfolio_url,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`

	Profile *UserProfile `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Candidate) TableName() string { return "candidates" }

// CandidateDetail is what recruiters and the candidate see on a profile page.
type CandidateDetail struct {
	Candidate *Candidate `json:"candidate"`
	Resumes   []Resume   `json:"resumes"`
}
