package models

import "time"

type Role string

const (
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCandidate, RoleRecruiter, RoleAdmin:
		return true
	}
	return false
}

// Selectable reports whether a user may pick this role for themselves.
func (r Role) Selectable() bool {
	return r == RoleCandidate || r == RoleRecruiter
}

// UserProfile is keyed by the identity provider subject (JWT "sub").
type UserProfile struct {
	UserID                 string    `gorm:"column:user_id;type:text;primaryKey" json:"user_id"`
	Role                   Role      `gorm:"column:role;type:varchar(20);not null;default:candidate" json:"role"`
	RoleSelectionCompleted bool      `gorm:"column:role_selection_completed;not null;default:false" json:"role_selection_completed"`
	PhoneNumber            *string   `gorm:"column:phone_number;type:varchar(15)" json:"phone_number,omitempty"`
	CreatedAt              time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt              time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profiles" }
