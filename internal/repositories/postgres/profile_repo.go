package postgres

import (
	"context"

	"github.com/yoockh/talentpool/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	// CreateIfMissing inserts p unless a profile for p.UserID already exists.
	CreateIfMissing(ctx context.Context, p *models.UserProfile) error
	Update(ctx context.Context, p *models.UserProfile) error
}

type profileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	var p models.UserProfile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Take(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *profileRepo) CreateIfMissing(ctx context.Context, p *models.UserProfile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(p).Error
}

func (r *profileRepo) Update(ctx context.Context, p *models.UserProfile) error {
	return translate(r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("user_id = ?", p.UserID).
		Updates(map[string]any{
			"role":                     p.Role,
			"role_selection_completed": p.RoleSelectionCompleted,
			"phone_number":             p.PhoneNumber,
			"updated_at":               p.UpdatedAt,
		}).Error)
}
