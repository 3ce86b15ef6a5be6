package postgres

import (
	"context"

	"github.com/yoockh/talentpool/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CandidateRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Candidate, error)
	CreateIfMissing(ctx context.Context, c *models.Candidate) error
	UpdateLinks(ctx context.Context, c *models.Candidate) error
	Delete(ctx context.Context, userID string) error
}

type candidateRepo struct {
	db *gorm.DB
}

func NewCandidateRepo(db *gorm.DB) CandidateRepository {
	return &candidateRepo{db: db}
}

func (r *candidateRepo) GetByUserID(ctx context.Context, userID string) (*models.Candidate, error) {
	var c models.Candidate
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *candidateRepo) CreateIfMissing(ctx context.Context, c *models.Candidate) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(c).Error
}

func (r *candidateRepo) UpdateLinks(ctx context.Context, c *models.Candidate) error {
	return translate(r.db.WithContext(ctx).
		Model(&models.Candidate{}).
		Where("user_id = ?", c.UserID).
		Updates(map[string]any{
			"linkedin_profile_url": c.LinkedInProfileURL,
			"github_profile_url":   c.GitHubProfileURL,
			"portfolio_url":        c.PortfolioURL,
			"updated_at":           c.UpdatedAt,
		}).Error)
}

// Delete removes the candidate row; résumés and applications cascade.
func (r *candidateRepo) Delete(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Candidate{}).Error
}
