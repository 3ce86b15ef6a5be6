package postgres

import (
	"context"

	"github.com/yoockh/talentpool/internal/models"
	"gorm.io/gorm"
)

type JobRepository interface {
	Create(ctx context.Context, j *models.Job) error
	GetByID(ctx context.Context, id string) (*models.Job, error)
	ListPublic(ctx context.Context, limit int) ([]models.Job, error)
	ListByPoster(ctx context.Context, userID string) ([]models.Job, error)
	Update(ctx context.Context, j *models.Job) error
	Delete(ctx context.Context, id string) error
}

type jobRepo struct {
	db *gorm.DB
}

func NewJobRepo(db *gorm.DB) JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) Create(ctx context.Context, j *models.Job) error {
	return r.db.WithContext(ctx).Create(j).Error
}

func (r *jobRepo) GetByID(ctx context.Context, id string) (*models.Job, error) {
	var j models.Job
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&j).Error; err != nil {
		return nil, translate(err)
	}
	return &j, nil
}

func (r *jobRepo) ListPublic(ctx context.Context, limit int) ([]models.Job, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.Job
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND status = ?", true, models.JobOpen).
		Order("published_date DESC").
		Order("title").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *jobRepo) ListByPoster(ctx context.Context, userID string) ([]models.Job, error) {
	var rows []models.Job
	err := r.db.WithContext(ctx).
		Where("posted_by = ?", userID).
		Order("published_date DESC").
		Find(&rows).Error
	return rows, err
}

func (r *jobRepo) Update(ctx context.Context, j *models.Job) error {
	return translate(r.db.WithContext(ctx).
		Model(&models.Job{}).
		Where("id = ?", j.ID).
		Updates(map[string]any{
			"title":            j.Title,
			"description":      j.Description,
			"responsibilities": j.Responsibilities,
			"requirements":     j.Requirements,
			"location":         j.Location,
			"employment_type":  j.EmploymentType,
			"salary_range":     j.SalaryRange,
			"status":           j.Status,
			"is_active":        j.IsActive,
			"updated_at":       j.UpdatedAt,
		}).Error)
}

// Delete removes the job; its applications cascade.
func (r *jobRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Job{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}
