package postgres

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"github.com/yoockh/talentpool/internal/models"
	"gorm.io/gorm"
)

type ApplicationRepository interface {
	Insert(ctx context.Context, a *models.Application) error
	GetByID(ctx context.Context, id string) (*models.Application, error)
	Exists(ctx context.Context, candidateID, jobID string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error
	// SaveScreening writes status and resume_score after a screening run.
	SaveScreening(ctx context.Context, a *models.Application) error
	ListByPoster(ctx context.Context, userID string) ([]models.Application, error)
	ListAll(ctx context.Context, limit int) ([]models.Application, error)
	ListByJob(ctx context.Context, jobID string) ([]models.Application, error)
	// RankByEmbedding orders a job's applicants by cosine distance between
	// their latest parsed résumé and target.
	RankByEmbedding(ctx context.Context, jobID string, target pgvector.Vector, limit int) ([]models.RankedApplicant, error)
}

type applicationRepo struct {
	db *gorm.DB
}

func NewApplicationRepo(db *gorm.DB) ApplicationRepository {
	return &applicationRepo{db: db}
}

func (r *applicationRepo) Insert(ctx context.Context, a *models.Application) error {
	return translate(r.db.WithContext(ctx).Omit("Job", "Candidate").Create(a).Error)
}

func (r *applicationRepo) GetByID(ctx context.Context, id string) (*models.Application, error) {
	var a models.Application
	err := r.db.WithContext(ctx).
		Preload("Job").
		Where("id = ?", id).
		Take(&a).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *applicationRepo) Exists(ctx context.Context, candidateID, jobID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("candidate_id = ? AND job_id = ?", candidateID, jobID).
		Count(&count).Error
	return count > 0, err
}

func (r *applicationRepo) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": gorm.Expr("now()")})
	if res.Error != nil {
		return res.Error
	}
	// row vanished between the caller's read and this write
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *applicationRepo) SaveScreening(ctx context.Context, a *models.Application) error {
	return r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"status":       a.Status,
			"resume_score": a.ResumeScore,
			"updated_at":   a.UpdatedAt,
		}).Error
}

func (r *applicationRepo) ListByPoster(ctx context.Context, userID string) ([]models.Application, error) {
	var rows []models.Application
	err := r.db.WithContext(ctx).
		Preload("Job").
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("jobs.posted_by = ?", userID).
		Order("applications.applied_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *applicationRepo) ListAll(ctx context.Context, limit int) ([]models.Application, error) {
	if limit <= 0 {
		limit = 200
	}
	var rows []models.Application
	err := r.db.WithContext(ctx).
		Preload("Job").
		Order("applied_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *applicationRepo) ListByJob(ctx context.Context, jobID string) ([]models.Application, error) {
	var rows []models.Application
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("applied_at DESC").
		Find(&rows).Error
	return rows, err
}

const rankQuery = `
SELECT a.id AS application_id,
       a.candidate_id,
       r.id AS resume_id,
       a.status,
       a.resume_score,
       r.embedding <=> ? AS distance
FROM applications a
JOIN LATERAL (
    SELECT id, embedding
    FROM resumes
    WHERE resumes.candidate_id = a.candidate_id
    ORDER BY uploaded_at DESC
    LIMIT 1
) r ON true
WHERE a.job_id = ? AND r.embedding IS NOT NULL
ORDER BY distance ASC
LIMIT ?`

func (r *applicationRepo) RankByEmbedding(ctx context.Context, jobID string, target pgvector.Vector, limit int) ([]models.RankedApplicant, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []models.RankedApplicant
	err := r.db.WithContext(ctx).Raw(rankQuery, target, jobID, limit).Scan(&rows).Error
	return rows, err
}
