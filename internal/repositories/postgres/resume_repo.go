package postgres

import (
	"context"

	"github.com/yoockh/talentpool/internal/models"
	"gorm.io/gorm"
)

type ResumeRepository interface {
	Insert(ctx context.Context, r *models.Resume) error
	GetByID(ctx context.Context, id string) (*models.Resume, error)
	LatestByCandidate(ctx context.Context, candidateID string) (*models.Resume, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]models.Resume, error)
	CountByCandidate(ctx context.Context, candidateID string) (int64, error)
	SetParseStatus(ctx context.Context, id string, status models.ParseStatus) error
	// SaveResults writes parse status, parsed data, skills, embedding, score and feedback.
	SaveResults(ctx context.Context, r *models.Resume) error
}

type resumeRepo struct {
	db *gorm.DB
}

func NewResumeRepo(db *gorm.DB) ResumeRepository {
	return &resumeRepo{db: db}
}

func (r *resumeRepo) Insert(ctx context.Context, row *models.Resume) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *resumeRepo) GetByID(ctx context.Context, id string) (*models.Resume, error) {
	var row models.Resume
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

func (r *resumeRepo) LatestByCandidate(ctx context.Context, candidateID string) (*models.Resume, error) {
	var row models.Resume
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("uploaded_at DESC").
		Take(&row).Error
	if err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

func (r *resumeRepo) ListByCandidate(ctx context.Context, candidateID string) ([]models.Resume, error) {
	var rows []models.Resume
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("uploaded_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *resumeRepo) CountByCandidate(ctx context.Context, candidateID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Resume{}).
		Where("candidate_id = ?", candidateID).
		Count(&n).Error
	return n, err
}

func (r *resumeRepo) SetParseStatus(ctx context.Context, id string, status models.ParseStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Resume{}).
		Where("id = ?", id).
		Update("parse_status", status).Error
}

func (r *resumeRepo) SaveResults(ctx context.Context, row *models.Resume) error {
	return r.db.WithContext(ctx).
		Model(&models.Resume{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"parse_status":    row.ParseStatus,
			"parsed_data":     row.ParsedData,
			"skills":          row.Skills,
			"embedding":       row.Embedding,
			"ai_resume_score": row.AIResumeScore,
			"ai_feedback":     row.AIFeedback,
		}).Error
}
