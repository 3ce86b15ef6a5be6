package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/talentpool/internal/cache"
	"github.com/yoockh/talentpool/internal/models"
	pgrepo "github.com/yoockh/talentpool/internal/repositories/postgres"
	"github.com/yoockh/talentpool/internal/utils"
)

const publicJobsLimit = 200

type JobInput struct {
	Title            *string           `json:"title"`
	Description      *string           `json:"description"`
	Responsibilities *string           `json:"responsibilities"`
	Requirements     *string           `json:"requirements"`
	Location         *string           `json:"location"`
	EmploymentType   *string           `json:"employment_type"`
	SalaryRange      *string           `json:"salary_range"`
	Status           *models.JobStatus `json:"status"`
	IsActive         *bool             `json:"is_active"`
}

type JobService interface {
	Create(ctx context.Context, actor Actor, in JobInput) (*models.Job, error)
	ListPublic(ctx context.Context) ([]models.Job, error)
	Get(ctx context.Context, jobID string) (*models.Job, error)
	Update(ctx context.Context, actor Actor, jobID string, in JobInput) (*models.Job, error)
	Delete(ctx context.Context, actor Actor, jobID string) error
	ListMine(ctx context.Context, actor Actor) ([]models.Job, error)
}

type jobService struct {
	jobs  pgrepo.JobRepository
	cache cache.Cache
	ttl   time.Duration
	log   *logrus.Logger
}

func NewJobService(jobs pgrepo.JobRepository, c cache.Cache, ttl time.Duration, log *logrus.Logger) JobService {
	if log == nil {
		log = logrus.New()
	}
	return &jobService{jobs: jobs, cache: c, ttl: ttl, log: log}
}

func (s *jobService) Create(ctx context.Context, actor Actor, in JobInput) (*models.Job, error) {
	const op = "JobService.Create"

	if err := requireRole(op, actor, models.RoleRecruiter); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	j := &models.Job{
		ID:            uuid.NewString(),
		PostedBy:      ptr(actor.UserID),
		Status:        models.JobDraft,
		IsActive:      true,
		PublishedDate: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := applyJobInput(op, j, in); err != nil {
		return nil, err
	}
	if j.Title == "" || j.Description == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "title and description are required", nil)
	}

	if err := s.jobs.Create(ctx, j); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create job", err)
	}
	s.invalidate(ctx, j.ID)
	return j, nil
}

func (s *jobService) ListPublic(ctx context.Context) ([]models.Job, error) {
	const op = "JobService.ListPublic"

	// The generation is read before the DB so a concurrent invalidate makes
	// this result unreachable instead of letting it overwrite a fresh one.
	key := ""
	if s.cache != nil {
		gen, err := s.cache.GetInt(ctx, cache.KeyPublicJobsGen)
		if err != nil {
			s.log.WithError(err).Warn("job list cache generation read failed")
		} else {
			key = cache.KeyPublicJobsAt(gen)
			var cached []models.Job
			hit, err := s.cache.GetJSON(ctx, key, &cached)
			if err != nil {
				s.log.WithError(err).Warn("job list cache read failed")
			} else if hit {
				return cached, nil
			}
		}
	}

	jobs, err := s.jobs.ListPublic(ctx, publicJobsLimit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list jobs", err)
	}
	if jobs == nil {
		jobs = []models.Job{}
	}

	if key != "" {
		if err := s.cache.SetJSON(ctx, key, jobs, s.ttl); err != nil {
			s.log.WithError(err).Warn("job list cache write failed")
		}
	}
	return jobs, nil
}

func (s *jobService) Get(ctx context.Context, jobID string) (*models.Job, error) {
	const op = "JobService.Get"
	return s.load(ctx, op, jobID)
}

func (s *jobService) Update(ctx context.Context, actor Actor, jobID string, in JobInput) (*models.Job, error) {
	const op = "JobService.Update"

	if err := requireRole(op, actor, models.RoleRecruiter, models.RoleAdmin); err != nil {
		return nil, err
	}
	j, err := s.load(ctx, op, jobID)
	if err != nil {
		return nil, err
	}
	if err := canManageJob(op, actor, j); err != nil {
		return nil, err
	}

	if err := applyJobInput(op, j, in); err != nil {
		return nil, err
	}
	if j.Title == "" || j.Description == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "title and description cannot be empty", nil)
	}
	j.UpdatedAt = time.Now().UTC()

	if err := s.jobs.Update(ctx, j); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update job", err)
	}
	s.invalidate(ctx, j.ID)
	return j, nil
}

func (s *jobService) Delete(ctx context.Context, actor Actor, jobID string) error {
	const op = "JobService.Delete"

	if err := requireRole(op, actor, models.RoleRecruiter, models.RoleAdmin); err != nil {
		return err
	}
	j, err := s.load(ctx, op, jobID)
	if err != nil {
		return err
	}
	if err := canManageJob(op, actor, j); err != nil {
		return err
	}

	if err := s.jobs.Delete(ctx, j.ID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "job not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete job", err)
	}
	s.invalidate(ctx, j.ID)
	return nil
}

func (s *jobService) ListMine(ctx context.Context, actor Actor) ([]models.Job, error) {
	const op = "JobService.ListMine"

	if err := requireRole(op, actor, models.RoleRecruiter, models.RoleAdmin); err != nil {
		return nil, err
	}
	jobs, err := s.jobs.ListByPoster(ctx, actor.UserID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list jobs", err)
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, nil
}

func (s *jobService) load(ctx context.Context, op, jobID string) (*models.Job, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "job id is required", nil)
	}
	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "job not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get job", err)
	}
	return j, nil
}

func (s *jobService) invalidate(ctx context.Context, jobID string) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, cache.KeyPublicJobsGen); err != nil {
		s.log.WithError(err).WithField("job_id", jobID).Warn("job list cache invalidation failed")
	}
	if err := s.cache.Del(ctx, cache.KeyJob(jobID)); err != nil {
		s.log.WithError(err).WithField("job_id", jobID).Warn("job cache invalidation failed")
	}
}

func applyJobInput(op string, j *models.Job, in JobInput) error {
	if in.Title != nil {
		j.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		j.Description = strings.TrimSpace(*in.Description)
	}
	for _, f := range []struct {
		val *string
		dst **string
	}{
		{in.Responsibilities, &j.Responsibilities},
		{in.Requirements, &j.Requirements},
		{in.Location, &j.Location},
		{in.EmploymentType, &j.EmploymentType},
		{in.SalaryRange, &j.SalaryRange},
	} {
		if f.val == nil {
			continue
		}
		if v := strings.TrimSpace(*f.val); v != "" {
			*f.dst = ptr(v)
		} else {
			*f.dst = nil
		}
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return utils.E(utils.CodeInvalidArgument, op, "status must be one of draft, open, closed, on_hold", nil)
		}
		j.Status = *in.Status
	}
	if in.IsActive != nil {
		j.IsActive = *in.IsActive
	}
	return nil
}
