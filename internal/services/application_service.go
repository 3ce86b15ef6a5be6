package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/talentpool/internal/export"
	"github.com/yoockh/talentpool/internal/models"
	pgrepo "github.com/yoockh/talentpool/internal/repositories/postgres"
	"github.com/yoockh/talentpool/internal/screening"
	"github.com/yoockh/talentpool/internal/utils"
)

const (
	adminListLimit  = 500
	historyLimit    = 200
	defaultRankSize = 20
	maxRankSize     = 100
)

// Screener runs the screening pipeline for one application.
type Screener interface {
	Screen(ctx context.Context, app *models.Application, actorID string) (*screening.Outcome, error)
}

// EventStore is the application history backend.
type EventStore interface {
	Append(ctx context.Context, e *models.ApplicationEvent) error
	ListByApplication(ctx context.Context, applicationID string, limit int64) ([]models.ApplicationEvent, error)
}

type ApplicationService interface {
	Apply(ctx context.Context, actor Actor, jobID string) (*models.Application, error)
	Get(ctx context.Context, actor Actor, appID string) (*models.Application, error)
	UpdateStatus(ctx context.Context, actor Actor, appID string, status models.ApplicationStatus) (*models.Application, error)
	ListForRecruiter(ctx context.Context, actor Actor) ([]models.Application, error)
	History(ctx context.Context, actor Actor, appID string) ([]models.ApplicationEvent, error)
	Review(ctx context.Context, actor Actor, appID string) (*screening.Outcome, error)
	RankForJob(ctx context.Context, actor Actor, jobID string, limit int) ([]models.RankedApplicant, error)
	ExportForJob(ctx context.Context, actor Actor, jobID string) ([]byte, error)
}

type applicationService struct {
	apps     pgrepo.ApplicationRepository
	jobs     pgrepo.JobRepository
	resumes  pgrepo.ResumeRepository
	screener Screener
	events   EventStore
	log      *logrus.Logger
}

func NewApplicationService(
	apps pgrepo.ApplicationRepository,
	jobs pgrepo.JobRepository,
	resumes pgrepo.ResumeRepository,
	screener Screener,
	events EventStore,
	log *logrus.Logger,
) ApplicationService {
	if log == nil {
		log = logrus.New()
	}
	return &applicationService{
		apps:     apps,
		jobs:     jobs,
		resumes:  resumes,
		screener: screener,
		events:   events,
		log:      log,
	}
}

func (s *applicationService) Apply(ctx context.Context, actor Actor, jobID string) (*models.Application, error) {
	const op = "ApplicationService.Apply"

	if err := requireRole(op, actor, models.RoleCandidate); err != nil {
		return nil, err
	}
	job, err := s.loadJob(ctx, op, jobID)
	if err != nil {
		return nil, err
	}

	n, err := s.resumes.CountByCandidate(ctx, actor.UserID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count resumes", err)
	}
	if n == 0 {
		return nil, utils.E(utils.CodePrecondition, op, "upload a resume before applying", screening.ErrMissingResume)
	}

	exists, err := s.apps.Exists(ctx, actor.UserID, job.ID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to check existing application", err)
	}
	if exists {
		return nil, utils.E(utils.CodeConflict, op, "you have already applied for this job", utils.ErrDuplicate)
	}

	now := time.Now().UTC()
	app := &models.Application{
		ID:          uuid.NewString(),
		CandidateID: actor.UserID,
		JobID:       job.ID,
		Status:      models.AppApplied,
		AppliedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.apps.Insert(ctx, app); err != nil {
		// lost a race with a concurrent apply
		if errors.Is(err, utils.ErrDuplicate) {
			return nil, utils.E(utils.CodeConflict, op, "you have already applied for this job", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to create application", err)
	}
	app.Job = job

	s.record(ctx, &models.ApplicationEvent{
		ApplicationID: app.ID,
		JobID:         app.JobID,
		ActorID:       actor.UserID,
		Type:          models.EventCreated,
		ToStatus:      app.Status,
	})
	return app, nil
}

func (s *applicationService) Get(ctx context.Context, actor Actor, appID string) (*models.Application, error) {
	const op = "ApplicationService.Get"
	return s.loadManaged(ctx, op, actor, appID)
}

func (s *applicationService) UpdateStatus(ctx context.Context, actor Actor, appID string, status models.ApplicationStatus) (*models.Application, error) {
	const op = "ApplicationService.UpdateStatus"

	if !status.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown application status", nil)
	}
	app, err := s.loadManaged(ctx, op, actor, appID)
	if err != nil {
		return nil, err
	}

	from := app.Status
	if err := s.apps.UpdateStatus(ctx, app.ID, status); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "application not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to update application status", err)
	}
	app.Status = status
	app.UpdatedAt = time.Now().UTC()

	s.record(ctx, &models.ApplicationEvent{
		ApplicationID: app.ID,
		JobID:         app.JobID,
		ActorID:       actor.UserID,
		Type:          models.EventStatusChanged,
		FromStatus:    from,
		ToStatus:      status,
	})
	return app, nil
}

func (s *applicationService) ListForRecruiter(ctx context.Context, actor Actor) ([]models.Application, error) {
	const op = "ApplicationService.ListForRecruiter"

	if err := requireRole(op, actor, models.RoleRecruiter, models.RoleAdmin); err != nil {
		return nil, err
	}

	var (
		apps []models.Application
		err  error
	)
	if actor.Role == models.RoleAdmin {
		apps, err = s.apps.ListAll(ctx, adminListLimit)
	} else {
		apps, err = s.apps.ListByPoster(ctx, actor.UserID)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list applications", err)
	}
	if apps == nil {
		apps = []models.Application{}
	}
	return apps, nil
}

func (s *applicationService) History(ctx context.Context, actor Actor, appID string) ([]models.ApplicationEvent, error) {
	const op = "ApplicationService.History"

	app, err := s.loadManaged(ctx, op, actor, appID)
	if err != nil {
		return nil, err
	}
	if s.events == nil {
		return []models.ApplicationEvent{}, nil
	}
	out, err := s.events.ListByApplication(ctx, app.ID, historyLimit)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to load application history", err)
	}
	if out == nil {
		out = []models.ApplicationEvent{}
	}
	return out, nil
}

func (s *applicationService) Review(ctx context.Context, actor Actor, appID string) (*screening.Outcome, error) {
	const op = "ApplicationService.Review"

	app, err := s.loadManaged(ctx, op, actor, appID)
	if err != nil {
		return nil, err
	}
	if s.screener == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "screening is not configured", nil)
	}
	return s.screener.Screen(ctx, app, actor.UserID)
}

func (s *applicationService) RankForJob(ctx context.Context, actor Actor, jobID string, limit int) ([]models.RankedApplicant, error) {
	const op = "ApplicationService.RankForJob"

	job, err := s.loadManagedJob(ctx, op, actor, jobID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRankSize
	}
	if limit > maxRankSize {
		limit = maxRankSize
	}

	target := screening.Embed(strings.Join([]string{job.Title, job.Description, deref(job.Requirements)}, "\n"))
	out, err := s.apps.RankByEmbedding(ctx, job.ID, target, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to rank applicants", err)
	}
	if out == nil {
		out = []models.RankedApplicant{}
	}
	return out, nil
}

func (s *applicationService) ExportForJob(ctx context.Context, actor Actor, jobID string) ([]byte, error) {
	const op = "ApplicationService.ExportForJob"

	job, err := s.loadManagedJob(ctx, op, actor, jobID)
	if err != nil {
		return nil, err
	}
	apps, err := s.apps.ListByJob(ctx, job.ID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list applications", err)
	}
	data, err := export.ApplicationsWorkbook(job, apps, time.Now().UTC())
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to build export", err)
	}
	return data, nil
}

func (s *applicationService) loadJob(ctx context.Context, op, jobID string) (*models.Job, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "job id is required", nil)
	}
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "job not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get job", err)
	}
	return job, nil
}

func (s *applicationService) loadManagedJob(ctx context.Context, op string, actor Actor, jobID string) (*models.Job, error) {
	if err := requireRole(op, actor, models.RoleRecruiter, models.RoleAdmin); err != nil {
		return nil, err
	}
	job, err := s.loadJob(ctx, op, jobID)
	if err != nil {
		return nil, err
	}
	if err := canManageJob(op, actor, job); err != nil {
		return nil, err
	}
	return job, nil
}

// loadManaged fetches an application the actor may act on as recruiter.
func (s *applicationService) loadManaged(ctx context.Context, op string, actor Actor, appID string) (*models.Application, error) {
	if err := requireRole(op, actor, models.RoleRecruiter, models.RoleAdmin); err != nil {
		return nil, err
	}
	if strings.TrimSpace(appID) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "application id is required", nil)
	}
	app, err := s.apps.GetByID(ctx, appID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "application not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get application", err)
	}

	job := app.Job
	if job == nil {
		if job, err = s.loadJob(ctx, op, app.JobID); err != nil {
			return nil, err
		}
		app.Job = job
	}
	if err := canManageJob(op, actor, job); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *applicationService) record(ctx context.Context, e *models.ApplicationEvent) {
	if s.events == nil {
		return
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if err := s.events.Append(ctx, e); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"application_id": e.ApplicationID,
			"event":          e.Type,
		}).Warn("failed to record application event")
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
