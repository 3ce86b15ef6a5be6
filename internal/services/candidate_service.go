package services

import (
	"context"
	"errors"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/talentpool/internal/models"
	"github.com/yoockh/talentpool/internal/parser"
	pgrepo "github.com/yoockh/talentpool/internal/repositories/postgres"
	"github.com/yoockh/talentpool/internal/storage"
	"github.com/yoockh/talentpool/internal/utils"
)

// ParseQueue hands newly uploaded résumés to the background parser.
type ParseQueue interface {
	EnqueueParse(ctx context.Context, resumeID string) error
}

type CandidateLinks struct {
	LinkedInProfileURL *string `json:"linkedin_profile_url,omitempty"`
	GitHubProfileURL   *string `json:"github_profile_url,omitempty"`
	PortfolioURL       *string `json:"portfolio_url,omitempty"`
}

type ResumeUpload struct {
	FileName string
	Size     int64
	Body     io.Reader
}

type CandidateService interface {
	Me(ctx context.Context, actor Actor) (*models.CandidateDetail, error)
	UpdateLinks(ctx context.Context, actor Actor, in CandidateLinks) (*models.Candidate, error)
	UploadResume(ctx context.Context, actor Actor, in ResumeUpload) (*models.Resume, error)
	Resume(ctx context.Context, actor Actor, resumeID string) (*models.Resume, error)
	Detail(ctx context.Context, actor Actor, candidateID string) (*models.CandidateDetail, error)
}

type candidateService struct {
	candidates pgrepo.CandidateRepository
	resumes    pgrepo.ResumeRepository
	uploader   storage.Uploader
	queue      ParseQueue
	maxBytes   int64
	log        *logrus.Logger
}

func NewCandidateService(
	candidates pgrepo.CandidateRepository,
	resumes pgrepo.ResumeRepository,
	uploader storage.Uploader,
	queue ParseQueue,
	maxBytes int64,
	log *logrus.Logger,
) CandidateService {
	if maxBytes <= 0 {
		maxBytes = parser.DefaultMaxBytes
	}
	if log == nil {
		log = logrus.New()
	}
	return &candidateService{
		candidates: candidates,
		resumes:    resumes,
		uploader:   uploader,
		queue:      queue,
		maxBytes:   maxBytes,
		log:        log,
	}
}

// candidateFor returns the candidate row for a candidate-role actor,
// creating it on first use.
func (s *candidateService) candidateFor(ctx context.Context, op string, actor Actor) (*models.Candidate, error) {
	if err := requireRole(op, actor, models.RoleCandidate); err != nil {
		return nil, err
	}

	c, err := s.candidates.GetByUserID(ctx, actor.UserID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to get candidate profile", err)
	}

	now := time.Now().UTC()
	if err := s.candidates.CreateIfMissing(ctx, &models.Candidate{UserID: actor.UserID, CreatedAt: now, UpdatedAt: now}); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create candidate profile", err)
	}
	c, err = s.candidates.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to get candidate profile", err)
	}
	return c, nil
}

func (s *candidateService) detail(ctx context.Context, op string, c *models.Candidate) (*models.CandidateDetail, error) {
	resumes, err := s.resumes.ListByCandidate(ctx, c.UserID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list resumes", err)
	}
	if resumes == nil {
		resumes = []models.Resume{}
	}
	return &models.CandidateDetail{Candidate: c, Resumes: resumes}, nil
}

func (s *candidateService) Me(ctx context.Context, actor Actor) (*models.CandidateDetail, error) {
	const op = "CandidateService.Me"

	c, err := s.candidateFor(ctx, op, actor)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, op, c)
}

func (s *candidateService) UpdateLinks(ctx context.Context, actor Actor, in CandidateLinks) (*models.Candidate, error) {
	const op = "CandidateService.UpdateLinks"

	c, err := s.candidateFor(ctx, op, actor)
	if err != nil {
		return nil, err
	}

	for _, f := range []struct {
		name string
		val  *string
		dst  **string
	}{
		{"linkedin_profile_url", in.LinkedInProfileURL, &c.LinkedInProfileURL},
		{"github_profile_url", in.GitHubProfileURL, &c.GitHubProfileURL},
		{"portfolio_url", in.PortfolioURL, &c.PortfolioURL},
	} {
		if f.val == nil {
			continue
		}
		v := strings.TrimSpace(*f.val)
		if v == "" {
			*f.dst = nil
			continue
		}
		if !validURL(v) {
			return nil, utils.E(utils.CodeInvalidArgument, op, f.name+" must be an http(s) URL", nil)
		}
		*f.dst = ptr(v)
	}

	c.UpdatedAt = time.Now().UTC()
	if err := s.candidates.UpdateLinks(ctx, c); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update candidate profile", err)
	}
	return c, nil
}

func (s *candidateService) UploadResume(ctx context.Context, actor Actor, in ResumeUpload) (*models.Resume, error) {
	const op = "CandidateService.UploadResume"

	c, err := s.candidateFor(ctx, op, actor)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(strings.TrimSpace(in.FileName))
	ext := strings.ToLower(filepath.Ext(name))
	mime, ok := parser.AllowedExtensions[ext]
	if !ok {
		return nil, utils.E(utils.CodeInvalidArgument, op, "only pdf, doc, docx, txt and rtf files are allowed", nil)
	}
	if in.Size <= 0 || in.Size > s.maxBytes {
		return nil, utils.E(utils.CodeInvalidArgument, op, "file is empty or too large", nil)
	}
	if s.uploader == nil {
		return nil, utils.E(utils.CodeInternal, op, "uploader is not configured", nil)
	}

	id := uuid.NewString()
	objectName := "resumes/" + c.UserID + "/" + id + ext

	// stored before the row is written, so a row always has a file behind it
	storedPath, err := s.uploader.Upload(ctx, objectName, mime, io.LimitReader(in.Body, s.maxBytes))
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to store resume", err)
	}

	row := &models.Resume{
		ID:          id,
		CandidateID: c.UserID,
		FileName:    name,
		FilePath:    storedPath,
		FileSize:    int(in.Size),
		MimeType:    mime,
		ParseStatus: models.ParsePending,
		UploadedAt:  time.Now().UTC(),
	}
	if err := s.resumes.Insert(ctx, row); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist resume metadata", err)
	}

	if s.queue != nil {
		if err := s.queue.EnqueueParse(ctx, row.ID); err != nil {
			// stays pending; screening parses it inline anyway
			s.log.WithError(err).WithField("resume_id", row.ID).Warn("failed to enqueue resume parse")
		}
	}
	return row, nil
}

// Resume returns one of the actor's own résumés. Someone else's résumé
// reads as not found.
func (s *candidateService) Resume(ctx context.Context, actor Actor, resumeID string) (*models.Resume, error) {
	const op = "CandidateService.Resume"

	if err := requireRole(op, actor, models.RoleCandidate); err != nil {
		return nil, err
	}
	if strings.TrimSpace(resumeID) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "resume id is required", nil)
	}
	r, err := s.resumes.GetByID(ctx, resumeID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "resume not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get resume", err)
	}
	if r.CandidateID != actor.UserID {
		return nil, utils.E(utils.CodeNotFound, op, "resume not found", nil)
	}
	return r, nil
}

func (s *candidateService) Detail(ctx context.Context, actor Actor, candidateID string) (*models.CandidateDetail, error) {
	const op = "CandidateService.Detail"

	if err := requireRole(op, actor, models.RoleRecruiter, models.RoleAdmin); err != nil {
		return nil, err
	}
	c, err := s.candidates.GetByUserID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "candidate profile not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get candidate profile", err)
	}
	return s.detail(ctx, op, c)
}

func validURL(v string) bool {
	u, err := url.Parse(v)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
