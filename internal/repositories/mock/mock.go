// Package mock provides in-memory implementations of the repository
// interfaces for tests.
package mock

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/yoockh/talentpool/internal/models"
	pgrepo "github.com/yoockh/talentpool/internal/repositories/postgres"
	"github.com/yoockh/talentpool/internal/utils"
)

// Store is the shared backing state for every mock repository.
type Store struct {
	mu sync.Mutex

	Profiles     map[string]models.UserProfile
	Candidates   map[string]models.Candidate
	Resumes      map[string]models.Resume
	Jobs         map[string]models.Job
	Applications map[string]models.Application
	Events       []models.ApplicationEvent

	// ParseStatusLog records every SetParseStatus call in order.
	ParseStatusLog []models.ParseStatus
	// FailSaveResults makes ResumeRepo.SaveResults return this error.
	FailSaveResults error
}

func NewStore() *Store {
	return &Store{
		Profiles:     map[string]models.UserProfile{},
		Candidates:   map[string]models.Candidate{},
		Resumes:      map[string]models.Resume{},
		Jobs:         map[string]models.Job{},
		Applications: map[string]models.Application{},
	}
}

func (s *Store) ProfileRepo() pgrepo.ProfileRepository         { return &profileRepo{s} }
func (s *Store) CandidateRepo() pgrepo.CandidateRepository     { return &candidateRepo{s} }
func (s *Store) ResumeRepo() pgrepo.ResumeRepository           { return &resumeRepo{s} }
func (s *Store) JobRepo() pgrepo.JobRepository                 { return &jobRepo{s} }
func (s *Store) ApplicationRepo() pgrepo.ApplicationRepository { return &applicationRepo{s} }
func (s *Store) EventRepo() *EventRepo                         { return &EventRepo{s} }

// Resume returns a copy of the stored résumé.
func (s *Store) Resume(id string) models.Resume {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Resumes[id]
}

// Application returns a copy of the stored application.
func (s *Store) Application(id string) models.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Applications[id]
}

type profileRepo struct{ s *Store }

func (r *profileRepo) GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.Profiles[userID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &p, nil
}

func (r *profileRepo) CreateIfMissing(ctx context.Context, p *models.UserProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Profiles[p.UserID]; !ok {
		r.s.Profiles[p.UserID] = *p
	}
	return nil
}

func (r *profileRepo) Update(ctx context.Context, p *models.UserProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Profiles[p.UserID]; !ok {
		return utils.ErrNotFound
	}
	r.s.Profiles[p.UserID] = *p
	return nil
}

type candidateRepo struct{ s *Store }

func (r *candidateRepo) GetByUserID(ctx context.Context, userID string) (*models.Candidate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.Candidates[userID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &c, nil
}

func (r *candidateRepo) CreateIfMissing(ctx context.Context, c *models.Candidate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Candidates[c.UserID]; !ok {
		r.s.Candidates[c.UserID] = *c
	}
	return nil
}

func (r *candidateRepo) UpdateLinks(ctx context.Context, c *models.Candidate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Candidates[c.UserID]; !ok {
		return utils.ErrNotFound
	}
	r.s.Candidates[c.UserID] = *c
	return nil
}

func (r *candidateRepo) Delete(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.Candidates, userID)
	for id, res := range r.s.Resumes {
		if res.CandidateID == userID {
			delete(r.s.Resumes, id)
		}
	}
	for id, a := range r.s.Applications {
		if a.CandidateID == userID {
			delete(r.s.Applications, id)
		}
	}
	return nil
}

type resumeRepo struct{ s *Store }

func (r *resumeRepo) Insert(ctx context.Context, row *models.Resume) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Resumes[row.ID] = *row
	return nil
}

func (r *resumeRepo) GetByID(ctx context.Context, id string) (*models.Resume, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.Resumes[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &row, nil
}

func (r *resumeRepo) LatestByCandidate(ctx context.Context, candidateID string) (*models.Resume, error) {
	rows, _ := r.ListByCandidate(ctx, candidateID)
	if len(rows) == 0 {
		return nil, utils.ErrNotFound
	}
	return &rows[0], nil
}

func (r *resumeRepo) ListByCandidate(ctx context.Context, candidateID string) ([]models.Resume, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []models.Resume
	for _, row := range r.s.Resumes {
		if row.CandidateID == candidateID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].UploadedAt.After(rows[j].UploadedAt) })
	return rows, nil
}

func (r *resumeRepo) CountByCandidate(ctx context.Context, candidateID string) (int64, error) {
	rows, _ := r.ListByCandidate(ctx, candidateID)
	return int64(len(rows)), nil
}

func (r *resumeRepo) SetParseStatus(ctx context.Context, id string, status models.ParseStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.Resumes[id]
	if !ok {
		return utils.ErrNotFound
	}
	row.ParseStatus = status
	r.s.Resumes[id] = row
	r.s.ParseStatusLog = append(r.s.ParseStatusLog, status)
	return nil
}

func (r *resumeRepo) SaveResults(ctx context.Context, in *models.Resume) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailSaveResults != nil {
		return r.s.FailSaveResults
	}
	row, ok := r.s.Resumes[in.ID]
	if !ok {
		return utils.ErrNotFound
	}
	row.ParseStatus = in.ParseStatus
	row.ParsedData = in.ParsedData
	row.Skills = in.Skills
	row.Embedding = in.Embedding
	row.AIResumeScore = in.AIResumeScore
	row.AIFeedback = in.AIFeedback
	r.s.Resumes[in.ID] = row
	return nil
}

type jobRepo struct{ s *Store }

func (r *jobRepo) Create(ctx context.Context, j *models.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Jobs[j.ID] = *j
	return nil
}

func (r *jobRepo) GetByID(ctx context.Context, id string) (*models.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.Jobs[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &j, nil
}

func (r *jobRepo) ListPublic(ctx context.Context, limit int) ([]models.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []models.Job
	for _, j := range r.s.Jobs {
		if j.IsActive && j.Status == models.JobOpen {
			rows = append(rows, j)
		}
	}
	sort.Slice(rows, func(i, k int) bool { return rows[i].PublishedDate.After(rows[k].PublishedDate) })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *jobRepo) ListByPoster(ctx context.Context, userID string) ([]models.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []models.Job
	for _, j := range r.s.Jobs {
		if j.OwnedBy(userID) {
			rows = append(rows, j)
		}
	}
	return rows, nil
}

func (r *jobRepo) Update(ctx context.Context, j *models.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Jobs[j.ID]; !ok {
		return utils.ErrNotFound
	}
	r.s.Jobs[j.ID] = *j
	return nil
}

func (r *jobRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Jobs[id]; !ok {
		return utils.ErrNotFound
	}
	delete(r.s.Jobs, id)
	for aid, a := range r.s.Applications {
		if a.JobID == id {
			delete(r.s.Applications, aid)
		}
	}
	return nil
}

type applicationRepo struct{ s *Store }

func (r *applicationRepo) Insert(ctx context.Context, a *models.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.Applications {
		if existing.CandidateID == a.CandidateID && existing.JobID == a.JobID {
			return utils.ErrDuplicate
		}
	}
	row := *a
	row.Job = nil
	r.s.Applications[a.ID] = row
	return nil
}

func (r *applicationRepo) withJob(a models.Application) models.Application {
	if j, ok := r.s.Jobs[a.JobID]; ok {
		a.Job = &j
	}
	return a
}

func (r *applicationRepo) GetByID(ctx context.Context, id string) (*models.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.Applications[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	a = r.withJob(a)
	return &a, nil
}

func (r *applicationRepo) Exists(ctx context.Context, candidateID, jobID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.Applications {
		if a.CandidateID == candidateID && a.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

func (r *applicationRepo) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.Applications[id]
	if !ok {
		return utils.ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	r.s.Applications[id] = a
	return nil
}

func (r *applicationRepo) SaveScreening(ctx context.Context, in *models.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.Applications[in.ID]
	if !ok {
		return utils.ErrNotFound
	}
	a.Status = in.Status
	a.ResumeScore = in.ResumeScore
	a.UpdatedAt = in.UpdatedAt
	r.s.Applications[in.ID] = a
	return nil
}

func (r *applicationRepo) list(keep func(a models.Application) bool) []models.Application {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []models.Application
	for _, a := range r.s.Applications {
		if keep(a) {
			rows = append(rows, r.withJob(a))
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].AppliedAt.After(rows[j].AppliedAt) })
	return rows
}

func (r *applicationRepo) ListByPoster(ctx context.Context, userID string) ([]models.Application, error) {
	return r.list(func(a models.Application) bool {
		j, ok := r.s.Jobs[a.JobID]
		return ok && j.OwnedBy(userID)
	}), nil
}

func (r *applicationRepo) ListAll(ctx context.Context, limit int) ([]models.Application, error) {
	rows := r.list(func(models.Application) bool { return true })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *applicationRepo) ListByJob(ctx context.Context, jobID string) ([]models.Application, error) {
	rows := r.list(func(a models.Application) bool { return a.JobID == jobID })
	for i := range rows {
		rows[i].Job = nil
	}
	return rows, nil
}

func (r *applicationRepo) RankByEmbedding(ctx context.Context, jobID string, target pgvector.Vector, limit int) ([]models.RankedApplicant, error) {
	apps, _ := r.ListByJob(ctx, jobID)
	resumes := &resumeRepo{r.s}

	var out []models.RankedApplicant
	for _, a := range apps {
		latest, err := resumes.LatestByCandidate(ctx, a.CandidateID)
		if err != nil || latest.Embedding == nil {
			continue
		}
		out = append(out, models.RankedApplicant{
			ApplicationID: a.ID,
			CandidateID:   a.CandidateID,
			ResumeID:      latest.ID,
			Status:        a.Status,
			ResumeScore:   a.ResumeScore,
			Distance:      cosineDistance(latest.Embedding.Slice(), target.Slice()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		if i >= len(b) {
			break
		}
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

type EventRepo struct{ s *Store }

func (r *EventRepo) Append(ctx context.Context, e *models.ApplicationEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	r.s.Events = append(r.s.Events, *e)
	return nil
}

func (r *EventRepo) ListByApplication(ctx context.Context, applicationID string, limit int64) ([]models.ApplicationEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.ApplicationEvent, 0)
	for _, e := range r.s.Events {
		if e.ApplicationID == applicationID {
			out = append(out, e)
		}
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}
