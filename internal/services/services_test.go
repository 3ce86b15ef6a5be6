package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yoockh/talentpool/internal/cache"
	"github.com/yoockh/talentpool/internal/models"
	"github.com/yoockh/talentpool/internal/repositories/mock"
	pgrepo "github.com/yoockh/talentpool/internal/repositories/postgres"
	"github.com/yoockh/talentpool/internal/utils"
)

var (
	candidate  = Actor{UserID: "cand-1", Role: models.RoleCandidate}
	recruiter  = Actor{UserID: "rec-1", Role: models.RoleRecruiter}
	otherRec   = Actor{UserID: "rec-2", Role: models.RoleRecruiter}
	admin      = Actor{UserID: "admin-1", Role: models.RoleAdmin}
	anonymous  = Actor{}
	background = context.Background()
)

func wantCode(t *testing.T, err error, code utils.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if got := utils.CodeOf(err); got != code {
		t.Fatalf("expected code %s, got %s (%v)", code, got, err)
	}
}

func seedJob(st *mock.Store, id, owner string, status models.JobStatus, active bool) {
	st.Jobs[id] = models.Job{
		ID:            id,
		Title:         "Job " + id,
		Description:   "Build services in Python " + id,
		PostedBy:      &owner,
		Status:        status,
		IsActive:      active,
		PublishedDate: time.Now().UTC(),
	}
}

func seedResume(st *mock.Store, id, candidateID string) {
	st.Resumes[id] = models.Resume{
		ID:          id,
		CandidateID: candidateID,
		FileName:    "cv.txt",
		FilePath:    "resumes/" + candidateID + "/" + id + ".txt",
		ParseStatus: models.ParsePending,
		UploadedAt:  time.Now().UTC(),
	}
}

func TestProfileEnsureCreatesOnce(t *testing.T) {
	st := mock.NewStore()
	svc := NewProfileService(st.ProfileRepo(), st.CandidateRepo())

	p, err := svc.EnsureProfile(background, "u-1")
	if err != nil {
		t.Fatalf("EnsureProfile: %v", err)
	}
	if p.Role != models.RoleCandidate || p.RoleSelectionCompleted {
		t.Fatalf("unexpected default profile: %+v", p)
	}
	if _, err := svc.EnsureProfile(background, "u-1"); err != nil {
		t.Fatalf("second EnsureProfile: %v", err)
	}
	if len(st.Profiles) != 1 {
		t.Fatalf("expected exactly one profile, got %d", len(st.Profiles))
	}
	if got := Landing(p); got != LandingRoleSelection {
		t.Fatalf("landing = %q", got)
	}
}

func TestProfileSelectRole(t *testing.T) {
	tests := []struct {
		name    string
		role    models.Role
		code    utils.Code
		landing string
	}{
		{"candidate", models.RoleCandidate, "", LandingCandidate},
		{"recruiter", models.RoleRecruiter, "", LandingRecruiter},
		{"admin not selectable", models.RoleAdmin, utils.CodeInvalidArgument, ""},
		{"unknown", models.Role("owner"), utils.CodeInvalidArgument, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := mock.NewStore()
			svc := NewProfileService(st.ProfileRepo(), st.CandidateRepo())

			p, err := svc.SelectRole(background, "u-1", tt.role)
			if tt.code != "" {
				wantCode(t, err, tt.code)
				return
			}
			if err != nil {
				t.Fatalf("SelectRole: %v", err)
			}
			if !p.RoleSelectionCompleted || p.Role != tt.role {
				t.Fatalf("unexpected profile: %+v", p)
			}
			if got := Landing(p); got != tt.landing {
				t.Fatalf("landing = %q, want %q", got, tt.landing)
			}

			_, err = svc.SelectRole(background, "u-1", models.RoleCandidate)
			wantCode(t, err, utils.CodeConflict)
		})
	}
}

func TestSelectRecruiterDropsCandidateRow(t *testing.T) {
	st := mock.NewStore()
	st.Candidates["u-1"] = models.Candidate{UserID: "u-1"}
	svc := NewProfileService(st.ProfileRepo(), st.CandidateRepo())

	if _, err := svc.SelectRole(background, "u-1", models.RoleRecruiter); err != nil {
		t.Fatalf("SelectRole: %v", err)
	}
	if _, ok := st.Candidates["u-1"]; ok {
		t.Fatal("candidate row should be removed for recruiters")
	}
}

func TestLandingAdmin(t *testing.T) {
	p := &models.UserProfile{UserID: "a", Role: models.RoleAdmin}
	if got := Landing(p); got != LandingRecruiter {
		t.Fatalf("landing = %q", got)
	}
	if got := Landing(nil); got != LandingRoleSelection {
		t.Fatalf("landing(nil) = %q", got)
	}
}

func TestCandidateMeCreatesLazily(t *testing.T) {
	st := mock.NewStore()
	svc := NewCandidateService(st.CandidateRepo(), st.ResumeRepo(), nil, nil, 0, nil)

	d, err := svc.Me(background, candidate)
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if d.Candidate.UserID != candidate.UserID || len(d.Resumes) != 0 {
		t.Fatalf("unexpected detail: %+v", d)
	}
	if _, ok := st.Candidates[candidate.UserID]; !ok {
		t.Fatal("candidate row not created")
	}

	_, err = svc.Me(background, recruiter)
	wantCode(t, err, utils.CodeForbidden)
}

func TestCandidateUpdateLinks(t *testing.T) {
	st := mock.NewStore()
	svc := NewCandidateService(st.CandidateRepo(), st.ResumeRepo(), nil, nil, 0, nil)

	gh := "https://github.com/alex"
	c, err := svc.UpdateLinks(background, candidate, CandidateLinks{GitHubProfileURL: &gh})
	if err != nil {
		t.Fatalf("UpdateLinks: %v", err)
	}
	if c.GitHubProfileURL == nil || *c.GitHubProfileURL != gh {
		t.Fatalf("github url not stored: %+v", c)
	}

	bad := "javascript:alert(1)"
	_, err = svc.UpdateLinks(background, candidate, CandidateLinks{PortfolioURL: &bad})
	wantCode(t, err, utils.CodeInvalidArgument)

	empty := ""
	c, err = svc.UpdateLinks(background, candidate, CandidateLinks{GitHubProfileURL: &empty})
	if err != nil {
		t.Fatalf("clear link: %v", err)
	}
	if c.GitHubProfileURL != nil {
		t.Fatal("empty value should clear the link")
	}
}

func TestCandidateDetailRequiresRecruiter(t *testing.T) {
	st := mock.NewStore()
	st.Candidates["cand-1"] = models.Candidate{UserID: "cand-1"}
	seedResume(st, "res-1", "cand-1")
	svc := NewCandidateService(st.CandidateRepo(), st.ResumeRepo(), nil, nil, 0, nil)

	d, err := svc.Detail(background, recruiter, "cand-1")
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if len(d.Resumes) != 1 {
		t.Fatalf("expected 1 resume, got %d", len(d.Resumes))
	}

	_, err = svc.Detail(background, candidate, "cand-1")
	wantCode(t, err, utils.CodeForbidden)

	_, err = svc.Detail(background, admin, "nobody")
	wantCode(t, err, utils.CodeNotFound)
}

func TestJobCreateDefaults(t *testing.T) {
	st := mock.NewStore()
	svc := NewJobService(st.JobRepo(), nil, 0, nil)

	title, desc := "Backend Engineer", "Build APIs"
	j, err := svc.Create(background, recruiter, JobInput{Title: &title, Description: &desc})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if j.Status != models.JobDraft || !j.IsActive || !j.OwnedBy(recruiter.UserID) {
		t.Fatalf("unexpected defaults: %+v", j)
	}
	if j.PublishedDate.IsZero() {
		t.Fatal("published date not set")
	}

	_, err = svc.Create(background, candidate, JobInput{Title: &title, Description: &desc})
	wantCode(t, err, utils.CodeForbidden)

	_, err = svc.Create(background, recruiter, JobInput{Title: &title})
	wantCode(t, err, utils.CodeInvalidArgument)
}

func TestJobOwnership(t *testing.T) {
	st := mock.NewStore()
	seedJob(st, "job-1", recruiter.UserID, models.JobDraft, true)
	svc := NewJobService(st.JobRepo(), nil, 0, nil)

	open := models.JobOpen
	_, err := svc.Update(background, otherRec, "job-1", JobInput{Status: &open})
	wantCode(t, err, utils.CodeForbidden)
	wantCode(t, svc.Delete(background, otherRec, "job-1"), utils.CodeForbidden)

	j, err := svc.Update(background, recruiter, "job-1", JobInput{Status: &open})
	if err != nil {
		t.Fatalf("owner Update: %v", err)
	}
	if j.Status != models.JobOpen {
		t.Fatalf("status = %s", j.Status)
	}

	bogus := models.JobStatus("archived")
	_, err = svc.Update(background, recruiter, "job-1", JobInput{Status: &bogus})
	wantCode(t, err, utils.CodeInvalidArgument)

	if err := svc.Delete(background, admin, "job-1"); err != nil {
		t.Fatalf("admin Delete: %v", err)
	}
	_, err = svc.Get(background, "job-1")
	wantCode(t, err, utils.CodeNotFound)
}

func TestJobListPublicFiltersAndCaches(t *testing.T) {
	st := mock.NewStore()
	seedJob(st, "open", recruiter.UserID, models.JobOpen, true)
	seedJob(st, "draft", recruiter.UserID, models.JobDraft, true)
	seedJob(st, "inactive", recruiter.UserID, models.JobOpen, false)
	seedJob(st, "closed", recruiter.UserID, models.JobClosed, true)

	c := cache.NewMemoryCache()
	svc := NewJobService(st.JobRepo(), c, time.Minute, nil)

	jobs, err := svc.ListPublic(background)
	if err != nil {
		t.Fatalf("ListPublic: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != "open" {
		t.Fatalf("unexpected public jobs: %+v", jobs)
	}

	// served from cache until a mutation invalidates it
	seedJob(st, "sneaky", recruiter.UserID, models.JobOpen, true)
	jobs, _ = svc.ListPublic(background)
	if len(jobs) != 1 {
		t.Fatalf("expected cached listing, got %d jobs", len(jobs))
	}

	open := models.JobOpen
	if _, err := svc.Update(background, recruiter, "draft", JobInput{Status: &open}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	jobs, _ = svc.ListPublic(background)
	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs after invalidation, got %d", len(jobs))
	}
}

// gatedJobRepo parks the first ListPublic call after it has read the rows,
// until release is closed.
type gatedJobRepo struct {
	pgrepo.JobRepository
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (r *gatedJobRepo) ListPublic(ctx context.Context, limit int) ([]models.Job, error) {
	jobs, err := r.JobRepository.ListPublic(ctx, limit)
	r.once.Do(func() {
		close(r.read)
		<-r.release
	})
	return jobs, err
}

func TestJobListPublicIgnoresListingReadBeforeInvalidate(t *testing.T) {
	st := mock.NewStore()
	seedJob(st, "j1", recruiter.UserID, models.JobOpen, true)

	repo := &gatedJobRepo{
		JobRepository: st.JobRepo(),
		read:          make(chan struct{}),
		release:       make(chan struct{}),
	}
	svc := NewJobService(repo, cache.NewMemoryCache(), time.Hour, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.ListPublic(background)
		done <- err
	}()

	<-repo.read
	closed := models.JobClosed
	if _, err := svc.Update(background, recruiter, "j1", JobInput{Status: &closed}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	close(repo.release)
	if err := <-done; err != nil {
		t.Fatalf("ListPublic: %v", err)
	}

	jobs, err := svc.ListPublic(background)
	if err != nil {
		t.Fatalf("ListPublic: %v", err)
	}
	for _, j := range jobs {
		t.Errorf("listing returned job %s after it was closed (status=%s)", j.ID, j.Status)
	}
}

func TestJobListMine(t *testing.T) {
	st := mock.NewStore()
	seedJob(st, "a", recruiter.UserID, models.JobDraft, true)
	seedJob(st, "b", otherRec.UserID, models.JobDraft, true)
	svc := NewJobService(st.JobRepo(), nil, 0, nil)

	jobs, err := svc.ListMine(background, recruiter)
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != "a" {
		t.Fatalf("unexpected jobs: %+v", jobs)
	}
	_, err = svc.ListMine(background, anonymous)
	wantCode(t, err, utils.CodeUnauthorized)
}

func TestUploadResumeRejectsBadInput(t *testing.T) {
	st := mock.NewStore()
	svc := NewCandidateService(st.CandidateRepo(), st.ResumeRepo(), nil, nil, 1024, nil)

	_, err := svc.UploadResume(background, candidate, ResumeUpload{FileName: "cv.exe", Size: 10, Body: strings.NewReader("x")})
	wantCode(t, err, utils.CodeInvalidArgument)

	_, err = svc.UploadResume(background, candidate, ResumeUpload{FileName: "cv.txt", Size: 4096, Body: strings.NewReader("x")})
	wantCode(t, err, utils.CodeInvalidArgument)

	if len(st.Resumes) != 0 {
		t.Fatal("no resume row should be written")
	}
}

func TestCandidateResumeIsOwnerOnly(t *testing.T) {
	st := mock.NewStore()
	seedResume(st, "res-1", candidate.UserID)
	svc := NewCandidateService(st.CandidateRepo(), st.ResumeRepo(), nil, nil, 0, nil)

	r, err := svc.Resume(background, candidate, "res-1")
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if r.ParseStatus != models.ParsePending {
		t.Fatalf("unexpected resume: %+v", r)
	}

	stranger := Actor{UserID: "cand-2", Role: models.RoleCandidate}
	_, err = svc.Resume(background, stranger, "res-1")
	wantCode(t, err, utils.CodeNotFound)

	_, err = svc.Resume(background, candidate, "missing")
	wantCode(t, err, utils.CodeNotFound)

	_, err = svc.Resume(background, recruiter, "res-1")
	wantCode(t, err, utils.CodeForbidden)
}
