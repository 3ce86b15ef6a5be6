package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"github.com/yoockh/talentpool/internal/export"
	"github.com/yoockh/talentpool/internal/models"
	"github.com/yoockh/talentpool/internal/repositories/mock"
	pgrepo "github.com/yoockh/talentpool/internal/repositories/postgres"
	"github.com/yoockh/talentpool/internal/screening"
	"github.com/yoockh/talentpool/internal/storage"
	"github.com/yoockh/talentpool/internal/utils"
)

type recordingQueue struct {
	ids []string
	err error
}

func (q *recordingQueue) EnqueueParse(ctx context.Context, resumeID string) error {
	q.ids = append(q.ids, resumeID)
	return q.err
}

type appFixture struct {
	store *mock.Store
	files *storage.LocalStore
	cands CandidateService
	apps  ApplicationService
}

func newAppFixture(t *testing.T) *appFixture {
	t.Helper()
	files, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	st := mock.NewStore()
	seedJob(st, "job-1", recruiter.UserID, models.JobOpen, true)

	pipeline := screening.NewPipeline(screening.Pipeline{
		Resumes:      st.ResumeRepo(),
		Applications: st.ApplicationRepo(),
		Jobs:         st.JobRepo(),
		Files:        files,
		Events:       st.EventRepo(),
	})
	return &appFixture{
		store: st,
		files: files,
		cands: NewCandidateService(st.CandidateRepo(), st.ResumeRepo(), files, nil, 0, nil),
		apps:  NewApplicationService(st.ApplicationRepo(), st.JobRepo(), st.ResumeRepo(), pipeline, st.EventRepo(), nil),
	}
}

func (f *appFixture) upload(t *testing.T, content string) *models.Resume {
	t.Helper()
	r, err := f.cands.UploadResume(background, candidate, ResumeUpload{
		FileName: "cv.txt",
		Size:     int64(len(content)),
		Body:     strings.NewReader(content),
	})
	if err != nil {
		t.Fatalf("UploadResume: %v", err)
	}
	return r
}

func TestUploadResumeStoresFileThenRow(t *testing.T) {
	files, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	st := mock.NewStore()
	q := &recordingQueue{err: errors.New("redis down")}
	svc := NewCandidateService(st.CandidateRepo(), st.ResumeRepo(), files, q, 0, nil)

	body := "Skills: Python"
	r, err := svc.UploadResume(background, candidate, ResumeUpload{FileName: "../CV.TXT", Size: int64(len(body)), Body: strings.NewReader(body)})
	if err != nil {
		t.Fatalf("UploadResume: %v", err)
	}
	if r.ParseStatus != models.ParsePending || r.FileName != "CV.TXT" || r.MimeType != "text/plain" {
		t.Fatalf("unexpected row: %+v", r)
	}
	if !strings.HasPrefix(r.FilePath, "resumes/"+candidate.UserID+"/") {
		t.Fatalf("unexpected path %q", r.FilePath)
	}

	rc, err := files.Open(background, r.FilePath)
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	rc.Close()

	// enqueue failure does not fail the upload
	if len(q.ids) != 1 || q.ids[0] != r.ID {
		t.Fatalf("enqueue calls = %v", q.ids)
	}
}

func TestApplyRequiresResume(t *testing.T) {
	f := newAppFixture(t)

	_, err := f.apps.Apply(background, candidate, "job-1")
	wantCode(t, err, utils.CodePrecondition)
	if !errors.Is(err, screening.ErrMissingResume) {
		t.Fatalf("expected ErrMissingResume, got %v", err)
	}
	if len(f.store.Applications) != 0 {
		t.Fatal("no application should be created")
	}
}

func TestApplyOncePerJob(t *testing.T) {
	f := newAppFixture(t)
	f.upload(t, "Skills: Python")

	app, err := f.apps.Apply(background, candidate, "job-1")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if app.Status != models.AppApplied {
		t.Fatalf("status = %s", app.Status)
	}

	_, err = f.apps.Apply(background, candidate, "job-1")
	wantCode(t, err, utils.CodeConflict)
	if len(f.store.Applications) != 1 {
		t.Fatalf("expected one application, got %d", len(f.store.Applications))
	}

	_, err = f.apps.Apply(background, candidate, "missing")
	wantCode(t, err, utils.CodeNotFound)
	_, err = f.apps.Apply(background, recruiter, "job-1")
	wantCode(t, err, utils.CodeForbidden)

	if len(f.store.Events) != 1 || f.store.Events[0].Type != models.EventCreated {
		t.Fatalf("unexpected events: %+v", f.store.Events)
	}
}

func TestApplicationOwnership(t *testing.T) {
	f := newAppFixture(t)
	f.upload(t, "Skills: Python")
	app, err := f.apps.Apply(background, candidate, "job-1")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	_, err = f.apps.Get(background, otherRec, app.ID)
	wantCode(t, err, utils.CodeForbidden)
	_, err = f.apps.UpdateStatus(background, otherRec, app.ID, models.AppOffer)
	wantCode(t, err, utils.CodeForbidden)
	_, err = f.apps.Get(background, candidate, app.ID)
	wantCode(t, err, utils.CodeForbidden)

	if _, err := f.apps.Get(background, admin, app.ID); err != nil {
		t.Fatalf("admin Get: %v", err)
	}
	_, err = f.apps.Get(background, recruiter, "nope")
	wantCode(t, err, utils.CodeNotFound)
}

func TestUpdateStatus(t *testing.T) {
	f := newAppFixture(t)
	f.upload(t, "Skills: Python")
	app, _ := f.apps.Apply(background, candidate, "job-1")

	_, err := f.apps.UpdateStatus(background, recruiter, app.ID, models.ApplicationStatus("maybe"))
	wantCode(t, err, utils.CodeInvalidArgument)

	// no transition table: any valid status is accepted from any other
	for _, s := range []models.ApplicationStatus{models.AppHired, models.AppApplied, models.AppWithdrawn} {
		got, err := f.apps.UpdateStatus(background, recruiter, app.ID, s)
		if err != nil {
			t.Fatalf("UpdateStatus(%s): %v", s, err)
		}
		if got.Status != s || f.store.Application(app.ID).Status != s {
			t.Fatalf("status not persisted: %s", s)
		}
	}

	hist, err := f.apps.History(background, recruiter, app.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 4 {
		t.Fatalf("expected 4 events, got %d", len(hist))
	}
	last := hist[len(hist)-1]
	if last.Type != models.EventStatusChanged || last.FromStatus != models.AppApplied || last.ToStatus != models.AppWithdrawn {
		t.Fatalf("unexpected last event: %+v", last)
	}
}

// vanishingAppRepo reports every status write as hitting no row, as when the
// application is deleted between the read and the update.
type vanishingAppRepo struct {
	pgrepo.ApplicationRepository
}

func (vanishingAppRepo) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	return utils.ErrNotFound
}

func TestUpdateStatusOnVanishedApplication(t *testing.T) {
	f := newAppFixture(t)
	f.upload(t, "Skills: Python")
	app, err := f.apps.Apply(background, candidate, "job-1")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	svc := NewApplicationService(vanishingAppRepo{f.store.ApplicationRepo()}, f.store.JobRepo(), f.store.ResumeRepo(), nil, f.store.EventRepo(), nil)
	_, err = svc.UpdateStatus(background, recruiter, app.ID, models.AppHired)
	wantCode(t, err, utils.CodeNotFound)

	hist, err := f.apps.History(background, recruiter, app.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	for _, e := range hist {
		if e.Type == models.EventStatusChanged {
			t.Fatalf("status change recorded for a write that hit no row: %+v", e)
		}
	}
}

func TestListForRecruiter(t *testing.T) {
	f := newAppFixture(t)
	seedJob(f.store, "job-2", otherRec.UserID, models.JobOpen, true)
	f.upload(t, "Skills: Python")
	if _, err := f.apps.Apply(background, candidate, "job-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.apps.Apply(background, candidate, "job-2"); err != nil {
		t.Fatal(err)
	}

	mine, err := f.apps.ListForRecruiter(background, recruiter)
	if err != nil {
		t.Fatalf("ListForRecruiter: %v", err)
	}
	if len(mine) != 1 || mine[0].JobID != "job-1" {
		t.Fatalf("unexpected list: %+v", mine)
	}
	all, err := f.apps.ListForRecruiter(background, admin)
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("admin should see 2, got %d", len(all))
	}
	_, err = f.apps.ListForRecruiter(background, candidate)
	wantCode(t, err, utils.CodeForbidden)
}

func TestReviewScoresApplication(t *testing.T) {
	f := newAppFixture(t)
	f.upload(t, "Backend Engineer at Acme\n5 years of experience\nSkills: Python, SQL\nEducation: Bachelor's Degree\n")
	app, _ := f.apps.Apply(background, candidate, "job-1")

	out, err := f.apps.Review(background, recruiter, app.ID)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	// 50 + 20 + 30 + 10 clamps to 100; the seeded description is short
	if out.Breakdown.Description || out.Breakdown.Total != 100 {
		t.Fatalf("unexpected score %v", out.Breakdown.Total)
	}
	stored := f.store.Application(app.ID)
	if stored.Status != models.AppScreening || stored.ResumeScore == nil {
		t.Fatalf("application not advanced: %+v", stored)
	}

	_, err = f.apps.Review(background, otherRec, app.ID)
	wantCode(t, err, utils.CodeForbidden)
}

func TestRankAndExport(t *testing.T) {
	f := newAppFixture(t)
	f.upload(t, "Skills: Python\nBuild services in Python")
	app, _ := f.apps.Apply(background, candidate, "job-1")
	if _, err := f.apps.Review(background, recruiter, app.ID); err != nil {
		t.Fatalf("Review: %v", err)
	}

	ranked, err := f.apps.RankForJob(background, recruiter, "job-1", 0)
	if err != nil {
		t.Fatalf("RankForJob: %v", err)
	}
	if len(ranked) != 1 || ranked[0].ApplicationID != app.ID {
		t.Fatalf("unexpected ranking: %+v", ranked)
	}
	_, err = f.apps.RankForJob(background, otherRec, "job-1", 0)
	wantCode(t, err, utils.CodeForbidden)

	data, err := f.apps.ExportForJob(background, recruiter, "job-1")
	if err != nil {
		t.Fatalf("ExportForJob: %v", err)
	}
	wb, err := excelize.OpenReader(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()
	rows, err := wb.GetRows(export.ApplicationsSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(rows))
	}
}
