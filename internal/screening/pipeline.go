package screening

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/talentpool/internal/models"
	"github.com/yoockh/talentpool/internal/parser"
	"github.com/yoockh/talentpool/internal/providers/llm"
	pgrepo "github.com/yoockh/talentpool/internal/repositories/postgres"
	"github.com/yoockh/talentpool/internal/storage"
	"github.com/yoockh/talentpool/internal/utils"
	"gorm.io/datatypes"
)

// ErrMissingResume is wrapped when the candidate has no usable résumé.
var ErrMissingResume = errors.New("candidate has no resume on file")

// EventRecorder receives application history entries; may be nil.
type EventRecorder interface {
	Append(ctx context.Context, e *models.ApplicationEvent) error
}

// Pipeline parses a candidate's latest résumé and scores it against a job.
// It runs inline and takes no locks: concurrent runs on one application
// leave whichever write lands last.
type Pipeline struct {
	Resumes      pgrepo.ResumeRepository
	Applications pgrepo.ApplicationRepository
	Jobs         pgrepo.JobRepository
	Files        storage.Opener
	Parser       *parser.Parser
	Rules        Rules

	LLM    llm.Provider
	Events EventRecorder
	Logger *logrus.Logger
}

type Outcome struct {
	Application *models.Application `json:"application"`
	Resume      *models.Resume      `json:"resume"`
	Parsed      models.ParsedResume `json:"parsed"`
	Breakdown   Breakdown           `json:"breakdown"`
	Feedback    string              `json:"feedback"`
}

// NewPipeline fills the optional fields of p once, so the returned Pipeline
// is safe to share between goroutines.
func NewPipeline(p Pipeline) *Pipeline {
	if p.Logger == nil {
		p.Logger = logrus.New()
	}
	if p.Rules == (Rules{}) {
		p.Rules = DefaultRules()
	}
	if p.Parser == nil {
		p.Parser = parser.New()
	}
	return &p
}

var (
	defaultLogger = logrus.New()
	defaultParser = parser.New()
)

// The accessors below never write to p; a Pipeline built as a literal
// falls back to package defaults.

func (p *Pipeline) log() *logrus.Logger {
	if p.Logger == nil {
		return defaultLogger
	}
	return p.Logger
}

func (p *Pipeline) rules() Rules {
	if p.Rules == (Rules{}) {
		return DefaultRules()
	}
	return p.Rules
}

func (p *Pipeline) parser() *parser.Parser {
	if p.Parser == nil {
		return defaultParser
	}
	return p.Parser
}

// Screen runs parse-then-score for app and writes the results back.
func (p *Pipeline) Screen(ctx context.Context, app *models.Application, actorID string) (*Outcome, error) {
	const op = "Pipeline.Screen"

	if app == nil || app.ID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "application is required", nil)
	}

	resume, err := p.Resumes.LatestByCandidate(ctx, app.CandidateID)
	if err != nil && !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to load resume", err)
	}
	if resume == nil || resume.FilePath == "" {
		return nil, utils.E(utils.CodePrecondition, op, "candidate has no resume to screen", ErrMissingResume)
	}

	job := app.Job
	if job == nil {
		job, err = p.Jobs.GetByID(ctx, app.JobID)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return nil, utils.E(utils.CodeNotFound, op, "job not found", err)
			}
			return nil, utils.E(utils.CodeInternal, op, "failed to load job", err)
		}
	}

	log := p.log().WithFields(logrus.Fields{
		"application_id": app.ID,
		"resume_id":      resume.ID,
		"job_id":         job.ID,
	})

	res, err := p.parse(ctx, resume)
	if err != nil {
		log.WithError(err).Warn("resume parse failed")
		p.record(ctx, &models.ApplicationEvent{
			ApplicationID: app.ID,
			JobID:         app.JobID,
			ActorID:       actorID,
			Type:          models.EventScreeningFailed,
			Message:       err.Error(),
		})
		return nil, err
	}

	b := p.rules().Score(res.Parsed, job.Description)
	feedback := p.feedback(ctx, log, job, res.Parsed, b)

	resume.AIResumeScore = &b.Total
	resume.AIFeedback = &feedback
	if err := p.Resumes.SaveResults(ctx, resume); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to store screening results", err)
	}

	from := app.Status
	app.Status = models.AppScreening
	app.ResumeScore = &b.Total
	app.UpdatedAt = time.Now().UTC()
	if err := p.Applications.SaveScreening(ctx, app); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to advance application", err)
	}

	p.record(ctx, &models.ApplicationEvent{
		ApplicationID: app.ID,
		JobID:         app.JobID,
		ActorID:       actorID,
		Type:          models.EventScreened,
		FromStatus:    from,
		ToStatus:      app.Status,
		Score:         &b.Total,
	})
	log.WithField("score", b.Total).Info("application screened")

	return &Outcome{
		Application: app,
		Resume:      resume,
		Parsed:      res.Parsed,
		Breakdown:   b,
		Feedback:    feedback,
	}, nil
}

// ParseResume moves one résumé through parsing without scoring it.
func (p *Pipeline) ParseResume(ctx context.Context, resumeID string) (*models.Resume, error) {
	const op = "Pipeline.ParseResume"

	resume, err := p.Resumes.GetByID(ctx, resumeID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "resume not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load resume", err)
	}
	if resume.FilePath == "" {
		return nil, utils.E(utils.CodePrecondition, op, "resume has no file", ErrMissingResume)
	}
	if _, err := p.parse(ctx, resume); err != nil {
		return nil, err
	}
	return resume, nil
}

// parse sets parsing, extracts, and leaves the résumé in success or failed.
// On success the parsed fields are persisted on resume.
func (p *Pipeline) parse(ctx context.Context, resume *models.Resume) (*parser.Result, error) {
	const op = "Pipeline.parse"

	resume.ParseStatus = models.ParseParsing
	if err := p.Resumes.SetParseStatus(ctx, resume.ID, models.ParseParsing); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to mark resume parsing", err)
	}

	res, err := p.extract(ctx, resume)
	if err != nil {
		p.markFailed(ctx, resume)
		return nil, utils.E(utils.CodeUnprocessable, op, "resume could not be parsed", err)
	}

	raw, err := json.Marshal(res.Parsed)
	if err != nil {
		p.markFailed(ctx, resume)
		return nil, utils.E(utils.CodeInternal, op, "failed to encode parsed data", err)
	}
	emb := Embed(res.Text)

	resume.ParseStatus = models.ParseSuccess
	resume.ParsedData = datatypes.JSON(raw)
	resume.Skills = res.Parsed.Skills
	resume.Embedding = &emb
	if err := p.Resumes.SaveResults(ctx, resume); err != nil {
		p.markFailed(ctx, resume)
		return nil, utils.E(utils.CodeInternal, op, "failed to store parsed data", err)
	}
	return res, nil
}

// markFailed is best effort: the caller already has an error to return.
func (p *Pipeline) markFailed(ctx context.Context, resume *models.Resume) {
	resume.ParseStatus = models.ParseFailed
	if err := p.Resumes.SetParseStatus(ctx, resume.ID, models.ParseFailed); err != nil {
		p.log().WithError(err).WithField("resume_id", resume.ID).Error("failed to mark resume failed")
	}
}

func (p *Pipeline) extract(ctx context.Context, resume *models.Resume) (*parser.Result, error) {
	rc, err := p.Files.Open(ctx, resume.FilePath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return p.parser().Parse(ctx, resume.FileName, rc)
}

func (p *Pipeline) feedback(ctx context.Context, log *logrus.Entry, job *models.Job, parsed models.ParsedResume, b Breakdown) string {
	draft := p.rules().Feedback(parsed, b)
	if p.LLM == nil {
		return draft
	}
	out, err := p.LLM.Generate(ctx, feedbackPrompt(job, parsed, draft))
	if err != nil {
		log.WithError(err).Warn("llm feedback failed, using template")
		return draft
	}
	return out
}

func (p *Pipeline) record(ctx context.Context, e *models.ApplicationEvent) {
	if p.Events == nil {
		return
	}
	if err := p.Events.Append(ctx, e); err != nil {
		p.log().WithError(err).WithField("application_id", e.ApplicationID).Warn("failed to record event")
	}
}
