package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type ParseStatus string

const (
	ParsePending ParseStatus = "pending"
	ParseParsing ParseStatus = "parsing"
	ParseSuccess ParseStatus = "success"
	ParseFailed  ParseStatus = "failed"
)

// Done reports whether parsing has finished, either way.
func (s ParseStatus) Done() bool { return s == ParseSuccess || s == ParseFailed }

// ResumeStatusEvent is what parse status listeners receive.
type ResumeStatusEvent struct {
	Type     string      `json:"type"` // snapshot or status
	ResumeID string      `json:"resume_id"`
	Status   ParseStatus `json:"status"`
	Message  string      `json:"message,omitempty"`
}

// EmbeddingDims is the width of the résumé/job text embedding column.
const EmbeddingDims = 256

type Resume struct {
	ID          string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CandidateID string `gorm:"column:candidate_id;type:text;index;not null" json:"candidate_id"`

	FileName string `gorm:"column:file_name;type:text" json:"file_name"`
	FilePath string `gorm:"column:file_path;type:text" json:"file_path"`
	FileSize int    `gorm:"column:file_size;type:integer" json:"file_size"`
	MimeType string `gorm:"column:mime_type;type:text" json:"mime_type"`

	ParseStatus ParseStatus    `gorm:"column:parse_status;type:varchar(10);not null;default:pending" json:"parse_status"`
	ParsedData  datatypes.JSON `gorm:"column:parsed_data;type:jsonb" json:"parsed_data,omitempty"`
	Skills      pq.StringArray `gorm:"column:skills;type:text[]" json:"skills,omitempty"`

	// pgvector; nil until the résumé has been parsed
	Embedding *pgvector.Vector `gorm:"column:embedding;type:vector(256)" json:"-"`

	AIResumeScore *float64 `gorm:"column:ai_resume_score" json:"ai_resume_score,omitempty"`
	AIFeedback    *string  `gorm:"column:ai_feedback;type:text" json:"ai_feedback,omitempty"`

	UploadedAt time.Time `gorm:"column:uploaded_at;type:timestamptz;index" json:"uploaded_at"`

	Candidate *Candidate `gorm:"foreignKey:CandidateID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Resume) TableName() string { return "resumes" }

// ParsedResume is the fixed-shape record extracted from a résumé file.
type ParsedResume struct {
	Skills          []string `json:"skills"`
	JobTitle        string   `json:"job_title"`
	Company         string   `json:"company"`
	Education       string   `json:"education"`
	Degrees         []string `json:"degrees,omitempty"` // every degree found, highest first
	YearsExperience int      `json:"years_experience"`
	Summary         string   `json:"summary"`
}
