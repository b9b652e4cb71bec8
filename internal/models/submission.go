package models

import (
	"encoding/json"
	"time"
)

type Submission struct {
	ID             string          `json:"id" db:"id"`
	AssignmentID   string          `json:"assignment_id" db:"assignment_id"`
	StudentID      string          `json:"student_id" db:"student_id"`
	ContentText    *string         `json:"content_text,omitempty" db:"content_text"`
	FileURL        *string         `json:"file_url,omitempty" db:"file_url"`
	AnalysisStatus string          `json:"ai_analysis_status" db:"ai_analysis_status"`
	Feedback       json.RawMessage `json:"ai_feedback,omitempty" db:"ai_feedback"`
	SubmittedAt    time.Time       `json:"submitted_at" db:"submitted_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

type SubmissionWithDetails struct {
	Submission
	StudentName     string `json:"student_name" db:"student_name"`
	AssignmentTitle string `json:"assignment_title" db:"assignment_title"`
}

type AnalysisStatus string

const (
	AnalysisStatusPending    AnalysisStatus = "pending"
	AnalysisStatusProcessing AnalysisStatus = "processing"
	AnalysisStatusCompleted  AnalysisStatus = "completed"
	AnalysisStatusFailed     AnalysisStatus = "failed"
)

func (s AnalysisStatus) String() string {
	return string(s)
}

func IsValidAnalysisStatus(status string) bool {
	switch status {
	case "pending", "processing", "completed", "failed":
		return true
	default:
		return false
	}
}

// IsTerminalAnalysisStatus reports whether no further analysis transition is
// expected without a new dispatch.
func IsTerminalAnalysisStatus(status string) bool {
	return status == AnalysisStatusCompleted.String() || status == AnalysisStatusFailed.String()
}
