package models

import (
	"encoding/json"
	"time"
)

// Data Transfer Objects

type CreateClassroomRequest struct {
	TeacherID   string `json:"teacher_id" validate:"required,uuid"`
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=1000"`
}

type JoinClassroomRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	ClassCode string `json:"class_code" validate:"required,len=6"`
}

type CreateAssignmentRequest struct {
	ClassroomID  string     `json:"classroom_id" validate:"required,uuid"`
	Title        string     `json:"title" validate:"required,min=1,max=255"`
	Description  string     `json:"description" validate:"max=1000"`
	SubjectTopic string     `json:"subject_topic" validate:"max=255"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	FileContent  []byte     `json:"-"`
	FileName     string     `json:"file_name,omitempty"`
}

type CreateSubmissionRequest struct {
	AssignmentID string `json:"assignment_id" validate:"required,uuid"`
	StudentID    string `json:"student_id" validate:"required,uuid"`
	ContentText  string `json:"content_text,omitempty"`
	FileContent  []byte `json:"-"`
	FileName     string `json:"file_name,omitempty"`
}

type CreateSubmissionResponse struct {
	ID             string    `json:"id"`
	AnalysisStatus string    `json:"ai_analysis_status"`
	FileURL        *string   `json:"file_url,omitempty"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// AnalysisRequest is the outbound payload sent to the analysis worker. It is
// ephemeral and exists only for the duration of one dispatch.
type AnalysisRequest struct {
	SubmissionID            string `json:"submissionId"`
	StudentID               string `json:"studentId"`
	AssignmentID            string `json:"assignmentId"`
	AssignmentPdfURL        string `json:"assignmentPdfUrl"`
	StudentSubmissionPdfURL string `json:"studentSubmissionPdfUrl"`
	DirectAnalysis          bool   `json:"directAnalysis"`
	CallbackURL             string `json:"callbackUrl"`
}

// AnalysisCallback is the inbound result payload. The worker delivers it
// asynchronously to the webhook endpoint; the same shape may come back as an
// inline reply to the dispatch call, and the manual re-apply endpoint accepts
// it as well. Only SubmissionID is required; feedback may be a JSON string, an
// object, an array, or absent, so both loosely typed fields stay raw until the
// normalizer has a say.
type AnalysisCallback struct {
	SubmissionID string          `json:"submissionId"`
	Status       string          `json:"status,omitempty"`
	Feedback     json.RawMessage `json:"feedback,omitempty"`
	WeakTopics   json.RawMessage `json:"weakTopics,omitempty"`
}

type SubmissionStatusResponse struct {
	ID             string `json:"id"`
	AnalysisStatus string `json:"ai_analysis_status"`
}
