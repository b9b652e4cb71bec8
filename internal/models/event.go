package models

type SubmissionAnalyzedEvent struct {
	SubmissionID string `json:"submission_id"`
	StudentID    string `json:"student_id"`
	AssignmentID string `json:"assignment_id"`
	Status       string `json:"status"`
	TopicCount   int    `json:"topic_count"`
	Timestamp    int64  `json:"timestamp"`
}
