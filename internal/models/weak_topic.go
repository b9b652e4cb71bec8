package models

import (
	"time"
)

// WeakTopic is one canonical topic produced by an analysis run. The live set
// for a (student, assignment) pair always reflects the most recent run only.
type WeakTopic struct {
	ID              string    `json:"id" db:"id"`
	StudentID       string    `json:"student_id" db:"student_id"`
	AssignmentID    string    `json:"assignment_id" db:"assignment_id"`
	TopicName       string    `json:"topic_name" db:"topic_name"`
	ConfidenceScore float64   `json:"confidence_score" db:"confidence_score"`
	AIExplanation   string    `json:"ai_explanation" db:"ai_explanation"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

type WeakTopicWithAssignment struct {
	WeakTopic
	AssignmentTitle string `json:"assignment_title" db:"assignment_title"`
}
