package models

import (
	"time"
)

type Assignment struct {
	ID           string     `json:"id" db:"id"`
	ClassroomID  string     `json:"classroom_id" db:"classroom_id"`
	Title        string     `json:"title" db:"title"`
	Description  string     `json:"description" db:"description"`
	SubjectTopic string     `json:"subject_topic" db:"subject_topic"`
	FileURL      *string    `json:"file_url,omitempty" db:"file_url"`
	DueDate      *time.Time `json:"due_date,omitempty" db:"due_date"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

type AssignmentWithClassroom struct {
	Assignment
	ClassroomName string `json:"classroom_name" db:"classroom_name"`
}
