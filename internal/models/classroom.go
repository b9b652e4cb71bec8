package models

import (
	"time"
)

type Classroom struct {
	ID          string    `json:"id" db:"id"`
	TeacherID   string    `json:"teacher_id" db:"teacher_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	ClassCode   string    `json:"class_code" db:"class_code"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type ClassroomMember struct {
	ClassroomID string    `json:"classroom_id" db:"classroom_id"`
	StudentID   string    `json:"student_id" db:"student_id"`
	JoinedAt    time.Time `json:"joined_at" db:"joined_at"`
}

// TeacherStats backs the teacher dashboard header cards.
type TeacherStats struct {
	Classrooms        int                     `json:"classrooms"`
	Students          int                     `json:"students"`
	WeakTopics        int                     `json:"weak_topics"`
	RecentSubmissions []SubmissionWithDetails `json:"recent_submissions"`
}
