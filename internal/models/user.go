package models

import (
	"time"
)

type User struct {
	ID        string    `json:"id" db:"id"`
	FullName  string    `json:"full_name" db:"full_name"`
	Email     string    `json:"email" db:"email"`
	Role      string    `json:"role" db:"role"` // teacher, student
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)
