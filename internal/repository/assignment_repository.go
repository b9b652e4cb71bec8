package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/classmentor/classroom-service/internal/models"
)

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	GetByID(ctx context.Context, id string) (*models.Assignment, error)
	GetByClassroomID(ctx context.Context, classroomID string) ([]models.Assignment, error)
	GetByStudentID(ctx context.Context, studentID string) ([]models.AssignmentWithClassroom, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type assignmentRepository struct {
	*PostgresRepository
}

func NewAssignmentRepository(db *sql.DB, logger zerolog.Logger) AssignmentRepository {
	return &assignmentRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	query := `
		INSERT INTO assignments (id, classroom_id, title, description, subject_topic, file_url, due_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		assignment.ID,
		assignment.ClassroomID,
		assignment.Title,
		assignment.Description,
		assignment.SubjectTopic,
		assignment.FileURL,
		assignment.DueDate,
		assignment.CreatedAt,
	)

	return err
}

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := `
		SELECT id, classroom_id, title, description, subject_topic, file_url, due_date, created_at
		FROM assignments
		WHERE id = $1
	`

	assignment := &models.Assignment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&assignment.ID,
		&assignment.ClassroomID,
		&assignment.Title,
		&assignment.Description,
		&assignment.SubjectTopic,
		&assignment.FileURL,
		&assignment.DueDate,
		&assignment.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return assignment, err
}

func (r *assignmentRepository) GetByClassroomID(ctx context.Context, classroomID string) ([]models.Assignment, error) {
	query := `
		SELECT id, classroom_id, title, description, subject_topic, file_url, due_date, created_at
		FROM assignments
		WHERE classroom_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []models.Assignment
	for rows.Next() {
		var a models.Assignment
		err := rows.Scan(
			&a.ID,
			&a.ClassroomID,
			&a.Title,
			&a.Description,
			&a.SubjectTopic,
			&a.FileURL,
			&a.DueDate,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}

func (r *assignmentRepository) GetByStudentID(ctx context.Context, studentID string) ([]models.AssignmentWithClassroom, error) {
	query := `
		SELECT
			a.id, a.classroom_id, a.title, a.description, a.subject_topic, a.file_url, a.due_date, a.created_at,
			c.name as classroom_name
		FROM assignments a
		JOIN classrooms c ON a.classroom_id = c.id
		JOIN classroom_members m ON m.classroom_id = c.id
		WHERE m.student_id = $1
		ORDER BY a.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []models.AssignmentWithClassroom
	for rows.Next() {
		var a models.AssignmentWithClassroom
		err := rows.Scan(
			&a.ID,
			&a.ClassroomID,
			&a.Title,
			&a.Description,
			&a.SubjectTopic,
			&a.FileURL,
			&a.DueDate,
			&a.CreatedAt,
			&a.ClassroomName,
		)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}

func (r *assignmentRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM assignments WHERE id = $1)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}
