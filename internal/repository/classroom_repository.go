package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/classmentor/classroom-service/internal/models"
)

type ClassroomRepository interface {
	Create(ctx context.Context, classroom *models.Classroom) error
	GetByID(ctx context.Context, id string) (*models.Classroom, error)
	GetByClassCode(ctx context.Context, classCode string) (*models.Classroom, error)
	GetByTeacherID(ctx context.Context, teacherID string) ([]models.Classroom, error)
	GetByStudentID(ctx context.Context, studentID string) ([]models.Classroom, error)
	AddMember(ctx context.Context, member *models.ClassroomMember) error
	IsMember(ctx context.Context, classroomID, studentID string) (bool, error)
	GetStudents(ctx context.Context, classroomID string) ([]models.User, error)
	CountByTeacher(ctx context.Context, teacherID string) (int, error)
	CountStudentsByTeacher(ctx context.Context, teacherID string) (int, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type classroomRepository struct {
	*PostgresRepository
}

func NewClassroomRepository(db *sql.DB, logger zerolog.Logger) ClassroomRepository {
	return &classroomRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *classroomRepository) Create(ctx context.Context, classroom *models.Classroom) error {
	query := `
		INSERT INTO classrooms (id, teacher_id, name, description, class_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		classroom.ID,
		classroom.TeacherID,
		classroom.Name,
		classroom.Description,
		classroom.ClassCode,
		classroom.CreatedAt,
	)

	return err
}

func (r *classroomRepository) GetByID(ctx context.Context, id string) (*models.Classroom, error) {
	query := `
		SELECT id, teacher_id, name, description, class_code, created_at
		FROM classrooms
		WHERE id = $1
	`

	return r.scanClassroom(r.db.QueryRowContext(ctx, query, id))
}

func (r *classroomRepository) GetByClassCode(ctx context.Context, classCode string) (*models.Classroom, error) {
	query := `
		SELECT id, teacher_id, name, description, class_code, created_at
		FROM classrooms
		WHERE class_code = $1
	`

	return r.scanClassroom(r.db.QueryRowContext(ctx, query, classCode))
}

func (r *classroomRepository) scanClassroom(row *sql.Row) (*models.Classroom, error) {
	classroom := &models.Classroom{}
	err := row.Scan(
		&classroom.ID,
		&classroom.TeacherID,
		&classroom.Name,
		&classroom.Description,
		&classroom.ClassCode,
		&classroom.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return classroom, err
}

func (r *classroomRepository) GetByTeacherID(ctx context.Context, teacherID string) ([]models.Classroom, error) {
	query := `
		SELECT id, teacher_id, name, description, class_code, created_at
		FROM classrooms
		WHERE teacher_id = $1
		ORDER BY created_at DESC
	`

	return r.queryClassrooms(ctx, query, teacherID)
}

func (r *classroomRepository) GetByStudentID(ctx context.Context, studentID string) ([]models.Classroom, error) {
	query := `
		SELECT c.id, c.teacher_id, c.name, c.description, c.class_code, c.created_at
		FROM classrooms c
		JOIN classroom_members m ON m.classroom_id = c.id
		WHERE m.student_id = $1
		ORDER BY c.created_at DESC
	`

	return r.queryClassrooms(ctx, query, studentID)
}

func (r *classroomRepository) queryClassrooms(ctx context.Context, query string, args ...any) ([]models.Classroom, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classrooms []models.Classroom
	for rows.Next() {
		var c models.Classroom
		err := rows.Scan(
			&c.ID,
			&c.TeacherID,
			&c.Name,
			&c.Description,
			&c.ClassCode,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		classrooms = append(classrooms, c)
	}

	return classrooms, rows.Err()
}

func (r *classroomRepository) AddMember(ctx context.Context, member *models.ClassroomMember) error {
	query := `
		INSERT INTO classroom_members (classroom_id, student_id, joined_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.ExecContext(ctx, query,
		member.ClassroomID,
		member.StudentID,
		member.JoinedAt,
	)

	return err
}

func (r *classroomRepository) IsMember(ctx context.Context, classroomID, studentID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM classroom_members WHERE classroom_id = $1 AND student_id = $2)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, classroomID, studentID).Scan(&exists)
	return exists, err
}

func (r *classroomRepository) GetStudents(ctx context.Context, classroomID string) ([]models.User, error) {
	query := `
		SELECT u.id, u.full_name, u.email, u.role, u.created_at
		FROM users u
		JOIN classroom_members m ON m.student_id = u.id
		WHERE m.classroom_id = $1
		ORDER BY u.full_name
	`

	rows, err := r.db.QueryContext(ctx, query, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []models.User
	for rows.Next() {
		var u models.User
		err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.Role, &u.CreatedAt)
		if err != nil {
			return nil, err
		}
		students = append(students, u)
	}

	return students, rows.Err()
}

func (r *classroomRepository) CountByTeacher(ctx context.Context, teacherID string) (int, error) {
	query := `SELECT COUNT(*) FROM classrooms WHERE teacher_id = $1`

	var count int
	err := r.db.QueryRowContext(ctx, query, teacherID).Scan(&count)
	return count, err
}

func (r *classroomRepository) CountStudentsByTeacher(ctx context.Context, teacherID string) (int, error) {
	query := `
		SELECT COUNT(DISTINCT m.student_id)
		FROM classroom_members m
		JOIN classrooms c ON m.classroom_id = c.id
		WHERE c.teacher_id = $1
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, teacherID).Scan(&count)
	return count, err
}

func (r *classroomRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM classrooms WHERE id = $1)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}
