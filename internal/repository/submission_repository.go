package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/classmentor/classroom-service/internal/models"
)

type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (*models.Submission, error)
	GetByAssignmentID(ctx context.Context, assignmentID string) ([]models.SubmissionWithDetails, error)
	GetRecentByTeacher(ctx context.Context, teacherID string, limit int) ([]models.SubmissionWithDetails, error)
	GetStatus(ctx context.Context, id string) (string, error)
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateAnalysis(ctx context.Context, id, status string, feedback json.RawMessage) error
	CompleteIfProcessing(ctx context.Context, id string) (bool, error)
}

type submissionRepository struct {
	*PostgresRepository
}

func NewSubmissionRepository(db *sql.DB, logger zerolog.Logger) SubmissionRepository {
	return &submissionRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	query := `
		INSERT INTO submissions (id, assignment_id, student_id, content_text, file_url, ai_analysis_status, submitted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		submission.ID,
		submission.AssignmentID,
		submission.StudentID,
		submission.ContentText,
		submission.FileURL,
		submission.AnalysisStatus,
		submission.SubmittedAt,
		submission.UpdatedAt,
	)

	return err
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	query := `
		SELECT id, assignment_id, student_id, content_text, file_url, ai_analysis_status, ai_feedback, submitted_at, updated_at
		FROM submissions
		WHERE id = $1
	`

	return r.scanSubmission(r.db.QueryRowContext(ctx, query, id))
}

func (r *submissionRepository) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (*models.Submission, error) {
	query := `
		SELECT id, assignment_id, student_id, content_text, file_url, ai_analysis_status, ai_feedback, submitted_at, updated_at
		FROM submissions
		WHERE assignment_id = $1 AND student_id = $2
	`

	return r.scanSubmission(r.db.QueryRowContext(ctx, query, assignmentID, studentID))
}

func (r *submissionRepository) scanSubmission(row *sql.Row) (*models.Submission, error) {
	submission := &models.Submission{}
	var feedback []byte
	err := row.Scan(
		&submission.ID,
		&submission.AssignmentID,
		&submission.StudentID,
		&submission.ContentText,
		&submission.FileURL,
		&submission.AnalysisStatus,
		&feedback,
		&submission.SubmittedAt,
		&submission.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	submission.Feedback = json.RawMessage(feedback)
	return submission, nil
}

func (r *submissionRepository) GetByAssignmentID(ctx context.Context, assignmentID string) ([]models.SubmissionWithDetails, error) {
	query := `
		SELECT
			s.id, s.assignment_id, s.student_id, s.content_text, s.file_url, s.ai_analysis_status, s.ai_feedback, s.submitted_at, s.updated_at,
			u.full_name as student_name,
			a.title as assignment_title
		FROM submissions s
		JOIN users u ON s.student_id = u.id
		JOIN assignments a ON s.assignment_id = a.id
		WHERE s.assignment_id = $1
		ORDER BY s.submitted_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSubmissionDetails(rows)
}

func (r *submissionRepository) GetRecentByTeacher(ctx context.Context, teacherID string, limit int) ([]models.SubmissionWithDetails, error) {
	query := `
		SELECT
			s.id, s.assignment_id, s.student_id, s.content_text, s.file_url, s.ai_analysis_status, s.ai_feedback, s.submitted_at, s.updated_at,
			u.full_name as student_name,
			a.title as assignment_title
		FROM submissions s
		JOIN users u ON s.student_id = u.id
		JOIN assignments a ON s.assignment_id = a.id
		JOIN classrooms c ON a.classroom_id = c.id
		WHERE c.teacher_id = $1
		ORDER BY s.submitted_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, teacherID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSubmissionDetails(rows)
}

func scanSubmissionDetails(rows *sql.Rows) ([]models.SubmissionWithDetails, error) {
	var submissions []models.SubmissionWithDetails
	for rows.Next() {
		var s models.SubmissionWithDetails
		var feedback []byte
		err := rows.Scan(
			&s.ID,
			&s.AssignmentID,
			&s.StudentID,
			&s.ContentText,
			&s.FileURL,
			&s.AnalysisStatus,
			&feedback,
			&s.SubmittedAt,
			&s.UpdatedAt,
			&s.StudentName,
			&s.AssignmentTitle,
		)
		if err != nil {
			return nil, err
		}
		s.Feedback = json.RawMessage(feedback)
		submissions = append(submissions, s)
	}

	return submissions, rows.Err()
}

func (r *submissionRepository) GetStatus(ctx context.Context, id string) (string, error) {
	query := `SELECT ai_analysis_status FROM submissions WHERE id = $1`

	var status string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&status)
	if err == sql.ErrNoRows {
		return "", nil
	}

	return status, err
}

func (r *submissionRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `
		UPDATE submissions
		SET ai_analysis_status = $1, updated_at = $2
		WHERE id = $3
	`

	_, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	return err
}

func (r *submissionRepository) UpdateAnalysis(ctx context.Context, id, status string, feedback json.RawMessage) error {
	if len(feedback) == 0 {
		return r.UpdateStatus(ctx, id, status)
	}

	query := `
		UPDATE submissions
		SET ai_analysis_status = $1, ai_feedback = $2, updated_at = $3
		WHERE id = $4
	`

	_, err := r.db.ExecContext(ctx, query, status, []byte(feedback), time.Now(), id)
	return err
}

// CompleteIfProcessing flips a submission stuck at processing to completed.
// The conditional write keeps a real result that landed meanwhile intact.
func (r *submissionRepository) CompleteIfProcessing(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE submissions
		SET ai_analysis_status = $1, updated_at = $2
		WHERE id = $3 AND ai_analysis_status = $4
	`

	result, err := r.db.ExecContext(ctx, query,
		models.AnalysisStatusCompleted.String(),
		time.Now(),
		id,
		models.AnalysisStatusProcessing.String(),
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
