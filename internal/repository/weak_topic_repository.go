package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/classmentor/classroom-service/internal/models"
)

type WeakTopicRepository interface {
	// Replace removes every weak topic for the (student, assignment) pair and
	// inserts the given set in one transaction. Replace with an empty set is a
	// no-op rather than a wipe; a run that found nothing keeps prior findings.
	Replace(ctx context.Context, studentID, assignmentID string, topics []models.WeakTopic) error
	GetByStudentID(ctx context.Context, studentID string) ([]models.WeakTopicWithAssignment, error)
	GetByStudentAndAssignment(ctx context.Context, studentID, assignmentID string) ([]models.WeakTopic, error)
	CountByTeacher(ctx context.Context, teacherID string) (int, error)
}

type weakTopicRepository struct {
	*PostgresRepository
}

func NewWeakTopicRepository(db *sql.DB, logger zerolog.Logger) WeakTopicRepository {
	return &weakTopicRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *weakTopicRepository) Replace(ctx context.Context, studentID, assignmentID string, topics []models.WeakTopic) error {
	if len(topics) == 0 {
		return nil
	}

	tx, err := r.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleteQuery := `DELETE FROM student_weak_topics WHERE student_id = $1 AND assignment_id = $2`
	if _, err := tx.ExecContext(ctx, deleteQuery, studentID, assignmentID); err != nil {
		return fmt.Errorf("failed to delete existing topics: %w", err)
	}

	insertQuery := `
		INSERT INTO student_weak_topics (id, student_id, assignment_id, topic_name, confidence_score, ai_explanation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, topic := range topics {
		_, err := tx.ExecContext(ctx, insertQuery,
			topic.ID,
			topic.StudentID,
			topic.AssignmentID,
			topic.TopicName,
			topic.ConfidenceScore,
			topic.AIExplanation,
			topic.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert topic %q: %w", topic.TopicName, err)
		}
	}

	return tx.Commit()
}

func (r *weakTopicRepository) GetByStudentID(ctx context.Context, studentID string) ([]models.WeakTopicWithAssignment, error) {
	query := `
		SELECT
			t.id, t.student_id, t.assignment_id, t.topic_name, t.confidence_score, t.ai_explanation, t.created_at,
			a.title as assignment_title
		FROM student_weak_topics t
		JOIN assignments a ON t.assignment_id = a.id
		WHERE t.student_id = $1
		ORDER BY t.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []models.WeakTopicWithAssignment
	for rows.Next() {
		var t models.WeakTopicWithAssignment
		err := rows.Scan(
			&t.ID,
			&t.StudentID,
			&t.AssignmentID,
			&t.TopicName,
			&t.ConfidenceScore,
			&t.AIExplanation,
			&t.CreatedAt,
			&t.AssignmentTitle,
		)
		if err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}

	return topics, rows.Err()
}

func (r *weakTopicRepository) GetByStudentAndAssignment(ctx context.Context, studentID, assignmentID string) ([]models.WeakTopic, error) {
	query := `
		SELECT id, student_id, assignment_id, topic_name, confidence_score, ai_explanation, created_at
		FROM student_weak_topics
		WHERE student_id = $1 AND assignment_id = $2
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, studentID, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []models.WeakTopic
	for rows.Next() {
		var t models.WeakTopic
		err := rows.Scan(
			&t.ID,
			&t.StudentID,
			&t.AssignmentID,
			&t.TopicName,
			&t.ConfidenceScore,
			&t.AIExplanation,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}

	return topics, rows.Err()
}

func (r *weakTopicRepository) CountByTeacher(ctx context.Context, teacherID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM student_weak_topics t
		JOIN assignments a ON t.assignment_id = a.id
		JOIN classrooms c ON a.classroom_id = c.id
		WHERE c.teacher_id = $1
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, teacherID).Scan(&count)
	return count, err
}
