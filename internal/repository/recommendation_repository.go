package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/classmentor/classroom-service/internal/models"
)

type RecommendationRepository interface {
	GetByStudentID(ctx context.Context, studentID string) ([]models.RecommendationWithTopic, error)
	GetByStudentAndType(ctx context.Context, studentID, recommendationType string) ([]models.RecommendationWithTopic, error)
}

type recommendationRepository struct {
	*PostgresRepository
}

func NewRecommendationRepository(db *sql.DB, logger zerolog.Logger) RecommendationRepository {
	return &recommendationRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *recommendationRepository) GetByStudentID(ctx context.Context, studentID string) ([]models.RecommendationWithTopic, error) {
	query := `
		SELECT
			p.id, p.student_id, p.weak_topic_id, p.recommendation_type, p.title, p.description, p.url, p.details, p.created_at,
			COALESCE(t.topic_name, '') as topic_name
		FROM personalized_recommendations p
		LEFT JOIN student_weak_topics t ON p.weak_topic_id = t.id
		WHERE p.student_id = $1
		ORDER BY p.created_at DESC
	`

	return r.queryRecommendations(ctx, query, studentID)
}

func (r *recommendationRepository) GetByStudentAndType(ctx context.Context, studentID, recommendationType string) ([]models.RecommendationWithTopic, error) {
	query := `
		SELECT
			p.id, p.student_id, p.weak_topic_id, p.recommendation_type, p.title, p.description, p.url, p.details, p.created_at,
			COALESCE(t.topic_name, '') as topic_name
		FROM personalized_recommendations p
		LEFT JOIN student_weak_topics t ON p.weak_topic_id = t.id
		WHERE p.student_id = $1 AND p.recommendation_type = $2
		ORDER BY p.created_at DESC
	`

	return r.queryRecommendations(ctx, query, studentID, recommendationType)
}

func (r *recommendationRepository) queryRecommendations(ctx context.Context, query string, args ...any) ([]models.RecommendationWithTopic, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recommendations []models.RecommendationWithTopic
	for rows.Next() {
		var rec models.RecommendationWithTopic
		var details []byte
		err := rows.Scan(
			&rec.ID,
			&rec.StudentID,
			&rec.WeakTopicID,
			&rec.Type,
			&rec.Title,
			&rec.Description,
			&rec.URL,
			&details,
			&rec.CreatedAt,
			&rec.TopicName,
		)
		if err != nil {
			return nil, err
		}
		rec.Details = details
		recommendations = append(recommendations, rec)
	}

	return recommendations, rows.Err()
}
