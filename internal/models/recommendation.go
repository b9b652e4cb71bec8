package models

import (
	"encoding/json"
	"time"
)

type Recommendation struct {
	ID          string          `json:"id" db:"id"`
	StudentID   string          `json:"student_id" db:"student_id"`
	WeakTopicID *string         `json:"weak_topic_id,omitempty" db:"weak_topic_id"`
	Type        string          `json:"recommendation_type" db:"recommendation_type"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	URL         *string         `json:"url,omitempty" db:"url"`
	Details     json.RawMessage `json:"details,omitempty" db:"details"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

type RecommendationWithTopic struct {
	Recommendation
	TopicName string `json:"topic_name" db:"topic_name"`
}

const (
	RecommendationVideo     = "youtube_video"
	RecommendationStudyPlan = "study_plan_item"
	RecommendationQuiz      = "quiz"
	RecommendationResource  = "resource_link"
)

func IsValidRecommendationType(t string) bool {
	switch t {
	case RecommendationVideo, RecommendationStudyPlan, RecommendationQuiz, RecommendationResource:
		return true
	default:
		return false
	}
}
