package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/classmentor/classroom-service/internal/models"
	"github.com/classmentor/classroom-service/internal/repository"
)

type StudentService interface {
	GetWeakTopics(ctx context.Context, studentID string) ([]models.WeakTopicWithAssignment, error)
	GetAssignmentWeakTopics(ctx context.Context, studentID, assignmentID string) ([]models.WeakTopic, error)
	GetRecommendations(ctx context.Context, studentID, recommendationType string) ([]models.RecommendationWithTopic, error)
}

type studentService struct {
	weakTopicRepo      repository.WeakTopicRepository
	recommendationRepo repository.RecommendationRepository
	userRepo           repository.UserRepository
	logger             zerolog.Logger
}

func NewStudentService(
	weakTopicRepo repository.WeakTopicRepository,
	recommendationRepo repository.RecommendationRepository,
	userRepo repository.UserRepository,
	logger zerolog.Logger,
) StudentService {
	return &studentService{
		weakTopicRepo:      weakTopicRepo,
		recommendationRepo: recommendationRepo,
		userRepo:           userRepo,
		logger:             logger,
	}
}

func (s *studentService) GetWeakTopics(ctx context.Context, studentID string) ([]models.WeakTopicWithAssignment, error) {
	exists, err := s.userRepo.Exists(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check student: %w", err)
	}
	if !exists {
		return nil, errors.New("student not found")
	}

	topics, err := s.weakTopicRepo.GetByStudentID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get weak topics: %w", err)
	}

	return topics, nil
}

func (s *studentService) GetAssignmentWeakTopics(ctx context.Context, studentID, assignmentID string) ([]models.WeakTopic, error) {
	topics, err := s.weakTopicRepo.GetByStudentAndAssignment(ctx, studentID, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get weak topics: %w", err)
	}

	return topics, nil
}

func (s *studentService) GetRecommendations(ctx context.Context, studentID, recommendationType string) ([]models.RecommendationWithTopic, error) {
	if recommendationType == "" {
		recommendations, err := s.recommendationRepo.GetByStudentID(ctx, studentID)
		if err != nil {
			return nil, fmt.Errorf("failed to get recommendations: %w", err)
		}
		return recommendations, nil
	}

	if !models.IsValidRecommendationType(recommendationType) {
		return nil, errors.New("invalid recommendation type")
	}

	recommendations, err := s.recommendationRepo.GetByStudentAndType(ctx, studentID, recommendationType)
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendations: %w", err)
	}

	return recommendations, nil
}
