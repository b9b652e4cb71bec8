package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/classmentor/classroom-service/internal/models"
	"github.com/classmentor/classroom-service/internal/repository"
	"github.com/classmentor/classroom-service/internal/service/storage"
)

type AssignmentService interface {
	CreateAssignment(ctx context.Context, req *models.CreateAssignmentRequest) (*models.Assignment, error)
	GetAssignmentByID(ctx context.Context, id string) (*models.Assignment, error)
	GetClassroomAssignments(ctx context.Context, classroomID string) ([]models.Assignment, error)
	GetStudentAssignments(ctx context.Context, studentID string) ([]models.AssignmentWithClassroom, error)
}

type assignmentService struct {
	assignmentRepo repository.AssignmentRepository
	classroomRepo  repository.ClassroomRepository
	fileStore      storage.FileStore
	presignExpiry  time.Duration
	logger         zerolog.Logger
}

func NewAssignmentService(
	assignmentRepo repository.AssignmentRepository,
	classroomRepo repository.ClassroomRepository,
	fileStore storage.FileStore,
	presignExpiry time.Duration,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		assignmentRepo: assignmentRepo,
		classroomRepo:  classroomRepo,
		fileStore:      fileStore,
		presignExpiry:  presignExpiry,
		logger:         logger,
	}
}

// CreateAssignment stores the assignment and, when a reference file is
// attached, uploads it and records its presigned URL. The URL later rides
// along in analysis requests as the grading reference.
func (s *assignmentService) CreateAssignment(ctx context.Context, req *models.CreateAssignmentRequest) (*models.Assignment, error) {
	if req.ClassroomID == "" || req.Title == "" {
		return nil, errors.New("classroom id and title are required")
	}

	exists, err := s.classroomRepo.Exists(ctx, req.ClassroomID)
	if err != nil {
		return nil, fmt.Errorf("failed to check classroom: %w", err)
	}
	if !exists {
		return nil, errors.New("classroom not found")
	}

	assignment := &models.Assignment{
		ID:           uuid.New().String(),
		ClassroomID:  req.ClassroomID,
		Title:        req.Title,
		Description:  req.Description,
		SubjectTopic: req.SubjectTopic,
		DueDate:      req.DueDate,
		CreatedAt:    time.Now(),
	}

	if len(req.FileContent) > 0 {
		ext := filepath.Ext(req.FileName)
		if ext == "" {
			ext = ".pdf"
		}
		key := fmt.Sprintf("assignments/%s/%s%s", req.ClassroomID, assignment.ID, ext)

		reader := bytes.NewReader(req.FileContent)
		if err := s.fileStore.Upload(ctx, key, reader, int64(len(req.FileContent)), "application/pdf"); err != nil {
			return nil, fmt.Errorf("failed to upload assignment file: %w", err)
		}

		fileURL, err := s.fileStore.PresignedURL(ctx, key, s.presignExpiry)
		if err != nil {
			return nil, fmt.Errorf("failed to presign assignment file: %w", err)
		}
		assignment.FileURL = &fileURL
	}

	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	s.logger.Info().
		Str("assignment_id", assignment.ID).
		Str("classroom_id", assignment.ClassroomID).
		Str("title", assignment.Title).
		Msg("Assignment created")

	return assignment, nil
}

func (s *assignmentService) GetAssignmentByID(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	if assignment == nil {
		return nil, errors.New("assignment not found")
	}

	return assignment, nil
}

func (s *assignmentService) GetClassroomAssignments(ctx context.Context, classroomID string) ([]models.Assignment, error) {
	assignments, err := s.assignmentRepo.GetByClassroomID(ctx, classroomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get classroom assignments: %w", err)
	}

	return assignments, nil
}

func (s *assignmentService) GetStudentAssignments(ctx context.Context, studentID string) ([]models.AssignmentWithClassroom, error) {
	assignments, err := s.assignmentRepo.GetByStudentID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student assignments: %w", err)
	}

	return assignments, nil
}
