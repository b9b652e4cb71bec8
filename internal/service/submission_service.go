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

type SubmissionService interface {
	CreateSubmission(ctx context.Context, req *models.CreateSubmissionRequest) (*models.CreateSubmissionResponse, error)
	GetSubmissionByID(ctx context.Context, id string) (*models.Submission, error)
	GetSubmissionsByAssignment(ctx context.Context, assignmentID string) ([]models.SubmissionWithDetails, error)
	GetStudentSubmission(ctx context.Context, assignmentID, studentID string) (*models.Submission, error)
}

type submissionService struct {
	submissionRepo  repository.SubmissionRepository
	assignmentRepo  repository.AssignmentRepository
	fileStore       storage.FileStore
	analysisService AnalysisService
	presignExpiry   time.Duration
	logger          zerolog.Logger
}

func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	assignmentRepo repository.AssignmentRepository,
	fileStore storage.FileStore,
	analysisService AnalysisService,
	presignExpiry time.Duration,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissionRepo:  submissionRepo,
		assignmentRepo:  assignmentRepo,
		fileStore:       fileStore,
		analysisService: analysisService,
		presignExpiry:   presignExpiry,
		logger:          logger,
	}
}

// CreateSubmission stores the submission at pending, then kicks off analysis
// on the worker pool. The student gets their submission id back immediately;
// the analysis outcome arrives through the status endpoint.
func (s *submissionService) CreateSubmission(ctx context.Context, req *models.CreateSubmissionRequest) (*models.CreateSubmissionResponse, error) {
	if req.AssignmentID == "" || req.StudentID == "" {
		return nil, errors.New("assignment id and student id are required")
	}
	if len(req.FileContent) == 0 && req.ContentText == "" {
		return nil, errors.New("either a file or content text is required")
	}

	exists, err := s.assignmentRepo.Exists(ctx, req.AssignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check assignment: %w", err)
	}
	if !exists {
		return nil, errors.New("assignment not found")
	}

	existing, err := s.submissionRepo.GetByAssignmentAndStudent(ctx, req.AssignmentID, req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing submission: %w", err)
	}
	if existing != nil {
		return nil, errors.New("submission already exists for this assignment")
	}

	submission := &models.Submission{
		ID:             uuid.New().String(),
		AssignmentID:   req.AssignmentID,
		StudentID:      req.StudentID,
		AnalysisStatus: models.AnalysisStatusPending.String(),
		SubmittedAt:    time.Now(),
		UpdatedAt:      time.Now(),
	}
	if req.ContentText != "" {
		submission.ContentText = &req.ContentText
	}

	if len(req.FileContent) > 0 {
		fileURL, err := s.uploadFile(ctx, submission.ID, req)
		if err != nil {
			return nil, err
		}
		submission.FileURL = &fileURL
	}

	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	s.logger.Info().
		Str("submission_id", submission.ID).
		Str("assignment_id", submission.AssignmentID).
		Str("student_id", submission.StudentID).
		Bool("has_file", submission.FileURL != nil).
		Msg("Submission created")

	s.analysisService.DispatchAsync(submission.ID)

	return &models.CreateSubmissionResponse{
		ID:             submission.ID,
		AnalysisStatus: submission.AnalysisStatus,
		FileURL:        submission.FileURL,
		SubmittedAt:    submission.SubmittedAt,
	}, nil
}

func (s *submissionService) uploadFile(ctx context.Context, submissionID string, req *models.CreateSubmissionRequest) (string, error) {
	ext := filepath.Ext(req.FileName)
	if ext == "" {
		ext = ".pdf"
	}
	key := fmt.Sprintf("submissions/%s/%s%s", req.AssignmentID, submissionID, ext)

	reader := bytes.NewReader(req.FileContent)
	if err := s.fileStore.Upload(ctx, key, reader, int64(len(req.FileContent)), "application/pdf"); err != nil {
		return "", fmt.Errorf("failed to upload submission file: %w", err)
	}

	fileURL, err := s.fileStore.PresignedURL(ctx, key, s.presignExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign submission file: %w", err)
	}

	return fileURL, nil
}

func (s *submissionService) GetSubmissionByID(ctx context.Context, id string) (*models.Submission, error) {
	submission, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if submission == nil {
		return nil, errors.New("submission not found")
	}

	return submission, nil
}

func (s *submissionService) GetSubmissionsByAssignment(ctx context.Context, assignmentID string) ([]models.SubmissionWithDetails, error) {
	submissions, err := s.submissionRepo.GetByAssignmentID(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submissions: %w", err)
	}

	return submissions, nil
}

func (s *submissionService) GetStudentSubmission(ctx context.Context, assignmentID, studentID string) (*models.Submission, error) {
	submission, err := s.submissionRepo.GetByAssignmentAndStudent(ctx, assignmentID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return submission, nil
}
