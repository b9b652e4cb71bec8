package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/classmentor/classroom-service/internal/models"
	"github.com/classmentor/classroom-service/internal/repository"
)

// Characters allowed in a class code. 0/O and 1/I are excluded because codes
// are read aloud in classrooms and typed from whiteboards.
const classCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const classCodeLength = 6

type ClassroomService interface {
	CreateClassroom(ctx context.Context, req *models.CreateClassroomRequest) (*models.Classroom, error)
	GetClassroomByID(ctx context.Context, id string) (*models.Classroom, error)
	GetTeacherClassrooms(ctx context.Context, teacherID string) ([]models.Classroom, error)
	GetStudentClassrooms(ctx context.Context, studentID string) ([]models.Classroom, error)
	JoinClassroom(ctx context.Context, req *models.JoinClassroomRequest) (*models.Classroom, error)
	GetClassroomStudents(ctx context.Context, classroomID string) ([]models.User, error)
	GetTeacherStats(ctx context.Context, teacherID string) (*models.TeacherStats, error)
}

type classroomService struct {
	classroomRepo  repository.ClassroomRepository
	weakTopicRepo  repository.WeakTopicRepository
	submissionRepo repository.SubmissionRepository
	logger         zerolog.Logger
}

func NewClassroomService(
	classroomRepo repository.ClassroomRepository,
	weakTopicRepo repository.WeakTopicRepository,
	submissionRepo repository.SubmissionRepository,
	logger zerolog.Logger,
) ClassroomService {
	return &classroomService{
		classroomRepo:  classroomRepo,
		weakTopicRepo:  weakTopicRepo,
		submissionRepo: submissionRepo,
		logger:         logger,
	}
}

func (s *classroomService) CreateClassroom(ctx context.Context, req *models.CreateClassroomRequest) (*models.Classroom, error) {
	if req.TeacherID == "" || req.Name == "" {
		return nil, errors.New("teacher id and name are required")
	}

	code, err := s.generateClassCode(ctx)
	if err != nil {
		return nil, err
	}

	classroom := &models.Classroom{
		ID:          uuid.New().String(),
		TeacherID:   req.TeacherID,
		Name:        req.Name,
		Description: req.Description,
		ClassCode:   code,
		CreatedAt:   time.Now(),
	}

	if err := s.classroomRepo.Create(ctx, classroom); err != nil {
		return nil, fmt.Errorf("failed to create classroom: %w", err)
	}

	s.logger.Info().
		Str("classroom_id", classroom.ID).
		Str("teacher_id", classroom.TeacherID).
		Str("class_code", classroom.ClassCode).
		Msg("Classroom created")

	return classroom, nil
}

// generateClassCode draws random codes until one is free. Collisions are
// vanishingly rare at this alphabet size but a duplicate code would route
// students into the wrong class.
func (s *classroomService) generateClassCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		buf := make([]byte, classCodeLength)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate class code: %w", err)
		}
		for i := range buf {
			buf[i] = classCodeAlphabet[int(buf[i])%len(classCodeAlphabet)]
		}
		code := string(buf)

		existing, err := s.classroomRepo.GetByClassCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check class code: %w", err)
		}
		if existing == nil {
			return code, nil
		}
	}

	return "", errors.New("failed to generate a unique class code")
}

func (s *classroomService) GetClassroomByID(ctx context.Context, id string) (*models.Classroom, error) {
	classroom, err := s.classroomRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get classroom: %w", err)
	}
	if classroom == nil {
		return nil, errors.New("classroom not found")
	}

	return classroom, nil
}

func (s *classroomService) GetTeacherClassrooms(ctx context.Context, teacherID string) ([]models.Classroom, error) {
	classrooms, err := s.classroomRepo.GetByTeacherID(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher classrooms: %w", err)
	}

	return classrooms, nil
}

func (s *classroomService) GetStudentClassrooms(ctx context.Context, studentID string) ([]models.Classroom, error) {
	classrooms, err := s.classroomRepo.GetByStudentID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student classrooms: %w", err)
	}

	return classrooms, nil
}

// JoinClassroom enrolls a student by class code. Joining a class you already
// belong to is not an error; the classroom is returned either way.
func (s *classroomService) JoinClassroom(ctx context.Context, req *models.JoinClassroomRequest) (*models.Classroom, error) {
	if req.StudentID == "" || req.ClassCode == "" {
		return nil, errors.New("student id and class code are required")
	}

	code := strings.ToUpper(strings.TrimSpace(req.ClassCode))

	classroom, err := s.classroomRepo.GetByClassCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up class code: %w", err)
	}
	if classroom == nil {
		return nil, errors.New("invalid class code")
	}

	isMember, err := s.classroomRepo.IsMember(ctx, classroom.ID, req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if isMember {
		return classroom, nil
	}

	member := &models.ClassroomMember{
		ClassroomID: classroom.ID,
		StudentID:   req.StudentID,
		JoinedAt:    time.Now(),
	}
	if err := s.classroomRepo.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to join classroom: %w", err)
	}

	s.logger.Info().
		Str("classroom_id", classroom.ID).
		Str("student_id", req.StudentID).
		Msg("Student joined classroom")

	return classroom, nil
}

func (s *classroomService) GetClassroomStudents(ctx context.Context, classroomID string) ([]models.User, error) {
	exists, err := s.classroomRepo.Exists(ctx, classroomID)
	if err != nil {
		return nil, fmt.Errorf("failed to check classroom: %w", err)
	}
	if !exists {
		return nil, errors.New("classroom not found")
	}

	students, err := s.classroomRepo.GetStudents(ctx, classroomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get classroom students: %w", err)
	}

	return students, nil
}

func (s *classroomService) GetTeacherStats(ctx context.Context, teacherID string) (*models.TeacherStats, error) {
	classrooms, err := s.classroomRepo.CountByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to count classrooms: %w", err)
	}

	students, err := s.classroomRepo.CountStudentsByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}

	weakTopics, err := s.weakTopicRepo.CountByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to count weak topics: %w", err)
	}

	recent, err := s.submissionRepo.GetRecentByTeacher(ctx, teacherID, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent submissions: %w", err)
	}

	return &models.TeacherStats{
		Classrooms:        classrooms,
		Students:          students,
		WeakTopics:        weakTopics,
		RecentSubmissions: recent,
	}, nil
}
