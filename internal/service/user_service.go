package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/classmentor/classroom-service/internal/models"
	"github.com/classmentor/classroom-service/internal/repository"
)

type UserService interface {
	RegisterUser(ctx context.Context, fullName, email, role string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

func NewUserService(userRepo repository.UserRepository, logger zerolog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *userService) RegisterUser(ctx context.Context, fullName, email, role string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" || email == "" {
		return nil, errors.New("full name and email are required")
	}
	if role != models.RoleTeacher && role != models.RoleStudent {
		return nil, errors.New("role must be teacher or student")
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, errors.New("email is already registered")
	}

	user := &models.User{
		ID:        uuid.New().String(),
		FullName:  fullName,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("role", user.Role).
		Msg("User registered")

	return user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	return user, nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	return user, nil
}
