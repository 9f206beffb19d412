package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/hondurasarchive/backend/internal/models"
	"github.com/hondurasarchive/backend/internal/repositories"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// adminService implements AdminService
type adminService struct {
	userRepo UserRepository
	logger   *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(userRepo UserRepository, logger *zap.Logger) *adminService {
	return &adminService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// ListUsers returns every user, newest first
func (s *adminService) ListUsers(ctx context.Context) ([]models.UserListItem, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateUser changes the role and/or password of a user
func (s *adminService) UpdateUser(ctx context.Context, id int64, req *models.UpdateUserRequest) (*models.User, error) {
	if req.Role == nil && req.Password == nil {
		return nil, validationError("nothing to update")
	}

	var role *models.Role
	if req.Role != nil {
		parsed, ok := models.ParseRole(*req.Role)
		if !ok {
			return nil, validationError("invalid role %q", *req.Role)
		}
		role = &parsed
	}

	var passwordHash *string
	if req.Password != nil {
		if err := validatePassword(*req.Password); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		hashed := string(hash)
		passwordHash = &hashed
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.userRepo.Update(ctx, id, role, passwordHash); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if role != nil {
		user.Role = *role
	}
	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}

	s.logger.Info("user updated",
		zap.Int64("userId", id),
		zap.String("role", string(user.Role)),
		zap.Bool("passwordChanged", passwordHash != nil),
	)
	return user, nil
}
