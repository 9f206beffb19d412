package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/hondurasarchive/backend/internal/auth/service"
	"github.com/hondurasarchive/backend/internal/models"
	"github.com/hondurasarchive/backend/internal/repositories"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the interface that wraps methods for users table data access
type UserRepository interface {
	// Method Create inserts a new user into the database.
	//
	// "user" parameter is used to create a new user, its ID and timestamps are filled in on success.
	//
	// If the email or username is taken, an error wrapping repositories.ErrDuplicate will be returned.
	Create(ctx context.Context, user *models.User) error
	// Method GetByLogin retrieves a user by email or username.
	//
	// "login" parameter is matched against the email (case-insensitive) and the username.
	//
	// If user with such email or username does not exist, repositories.ErrNotFound will be returned together with "nil" value.
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	// Method GetByID retrieves a user by ID.
	//
	// If user with such ID does not exist, repositories.ErrNotFound will be returned together with "nil" value.
	GetByID(ctx context.Context, id int64) (*models.User, error)
	// Method ExistsByEmail checks if a user with such email exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Method ExistsByUsername checks if a user with such username exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Method Count returns the number of registered users.
	Count(ctx context.Context) (int64, error)
	// Method List returns every user, newest first.
	List(ctx context.Context) ([]models.UserListItem, error)
	// Method Update changes the role and/or the password hash of a user. Nil values are left unchanged.
	//
	// If user with such ID does not exist, repositories.ErrNotFound will be returned.
	Update(ctx context.Context, id int64, role *models.Role, passwordHash *string) error
}

// authService implements AuthService
type authService struct {
	userRepo       UserRepository
	tokenGenerator *service.TokenGenerator
	logger         *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo UserRepository, tokenGenerator *service.TokenGenerator, logger *zap.Logger) *authService {
	return &authService{
		userRepo:       userRepo,
		tokenGenerator: tokenGenerator,
		logger:         logger,
	}
}

const (
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes
	maxPasswordBytes  = 72
	maxUsernameLength = 50
	maxEmailLength    = 255
	maxContactLength  = 100
)

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// dummyHash is compared against when the login is unknown so both failure paths cost one bcrypt comparison
var dummyHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	return hash
})

// Signup creates a new user.
//
// The first user of an empty store becomes admin whatever was requested. Later users are visitors
// unless an admin caller grants another role.
func (s *authService) Signup(ctx context.Context, req *models.SignupRequest, callerRole *models.Role) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	contact := strings.TrimSpace(req.Contact)
	if contact == "" {
		contact = strings.TrimSpace(req.WhatsApp)
	}

	if err := validateSignup(username, email, contact, req.Password); err != nil {
		return nil, err
	}

	role, err := s.resolveSignupRole(ctx, req.Role, callerRole)
	if err != nil {
		return nil, err
	}

	emailExists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if emailExists {
		return nil, fmt.Errorf("%w: email is already registered", ErrDuplicateUser)
	}

	usernameExists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if usernameExists {
		return nil, fmt.Errorf("%w: username is already taken", ErrDuplicateUser)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(passwordHash),
		Contact:      contact,
		Role:         role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent signup for the same email or username
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email or username is already registered", ErrDuplicateUser)
		}
		return nil, err
	}

	s.logger.Info("user signed up", zap.Int64("userId", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// resolveSignupRole applies the signup role policy
func (s *authService) resolveSignupRole(ctx context.Context, requested string, callerRole *models.Role) (models.Role, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to count users: %w", err)
	}
	if count == 0 {
		return models.RoleAdmin, nil
	}

	requested = strings.TrimSpace(requested)
	if requested == "" {
		return models.RoleVisitor, nil
	}

	role, ok := models.ParseRole(requested)
	if !ok {
		return "", validationError("invalid role %q", requested)
	}
	if role == models.RoleVisitor {
		return role, nil
	}
	if callerRole == nil || *callerRole != models.RoleAdmin {
		return "", fmt.Errorf("%w: only an admin can grant the %s role", ErrForbidden, role)
	}

	return role, nil
}

func validateSignup(username, email, contact, password string) error {
	if username == "" {
		return validationError("username is required")
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return validationError("username must be at most %d characters long", maxUsernameLength)
	}
	if strings.Contains(username, "@") {
		return validationError("username must not contain '@'")
	}
	if !emailRegex.MatchString(email) {
		return validationError("invalid email format")
	}
	if len(email) > maxEmailLength {
		return validationError("email must be at most %d characters long", maxEmailLength)
	}
	if utf8.RuneCountInString(contact) > maxContactLength {
		return validationError("contact must be at most %d characters long", maxContactLength)
	}
	return validatePassword(password)
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return validationError("password must be at least %d characters long", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return validationError("password must be at most %d bytes long", maxPasswordBytes)
	}
	return nil
}

// Login authenticates a user by username or email and issues an access token
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResult, error) {
	login := req.Identifier()
	if login == "" || req.Password == "" {
		return nil, validationError("login and password are required")
	}

	user, err := s.userRepo.GetByLogin(ctx, login)
	if errors.Is(err, repositories.ErrNotFound) {
		// Spend the same time as a wrong password so unknown logins cannot be told apart
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(req.Password))
		return nil, ErrInvalidCredential
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredential
	}

	token, err := s.tokenGenerator.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.LoginResult{
		User: models.UserDescriptor{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role,
		},
		Token: token,
	}, nil
}
