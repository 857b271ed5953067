package services

import (
	"errors"
	"fmt"
	"strings"

	apierrors "github.com/yukikurage/taskforge-api/internal/errors"
	"github.com/yukikurage/taskforge-api/internal/models"
	"github.com/yukikurage/taskforge-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = apierrors.ConflictError("User with this email already exists")
	ErrEmailInUse           = apierrors.ConflictError("Email is already in use")
	ErrInvalidCredentials   = apierrors.UnauthorizedError("Invalid email or password")
	ErrAccountDeactivated   = apierrors.ForbiddenError("Account has been deactivated.")
	ErrUserNotFound         = apierrors.NotFoundError("User not found")
	ErrIncorrectPassword    = apierrors.ValidationError("Current password is incorrect")
	ErrNoLocalPassword      = apierrors.ValidationError("This account signs in through an external provider")
	ErrCannotModifySelf     = apierrors.ValidationError("You cannot change your own role or status")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo            repository.UserRepository
	bootstrapAdminEmail string
}

// NewAuthService creates a new AuthService. A user registering with
// bootstrapAdminEmail is made Admin; every other registration is a Member.
func NewAuthService(userRepo repository.UserRepository, bootstrapAdminEmail string) *AuthService {
	return &AuthService{
		userRepo:            userRepo,
		bootstrapAdminEmail: normalizeEmail(bootstrapAdminEmail),
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Register creates a new local user.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(input.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	role := models.RoleMember
	if s.bootstrapAdminEmail != "" && input.Email == s.bootstrapAdminEmail {
		role = models.RoleAdmin
	}

	user := &models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         role,
		IsActive:     true,
		Provider:     models.ProviderLocal,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// UpdateProfileInput carries the profile fields a user may change.
type UpdateProfileInput struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// UpdateProfile changes the user's own name or email.
func (s *AuthService) UpdateProfile(userID uint64, input UpdateProfileInput) (*models.User, error) {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		input.Name = &name
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		input.Email = &email
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil && *input.Email != user.Email {
		existing, err := s.userRepo.FindByEmail(*input.Email)
		if err == nil && existing.ID != user.ID {
			return nil, ErrEmailInUse
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		user.Email = *input.Email
	}
	if input.Name != nil {
		user.Name = *input.Name
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// ChangePasswordInput carries the current and the new password.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// ChangePassword replaces the user's password after checking the current one.
func (s *AuthService) ChangePassword(userID uint64, input ChangePasswordInput) error {
	if err := validateInput(input); err != nil {
		return err
	}

	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if user.PasswordHash == "" {
		return ErrNoLocalPassword
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return ErrIncorrectPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrFailedToHashPassword
	}

	user.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}

// AdminUpdateUserInput carries the account fields only an Admin may change.
type AdminUpdateUserInput struct {
	Role     *models.Role `json:"role" validate:"omitempty,role"`
	IsActive *bool        `json:"isActive"`
}

// AdminUpdateUser changes another user's global role or active flag.
func (s *AuthService) AdminUpdateUser(actorID, targetID uint64, input AdminUpdateUserInput) (*models.User, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if actorID == targetID {
		return nil, ErrCannotModifySelf
	}

	user, err := s.GetUser(targetID)
	if err != nil {
		return nil, err
	}

	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
