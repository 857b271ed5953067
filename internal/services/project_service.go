package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/taskforge-api/internal/constants"
	apierrors "github.com/yukikurage/taskforge-api/internal/errors"
	"github.com/yukikurage/taskforge-api/internal/models"
	"github.com/yukikurage/taskforge-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrAlreadyMember     = apierrors.ConflictError("User is already a project member")
	ErrCannotRemoveOwner = apierrors.ValidationError("Cannot remove the project owner")
	ErrMemberNotFound    = apierrors.NotFoundError("Member not found")
)

// ProjectService handles project and membership business logic
type ProjectService struct {
	store *repository.Store
	now   func() time.Time
}

// NewProjectService creates a new ProjectService
func NewProjectService(store *repository.Store) *ProjectService {
	return &ProjectService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Name        string               `json:"name" validate:"required,max=100"`
	Description string               `json:"description" validate:"max=500"`
	Status      models.ProjectStatus `json:"status" validate:"omitempty,project_status"`
	Deadline    *time.Time           `json:"deadline"`
	Tags        []string             `json:"tags" validate:"omitempty,dive,required,max=30"`
	Color       string               `json:"color" validate:"omitempty,hexcolor"`
}

// UpdateProjectInput represents input for updating a project
type UpdateProjectInput struct {
	Name        *string               `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string               `json:"description" validate:"omitempty,max=500"`
	Status      *models.ProjectStatus `json:"status" validate:"omitempty,project_status"`
	Deadline    *time.Time            `json:"deadline"`
	Tags        *[]string             `json:"tags" validate:"omitempty,dive,required,max=30"`
	Color       *string               `json:"color" validate:"omitempty,hexcolor"`
}

// AddMemberInput represents input for adding a member by email
type AddMemberInput struct {
	Email string       `json:"email" validate:"required,email"`
	Role  *models.Role `json:"role" validate:"omitempty,role"`
}

// List returns the projects visible to user, everything for an Admin
func (s *ProjectService) List(user *models.User) ([]models.Project, error) {
	projects, err := s.store.Projects.ListVisible(user.ID, user.Role == models.RoleAdmin, "Owner", "Members.User")
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// Create creates a project owned by user. The owner is also enrolled as a
// member with their global role.
func (s *ProjectService) Create(user *models.User, input CreateProjectInput) (*models.Project, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:        input.Name,
		Description: input.Description,
		OwnerID:     user.ID,
		Status:      input.Status,
		Deadline:    utc(input.Deadline),
		Tags:        input.Tags,
		Color:       input.Color,
	}
	if project.Status == "" {
		project.Status = models.ProjectStatusActive
	}
	if project.Color == "" {
		project.Color = constants.DefaultProjectColor
	}

	owner := &models.ProjectMember{
		UserID:   user.ID,
		Role:     user.Role,
		JoinedAt: s.now(),
	}
	if err := s.store.Projects.CreateWithOwner(project, owner); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.Get(project.ID)
}

// Get loads a project with its owner and members
func (s *ProjectService) Get(projectID uint64) (*models.Project, error) {
	project, err := s.store.Projects.FindByID(projectID, "Owner", "Members.User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// Update changes the project's own fields. Progress is never client-set.
func (s *ProjectService) Update(projectID uint64, input UpdateProjectInput) (*models.Project, error) {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		input.Name = &name
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	project, err := s.Get(projectID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		project.Status = *input.Status
	}
	if input.Deadline != nil {
		project.Deadline = utc(input.Deadline)
	}
	if input.Tags != nil {
		project.Tags = *input.Tags
	}
	if input.Color != nil {
		project.Color = *input.Color
	}

	if err := s.store.Projects.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return project, nil
}

// Delete removes a project with its tasks and memberships
func (s *ProjectService) Delete(projectID uint64) error {
	if _, err := s.Get(projectID); err != nil {
		return err
	}
	if err := s.store.Projects.Delete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// AddMember enrolls the user with the given email, as Member by default
func (s *ProjectService) AddMember(projectID uint64, input AddMemberInput) (*models.Project, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if _, err := s.Get(projectID); err != nil {
		return nil, err
	}

	user, err := s.store.Users.FindByEmail(input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if _, err := s.store.Projects.FindMember(projectID, user.ID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	role := models.RoleMember
	if input.Role != nil {
		role = *input.Role
	}

	member := &models.ProjectMember{
		ProjectID: projectID,
		UserID:    user.ID,
		Role:      role,
		JoinedAt:  s.now(),
	}
	if err := s.store.Projects.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return s.Get(projectID)
}

// RemoveMember removes a member. The owner can never be removed.
func (s *ProjectService) RemoveMember(projectID, userID uint64) (*models.Project, error) {
	project, err := s.Get(projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID == userID {
		return nil, ErrCannotRemoveOwner
	}

	if _, err := s.store.Projects.FindMember(projectID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}

	if err := s.store.Projects.RemoveMember(projectID, userID); err != nil {
		return nil, fmt.Errorf("failed to remove member: %w", err)
	}

	return s.Get(projectID)
}
