package services

import (
	"errors"
	"fmt"

	apierrors "github.com/yukikurage/taskforge-api/internal/errors"
	"github.com/yukikurage/taskforge-api/internal/models"
	"github.com/yukikurage/taskforge-api/internal/permission"
	"github.com/yukikurage/taskforge-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound = apierrors.NotFoundError("Project not found")
	ErrNoProjectAccess = apierrors.ForbiddenError("You do not have access to this project")
)

// MembershipService loads projects together with the caller's relationship
// to them.
type MembershipService struct {
	projectRepo repository.ProjectRepository
}

// NewMembershipService creates a new MembershipService
func NewMembershipService(projectRepo repository.ProjectRepository) *MembershipService {
	return &MembershipService{projectRepo: projectRepo}
}

// Resolve loads the project with its members and reports what user is to
// it. A missing project yields ErrProjectNotFound.
func (s *MembershipService) Resolve(user *models.User, projectID uint64) (*models.Project, permission.Relationship, error) {
	return resolveMembership(s.projectRepo, user, projectID)
}

// RequireAccess is Resolve plus the access check: owner, member or Admin.
func (s *MembershipService) RequireAccess(user *models.User, projectID uint64) (*models.Project, permission.Relationship, error) {
	project, rel, err := s.Resolve(user, projectID)
	if err != nil {
		return nil, rel, err
	}
	if !rel.HasAccess() {
		return nil, rel, ErrNoProjectAccess
	}
	return project, rel, nil
}

func resolveMembership(projects repository.ProjectRepository, user *models.User, projectID uint64) (*models.Project, permission.Relationship, error) {
	project, err := projects.FindByID(projectID, "Members")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, permission.Relationship{}, ErrProjectNotFound
		}
		return nil, permission.Relationship{}, fmt.Errorf("failed to find project: %w", err)
	}
	return project, permission.Resolve(user, project), nil
}
