package repository

import (
	"context"
	"time"

	"github.com/yukikurage/taskforge-api/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// ListByProject returns every task of a project, newest first, with
	// assignee and reporter loaded
	ListByProject(projectID uint64) ([]models.Task, error)

	// UpdateColumns writes the given columns of a task
	UpdateColumns(id uint64, columns map[string]interface{}) error

	// Delete soft deletes a task
	Delete(id uint64) error

	// CountProgress counts all tasks of a project and those that are done
	CountProgress(projectID uint64) (total, done int64, err error)

	// Stats aggregates task counts over a set of projects
	Stats(projectIDs []uint64, now, activitySince time.Time) (*TaskStats, error)
}

// GroupCount is a count of tasks sharing one value of a column.
type GroupCount struct {
	Key   string `gorm:"column:group_key"`
	Count int64
}

// ProjectStatusCount is a count of tasks per project and status.
type ProjectStatusCount struct {
	ProjectID uint64
	Status    models.TaskStatus
	Count     int64
}

// TaskStats holds the raw aggregates the dashboard is built from.
type TaskStats struct {
	Total         int64
	Overdue       int64
	ByStatus      []GroupCount
	ByPriority    []GroupCount
	ByProject     []ProjectStatusCount
	RecentCreated []time.Time
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// CreateWithOwner creates a project and the owner's membership atomically
	CreateWithOwner(project *models.Project, owner *models.ProjectMember) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// ListVisible lists projects the user owns or is a member of, or every
	// project when all is set
	ListVisible(userID uint64, all bool, preload ...string) ([]models.Project, error)

	// Update saves a project's own columns
	Update(project *models.Project) error

	// UpdateProgress stores a recomputed progress value
	UpdateProgress(id uint64, progress int) error

	// Delete deletes a project with its tasks and memberships
	Delete(id uint64) error

	// AddMember adds a member to a project
	AddMember(member *models.ProjectMember) error

	// RemoveMember removes a member from a project
	RemoveMember(projectID, userID uint64) error

	// FindMember finds a specific project member
	FindMember(projectID, userID uint64) (*models.ProjectMember, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// FindByIDs loads several users at once; missing IDs are skipped
	FindByIDs(ids []uint64) ([]models.User, error)

	// Update saves a user
	Update(user *models.User) error
}

// CommentRepository is the append-only comment log. Comments are never
// updated or deleted.
type CommentRepository interface {
	// Append stores a new comment
	Append(ctx context.Context, comment *models.Comment) error

	// ListByTask returns a task's comments, oldest first
	ListByTask(ctx context.Context, taskID uint64) ([]models.Comment, error)
}
