package dto

import (
	"time"

	"github.com/yukikurage/taskforge-api/internal/models"
)

// MemberDTO represents a project membership
type MemberDTO struct {
	UserID   uint64          `json:"userId"`
	User     *UserSummaryDTO `json:"user,omitempty"`
	Role     models.Role     `json:"role"`
	JoinedAt time.Time       `json:"joinedAt"`
}

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	OwnerID     uint64               `json:"ownerId"`
	Owner       *UserSummaryDTO      `json:"owner,omitempty"`
	Members     []MemberDTO          `json:"members"`
	Status      models.ProjectStatus `json:"status"`
	Deadline    *time.Time           `json:"deadline"`
	Progress    int                  `json:"progress"`
	Tags        []string             `json:"tags"`
	Color       string               `json:"color"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// ToMemberDTO converts a membership to DTO
func ToMemberDTO(member models.ProjectMember) MemberDTO {
	return MemberDTO{
		UserID:   member.UserID,
		User:     summaryIfLoaded(member.User),
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	members := make([]MemberDTO, len(project.Members))
	for i, m := range project.Members {
		members[i] = ToMemberDTO(m)
	}

	return ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		OwnerID:     project.OwnerID,
		Owner:       summaryIfLoaded(project.Owner),
		Members:     members,
		Status:      project.Status,
		Deadline:    project.Deadline,
		Progress:    project.Progress,
		Tags:        nonNilTags(project.Tags),
		Color:       project.Color,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

// ToProjectDTOs converts a slice of projects
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	out := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		out[i] = ToProjectDTO(p)
	}
	return out
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
