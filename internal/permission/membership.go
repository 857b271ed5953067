package permission

import "github.com/yukikurage/taskforge-api/internal/models"

// Relationship is what a user is to a project. Facts are reported as
// stored; the Admin override is applied by HasAccess, not baked in.
type Relationship struct {
	IsOwner     bool
	ProjectRole *models.Role
	GlobalRole  models.Role
}

// Resolve computes the relationship of user to project. project.Members
// must be loaded.
func Resolve(user *models.User, project *models.Project) Relationship {
	rel := Relationship{
		IsOwner:    project.OwnerID == user.ID,
		GlobalRole: user.Role,
	}
	for _, m := range project.Members {
		if m.UserID == user.ID {
			role := m.Role
			rel.ProjectRole = &role
			break
		}
	}
	return rel
}

// IsMember reports whether the user owns or is listed on the project.
func (r Relationship) IsMember() bool {
	return r.IsOwner || r.ProjectRole != nil
}

// HasAccess reports whether the user may see and work in the project.
func (r Relationship) HasAccess() bool {
	return r.IsMember() || r.GlobalRole == models.RoleAdmin
}

// HasProjectAuthority reports whether the user runs the project: owner,
// or a Manager/Admin project role.
func (r Relationship) HasProjectAuthority() bool {
	if r.IsOwner {
		return true
	}
	if r.ProjectRole == nil {
		return false
	}
	return *r.ProjectRole == models.RoleManager || *r.ProjectRole == models.RoleAdmin
}
