package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskforge-api/internal/dto"
	apierrors "github.com/yukikurage/taskforge-api/internal/errors"
	"github.com/yukikurage/taskforge-api/internal/services"
)

// ProjectHandler serves project and membership endpoints.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// ListProjects returns every project visible to the user.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	projects, err := h.projectService.List(user)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	projectDTOs := dto.ToProjectDTOs(projects)
	respond(c, http.StatusOK, "Projects fetched", gin.H{"projects": projectDTOs, "count": len(projectDTOs)})
}

// CreateProject creates a project owned by the user.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.CreateProjectInput
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Create(user, req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusCreated, "Project created", gin.H{"project": dto.ToProjectDTO(*project)})
}

// GetProject returns a single project with its members.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	current, ok := currentProject(c)
	if !ok {
		return
	}

	project, err := h.projectService.Get(current.ID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, "Project fetched", gin.H{"project": dto.ToProjectDTO(*project)})
}

// UpdateProject applies a partial update.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	current, ok := currentProject(c)
	if !ok {
		return
	}

	var req services.UpdateProjectInput
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Update(current.ID, req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, "Project updated", gin.H{"project": dto.ToProjectDTO(*project)})
}

// DeleteProject removes a project and its tasks.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id", "project")
	if !ok {
		return
	}

	if err := h.projectService.Delete(projectID); err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, "Project deleted", nil)
}

// AddMember enrolls a user by email.
func (h *ProjectHandler) AddMember(c *gin.Context) {
	current, ok := currentProject(c)
	if !ok {
		return
	}

	var req services.AddMemberInput
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.AddMember(current.ID, req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusCreated, "Member added", gin.H{"project": dto.ToProjectDTO(*project)})
}

// RemoveMember removes a non-owner member.
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	current, ok := currentProject(c)
	if !ok {
		return
	}

	userID, ok := parseIDParam(c, "userId", "user")
	if !ok {
		return
	}

	project, err := h.projectService.RemoveMember(current.ID, userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, "Member removed", gin.H{"project": dto.ToProjectDTO(*project)})
}
