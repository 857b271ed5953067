package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskforge-api/internal/dto"
	apierrors "github.com/yukikurage/taskforge-api/internal/errors"
	"github.com/yukikurage/taskforge-api/internal/models"
	"github.com/yukikurage/taskforge-api/internal/services"
)

// TaskHandler serves board, task and comment endpoints.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// GetBoard returns a project's tasks, flat and grouped by status.
func (h *TaskHandler) GetBoard(c *gin.Context) {
	project, ok := currentProject(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.Board(project.ID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, "Tasks fetched", dto.ToBoardDTO(tasks))
}

// CreateTask adds a task to the project.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	project, ok := currentProject(c)
	if !ok {
		return
	}

	var req services.CreateTaskInput
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.Create(user, project, req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusCreated, "Task created", gin.H{"task": dto.ToTaskDTO(*task)})
}

// GenerateTasks drafts tasks from free text. Drafts are not saved.
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	if _, ok := currentProject(c); !ok {
		return
	}

	var req services.GenerateTasksInput
	if !bindJSON(c, &req) {
		return
	}

	drafts, err := h.taskService.GenerateTasks(c.Request.Context(), req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, "Tasks generated", gin.H{"tasks": drafts, "count": len(drafts)})
}

// UpdateTask applies a partial update. The raw body keys decide which
// fields the caller asked to change.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	taskID, ok := parseIDParam(c, "id", "task")
	if !ok {
		return
	}

	var body map[string]json.RawMessage
	if !bindJSON(c, &body) {
		return
	}

	task, err := h.taskService.Update(user, taskID, body)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, "Task updated", gin.H{"task": dto.ToTaskDTO(*task)})
}

// DeleteTask removes a task.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	taskID, ok := parseIDParam(c, "id", "task")
	if !ok {
		return
	}

	if err := h.taskService.Delete(user, taskID); err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, "Task deleted", nil)
}

// AddComment appends a comment to a task.
func (h *TaskHandler) AddComment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	taskID, ok := parseIDParam(c, "id", "task")
	if !ok {
		return
	}

	var req services.AddCommentInput
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.taskService.AddComment(c.Request.Context(), user, taskID, req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusCreated, "Comment added", gin.H{"comment": dto.ToCommentDTO(*comment, user)})
}

// ListComments returns a task's comments, oldest first.
func (h *TaskHandler) ListComments(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	taskID, ok := parseIDParam(c, "id", "task")
	if !ok {
		return
	}

	comments, authors, err := h.taskService.ListComments(c.Request.Context(), user, taskID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	commentDTOs := make([]dto.CommentDTO, 0, len(comments))
	for _, comment := range comments {
		var author *models.User
		if u, ok := authors[comment.AuthorID]; ok {
			author = &u
		}
		commentDTOs = append(commentDTOs, dto.ToCommentDTO(comment, author))
	}
	respond(c, http.StatusOK, "Comments fetched", gin.H{"comments": commentDTOs, "count": len(commentDTOs)})
}
