package dto

import (
	"time"

	"github.com/yukikurage/taskforge-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	ProjectID   uint64              `json:"projectId"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	AssigneeID  *uint64             `json:"assigneeId"`
	Assignee    *UserSummaryDTO     `json:"assignee"`
	ReporterID  uint64              `json:"reporterId"`
	Reporter    *UserSummaryDTO     `json:"reporter,omitempty"`
	DueDate     *time.Time          `json:"dueDate"`
	Tags        []string            `json:"tags"`
	Order       int                 `json:"order"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// BoardDTO is a project's tasks as a flat list and grouped by status
type BoardDTO struct {
	Tasks   []TaskDTO                       `json:"tasks"`
	Grouped map[models.TaskStatus][]TaskDTO `json:"grouped"`
	Total   int                             `json:"total"`
}

// CommentDTO represents a comment in API responses
type CommentDTO struct {
	ID        string          `json:"id"`
	TaskID    uint64          `json:"taskId"`
	AuthorID  uint64          `json:"authorId"`
	Author    *UserSummaryDTO `json:"author,omitempty"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		ProjectID:   task.ProjectID,
		Status:      task.Status,
		Priority:    task.Priority,
		AssigneeID:  task.AssigneeID,
		ReporterID:  task.ReporterID,
		Reporter:    summaryIfLoaded(task.Reporter),
		DueDate:     task.DueDate,
		Tags:        nonNilTags(task.Tags),
		Order:       task.Order,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	// Include assignee if preloaded
	if task.Assignee != nil {
		dto.Assignee = summaryIfLoaded(*task.Assignee)
	}

	return dto
}

// ToBoardDTO groups tasks into one column per workflow status. Every
// column is present even when empty.
func ToBoardDTO(tasks []models.Task) BoardDTO {
	board := BoardDTO{
		Tasks:   make([]TaskDTO, len(tasks)),
		Grouped: make(map[models.TaskStatus][]TaskDTO, len(models.TaskStatuses)),
		Total:   len(tasks),
	}
	for _, status := range models.TaskStatuses {
		board.Grouped[status] = []TaskDTO{}
	}

	for i, task := range tasks {
		item := ToTaskDTO(task)
		board.Tasks[i] = item
		if column, ok := board.Grouped[task.Status]; ok {
			board.Grouped[task.Status] = append(column, item)
		}
	}

	return board
}

// ToCommentDTO converts a comment, attaching its author when known
func ToCommentDTO(comment models.Comment, author *models.User) CommentDTO {
	dto := CommentDTO{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		AuthorID:  comment.AuthorID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
	if author != nil {
		dto.Author = summaryIfLoaded(*author)
	}
	return dto
}
