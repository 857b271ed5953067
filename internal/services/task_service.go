package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/taskforge-api/internal/constants"
	apierrors "github.com/yukikurage/taskforge-api/internal/errors"
	"github.com/yukikurage/taskforge-api/internal/models"
	"github.com/yukikurage/taskforge-api/internal/permission"
	"github.com/yukikurage/taskforge-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = apierrors.NotFoundError("Task not found")
	ErrAssigneeNotMember      = apierrors.ValidationError("Assignee must be a member of the project")
	ErrAIServiceNotConfigured = apierrors.ServiceUnavailableError("AI service is not configured")
)

// TaskService handles task business logic
type TaskService struct {
	store    *repository.Store
	policy   *permission.Policy
	progress ProgressRecalculator
	drafter  TaskDrafter
	now      func() time.Time
	newID    func() string
}

// NewTaskService creates a new TaskService. drafter may be nil, in which
// case task drafting reports the AI service as unavailable.
func NewTaskService(store *repository.Store, policy *permission.Policy, drafter TaskDrafter) *TaskService {
	return &TaskService{
		store:   store,
		policy:  policy,
		drafter: drafter,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string              `json:"title" validate:"required,max=150"`
	Description string              `json:"description" validate:"max=2000"`
	Status      models.TaskStatus   `json:"status" validate:"omitempty,task_status"`
	Priority    models.TaskPriority `json:"priority" validate:"omitempty,task_priority"`
	AssigneeID  *uint64             `json:"assignee"`
	DueDate     *time.Time          `json:"dueDate"`
	Tags        []string            `json:"tags" validate:"omitempty,dive,required,max=30"`
	Order       int                 `json:"order" validate:"min=0"`
}

// UpdateTaskInput holds the fields of an authorized update. A nil pointer
// leaves the field alone; ClearAssignee and ClearDueDate record an explicit
// JSON null.
type UpdateTaskInput struct {
	Title         *string              `json:"title" validate:"omitempty,min=1,max=150"`
	Description   *string              `json:"description" validate:"omitempty,max=2000"`
	Status        *models.TaskStatus   `json:"status" validate:"omitempty,task_status"`
	Priority      *models.TaskPriority `json:"priority" validate:"omitempty,task_priority"`
	AssigneeID    *uint64              `json:"assignee"`
	DueDate       *time.Time           `json:"dueDate"`
	Tags          *[]string            `json:"tags" validate:"omitempty,dive,required,max=30"`
	ClearAssignee bool                 `json:"-"`
	ClearDueDate  bool                 `json:"-"`
}

// AddCommentInput represents input for commenting on a task
type AddCommentInput struct {
	Content string `json:"content" validate:"required,max=1000"`
}

// GenerateTasksInput is free text to draft tasks from
type GenerateTasksInput struct {
	Text string `json:"text" validate:"required,max=10000"`
}

// Create creates a task in project with user as reporter. project must
// have its members loaded.
func (s *TaskService) Create(user *models.User, project *models.Project, input CreateTaskInput) (*models.Task, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.AssigneeID != nil && !isProjectMember(project, *input.AssigneeID) {
		return nil, ErrAssigneeNotMember
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		ProjectID:   project.ID,
		AssigneeID:  input.AssigneeID,
		ReporterID:  user.ID,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     utc(input.DueDate),
		Tags:        input.Tags,
		Order:       input.Order,
	}
	if task.Status == "" {
		task.Status = models.TaskStatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.TaskPriorityMedium
	}

	err := s.store.Transaction(func(tx *repository.Store) error {
		if err := tx.Tasks.Create(task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		_, err := s.progress.Recalculate(tx, project.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.getTask(task.ID, "Assignee", "Reporter")
}

// Board lists a project's tasks, newest first
func (s *TaskService) Board(projectID uint64) ([]models.Task, error) {
	tasks, err := s.store.Tasks.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Update applies a partial update given as the raw JSON object of the
// request. The set of keys decides authorization before any value is
// looked at; only the permitted fields are then decoded and written.
func (s *TaskService) Update(user *models.User, taskID uint64, body map[string]json.RawMessage) (*models.Task, error) {
	task, err := s.getTask(taskID)
	if err != nil {
		return nil, err
	}

	project, rel, err := resolveMembership(s.store.Projects, user, task.ProjectID)
	if err != nil {
		return nil, err
	}

	requested := make([]string, 0, len(body))
	for key := range body {
		requested = append(requested, key)
	}

	fields, err := s.policy.AuthorizeUpdate(user, task, rel, requested)
	if err != nil {
		return nil, err
	}

	input, err := decodeTaskUpdate(body, fields)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		input.Title = &title
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.AssigneeID != nil && !isProjectMember(project, *input.AssigneeID) {
		return nil, ErrAssigneeNotMember
	}

	columns := input.columns()
	if len(columns) > 0 {
		err = s.store.Transaction(func(tx *repository.Store) error {
			if err := tx.Tasks.UpdateColumns(task.ID, columns); err != nil {
				return fmt.Errorf("failed to update task: %w", err)
			}
			_, err := s.progress.Recalculate(tx, task.ProjectID)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	return s.getTask(task.ID, "Assignee", "Reporter")
}

// Delete removes a task if user may delete it
func (s *TaskService) Delete(user *models.User, taskID uint64) error {
	task, err := s.getTask(taskID)
	if err != nil {
		return err
	}

	_, rel, err := resolveMembership(s.store.Projects, user, task.ProjectID)
	if err != nil {
		return err
	}

	if err := s.policy.AuthorizeDelete(user, task, rel); err != nil {
		return err
	}

	return s.store.Transaction(func(tx *repository.Store) error {
		if err := tx.Tasks.Delete(task.ID); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		_, err := s.progress.Recalculate(tx, task.ProjectID)
		return err
	})
}

// AddComment appends a comment to a task the user has project access to
func (s *TaskService) AddComment(ctx context.Context, user *models.User, taskID uint64, input AddCommentInput) (*models.Comment, error) {
	input.Content = strings.TrimSpace(input.Content)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	task, err := s.requireTaskAccess(user, taskID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:        s.newID(),
		TaskID:    task.ID,
		AuthorID:  user.ID,
		Content:   input.Content,
		CreatedAt: s.now(),
	}
	if err := s.store.Comments.Append(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to store comment: %w", err)
	}
	return comment, nil
}

// ListComments returns a task's comments, oldest first, with their authors
// keyed by user ID
func (s *TaskService) ListComments(ctx context.Context, user *models.User, taskID uint64) ([]models.Comment, map[uint64]models.User, error) {
	task, err := s.requireTaskAccess(user, taskID)
	if err != nil {
		return nil, nil, err
	}

	comments, err := s.store.Comments.ListByTask(ctx, task.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list comments: %w", err)
	}

	ids := make([]uint64, 0, len(comments))
	seen := make(map[uint64]struct{}, len(comments))
	for _, c := range comments {
		if _, ok := seen[c.AuthorID]; ok {
			continue
		}
		seen[c.AuthorID] = struct{}{}
		ids = append(ids, c.AuthorID)
	}

	users, err := s.store.Users.FindByIDs(ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load comment authors: %w", err)
	}
	authors := make(map[uint64]models.User, len(users))
	for _, u := range users {
		authors[u.ID] = u
	}

	return comments, authors, nil
}

// GenerateTasks asks the drafter for task suggestions. Nothing is stored.
func (s *TaskService) GenerateTasks(ctx context.Context, input GenerateTasksInput) ([]GeneratedTask, error) {
	if s.drafter == nil {
		return nil, ErrAIServiceNotConfigured
	}

	input.Text = strings.TrimSpace(input.Text)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	drafts, err := s.drafter.DraftTasks(ctx, input.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to draft tasks: %w", err)
	}

	out := make([]GeneratedTask, 0, len(drafts))
	for _, d := range drafts {
		d.Title = strings.TrimSpace(d.Title)
		if d.Title == "" {
			continue
		}
		if len([]rune(d.Title)) > constants.MaxTaskTitleLength {
			d.Title = string([]rune(d.Title)[:constants.MaxTaskTitleLength])
		}
		if !d.Priority.Valid() {
			d.Priority = models.TaskPriorityMedium
		}
		out = append(out, d)
		if len(out) == constants.MaxAIGeneratedTasks {
			break
		}
	}
	return out, nil
}

func (s *TaskService) getTask(id uint64, preload ...string) (*models.Task, error) {
	task, err := s.store.Tasks.FindByID(id, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) requireTaskAccess(user *models.User, taskID uint64) (*models.Task, error) {
	task, err := s.getTask(taskID)
	if err != nil {
		return nil, err
	}

	_, rel, err := resolveMembership(s.store.Projects, user, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if !rel.HasAccess() {
		return nil, ErrNoProjectAccess
	}
	return task, nil
}

func isProjectMember(project *models.Project, userID uint64) bool {
	if project.OwnerID == userID {
		return true
	}
	for _, m := range project.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// decodeTaskUpdate decodes only the permitted fields of body.
func decodeTaskUpdate(body map[string]json.RawMessage, fields []permission.Field) (UpdateTaskInput, error) {
	var input UpdateTaskInput

	for _, f := range fields {
		raw := body[string(f)]
		isNull := strings.TrimSpace(string(raw)) == "null"

		var err error
		switch f {
		case permission.FieldTitle:
			err = decodeOptional(raw, isNull, &input.Title)
		case permission.FieldDescription:
			err = decodeOptional(raw, isNull, &input.Description)
		case permission.FieldStatus:
			err = decodeOptional(raw, isNull, &input.Status)
		case permission.FieldPriority:
			err = decodeOptional(raw, isNull, &input.Priority)
		case permission.FieldTags:
			err = decodeOptional(raw, isNull, &input.Tags)
		case permission.FieldAssignee:
			input.ClearAssignee = isNull
			if !isNull {
				err = json.Unmarshal(raw, &input.AssigneeID)
			}
		case permission.FieldDueDate:
			input.ClearDueDate = isNull
			if !isNull {
				err = json.Unmarshal(raw, &input.DueDate)
			}
		}
		if err != nil {
			return input, apierrors.ValidationError(fmt.Sprintf("Invalid value for %s", f))
		}
	}

	return input, nil
}

// decodeOptional rejects null for fields that cannot be cleared.
func decodeOptional[T any](raw json.RawMessage, isNull bool, dst **T) error {
	if isNull {
		return errors.New("null not allowed")
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}

func (in UpdateTaskInput) columns() map[string]interface{} {
	columns := make(map[string]interface{})
	if in.Title != nil {
		columns["title"] = *in.Title
	}
	if in.Description != nil {
		columns["description"] = *in.Description
	}
	if in.Status != nil {
		columns["status"] = *in.Status
	}
	if in.Priority != nil {
		columns["priority"] = *in.Priority
	}
	if in.ClearAssignee {
		columns["assignee_id"] = nil
	} else if in.AssigneeID != nil {
		columns["assignee_id"] = *in.AssigneeID
	}
	if in.ClearDueDate {
		columns["due_date"] = nil
	} else if in.DueDate != nil {
		columns["due_date"] = *utc(in.DueDate)
	}
	if in.Tags != nil {
		columns["tags"] = models.TagList(*in.Tags)
	}
	return columns
}

// utc returns t in UTC. Stored instants always carry the UTC offset.
func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
