package services

import (
	"context"
	"errors"
	"strings"
	"time"

	apierrors "github.com/yukikurage/taskforge-api/internal/errors"
	"github.com/yukikurage/taskforge-api/internal/models"
	"github.com/yukikurage/taskforge-api/internal/permission"
	"github.com/yukikurage/taskforge-api/internal/repository"
)

func (suite *ServiceTestSuite) TestCreateTask_Defaults() {
	owner := suite.createUser("owner@example.com", models.RoleMember)
	project := suite.createProject(owner)

	task, err := suite.tasks.Create(owner, project, CreateTaskInput{Title: "  Write docs  "})
	suite.Require().NoError(err)

	suite.Equal("Write docs", task.Title)
	suite.Equal(models.TaskStatusTodo, task.Status)
	suite.Equal(models.TaskPriorityMedium, task.Priority)
	suite.Equal(owner.ID, task.ReporterID)
	suite.Equal(owner.ID, task.Reporter.ID)
	suite.Nil(task.AssigneeID)
}

func (suite *ServiceTestSuite) TestCreateTask_Validation() {
	owner := suite.createUser("owner@example.com", models.RoleMember)
	project := suite.createProject(owner)

	_, err := suite.tasks.Create(owner, project, CreateTaskInput{Title: "   "})
	var apiErr *apierrors.APIError
	suite.Require().ErrorAs(err, &apiErr)
	suite.Equal(apierrors.ErrCodeValidation, apiErr.Code)
	suite.Equal("title is required", apiErr.Message)

	_, err = suite.tasks.Create(owner, project, CreateTaskInput{Title: strings.Repeat("x", 151)})
	suite.Require().ErrorAs(err, &apiErr)
	suite.Equal(apierrors.ErrCodeValidation, apiErr.Code)

	_, err = suite.tasks.Create(owner, project, CreateTaskInput{Title: "t", Status: "Blocked"})
	suite.Require().ErrorAs(err, &apiErr)
	suite.Contains(apiErr.Message, "status must be one of")
}

func (suite *ServiceTestSuite) TestCreateTask_AssigneeMustBeMember() {
	owner := suite.createUser("owner@example.com", models.RoleMember)
	outsider := suite.createUser("outsider@example.com", models.RoleMember)
	project := suite.createProject(owner)

	_, err := suite.tasks.Create(owner, project, CreateTaskInput{Title: "t", AssigneeID: &outsider.ID})
	suite.ErrorIs(err, ErrAssigneeNotMember)
}

func (suite *ServiceTestSuite) TestUpdateTask_AssigneeMayChangeStatus() {
	owner := suite.createUser("owner@example.com", models.RoleMember)
	dev := suite.createUser("dev@example.com", models.RoleMember)
	project := suite.createProject(owner, dev)
	task := suite.createTask(owner, project, models.TaskStatusTodo, dev)

	updated, err := suite.tasks.Update(dev, task.ID, suite.body(map[string]interface{}{"status": "Done"}))
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusDone, updated.Status)
	suite.Equal(100, suite.reloadProject(project.ID).Progress)
}

func (suite *ServiceTestSuite) TestUpdateTask_MemberAskingForMoreIsDeniedWholesale() {
	owner := suite.createUser("owner@example.com", models.RoleMember)
	dev := suite.createUser("dev@example.com", models.RoleMember)
	project := suite.createProject(owner, dev)
	task := suite.createTask(owner, project, models.TaskStatusTodo, dev)

	_, err := suite.tasks.Update(dev, task.ID, suite.body(map[string]interface{}{
		"status":   "In Progress",
		"priority": "High",
	}))
	suite.ErrorIs(err, permission.ErrStatusOnly)

	unchanged := suite.reloadTask(task.ID)
	suite.Equal(models.TaskStatusTodo, unchanged.Status)
	suite.Equal(models.TaskPriorityMedium, unchanged.Priority)
	suite.Equal(0, suite.reloadProject(project.ID).Progress)
}

func (suite *ServiceTestSuite) TestUpdateTask_OutsiderDeniedBeforeValidation() {
	owner := suite.createUser("owner@example.com", models.RoleMember)
	outsider := suite.createUser("outsider@example.com", models.RoleMember)
	project := suite.createProject(owner, outsider)
	task := suite.createTask(owner, project, models.TaskStatusTodo, nil)

	_, err := suite.tasks.Update(outsider, task.ID, suite.body(map[string]interface{}{"status": "Nope"}))
	suite.ErrorIs(err, permission.ErrNotAuthorizedToUpdate)
}

func (suite *ServiceTestSuite) TestUpdateTask_AdminAnywhere() {
	owner := suite.createUser("owner@example.com", models.RoleMember)
	admin := suite.createUser("admin@example.com", models.RoleAdmin)
	project := suite.createProject(owner)
	task := suite.createTask(owner, project, models.TaskStatusTodo, nil)
	suite.createTask(owner, project, models.TaskStatusTodo, nil)

	updated, err := suite.tasks.Update(admin, task.ID, suite.body(map[string]interface{}{"status": "Done"}))
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusDone, updated.Status)

	suite.Equal(models.TaskStatusDone, suite.reloadTask(task.ID).Status)
	suite.Equal(50, suite.reloadProject(project.ID).Progress)
}

func (suite *ServiceTestSuite) TestUpdateTask_ElevatedFieldsAndClearing() {
	owner := suite.createUser("owner@example.com", models.RoleManager)
	dev := suite.createUser("dev@example.com", models.RoleMember)
	project := suite.createProject(owner, dev)
	task := suite.createTask(owner, project, models.TaskStatusTodo, nil)

	due := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	updated, err := suite.tasks.Update(owner, task.ID, suite.body(map[string]interface{}{
		"title":    "Renamed",
		"priority": "High",
		"assignee": dev.ID,
		"dueDate":  due,
		"tags":     []string{"api", "backend"},
		"project":  999,
	}))
	suite.Require().NoError(err)
	suite.Equal("Renamed", updated.Title)
	suite.Equal(models.TaskPriorityHigh, updated.Priority)
	suite.Require().NotNil(updated.Assignee)
	suite.Equal(dev.ID, updated.Assignee.ID)
	suite.Require().NotNil(updated.DueDate)
	suite.True(due.Equal(*updated.DueDate))
	suite.Equal([]string{"api", "backend"}, updated.Tags)
	suite.Equal(project.ID, updated.ProjectID)

	updated, err = suite.tasks.Update(owner, task.ID, suite.body(map[string]interface{}{
		"assignee": nil,
		"dueDate":  nil,
	}))
	suite.Require().NoError(err)
	suite.Nil(updated.AssigneeID)
	suite.Nil(updated.DueDate)
}

func (suite *ServiceTestSuite) TestUpdateTask_InvalidValues() {
	owner := suite.createUser("owner@example.com", models.RoleAdmin)
	outsider := suite.createUser("outsider@example.com", models.RoleMember)
	project := suite.createProject(owner)
	task := suite.createTask(owner, project, models.TaskStatusTodo, nil)

	var apiErr *apierrors.APIError

	_, err := suite.tasks.Update(owner, task.ID, suite.body(map[string]interface{}{"status": "Blocked"}))
	suite.Require().ErrorAs(err, &apiErr)
	suite.Equal(apierrors.ErrCodeValidation, apiErr.Code)

	_, err = suite.tasks.Update(owner, task.ID, suite.body(map[string]interface{}{"title": nil}))
	suite.Require().ErrorAs(err, &apiErr)
	suite.Equal("Invalid value for title", apiErr.Message)

	_, err = suite.tasks.Update(owner, task.ID, suite.body(map[string]interface{}{"assignee": outsider.ID}))
	suite.ErrorIs(err, ErrAssigneeNotMember)
}

func (suite *ServiceTestSuite) TestUpdateTask_NotFound() {
	admin := suite.createUser("admin@example.com", models.RoleAdmin)

	_, err := suite.tasks.Update(admin, 404, suite.body(map[string]interface{}{"status": "Done"}))
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *ServiceTestSuite) TestUpdateTask_ProjectScopedManager() {
	owner := suite.createUser("owner@example.com", models.RoleMember)
	manager := suite.createUser("manager@example.com", models.RoleManager)
	project := suite.createProject(owner, manager)
	task := suite.createTask(owner, project, models.TaskStatusTodo, nil)

	scoped := NewTaskService(suite.store, permission.NewPolicy(permission.ManagerScopeProject), nil)

	_, err := scoped.Update(manager, task.ID, suite.body(map[string]interface{}{"title": "x"}))
	suite.ErrorIs(err, permission.ErrNotAuthorizedToUpdate)

	_, err = scoped.Update(owner, task.ID, suite.body(map[string]interface{}{"title": "x"}))
	suite.NoError(err)
}

func (suite *ServiceTestSuite) TestDeleteTask_Rules() {
	owner := suite.createUser("owner@example.com", models.RoleMember)
	dev := suite.createUser("dev@example.com", models.RoleMember)
	project := suite.createProject(owner, dev)
	task := suite.createTask(owner, project, models.TaskStatusTodo, dev)
	suite.createTask(owner, project, models.TaskStatusDone, nil)

	suite.ErrorIs(suite.tasks.Delete(dev, task.ID), permission.ErrNotAuthorizedToDelete)
	suite.Equal(50, suite.reloadProject(project.ID).Progress)

	suite.Require().NoError(suite.tasks.Delete(owner, task.ID))
	suite.Equal(100, suite.reloadProject(project.ID).Progress)

	suite.ErrorIs(suite.tasks.Delete(owner, task.ID), ErrTaskNotFound)
}

func (suite *ServiceTestSuite) TestComments() {
	owner := suite.createUser("owner@example.com", models.RoleMember)
	dev := suite.createUser("dev@example.com", models.RoleMember)
	outsider := suite.createUser("outsider@example.com", models.RoleMember)
	project := suite.createProject(owner, dev)
	task := suite.createTask(owner, project, models.TaskStatusTodo, nil)
	ctx := context.Background()

	tick := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	suite.tasks.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	first, err := suite.tasks.AddComment(ctx, owner, task.ID, AddCommentInput{Content: "  first  "})
	suite.Require().NoError(err)
	suite.Equal("first", first.Content)
	suite.Len(first.ID, 36)

	_, err = suite.tasks.AddComment(ctx, dev, task.ID, AddCommentInput{Content: "second"})
	suite.Require().NoError(err)

	var apiErr *apierrors.APIError
	_, err = suite.tasks.AddComment(ctx, dev, task.ID, AddCommentInput{Content: "   "})
	suite.Require().ErrorAs(err, &apiErr)
	suite.Equal(apierrors.ErrCodeValidation, apiErr.Code)

	_, err = suite.tasks.AddComment(ctx, dev, task.ID, AddCommentInput{Content: strings.Repeat("a", 1001)})
	suite.Require().ErrorAs(err, &apiErr)
	suite.Equal(apierrors.ErrCodeValidation, apiErr.Code)

	_, err = suite.tasks.AddComment(ctx, outsider, task.ID, AddCommentInput{Content: "hi"})
	suite.ErrorIs(err, ErrNoProjectAccess)

	comments, authors, err := suite.tasks.ListComments(ctx, dev, task.ID)
	suite.Require().NoError(err)
	suite.Require().Len(comments, 2)
	suite.Equal("first", comments[0].Content)
	suite.Equal("second", comments[1].Content)
	suite.Equal(owner.Email, authors[owner.ID].Email)
	suite.Equal(dev.Email, authors[dev.ID].Email)

	_, _, err = suite.tasks.ListComments(ctx, outsider, task.ID)
	suite.ErrorIs(err, ErrNoProjectAccess)
}

type failingComments struct{ err error }

func (f failingComments) Append(context.Context, *models.Comment) error { return f.err }

func (f failingComments) ListByTask(context.Context, uint64) ([]models.Comment, error) {
	return nil, f.err
}

func (suite *ServiceTestSuite) TestComments_StoreFailurePropagates() {
	owner := suite.createUser("owner@example.com", models.RoleMember)
	project := suite.createProject(owner)
	task := suite.createTask(owner, project, models.TaskStatusTodo, nil)

	storeErr := errors.New("comment store unreachable")
	svc := NewTaskService(repository.NewStore(suite.db, failingComments{err: storeErr}), permission.NewPolicy(permission.ManagerScopeGlobal), nil)

	_, err := svc.AddComment(context.Background(), owner, task.ID, AddCommentInput{Content: "hello"})
	suite.ErrorIs(err, storeErr)

	_, _, err = svc.ListComments(context.Background(), owner, task.ID)
	suite.ErrorIs(err, storeErr)
}

type stubDrafter struct {
	drafts []GeneratedTask
	err    error
	text   string
}

func (s *stubDrafter) DraftTasks(_ context.Context, text string) ([]GeneratedTask, error) {
	s.text = text
	return s.drafts, s.err
}

func (suite *ServiceTestSuite) TestGenerateTasks() {
	_, err := suite.tasks.GenerateTasks(context.Background(), GenerateTasksInput{Text: "ship it"})
	suite.ErrorIs(err, ErrAIServiceNotConfigured)

	drafts := []GeneratedTask{
		{Title: "  Deploy  ", Priority: "Urgent"},
		{Title: "   "},
		{Title: "Write changelog", Priority: models.TaskPriorityLow},
	}
	for i := 0; i < 30; i++ {
		drafts = append(drafts, GeneratedTask{Title: "extra", Priority: models.TaskPriorityHigh})
	}
	drafter := &stubDrafter{drafts: drafts}
	svc := NewTaskService(suite.store, permission.NewPolicy(permission.ManagerScopeGlobal), drafter)

	out, err := svc.GenerateTasks(context.Background(), GenerateTasksInput{Text: "  ship it  "})
	suite.Require().NoError(err)
	suite.Equal("ship it", drafter.text)
	suite.Len(out, 20)
	suite.Equal("Deploy", out[0].Title)
	suite.Equal(models.TaskPriorityMedium, out[0].Priority)
	suite.Equal(models.TaskPriorityLow, out[1].Priority)

	drafter.err = errors.New("rate limited")
	_, err = svc.GenerateTasks(context.Background(), GenerateTasksInput{Text: "ship it"})
	suite.ErrorIs(err, drafter.err)

	var apiErr *apierrors.APIError
	_, err = svc.GenerateTasks(context.Background(), GenerateTasksInput{Text: ""})
	suite.Require().ErrorAs(err, &apiErr)
	suite.Equal(apierrors.ErrCodeValidation, apiErr.Code)
}
