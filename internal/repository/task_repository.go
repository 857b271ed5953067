package repository

import (
	"time"

	"github.com/yukikurage/taskforge-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// ListByProject returns every task of a project
func (r *GormTaskRepository) ListByProject(projectID uint64) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Preload("Assignee").
		Preload("Reporter").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateColumns writes the given columns of a task. Nil values clear the
// column.
func (r *GormTaskRepository) UpdateColumns(id uint64, columns map[string]interface{}) error {
	if len(columns) == 0 {
		return nil
	}
	return r.db.Model(&models.Task{ID: id}).Updates(columns).Error
}

// Delete soft deletes a task
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Task{}, id).Error
}

// CountProgress counts all tasks of a project and the done ones
func (r *GormTaskRepository) CountProgress(projectID uint64) (int64, int64, error) {
	var row struct {
		Total int64
		Done  int64
	}
	err := r.db.Model(&models.Task{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS done", models.TaskStatusDone).
		Where("project_id = ?", projectID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Total, row.Done, nil
}

// Stats aggregates task counts over the given projects
func (r *GormTaskRepository) Stats(projectIDs []uint64, now, activitySince time.Time) (*TaskStats, error) {
	stats := &TaskStats{
		ByStatus:      []GroupCount{},
		ByPriority:    []GroupCount{},
		ByProject:     []ProjectStatusCount{},
		RecentCreated: []time.Time{},
	}
	if len(projectIDs) == 0 {
		return stats, nil
	}

	scoped := func() *gorm.DB {
		return r.db.Model(&models.Task{}).Where("project_id IN ?", projectIDs)
	}

	if err := scoped().Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	if err := scoped().
		Where("due_date IS NOT NULL AND due_date < ? AND status <> ?", now, models.TaskStatusDone).
		Count(&stats.Overdue).Error; err != nil {
		return nil, err
	}

	if err := scoped().
		Select("status AS group_key, COUNT(*) AS count").
		Group("status").
		Scan(&stats.ByStatus).Error; err != nil {
		return nil, err
	}

	if err := scoped().
		Select("priority AS group_key, COUNT(*) AS count").
		Group("priority").
		Scan(&stats.ByPriority).Error; err != nil {
		return nil, err
	}

	if err := scoped().
		Select("project_id, status, COUNT(*) AS count").
		Group("project_id, status").
		Scan(&stats.ByProject).Error; err != nil {
		return nil, err
	}

	if err := scoped().
		Where("created_at >= ?", activitySince).
		Pluck("created_at", &stats.RecentCreated).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
