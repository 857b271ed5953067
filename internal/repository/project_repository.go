package repository

import (
	"github.com/yukikurage/taskforge-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// CreateWithOwner creates a project and enrolls its owner in a transaction
func (r *GormProjectRepository) CreateWithOwner(project *models.Project, owner *models.ProjectMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(project).Error; err != nil {
			return err
		}

		owner.ProjectID = project.ID
		if err := tx.Omit(clause.Associations).Create(owner).Error; err != nil {
			return err
		}

		project.Members = []models.ProjectMember{*owner}
		return nil
	})
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListVisible lists the projects a user owns or belongs to
func (r *GormProjectRepository) ListVisible(userID uint64, all bool, preload ...string) ([]models.Project, error) {
	var projects []models.Project
	query := r.db.Model(&models.Project{})

	if !all {
		memberOf := r.db.Model(&models.ProjectMember{}).
			Select("project_id").
			Where("user_id = ?", userID)
		query = query.Where("owner_id = ? OR id IN (?)", userID, memberOf)
	}

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.Order("created_at DESC").Order("id DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Update saves a project's own columns; associations are left alone
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Omit(clause.Associations).Save(project).Error
}

// UpdateProgress stores a recomputed progress value
func (r *GormProjectRepository) UpdateProgress(id uint64, progress int) error {
	return r.db.Model(&models.Project{ID: id}).UpdateColumn("progress", progress).Error
}

// Delete deletes a project and all related data in a transaction
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Delete all tasks in the project
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		// Delete all members
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, id).Error
	})
}

// AddMember adds a member to a project
func (r *GormProjectRepository) AddMember(member *models.ProjectMember) error {
	return r.db.Omit(clause.Associations).Create(member).Error
}

// RemoveMember removes a member from a project
func (r *GormProjectRepository) RemoveMember(projectID, userID uint64) error {
	return r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{}).Error
}

// FindMember finds a specific project member
func (r *GormProjectRepository) FindMember(projectID, userID uint64) (*models.ProjectMember, error) {
	var member models.ProjectMember
	if err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}
