package repository

import (
	"context"

	"github.com/yukikurage/taskforge-api/internal/models"
	"gorm.io/gorm"
)

// GormCommentRepository keeps the comment log in the SQL database
type GormCommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a SQL-backed CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &GormCommentRepository{db: db}
}

// Append stores a new comment
func (r *GormCommentRepository) Append(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// ListByTask returns a task's comments, oldest first
func (r *GormCommentRepository) ListByTask(ctx context.Context, taskID uint64) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
