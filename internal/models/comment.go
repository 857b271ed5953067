package models

import "time"

// Comment is an append-only entry in a task's discussion log. Comments are
// stored apart from the task row and are never edited or deleted.
type Comment struct {
	ID        string    `gorm:"primarykey;type:varchar(36)" json:"id" bson:"_id"`
	TaskID    uint64    `gorm:"not null;index:idx_comments_task_created,priority:1" json:"taskId" bson:"task_id"`
	AuthorID  uint64    `gorm:"not null" json:"authorId" bson:"author_id"`
	Content   string    `gorm:"type:text;not null" json:"content" bson:"content"`
	CreatedAt time.Time `gorm:"index:idx_comments_task_created,priority:2" json:"createdAt" bson:"created_at"`
}
