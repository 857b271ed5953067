package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "Todo"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusReview     TaskStatus = "Review"
	TaskStatusDone       TaskStatus = "Done"
)

// TaskStatuses lists the workflow columns in board order.
var TaskStatuses = []TaskStatus{
	TaskStatusTodo,
	TaskStatusInProgress,
	TaskStatusReview,
	TaskStatusDone,
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
)

var TaskPriorities = []TaskPriority{
	TaskPriorityLow,
	TaskPriorityMedium,
	TaskPriorityHigh,
}

type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"type:varchar(150);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	ProjectID   uint64         `gorm:"not null;index" json:"projectId"`
	AssigneeID  *uint64        `gorm:"index" json:"assigneeId"`
	ReporterID  uint64         `gorm:"not null" json:"reporterId"`
	Status      TaskStatus     `gorm:"type:varchar(20);not null;default:'Todo'" json:"status"`
	Priority    TaskPriority   `gorm:"type:varchar(20);not null;default:'Medium'" json:"priority"`
	DueDate     *time.Time     `json:"dueDate"`
	Tags        []string       `gorm:"serializer:json" json:"tags"`
	Order       int            `gorm:"column:position;not null;default:0" json:"order"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project  Project `gorm:"foreignKey:ProjectID" json:"-"`
	Assignee *User   `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	Reporter User    `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
}

// IsAssignee reports whether userID is the task's assignee.
func (t *Task) IsAssignee(userID uint64) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}

// IsReporter reports whether userID created the task.
func (t *Task) IsReporter(userID uint64) bool {
	return t.ReporterID == userID
}

// Valid reports whether s is a workflow status.
func (s TaskStatus) Valid() bool {
	for _, known := range TaskStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	for _, known := range TaskPriorities {
		if p == known {
			return true
		}
	}
	return false
}

// TagList is a tag slice usable as a raw column value in map updates, where
// field serializers are not applied. It encodes the same JSON as the
// serializer does.
type TagList []string

// Value implements driver.Valuer.
func (t TagList) Value() (driver.Value, error) {
	if t == nil {
		t = TagList{}
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
