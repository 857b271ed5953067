package models

import "time"

type ProjectMember struct {
	ProjectID uint64    `gorm:"primarykey" json:"projectId"`
	UserID    uint64    `gorm:"primarykey" json:"userId"`
	Role      Role      `gorm:"type:varchar(20);not null;default:'Member'" json:"role"`
	JoinedAt  time.Time `json:"joinedAt"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
