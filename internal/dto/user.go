package dto

import (
	"time"

	"github.com/yukikurage/taskforge-api/internal/models"
)

// UserDTO represents the authenticated user or an admin view of a user
type UserDTO struct {
	ID        uint64              `json:"id"`
	Name      string              `json:"name"`
	Email     string              `json:"email"`
	Role      models.Role         `json:"role"`
	IsActive  bool                `json:"isActive"`
	Provider  models.AuthProvider `json:"provider"`
	Avatar    string              `json:"avatar"`
	CreatedAt time.Time           `json:"createdAt"`
}

// UserSummaryDTO is the short form used when a user is referenced
type UserSummaryDTO struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		IsActive:  user.IsActive,
		Provider:  user.Provider,
		Avatar:    user.Avatar,
		CreatedAt: user.CreatedAt,
	}
}

// ToUserSummaryDTO converts a User model to UserSummaryDTO
func ToUserSummaryDTO(user models.User) UserSummaryDTO {
	return UserSummaryDTO{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Avatar: user.Avatar,
	}
}

func summaryIfLoaded(user models.User) *UserSummaryDTO {
	if user.ID == 0 {
		return nil
	}
	s := ToUserSummaryDTO(user)
	return &s
}
