package handlers

import (
	"time"

	"smartjournal/internal/models"
)

// UserDTO is the public view of an account.
type UserDTO struct {
	Email        string         `json:"email"`
	DisplayName  string         `json:"display_name"`
	WeekStartDay models.WeekDay `json:"week_start_day"`
	CreatedAt    string         `json:"created_at"`
}

func ToUserDTO(u models.User) UserDTO {
	week := u.WeekStartDay
	if week == "" {
		week = models.DefaultWeekStart
	}
	return UserDTO{
		Email:        u.Email,
		DisplayName:  u.DisplayName,
		WeekStartDay: week,
		CreatedAt:    u.CreatedAt.UTC().Format(time.RFC3339),
	}
}
