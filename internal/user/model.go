package user

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type User struct {
	ID           int         `db:"id" json:"id"`
	Username     string      `db:"username" json:"username"`
	PasswordHash string      `db:"password_hash" json:"-"`
	IsAdmin      bool        `db:"is_admin" json:"is_admin"`
	Name         null.String `db:"name" json:"name"`
	Email        null.String `db:"email" json:"email"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
}

type RegisterRequest struct {
	Username        string `json:"username" binding:"required,min=3,max=80"`
	Name            string `json:"name" binding:"required,max=100"`
	Email           string `json:"email" binding:"required,email,max=120"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Username        string `json:"username" binding:"required,min=3,max=80"`
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}
