package domain

import (
	"context"
	"errors"
	"time"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	User      User      `json:"user"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

type CreateUserRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role" binding:"required,oneof=admin staff"`
}

type UpdateUserRequest struct {
	ID          string
	DisplayName *string `json:"display_name"`
	Role        *string `json:"role"`
	Status      *string `json:"status"`
}

type Service interface {
	Login(context.Context, LoginRequest) (LoginResponse, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*User, error)
	CreateUser(context.Context, CreateUserRequest) (User, error)
	UpdateUser(context.Context, UpdateUserRequest) (User, error)
	ListUsers(context.Context) ([]*User, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrSessionExpired     = errors.New("session_expired")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrUserDisabled       = errors.New("user_disabled")
	ErrEmailTaken         = errors.New("email_taken")
)
