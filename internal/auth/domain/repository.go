package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertUser(ctx context.Context, db *gorm.DB, user *User) error
	FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	FindUserByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	ListUsers(ctx context.Context, db *gorm.DB) ([]*User, error)
	UpdateUser(ctx context.Context, db *gorm.DB, user *User) error

	InsertSession(ctx context.Context, db *gorm.DB, session *Session) error
	FindSession(ctx context.Context, db *gorm.DB, id string) (*Session, error)
	DeleteSession(ctx context.Context, db *gorm.DB, id string) error
	DeleteExpiredSessions(ctx context.Context, db *gorm.DB) error
}
