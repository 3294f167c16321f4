package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/sahayog-foundation/sahayog/internal/message/domain"
	"github.com/sahayog-foundation/sahayog/pkg/db/option"
	"github.com/sahayog-foundation/sahayog/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, message *domain.Message) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO messages (
			id, sender_name, sender_email, subject, body, read, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		message.ID,
		message.SenderName,
		message.SenderEmail,
		message.Subject,
		message.Body,
		message.Read,
		message.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Message, error) {
	var message domain.Message
	err := db.WithContext(ctx).Where("id = ?", id).First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, unreadOnly bool, page pagination.Pagination) ([]*domain.Message, error) {
	var messages []*domain.Message
	stmt := db.WithContext(ctx).Model(&domain.Message{})
	if unreadOnly {
		stmt = stmt.Where("read = ?", false)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *repo) MarkRead(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`UPDATE messages SET read = ? WHERE id = ?`, true, id).Error
}
