package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/sahayog-foundation/sahayog/internal/notice/domain"
	"github.com/sahayog-foundation/sahayog/pkg/db/option"
	"github.com/sahayog-foundation/sahayog/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, notice *domain.Notice) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO notices (
			id, title, body, published, published_at, author_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		notice.ID,
		notice.Title,
		notice.Body,
		notice.Published,
		notice.PublishedAt,
		notice.AuthorID,
		notice.CreatedAt,
		notice.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Notice, error) {
	var notice domain.Notice
	err := db.WithContext(ctx).Where("id = ?", id).First(&notice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &notice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, publishedOnly bool, page pagination.Pagination) ([]*domain.Notice, error) {
	var notices []*domain.Notice
	stmt := db.WithContext(ctx).Model(&domain.Notice{})
	if publishedOnly {
		stmt = stmt.Where("published = ?", true)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&notices).Error
	if err != nil {
		return nil, err
	}
	return notices, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, notice *domain.Notice) error {
	return db.WithContext(ctx).Exec(
		`UPDATE notices SET
			title = ?, body = ?, published = ?, published_at = ?, updated_at = ?
		 WHERE id = ?`,
		notice.Title,
		notice.Body,
		notice.Published,
		notice.PublishedAt,
		notice.UpdatedAt,
		notice.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM notices WHERE id = ?`, id).Error
}
