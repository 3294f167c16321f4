package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/sahayog-foundation/sahayog/internal/volunteer/domain"
	"github.com/sahayog-foundation/sahayog/pkg/db/option"
	"github.com/sahayog-foundation/sahayog/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, volunteer *domain.Volunteer) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO volunteers (
			id, full_name, email, phone, skills, availability, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		volunteer.ID,
		volunteer.FullName,
		volunteer.Email,
		volunteer.Phone,
		volunteer.Skills,
		volunteer.Availability,
		volunteer.Status,
		volunteer.CreatedAt,
		volunteer.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Volunteer, error) {
	var volunteer domain.Volunteer
	err := db.WithContext(ctx).Where("id = ?", id).First(&volunteer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &volunteer, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListVolunteerFilter, page pagination.Pagination) ([]*domain.Volunteer, error) {
	var volunteers []*domain.Volunteer
	stmt := db.WithContext(ctx).Model(&domain.Volunteer{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&volunteers).Error
	if err != nil {
		return nil, err
	}
	return volunteers, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, volunteer *domain.Volunteer) error {
	return db.WithContext(ctx).Exec(
		`UPDATE volunteers SET
			full_name = ?, phone = ?, skills = ?, availability = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		volunteer.FullName,
		volunteer.Phone,
		volunteer.Skills,
		volunteer.Availability,
		volunteer.Status,
		volunteer.UpdatedAt,
		volunteer.ID,
	).Error
}
