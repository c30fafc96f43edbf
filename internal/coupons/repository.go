package coupons

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{DisableForeignKeyConstraintWhenMigrating: true})
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Coupon{})
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByCode returns nil without error when the code does not exist.
func (r *Repository) FindByCode(ctx context.Context, code string) (*Coupon, error) {
	var coupon Coupon

	err := r.db.WithContext(ctx).Where("code = ?", code).First(&coupon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find coupon %s: %w", code, err)
	}

	return &coupon, nil
}
