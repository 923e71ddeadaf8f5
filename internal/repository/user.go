package repository

import (
	"context"

	"gorm.io/gorm"

	"cableops.io/dashboard/internal/repository/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername returns nil, nil when no user has username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var rows []models.User
	if err := DB(ctx, r.db).Where("username = ?", username).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", email)
}

func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username", username)
}

func (r *UserRepository) exists(ctx context.Context, column, value string) (bool, error) {
	var n int64
	err := DB(ctx, r.db).Model(&models.User{}).Where(column+" = ?", value).Count(&n).Error
	return n > 0, err
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return DB(ctx, r.db).Create(u).Error
}
