package postgres

import (
	"context"
	"strings"

	"github.com/Zhima-Mochi/minimarket/internal/domain/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func (r *UserRepository) Insert(ctx context.Context, u *user.User) error {
	m := userModel{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
	}
	return translate(r.db.WithContext(ctx).Create(&m).Error, user.ErrNotFound, user.ErrEmailTaken)
}

func (r *UserRepository) Get(ctx context.Context, id string) (*user.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		return nil, translate(err, user.ErrNotFound, user.ErrEmailTaken)
	}
	return m.toDomain(), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var m userModel
	email = strings.ToLower(strings.TrimSpace(email))
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&m).Error; err != nil {
		return nil, translate(err, user.ErrNotFound, user.ErrEmailTaken)
	}
	return m.toDomain(), nil
}
