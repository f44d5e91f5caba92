package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sariqmarket/b2b-backend/internal/model"
)

type UserRepository interface {
	Upsert(ctx context.Context, user *model.AuthUser) error
	FindByID(ctx context.Context, id string) (*model.AuthUser, error)
	SetDB(db *gorm.DB)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Upsert(ctx context.Context, user *model.AuthUser) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"company", "email", "phone", "is_admin"}),
		}).
		Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.AuthUser, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var user model.AuthUser
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) SetDB(db *gorm.DB) {
	r.db = db
}
