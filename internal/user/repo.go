package user

import (
	"context"
	"errors"

	"github.com/FleetDesk/FleetDesk/internal/apperrors"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, u *User) error {
	if r == nil || r.db == nil {
		return apperrors.Storage("create user", errors.New("repo db is nil"))
	}
	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Conflictf("email %s already registered", u.Email)
	}
	return apperrors.Storage("create user", err)
}

func (r *Repo) FindByEmail(ctx context.Context, email string) (*User, error) {
	if r == nil || r.db == nil {
		return nil, apperrors.Storage("get user", errors.New("repo db is nil"))
	}
	var u User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("user %s not found", email)
	}
	if err != nil {
		return nil, apperrors.Storage("get user", err)
	}
	return &u, nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (*User, error) {
	if r == nil || r.db == nil {
		return nil, apperrors.Storage("get user", errors.New("repo db is nil"))
	}
	var u User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("user %s not found", id)
	}
	if err != nil {
		return nil, apperrors.Storage("get user", err)
	}
	return &u, nil
}

func (r *Repo) List(ctx context.Context, offset, limit int) ([]User, int64, error) {
	if r == nil || r.db == nil {
		return nil, 0, apperrors.Storage("list users", errors.New("repo db is nil"))
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&User{}).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Storage("list users", err)
	}
	var users []User
	err := r.db.WithContext(ctx).Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, 0, apperrors.Storage("list users", err)
	}
	return users, total, nil
}

func (r *Repo) UpdateRole(ctx context.Context, id, role string) error {
	if r == nil || r.db == nil {
		return apperrors.Storage("update user role", errors.New("repo db is nil"))
	}
	result := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return apperrors.Storage("update user role", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFoundf("user %s not found", id)
	}
	return nil
}

func (r *Repo) UpdatePreferences(ctx context.Context, id, prefs string) error {
	if r == nil || r.db == nil {
		return apperrors.Storage("update user preferences", errors.New("repo db is nil"))
	}
	result := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("accessibility_prefs", prefs)
	if result.Error != nil {
		return apperrors.Storage("update user preferences", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFoundf("user %s not found", id)
	}
	return nil
}
