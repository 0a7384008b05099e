package dealership

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

func (r *Repo) Create(ctx context.Context, d *Dealership) error {
	if r == nil || r.db == nil {
		return apperrors.Storage("create dealership", errors.New("repo db is nil"))
	}
	return apperrors.Storage("create dealership", r.db.WithContext(ctx).Create(d).Error)
}

func (r *Repo) Update(ctx context.Context, d *Dealership) error {
	if r == nil || r.db == nil {
		return apperrors.Storage("update dealership", errors.New("repo db is nil"))
	}
	result := r.db.WithContext(ctx).Model(&Dealership{}).Where("id = ?", d.ID).Updates(map[string]interface{}{
		"name":          d.Name,
		"city":          d.City,
		"address":       d.Address,
		"contact_phone": d.ContactPhone,
	})
	if result.Error != nil {
		return apperrors.Storage("update dealership", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFoundf("dealership %s not found", d.ID)
	}
	return nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Dealership, error) {
	if r == nil || r.db == nil {
		return nil, apperrors.Storage("get dealership", errors.New("repo db is nil"))
	}
	var d Dealership
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("dealership %s not found", id)
	}
	if err != nil {
		return nil, apperrors.Storage("get dealership", err)
	}
	return &d, nil
}

func (r *Repo) List(ctx context.Context) ([]Dealership, error) {
	if r == nil || r.db == nil {
		return nil, apperrors.Storage("list dealerships", errors.New("repo db is nil"))
	}
	var out []Dealership
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, apperrors.Storage("list dealerships", err)
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return apperrors.Storage("delete dealership", errors.New("repo db is nil"))
	}
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Dealership{})
	if result.Error != nil {
		return apperrors.Storage("delete dealership", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFoundf("dealership %s not found", id)
	}
	return nil
}
