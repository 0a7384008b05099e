package vehicle

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

func (r *Repo) Create(ctx context.Context, v *Vehicle) error {
	if r == nil || r.db == nil {
		return apperrors.Storage("create vehicle", errors.New("repo db is nil"))
	}
	err := r.db.WithContext(ctx).Create(v).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Conflictf("license plate %s already registered", v.LicensePlate)
	}
	return apperrors.Storage("create vehicle", err)
}

func (r *Repo) Update(ctx context.Context, v *Vehicle) error {
	if r == nil || r.db == nil {
		return apperrors.Storage("update vehicle", errors.New("repo db is nil"))
	}
	result := r.db.WithContext(ctx).Model(&Vehicle{}).Where("id = ?", v.ID).Updates(map[string]interface{}{
		"license_plate": v.LicensePlate,
		"make":          v.Make,
		"model":         v.Model,
		"year":          v.Year,
		"seats":         v.Seats,
		"range_km":      v.RangeKm,
		"color":         v.Color,
		"image_ref":     v.ImageRef,
		"dealership_id": v.DealershipID,
	})
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return apperrors.Conflictf("license plate %s already registered", v.LicensePlate)
	}
	if result.Error != nil {
		return apperrors.Storage("update vehicle", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFoundf("vehicle %s not found", v.ID)
	}
	return nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Vehicle, error) {
	if r == nil || r.db == nil {
		return nil, apperrors.Storage("get vehicle", errors.New("repo db is nil"))
	}
	var v Vehicle
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("vehicle %s not found", id)
	}
	if err != nil {
		return nil, apperrors.Storage("get vehicle", err)
	}
	return &v, nil
}

// ListAvailable returns vehicles in the available status, optionally scoped
// to one dealership (the employee home-base view).
func (r *Repo) ListAvailable(ctx context.Context, dealershipID string) ([]Vehicle, error) {
	if r == nil || r.db == nil {
		return nil, apperrors.Storage("list vehicles", errors.New("repo db is nil"))
	}
	q := r.db.WithContext(ctx).Where("status = ?", StatusAvailable)
	if dealershipID != "" {
		q = q.Where("dealership_id = ?", dealershipID)
	}
	var vehicles []Vehicle
	if err := q.Order("created_at DESC").Find(&vehicles).Error; err != nil {
		return nil, apperrors.Storage("list vehicles", err)
	}
	return vehicles, nil
}

// ListAll returns every vehicle regardless of status, paged. Admin surface.
func (r *Repo) ListAll(ctx context.Context, offset, limit int) ([]Vehicle, int64, error) {
	if r == nil || r.db == nil {
		return nil, 0, apperrors.Storage("list vehicles", errors.New("repo db is nil"))
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&Vehicle{}).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Storage("list vehicles", err)
	}
	var vehicles []Vehicle
	err := r.db.WithContext(ctx).Order("created_at DESC").Offset(offset).Limit(limit).Find(&vehicles).Error
	if err != nil {
		return nil, 0, apperrors.Storage("list vehicles", err)
	}
	return vehicles, total, nil
}

// UpdateStatus changes only the status column.
func (r *Repo) UpdateStatus(ctx context.Context, id string, status Status) error {
	if r == nil || r.db == nil {
		return apperrors.Storage("update vehicle status", errors.New("repo db is nil"))
	}
	result := r.db.WithContext(ctx).Model(&Vehicle{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return apperrors.Storage("update vehicle status", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFoundf("vehicle %s not found", id)
	}
	return nil
}

// CountByDealership reports how many vehicles a dealership still owns.
// The dealership service uses it to refuse deleting a non-empty site.
func (r *Repo) CountByDealership(ctx context.Context, dealershipID string) (int64, error) {
	if r == nil || r.db == nil {
		return 0, apperrors.Storage("count vehicles", errors.New("repo db is nil"))
	}
	var total int64
	err := r.db.WithContext(ctx).Model(&Vehicle{}).
		Where("dealership_id = ?", dealershipID).Count(&total).Error
	if err != nil {
		return 0, apperrors.Storage("count vehicles", err)
	}
	return total, nil
}

// Delete removes the vehicle row. Callers must run the deletion guard
// first; reservation history is never cascade-deleted.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return apperrors.Storage("delete vehicle", errors.New("repo db is nil"))
	}
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Vehicle{})
	if result.Error != nil {
		return apperrors.Storage("delete vehicle", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFoundf("vehicle %s not found", id)
	}
	return nil
}
