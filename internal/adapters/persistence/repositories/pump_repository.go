package repositories

import (
	"context"

	"fuelpay-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PumpRepository handles pump (station) data access
type PumpRepository struct {
	db *gorm.DB
}

// NewPumpRepository creates a new pump repository
func NewPumpRepository(db *gorm.DB) *PumpRepository {
	return &PumpRepository{db: db}
}

// Create creates a new pump
func (r *PumpRepository) Create(ctx context.Context, pump *models.Pump) error {
	return r.db.WithContext(ctx).Create(pump).Error
}

// GetByID gets a pump by ID with its manager
func (r *PumpRepository) GetByID(ctx context.Context, id uint) (*models.Pump, error) {
	var pump models.Pump
	err := r.db.WithContext(ctx).
		Preload("Manager").
		Where("id = ?", id).
		First(&pump).Error
	if err != nil {
		return nil, err
	}
	return &pump, nil
}

// Update updates a pump. Associations are omitted so a stale preloaded
// Manager cannot overwrite a reassigned manager_id on save.
func (r *PumpRepository) Update(ctx context.Context, pump *models.Pump) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(pump).Error
}

// List lists pumps with pagination
func (r *PumpRepository) List(ctx context.Context, offset, limit int) ([]*models.Pump, int64, error) {
	var pumps []*models.Pump
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Pump{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Preload("Manager").
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&pumps).Error; err != nil {
		return nil, 0, err
	}

	return pumps, total, nil
}

// ListLocations lists every pump's coordinates for the customer map
func (r *PumpRepository) ListLocations(ctx context.Context) ([]*models.PumpLocation, error) {
	var pumps []*models.Pump
	if err := r.db.WithContext(ctx).
		Select("id", "name", "latitude", "longitude").
		Order("name ASC").
		Find(&pumps).Error; err != nil {
		return nil, err
	}

	locations := make([]*models.PumpLocation, 0, len(pumps))
	for _, p := range pumps {
		locations = append(locations, p.ToLocation())
	}
	return locations, nil
}

// SetLoyaltyThreshold updates the accrual rate of a pump
func (r *PumpRepository) SetLoyaltyThreshold(ctx context.Context, pumpID uint, threshold int) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Pump{}).
		Where("id = ?", pumpID).
		Update("loyalty_threshold", threshold)
	return result.RowsAffected, result.Error
}
