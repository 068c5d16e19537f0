package repositories

import (
	"context"
	"time"

	"fuelpay-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// IdempotencyRepository handles idempotency key data access
type IdempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *gorm.DB) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

// GetValid returns the key record if it exists and is still inside its
// replay window, or gorm.ErrRecordNotFound.
func (r *IdempotencyRepository) GetValid(ctx context.Context, key string) (*models.IdempotencyKey, error) {
	var record models.IdempotencyKey
	err := r.db.WithContext(ctx).
		Where("`key` = ? AND expires_at > ?", key, time.Now()).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// CreateTx inserts the key inside tx. The unique index on key makes this
// the arbiter between racing retries: the loser gets gorm.ErrDuplicatedKey
// and the caller replays the winner's record.
func (r *IdempotencyRepository) CreateTx(tx *gorm.DB, record *models.IdempotencyKey) error {
	return tx.Create(record).Error
}

// DeleteExpired purges keys past their replay window
func (r *IdempotencyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&models.IdempotencyKey{})
	return result.RowsAffected, result.Error
}
