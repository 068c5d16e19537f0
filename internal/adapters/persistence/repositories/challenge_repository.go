package repositories

import (
	"context"
	"time"

	"fuelpay-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ChallengeRepository handles one-time verification code data access
type ChallengeRepository struct {
	db *gorm.DB
}

// NewChallengeRepository creates a new challenge repository
func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// Create creates a new verification challenge
func (r *ChallengeRepository) Create(ctx context.Context, challenge *models.VerificationChallenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

// GetLive returns the newest unconsumed, unexpired challenge for an account
// and purpose, or gorm.ErrRecordNotFound when none is live.
func (r *ChallengeRepository) GetLive(ctx context.Context, accountType string, accountID uint, purpose string) (*models.VerificationChallenge, error) {
	var challenge models.VerificationChallenge
	err := r.db.WithContext(ctx).
		Where("account_type = ? AND account_id = ? AND purpose = ? AND consumed = ? AND expires_at > ?",
			accountType, accountID, purpose, false, time.Now()).
		Order("issued_at DESC").
		First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// ConsumeTx marks a challenge consumed inside tx. The guarded UPDATE
// re-checks consumed and expiry at write time, so two concurrent attempts
// on the same code cannot both succeed.
func (r *ChallengeRepository) ConsumeTx(tx *gorm.DB, challengeID uint) (int64, error) {
	result := tx.Model(&models.VerificationChallenge{}).
		Where("id = ? AND consumed = ? AND expires_at > ?", challengeID, false, time.Now()).
		Update("consumed", true)
	return result.RowsAffected, result.Error
}

// GetNewest returns the newest unconsumed challenge for an account and
// purpose regardless of expiry, so callers can tell a lapsed code from a
// missing one.
func (r *ChallengeRepository) GetNewest(ctx context.Context, accountType string, accountID uint, purpose string) (*models.VerificationChallenge, error) {
	var challenge models.VerificationChallenge
	err := r.db.WithContext(ctx).
		Where("account_type = ? AND account_id = ? AND purpose = ? AND consumed = ?",
			accountType, accountID, purpose, false).
		Order("issued_at DESC").
		First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// DeleteExpired purges challenges past their expiry
func (r *ChallengeRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&models.VerificationChallenge{})
	return result.RowsAffected, result.Error
}
