package repositories

import (
	"context"

	"fuelpay-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoyaltyRepository handles per-pump loyalty point data access
type LoyaltyRepository struct {
	db *gorm.DB
}

// NewLoyaltyRepository creates a new loyalty repository
func NewLoyaltyRepository(db *gorm.DB) *LoyaltyRepository {
	return &LoyaltyRepository{db: db}
}

// GetEntry gets a customer's point balance at a pump
func (r *LoyaltyRepository) GetEntry(ctx context.Context, customerID, pumpID uint) (*models.LoyaltyEntry, error) {
	var entry models.LoyaltyEntry
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND pump_id = ?", customerID, pumpID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByCustomer lists a customer's point balances across all pumps
func (r *LoyaltyRepository) ListByCustomer(ctx context.Context, customerID uint) ([]*models.LoyaltyEntry, error) {
	var entries []*models.LoyaltyEntry
	err := r.db.WithContext(ctx).
		Preload("Pump").
		Where("customer_id = ?", customerID).
		Order("updated_at DESC").
		Find(&entries).Error
	return entries, err
}

// AccrueTx adds earned points to the (customer, pump) entry inside tx,
// creating the row on first purchase. The CASE expression clamps at the
// cap in a single statement, portable across MySQL and SQLite.
func (r *LoyaltyRepository) AccrueTx(tx *gorm.DB, customerID, pumpID uint, earned int) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_id"}, {Name: "pump_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"points": gorm.Expr(
				"CASE WHEN points + ? > ? THEN ? ELSE points + ? END",
				earned, models.LoyaltyPointsCap, models.LoyaltyPointsCap, earned,
			),
		}),
	}).Create(&models.LoyaltyEntry{
		CustomerID: customerID,
		PumpID:     pumpID,
		Points:     min(earned, models.LoyaltyPointsCap),
	}).Error
}

// DebitFullTx zeroes a full-cap entry inside tx. The guard re-checks the
// point balance at write time; RowsAffected == 0 means the customer had
// not reached the cap (or a concurrent redeem won).
func (r *LoyaltyRepository) DebitFullTx(tx *gorm.DB, customerID, pumpID uint) (int64, error) {
	result := tx.Model(&models.LoyaltyEntry{}).
		Where("customer_id = ? AND pump_id = ? AND points >= ?",
			customerID, pumpID, models.LoyaltyPointsCap).
		Update("points", gorm.Expr("points - ?", models.LoyaltyPointsCap))
	return result.RowsAffected, result.Error
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
