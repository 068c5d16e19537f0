package repositories

import (
	"context"

	"fuelpay-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// LedgerRepository handles immutable ledger record data access.
// Records are only ever inserted; the balance mutations that accompany
// them happen through guarded UPDATEs in the ledger service transaction.
type LedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// DB exposes the underlying handle for service-level transactions
func (r *LedgerRepository) DB() *gorm.DB {
	return r.db
}

// ListTransfersByCustomer lists transfers where the customer is sender or
// receiver, newest first
func (r *LedgerRepository) ListTransfersByCustomer(ctx context.Context, customerID uint, offset, limit int) ([]*models.FundsTransfer, int64, error) {
	var transfers []*models.FundsTransfer
	var total int64

	query := r.db.WithContext(ctx).Model(&models.FundsTransfer{}).
		Where("sender_id = ? OR receiver_id = ?", customerID, customerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Sender").
		Preload("Receiver").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&transfers).Error; err != nil {
		return nil, 0, err
	}

	return transfers, total, nil
}

// ListTopUpsByCustomer lists a customer's top-ups, newest first
func (r *LedgerRepository) ListTopUpsByCustomer(ctx context.Context, customerID uint, offset, limit int) ([]*models.TopUp, int64, error) {
	var topUps []*models.TopUp
	var total int64

	query := r.db.WithContext(ctx).Model(&models.TopUp{}).
		Where("customer_id = ?", customerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&topUps).Error; err != nil {
		return nil, 0, err
	}

	return topUps, total, nil
}

// ListFuelSalesByCustomer lists a customer's fuel purchases, newest first
func (r *LedgerRepository) ListFuelSalesByCustomer(ctx context.Context, customerID uint, offset, limit int) ([]*models.FuelSale, int64, error) {
	var sales []*models.FuelSale
	var total int64

	query := r.db.WithContext(ctx).Model(&models.FuelSale{}).
		Where("customer_id = ?", customerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Pump").
		Preload("Employee").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&sales).Error; err != nil {
		return nil, 0, err
	}

	return sales, total, nil
}

// ListFuelSalesByPump lists a pump's fuel sales, newest first
func (r *LedgerRepository) ListFuelSalesByPump(ctx context.Context, pumpID uint, offset, limit int) ([]*models.FuelSale, int64, error) {
	var sales []*models.FuelSale
	var total int64

	query := r.db.WithContext(ctx).Model(&models.FuelSale{}).
		Where("pump_id = ?", pumpID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Customer").
		Preload("Employee").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&sales).Error; err != nil {
		return nil, 0, err
	}

	return sales, total, nil
}

// ListFuelSalesByEmployee lists the sales an employee rang up, newest first
func (r *LedgerRepository) ListFuelSalesByEmployee(ctx context.Context, employeeID uint, offset, limit int) ([]*models.FuelSale, int64, error) {
	var sales []*models.FuelSale
	var total int64

	query := r.db.WithContext(ctx).Model(&models.FuelSale{}).
		Where("employee_id = ?", employeeID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Customer").
		Preload("Pump").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&sales).Error; err != nil {
		return nil, 0, err
	}

	return sales, total, nil
}

// GetTransferByID gets a transfer record
func (r *LedgerRepository) GetTransferByID(ctx context.Context, id uint) (*models.FundsTransfer, error) {
	var transfer models.FundsTransfer
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Where("id = ?", id).
		First(&transfer).Error
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

// GetTopUpByID gets a top-up record
func (r *LedgerRepository) GetTopUpByID(ctx context.Context, id uint) (*models.TopUp, error) {
	var topUp models.TopUp
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&topUp).Error
	if err != nil {
		return nil, err
	}
	return &topUp, nil
}

// GetFuelSaleByID gets a fuel sale record
func (r *LedgerRepository) GetFuelSaleByID(ctx context.Context, id uint) (*models.FuelSale, error) {
	var sale models.FuelSale
	err := r.db.WithContext(ctx).
		Preload("Pump").
		Where("id = ?", id).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}
