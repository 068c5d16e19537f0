package services

import (
	"context"
	"errors"

	"fuelpay-backend/internal/adapters/persistence/models"
	"fuelpay-backend/internal/adapters/persistence/repositories"
	"fuelpay-backend/internal/core/domain"
	"fuelpay-backend/internal/pkg/jwt"

	"gorm.io/gorm"
)

// LoyaltyService handles per-pump point balances and redemption
type LoyaltyService struct {
	db            *gorm.DB
	customerRepo  repositories.CustomerRepository
	pumpRepo      *repositories.PumpRepository
	loyaltyRepo   *repositories.LoyaltyRepository
	notifyService *NotificationService
}

// NewLoyaltyService creates a new loyalty service
func NewLoyaltyService(
	db *gorm.DB,
	customerRepo repositories.CustomerRepository,
	pumpRepo *repositories.PumpRepository,
	loyaltyRepo *repositories.LoyaltyRepository,
	notifyService *NotificationService,
) *LoyaltyService {
	return &LoyaltyService{
		db:            db,
		customerRepo:  customerRepo,
		pumpRepo:      pumpRepo,
		loyaltyRepo:   loyaltyRepo,
		notifyService: notifyService,
	}
}

// ListPoints lists a customer's point balances across all pumps
func (s *LoyaltyService) ListPoints(ctx context.Context, customerID uint) ([]*models.LoyaltyEntry, error) {
	return s.loyaltyRepo.ListByCustomer(ctx, customerID)
}

// GetPoints gets a customer's point balance at one pump. A customer who
// never bought fuel there has an implicit zero balance, not an error.
func (s *LoyaltyService) GetPoints(ctx context.Context, customerID, pumpID uint) (*models.LoyaltyEntry, error) {
	entry, err := s.loyaltyRepo.GetEntry(ctx, customerID, pumpID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.LoyaltyEntry{CustomerID: customerID, PumpID: pumpID, Points: 0}, nil
		}
		return nil, err
	}
	return entry, nil
}

// RedeemOutput carries the result of a redemption
type RedeemOutput struct {
	PointsSpent float64 `json:"points_spent"`
	Credited    float64 `json:"credited"`
}

// Redeem converts a full-cap point balance at one pump into wallet
// credit. The guarded point debit decides the race: a second concurrent
// redeem finds the points already gone and fails cleanly.
func (s *LoyaltyService) Redeem(ctx context.Context, customerID, pumpID uint) (*RedeemOutput, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	if !customer.IsVerified {
		return nil, domain.ErrAccountNotVerified
	}

	pump, err := s.pumpRepo.GetByID(ctx, pumpID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPumpNotFound
		}
		return nil, err
	}

	credited := float64(models.LoyaltyPointsCap)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.loyaltyRepo.DebitFullTx(tx, customerID, pumpID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrInsufficientPoints
		}

		return tx.Model(&models.Customer{}).
			Where("id = ?", customerID).
			Update("balance", gorm.Expr("balance + ?", credited)).Error
	})
	if err != nil {
		return nil, err
	}

	if s.notifyService != nil {
		go s.notifyService.NotifyLoyaltyRedeemed(customer, pump.Name, credited)
	}

	return &RedeemOutput{
		PointsSpent: float64(models.LoyaltyPointsCap),
		Credited:    credited,
	}, nil
}

// SetThreshold changes a pump's accrual rate. Admins may change any pump;
// a manager only the pump they manage. Open balances and already-earned
// points are untouched, the new rate applies to future sales only.
func (s *LoyaltyService) SetThreshold(ctx context.Context, pumpID uint, threshold int, actorID uint, actorRole string) (*models.Pump, error) {
	if threshold < 1 {
		return nil, domain.ErrInvalidInput
	}

	pump, err := s.pumpRepo.GetByID(ctx, pumpID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPumpNotFound
		}
		return nil, err
	}

	switch actorRole {
	case jwt.ActorAdmin:
		// always allowed
	case jwt.ActorEmployee:
		if pump.ManagerID == nil || *pump.ManagerID != actorID {
			return nil, domain.ErrForbidden
		}
	default:
		return nil, domain.ErrForbidden
	}

	if _, err := s.pumpRepo.SetLoyaltyThreshold(ctx, pumpID, threshold); err != nil {
		return nil, err
	}

	pump.LoyaltyThreshold = threshold
	return pump, nil
}
