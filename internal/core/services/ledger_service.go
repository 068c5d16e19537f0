package services

import (
	"context"
	"errors"
	"math"
	"time"

	"fuelpay-backend/internal/adapters/persistence/models"
	"fuelpay-backend/internal/adapters/persistence/repositories"
	"fuelpay-backend/internal/core/domain"
	"fuelpay-backend/internal/pkg/jwt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerService executes all value movements. Every operation is a single
// database transaction built from guarded single-statement UPDATEs: the
// balance condition sits inside the WHERE clause, so under concurrency
// exactly one of two racing debits can win and nothing goes negative.
type LedgerService struct {
	db            *gorm.DB
	customerRepo  repositories.CustomerRepository
	employeeRepo  repositories.EmployeeRepository
	pumpRepo      *repositories.PumpRepository
	ledgerRepo    *repositories.LedgerRepository
	loyaltyRepo   *repositories.LoyaltyRepository
	idemRepo      *repositories.IdempotencyRepository
	notifyService *NotificationService
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	db *gorm.DB,
	customerRepo repositories.CustomerRepository,
	employeeRepo repositories.EmployeeRepository,
	pumpRepo *repositories.PumpRepository,
	ledgerRepo *repositories.LedgerRepository,
	loyaltyRepo *repositories.LoyaltyRepository,
	idemRepo *repositories.IdempotencyRepository,
	notifyService *NotificationService,
) *LedgerService {
	return &LedgerService{
		db:            db,
		customerRepo:  customerRepo,
		employeeRepo:  employeeRepo,
		pumpRepo:      pumpRepo,
		ledgerRepo:    ledgerRepo,
		loyaltyRepo:   loyaltyRepo,
		idemRepo:      idemRepo,
		notifyService: notifyService,
	}
}

// ensureKey fills in a server-side key when the client sent none.
// Requests without a key still get exactly-once semantics for gateway
// retries that reuse the generated key from the response.
func ensureKey(key string) string {
	if key == "" {
		return uuid.NewString()
	}
	return key
}

// replay checks whether key already completed an operation. Returns the
// recorded ref ID when it did.
func (s *LedgerService) replay(ctx context.Context, key, operation string) (uint, bool, error) {
	record, err := s.idemRepo.GetValid(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if record.Operation != operation {
		return 0, false, domain.ErrConflict
	}
	return record.RefID, true, nil
}

// recordKeyTx stores the idempotency key inside the operation's
// transaction, so the key and its result commit or roll back together.
func (s *LedgerService) recordKeyTx(tx *gorm.DB, key string, accountID uint, operation string, refID uint) error {
	return s.idemRepo.CreateTx(tx, &models.IdempotencyKey{
		Key:       key,
		AccountID: accountID,
		Operation: operation,
		RefID:     refID,
		ExpiresAt: time.Now().Add(models.IdempotencyWindow),
	})
}

// ============================================================
// Transfers
// ============================================================

// TransferInput represents transfer input
type TransferInput struct {
	ReceiverPhone string  `json:"receiver_phone" validate:"required"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Kind          string  `json:"kind" validate:"required,oneof=balance points"`
}

// TransferOutput carries the ledger record and whether it was replayed
type TransferOutput struct {
	Transfer *models.FundsTransfer `json:"transfer"`
	Replayed bool                  `json:"replayed"`
}

// FindReceiver resolves a transfer receiver by phone number so the client
// can show a confirmation screen before committing.
func (s *LedgerService) FindReceiver(ctx context.Context, phone string) (*models.Customer, error) {
	receiver, err := s.customerRepo.GetByPhoneNumber(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	if !receiver.IsVerified {
		return nil, domain.ErrAccountNotVerified
	}
	return receiver, nil
}

// Transfer moves balance or points between two verified customers
func (s *LedgerService) Transfer(ctx context.Context, senderID uint, input *TransferInput, idemKey string) (*TransferOutput, error) {
	if input.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if input.Kind != models.TransferKindBalance && input.Kind != models.TransferKindPoints {
		return nil, domain.ErrInvalidInput
	}
	// Points are integral
	if input.Kind == models.TransferKindPoints && input.Amount != math.Trunc(input.Amount) {
		return nil, domain.ErrInvalidAmount
	}

	key := ensureKey(idemKey)
	if refID, ok, err := s.replay(ctx, key, models.OperationTransfer); err != nil {
		return nil, err
	} else if ok {
		transfer, err := s.ledgerRepo.GetTransferByID(ctx, refID)
		if err != nil {
			return nil, err
		}
		return &TransferOutput{Transfer: transfer, Replayed: true}, nil
	}

	// Validation reads stay outside the transaction; the guarded debit
	// below re-checks the balance at write time anyway.
	sender, err := s.customerRepo.GetByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	if !sender.IsVerified {
		return nil, domain.ErrAccountNotVerified
	}

	receiver, err := s.FindReceiver(ctx, input.ReceiverPhone)
	if err != nil {
		return nil, err
	}
	if receiver.ID == senderID {
		return nil, domain.ErrSelfTransfer
	}

	column := "balance"
	insufficientErr := domain.ErrInsufficientFunds
	if input.Kind == models.TransferKindPoints {
		column = "points"
		insufficientErr = domain.ErrInsufficientPoints
	}

	transfer := &models.FundsTransfer{
		SenderID:   senderID,
		ReceiverID: receiver.ID,
		Amount:     input.Amount,
		Kind:       input.Kind,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		debit := tx.Model(&models.Customer{}).
			Where("id = ? AND "+column+" >= ?", senderID, input.Amount).
			Update(column, gorm.Expr(column+" - ?", input.Amount))
		if debit.Error != nil {
			return debit.Error
		}
		if debit.RowsAffected == 0 {
			return insufficientErr
		}

		if err := tx.Model(&models.Customer{}).
			Where("id = ?", receiver.ID).
			Update(column, gorm.Expr(column+" + ?", input.Amount)).Error; err != nil {
			return err
		}

		if err := tx.Create(transfer).Error; err != nil {
			return err
		}

		return s.recordKeyTx(tx, key, senderID, models.OperationTransfer, transfer.ID)
	})

	if err != nil {
		// A racing retry committed the same key first: replay its result
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if refID, ok, rerr := s.replay(ctx, key, models.OperationTransfer); rerr == nil && ok {
				replayed, gerr := s.ledgerRepo.GetTransferByID(ctx, refID)
				if gerr != nil {
					return nil, gerr
				}
				return &TransferOutput{Transfer: replayed, Replayed: true}, nil
			}
		}
		return nil, err
	}

	if s.notifyService != nil {
		go s.notifyService.NotifyTransferReceived(receiver, sender.Name, transfer)
	}

	return &TransferOutput{Transfer: transfer, Replayed: false}, nil
}

// ============================================================
// Top-ups
// ============================================================

// TopUpInput represents top-up input
type TopUpInput struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Method string  `json:"method" validate:"required"`
}

// TopUpOutput carries the ledger record and whether it was replayed
type TopUpOutput struct {
	TopUp    *models.TopUp `json:"top_up"`
	Replayed bool          `json:"replayed"`
}

// TopUp credits a verified customer's wallet
func (s *LedgerService) TopUp(ctx context.Context, customerID uint, input *TopUpInput, idemKey string) (*TopUpOutput, error) {
	if input.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if input.Method == "" {
		return nil, domain.ErrInvalidInput
	}

	key := ensureKey(idemKey)
	if refID, ok, err := s.replay(ctx, key, models.OperationTopUp); err != nil {
		return nil, err
	} else if ok {
		topUp, err := s.ledgerRepo.GetTopUpByID(ctx, refID)
		if err != nil {
			return nil, err
		}
		return &TopUpOutput{TopUp: topUp, Replayed: true}, nil
	}

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

	topUp := &models.TopUp{
		CustomerID: customerID,
		Amount:     input.Amount,
		Method:     input.Method,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Customer{}).
			Where("id = ?", customerID).
			Update("balance", gorm.Expr("balance + ?", input.Amount)).Error; err != nil {
			return err
		}

		if err := tx.Create(topUp).Error; err != nil {
			return err
		}

		return s.recordKeyTx(tx, key, customerID, models.OperationTopUp, topUp.ID)
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if refID, ok, rerr := s.replay(ctx, key, models.OperationTopUp); rerr == nil && ok {
				replayed, gerr := s.ledgerRepo.GetTopUpByID(ctx, refID)
				if gerr != nil {
					return nil, gerr
				}
				return &TopUpOutput{TopUp: replayed, Replayed: true}, nil
			}
		}
		return nil, err
	}

	if s.notifyService != nil {
		go s.notifyService.NotifyTopUp(customer, topUp)
	}

	return &TopUpOutput{TopUp: topUp, Replayed: false}, nil
}

// ============================================================
// Fuel sales
// ============================================================

// FuelSaleInput represents fuel sale settlement input
type FuelSaleInput struct {
	CustomerPhone string  `json:"customer_phone" validate:"required"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	PaymentMethod string  `json:"payment_method" validate:"required,oneof=app cash"`
	FuelType      string  `json:"fuel_type" validate:"required,oneof=petrol diesel cng"`
	FuelVolume    float64 `json:"fuel_volume" validate:"required,gt=0"`
}

// FuelSaleOutput carries the sale record, points earned and replay flag
type FuelSaleOutput struct {
	Sale         *models.FuelSale `json:"sale"`
	EarnedPoints int              `json:"earned_points"`
	Replayed     bool             `json:"replayed"`
}

// SettleFuelSale records a fuel purchase rung up by an employee at their
// pump. App payment debits the customer and credits the pump in the same
// transaction; cash payment only records the sale. Both accrue loyalty
// points at the pump's threshold.
func (s *LedgerService) SettleFuelSale(ctx context.Context, employeeID uint, input *FuelSaleInput, idemKey string) (*FuelSaleOutput, error) {
	if input.Amount <= 0 || input.FuelVolume <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if input.PaymentMethod != models.PaymentMethodApp && input.PaymentMethod != models.PaymentMethodCash {
		return nil, domain.ErrInvalidInput
	}
	if input.FuelType != models.FuelTypePetrol && input.FuelType != models.FuelTypeDiesel && input.FuelType != models.FuelTypeCNG {
		return nil, domain.ErrInvalidInput
	}

	key := ensureKey(idemKey)
	if refID, ok, err := s.replay(ctx, key, models.OperationFuelSale); err != nil {
		return nil, err
	} else if ok {
		sale, err := s.ledgerRepo.GetFuelSaleByID(ctx, refID)
		if err != nil {
			return nil, err
		}
		return &FuelSaleOutput{Sale: sale, EarnedPoints: sale.EarnedPoints, Replayed: true}, nil
	}

	employee, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}
	if !employee.IsEmployed {
		return nil, domain.ErrNotEmployed
	}
	if employee.PumpID == nil {
		return nil, domain.ErrNoPumpAssigned
	}

	pump, err := s.pumpRepo.GetByID(ctx, *employee.PumpID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPumpNotFound
		}
		return nil, err
	}

	customer, err := s.customerRepo.GetByPhoneNumber(ctx, input.CustomerPhone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	if !customer.IsVerified {
		return nil, domain.ErrAccountNotVerified
	}

	earned := 0
	if pump.LoyaltyThreshold > 0 {
		earned = int(input.Amount) / pump.LoyaltyThreshold
	}

	sale := &models.FuelSale{
		CustomerID:    customer.ID,
		EmployeeID:    employeeID,
		PumpID:        pump.ID,
		Amount:        input.Amount,
		PaymentMethod: input.PaymentMethod,
		FuelType:      input.FuelType,
		FuelVolume:    input.FuelVolume,
		EarnedPoints:  earned,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.PaymentMethod == models.PaymentMethodApp {
			debit := tx.Model(&models.Customer{}).
				Where("id = ? AND balance >= ?", customer.ID, input.Amount).
				Update("balance", gorm.Expr("balance - ?", input.Amount))
			if debit.Error != nil {
				return debit.Error
			}
			if debit.RowsAffected == 0 {
				return domain.ErrInsufficientFunds
			}

			if err := tx.Model(&models.Pump{}).
				Where("id = ?", pump.ID).
				Update("balance", gorm.Expr("balance + ?", input.Amount)).Error; err != nil {
				return err
			}
		}

		if earned > 0 {
			if err := s.loyaltyRepo.AccrueTx(tx, customer.ID, pump.ID, earned); err != nil {
				return err
			}
		}

		if err := tx.Create(sale).Error; err != nil {
			return err
		}

		return s.recordKeyTx(tx, key, employeeID, models.OperationFuelSale, sale.ID)
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if refID, ok, rerr := s.replay(ctx, key, models.OperationFuelSale); rerr == nil && ok {
				replayed, gerr := s.ledgerRepo.GetFuelSaleByID(ctx, refID)
				if gerr != nil {
					return nil, gerr
				}
				return &FuelSaleOutput{Sale: replayed, EarnedPoints: replayed.EarnedPoints, Replayed: true}, nil
			}
		}
		return nil, err
	}

	if s.notifyService != nil {
		go s.notifyService.NotifyFuelSale(customer, pump.Name, sale, earned)
	}

	return &FuelSaleOutput{Sale: sale, EarnedPoints: earned, Replayed: false}, nil
}

// ============================================================
// Histories
// ============================================================

// ListTransfers lists a customer's transfer history, newest first
func (s *LedgerService) ListTransfers(ctx context.Context, customerID uint, offset, limit int) ([]*models.FundsTransfer, int64, error) {
	return s.ledgerRepo.ListTransfersByCustomer(ctx, customerID, offset, limit)
}

// ListTopUps lists a customer's top-up history, newest first
func (s *LedgerService) ListTopUps(ctx context.Context, customerID uint, offset, limit int) ([]*models.TopUp, int64, error) {
	return s.ledgerRepo.ListTopUpsByCustomer(ctx, customerID, offset, limit)
}

// ListFuelSales lists a customer's fuel purchase history, newest first
func (s *LedgerService) ListFuelSales(ctx context.Context, customerID uint, offset, limit int) ([]*models.FuelSale, int64, error) {
	return s.ledgerRepo.ListFuelSalesByCustomer(ctx, customerID, offset, limit)
}

// ListPumpFuelSales lists a pump's sales, newest first
func (s *LedgerService) ListPumpFuelSales(ctx context.Context, pumpID uint, offset, limit int) ([]*models.FuelSale, int64, error) {
	return s.ledgerRepo.ListFuelSalesByPump(ctx, pumpID, offset, limit)
}

// ListMyFuelSales lists the sales the authenticated employee rang up
func (s *LedgerService) ListMyFuelSales(ctx context.Context, employeeID uint, offset, limit int) ([]*models.FuelSale, int64, error) {
	return s.ledgerRepo.ListFuelSalesByEmployee(ctx, employeeID, offset, limit)
}

// ListEmployeeFuelSales lists another employee's sales for oversight.
// Admins see anyone; an employee requester must manage the pump the
// target works at.
func (s *LedgerService) ListEmployeeFuelSales(ctx context.Context, requesterID uint, requesterRole string, employeeID uint, offset, limit int) ([]*models.FuelSale, int64, error) {
	if requesterRole != jwt.ActorAdmin {
		if requesterRole != jwt.ActorEmployee {
			return nil, 0, domain.ErrForbidden
		}

		target, err := s.employeeRepo.GetByID(ctx, employeeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, domain.ErrEmployeeNotFound
			}
			return nil, 0, err
		}
		if target.PumpID == nil {
			return nil, 0, domain.ErrForbidden
		}

		pump, err := s.pumpRepo.GetByID(ctx, *target.PumpID)
		if err != nil {
			return nil, 0, err
		}
		if pump.ManagerID == nil || *pump.ManagerID != requesterID {
			return nil, 0, domain.ErrForbidden
		}
	}

	return s.ledgerRepo.ListFuelSalesByEmployee(ctx, employeeID, offset, limit)
}
