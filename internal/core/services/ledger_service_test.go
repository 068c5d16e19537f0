package services

import (
	"context"
	"sync"
	"testing"

	"fuelpay-backend/internal/adapters/persistence/models"
	"fuelpay-backend/internal/core/domain"

	"github.com/stretchr/testify/require"
)

func TestTransferBalanceConservesTotal(t *testing.T) {
	db := newTestDB(t)
	svc := newLedgerService(db)
	ctx := context.Background()

	sender := createCustomer(t, db, "alice", "0811111111", 500, true)
	receiver := createCustomer(t, db, "bob", "0822222222", 100, true)

	out, err := svc.Transfer(ctx, sender.ID, &TransferInput{
		ReceiverPhone: receiver.PhoneNumber,
		Amount:        120,
		Kind:          models.TransferKindBalance,
	}, "")
	require.NoError(t, err)
	require.False(t, out.Replayed)
	require.Equal(t, sender.ID, out.Transfer.SenderID)
	require.Equal(t, receiver.ID, out.Transfer.ReceiverID)

	require.Equal(t, 380.0, customerBalance(t, db, sender.ID))
	require.Equal(t, 220.0, customerBalance(t, db, receiver.ID))

	// One immutable ledger record
	var count int64
	require.NoError(t, db.Model(&models.FundsTransfer{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestTransferInsufficientBalance(t *testing.T) {
	db := newTestDB(t)
	svc := newLedgerService(db)
	ctx := context.Background()

	sender := createCustomer(t, db, "alice", "0811111111", 50, true)
	receiver := createCustomer(t, db, "bob", "0822222222", 0, true)

	_, err := svc.Transfer(ctx, sender.ID, &TransferInput{
		ReceiverPhone: receiver.PhoneNumber,
		Amount:        51,
		Kind:          models.TransferKindBalance,
	}, "")
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// Nothing moved, nothing recorded
	require.Equal(t, 50.0, customerBalance(t, db, sender.ID))
	require.Equal(t, 0.0, customerBalance(t, db, receiver.ID))
	var count int64
	require.NoError(t, db.Model(&models.FundsTransfer{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestTransferPoints(t *testing.T) {
	db := newTestDB(t)
	svc := newLedgerService(db)
	ctx := context.Background()

	sender := createCustomer(t, db, "alice", "0811111111", 0, true)
	receiver := createCustomer(t, db, "bob", "0822222222", 0, true)
	require.NoError(t, db.Model(&models.Customer{}).Where("id = ?", sender.ID).Update("points", 30).Error)

	// Fractional point amounts are rejected
	_, err := svc.Transfer(ctx, sender.ID, &TransferInput{
		ReceiverPhone: receiver.PhoneNumber,
		Amount:        10.5,
		Kind:          models.TransferKindPoints,
	}, "")
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	out, err := svc.Transfer(ctx, sender.ID, &TransferInput{
		ReceiverPhone: receiver.PhoneNumber,
		Amount:        10,
		Kind:          models.TransferKindPoints,
	}, "")
	require.NoError(t, err)
	require.Equal(t, models.TransferKindPoints, out.Transfer.Kind)

	require.Equal(t, 20, customerPoints(t, db, sender.ID))
	require.Equal(t, 10, customerPoints(t, db, receiver.ID))
	// Wallet balances untouched
	require.Equal(t, 0.0, customerBalance(t, db, sender.ID))
}

func TestTransferRejectsSelfAndUnverified(t *testing.T) {
	db := newTestDB(t)
	svc := newLedgerService(db)
	ctx := context.Background()

	sender := createCustomer(t, db, "alice", "0811111111", 100, true)
	unverified := createCustomer(t, db, "carol", "0833333333", 100, false)

	_, err := svc.Transfer(ctx, sender.ID, &TransferInput{
		ReceiverPhone: sender.PhoneNumber,
		Amount:        10,
		Kind:          models.TransferKindBalance,
	}, "")
	require.ErrorIs(t, err, domain.ErrSelfTransfer)

	_, err = svc.Transfer(ctx, sender.ID, &TransferInput{
		ReceiverPhone: unverified.PhoneNumber,
		Amount:        10,
		Kind:          models.TransferKindBalance,
	}, "")
	require.ErrorIs(t, err, domain.ErrAccountNotVerified)

	_, err = svc.Transfer(ctx, unverified.ID, &TransferInput{
		ReceiverPhone: sender.PhoneNumber,
		Amount:        10,
		Kind:          models.TransferKindBalance,
	}, "")
	require.ErrorIs(t, err, domain.ErrAccountNotVerified)
}

func TestTransferIdempotentReplay(t *testing.T) {
	db := newTestDB(t)
	svc := newLedgerService(db)
	ctx := context.Background()

	sender := createCustomer(t, db, "alice", "0811111111", 200, true)
	receiver := createCustomer(t, db, "bob", "0822222222", 0, true)

	input := &TransferInput{
		ReceiverPhone: receiver.PhoneNumber,
		Amount:        75,
		Kind:          models.TransferKindBalance,
	}

	first, err := svc.Transfer(ctx, sender.ID, input, "retry-key-1")
	require.NoError(t, err)
	require.False(t, first.Replayed)

	// Retry with the same key replays the original result without
	// moving value again
	second, err := svc.Transfer(ctx, sender.ID, input, "retry-key-1")
	require.NoError(t, err)
	require.True(t, second.Replayed)
	require.Equal(t, first.Transfer.ID, second.Transfer.ID)

	require.Equal(t, 125.0, customerBalance(t, db, sender.ID))
	require.Equal(t, 75.0, customerBalance(t, db, receiver.ID))
	var count int64
	require.NoError(t, db.Model(&models.FundsTransfer{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestIdempotencyKeyOperationMismatch(t *testing.T) {
	db := newTestDB(t)
	svc := newLedgerService(db)
	ctx := context.Background()

	sender := createCustomer(t, db, "alice", "0811111111", 200, true)
	receiver := createCustomer(t, db, "bob", "0822222222", 0, true)

	_, err := svc.Transfer(ctx, sender.ID, &TransferInput{
		ReceiverPhone: receiver.PhoneNumber,
		Amount:        10,
		Kind:          models.TransferKindBalance,
	}, "shared-key")
	require.NoError(t, err)

	// Same key reused for a different operation is a conflict, not a replay
	_, err = svc.TopUp(ctx, sender.ID, &TopUpInput{Amount: 10, Method: "card"}, "shared-key")
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestTopUpCreditsBalance(t *testing.T) {
	db := newTestDB(t)
	svc := newLedgerService(db)
	ctx := context.Background()

	customer := createCustomer(t, db, "alice", "0811111111", 10, true)

	out, err := svc.TopUp(ctx, customer.ID, &TopUpInput{Amount: 90, Method: "card"}, "")
	require.NoError(t, err)
	require.False(t, out.Replayed)
	require.Equal(t, 90.0, out.TopUp.Amount)
	require.Equal(t, 100.0, customerBalance(t, db, customer.ID))

	_, err = svc.TopUp(ctx, customer.ID, &TopUpInput{Amount: -5, Method: "card"}, "")
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestFuelSaleAppPayment(t *testing.T) {
	db := newTestDB(t)
	svc := newLedgerService(db)
	ctx := context.Background()

	pump := createPump(t, db, "Station 1", 50)
	employee := createEmployee(t, db, "eve", models.EmployeeTypeRefueler, true, &pump.ID)
	customer := createCustomer(t, db, "alice", "0811111111", 300, true)

	out, err := svc.SettleFuelSale(ctx, employee.ID, &FuelSaleInput{
		CustomerPhone: customer.PhoneNumber,
		Amount:        125,
		PaymentMethod: models.PaymentMethodApp,
		FuelType:      models.FuelTypePetrol,
		FuelVolume:    3.2,
	}, "")
	require.NoError(t, err)
	require.False(t, out.Replayed)

	// 125 / threshold 50 = 2 whole points
	require.Equal(t, 2, out.EarnedPoints)
	require.Equal(t, 2, loyaltyPoints(t, db, customer.ID, pump.ID))

	// Customer debited, pump credited
	require.Equal(t, 175.0, customerBalance(t, db, customer.ID))
	var got models.Pump
	require.NoError(t, db.First(&got, pump.ID).Error)
	require.Equal(t, 125.0, got.Balance)
}

func TestFuelSaleReplayEchoesEarnedPoints(t *testing.T) {
	db := newTestDB(t)
	svc := newLedgerService(db)
	ctx := context.Background()

	pump := createPump(t, db, "Station 1", 50)
	employee := createEmployee(t, db, "eve", models.EmployeeTypeRefueler, true, &pump.ID)
	customer := createCustomer(t, db, "alice", "0811111111", 300, true)

	input := &FuelSaleInput{
		CustomerPhone: customer.PhoneNumber,
		Amount:        125,
		PaymentMethod: models.PaymentMethodApp,
		FuelType:      models.FuelTypePetrol,
		FuelVolume:    3.2,
	}

	first, err := svc.SettleFuelSale(ctx, employee.ID, input, "sale-retry-key")
	require.NoError(t, err)
	require.Equal(t, 2, first.EarnedPoints)

	// The replay carries the originally earned points, not zero
	second, err := svc.SettleFuelSale(ctx, employee.ID, input, "sale-retry-key")
	require.NoError(t, err)
	require.True(t, second.Replayed)
	require.Equal(t, first.Sale.ID, second.Sale.ID)
	require.Equal(t, 2, second.EarnedPoints)

	// And nothing moved or accrued twice
	require.Equal(t, 175.0, customerBalance(t, db, customer.ID))
	require.Equal(t, 2, loyaltyPoints(t, db, customer.ID, pump.ID))
}

func TestFuelSaleCashOnlyRecordsAndAccrues(t *testing.T) {
	db := newTestDB(t)
	svc := newLedgerService(db)
	ctx := context.Background()

	pump := createPump(t, db, "Station 1", 100)
	employee := createEmployee(t, db, "eve", models.EmployeeTypeRefueler, true, &pump.ID)
	customer := createCustomer(t, db, "alice", "0811111111", 40, true)

	out, err := svc.SettleFuelSale(ctx, employee.ID, &FuelSaleInput{
		CustomerPhone: customer.PhoneNumber,
		Amount:        250,
		PaymentMethod: models.PaymentMethodCash,
		FuelType:      models.FuelTypeDiesel,
		FuelVolume:    8,
	}, "")
	require.NoError(t, err)
	require.Equal(t, 2, out.EarnedPoints)

	// Cash never touches the wallet or the pump balance
	require.Equal(t, 40.0, customerBalance(t, db, customer.ID))
	var got models.Pump
	require.NoError(t, db.First(&got, pump.ID).Error)
	require.Equal(t, 0.0, got.Balance)
	require.Equal(t, 2, loyaltyPoints(t, db, customer.ID, pump.ID))
}

func TestFuelSaleInsufficientBalance(t *testing.T) {
	db := newTestDB(t)
	svc := newLedgerService(db)
	ctx := context.Background()

	pump := createPump(t, db, "Station 1", 50)
	employee := createEmployee(t, db, "eve", models.EmployeeTypeRefueler, true, &pump.ID)
	customer := createCustomer(t, db, "alice", "0811111111", 100, true)

	_, err := svc.SettleFuelSale(ctx, employee.ID, &FuelSaleInput{
		CustomerPhone: customer.PhoneNumber,
		Amount:        100.01,
		PaymentMethod: models.PaymentMethodApp,
		FuelType:      models.FuelTypePetrol,
		FuelVolume:    2.5,
	}, "")
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// The failed settlement leaves no trace: no sale, no points
	require.Equal(t, 100.0, customerBalance(t, db, customer.ID))
	require.Equal(t, 0, loyaltyPoints(t, db, customer.ID, pump.ID))
	var count int64
	require.NoError(t, db.Model(&models.FuelSale{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestFuelSaleRequiresEmployedAssignedStaff(t *testing.T) {
	db := newTestDB(t)
	svc := newLedgerService(db)
	ctx := context.Background()

	pump := createPump(t, db, "Station 1", 50)
	customer := createCustomer(t, db, "alice", "0811111111", 100, true)

	input := &FuelSaleInput{
		CustomerPhone: customer.PhoneNumber,
		Amount:        50,
		PaymentMethod: models.PaymentMethodCash,
		FuelType:      models.FuelTypeCNG,
		FuelVolume:    4,
	}

	fired := createEmployee(t, db, "fired", models.EmployeeTypeRefueler, false, &pump.ID)
	_, err := svc.SettleFuelSale(ctx, fired.ID, input, "")
	require.ErrorIs(t, err, domain.ErrNotEmployed)

	floating := createEmployee(t, db, "floating", models.EmployeeTypeRefueler, true, nil)
	_, err = svc.SettleFuelSale(ctx, floating.ID, input, "")
	require.ErrorIs(t, err, domain.ErrNoPumpAssigned)
}

func TestConcurrentTransfersCannotOverdraw(t *testing.T) {
	db := newTestDB(t)
	svc := newLedgerService(db)
	ctx := context.Background()

	sender := createCustomer(t, db, "alice", "0811111111", 100, true)
	receiver := createCustomer(t, db, "bob", "0822222222", 0, true)

	// Two racing transfers of 80 from a 100 balance: the guarded debit
	// lets exactly one through
	input := &TransferInput{
		ReceiverPhone: receiver.PhoneNumber,
		Amount:        80,
		Kind:          models.TransferKindBalance,
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Transfer(ctx, sender.ID, input, "")
		}(i)
	}
	wg.Wait()

	var succeeded, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case err == domain.ErrInsufficientFunds:
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, insufficient)

	require.Equal(t, 20.0, customerBalance(t, db, sender.ID))
	require.Equal(t, 80.0, customerBalance(t, db, receiver.ID))
}
