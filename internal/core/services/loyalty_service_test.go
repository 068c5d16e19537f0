package services

import (
	"context"
	"testing"

	"fuelpay-backend/internal/adapters/persistence/models"
	"fuelpay-backend/internal/adapters/persistence/repositories"
	"fuelpay-backend/internal/core/domain"
	"fuelpay-backend/internal/pkg/jwt"

	"github.com/stretchr/testify/require"
)

func TestAccrualCapsAtCeiling(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewLoyaltyRepository(db)

	customer := createCustomer(t, db, "alice", "0811111111", 0, true)
	pump := createPump(t, db, "Station 1", 100)

	// First purchase creates the entry
	require.NoError(t, repo.AccrueTx(db, customer.ID, pump.ID, 60))
	require.Equal(t, 60, loyaltyPoints(t, db, customer.ID, pump.ID))

	// Second accrual would cross the cap: clamp, never roll over
	require.NoError(t, repo.AccrueTx(db, customer.ID, pump.ID, 60))
	require.Equal(t, models.LoyaltyPointsCap, loyaltyPoints(t, db, customer.ID, pump.ID))

	// Accruing at the cap stays at the cap
	require.NoError(t, repo.AccrueTx(db, customer.ID, pump.ID, 5))
	require.Equal(t, models.LoyaltyPointsCap, loyaltyPoints(t, db, customer.ID, pump.ID))
}

func TestAccrualIsPerPump(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewLoyaltyRepository(db)

	customer := createCustomer(t, db, "alice", "0811111111", 0, true)
	pumpA := createPump(t, db, "Station A", 100)
	pumpB := createPump(t, db, "Station B", 100)

	require.NoError(t, repo.AccrueTx(db, customer.ID, pumpA.ID, 30))
	require.NoError(t, repo.AccrueTx(db, customer.ID, pumpB.ID, 7))

	require.Equal(t, 30, loyaltyPoints(t, db, customer.ID, pumpA.ID))
	require.Equal(t, 7, loyaltyPoints(t, db, customer.ID, pumpB.ID))
}

func TestGetPointsImplicitZero(t *testing.T) {
	db := newTestDB(t)
	svc := newLoyaltyService(db)
	ctx := context.Background()

	customer := createCustomer(t, db, "alice", "0811111111", 0, true)
	pump := createPump(t, db, "Station 1", 100)

	// Never bought fuel there: zero balance, not an error
	entry, err := svc.GetPoints(ctx, customer.ID, pump.ID)
	require.NoError(t, err)
	require.Equal(t, 0, entry.Points)
	require.Equal(t, pump.ID, entry.PumpID)
}

func TestRedeemFullBalance(t *testing.T) {
	db := newTestDB(t)
	svc := newLoyaltyService(db)
	repo := repositories.NewLoyaltyRepository(db)
	ctx := context.Background()

	customer := createCustomer(t, db, "alice", "0811111111", 25, true)
	pump := createPump(t, db, "Station 1", 100)
	require.NoError(t, repo.AccrueTx(db, customer.ID, pump.ID, models.LoyaltyPointsCap))

	out, err := svc.Redeem(ctx, customer.ID, pump.ID)
	require.NoError(t, err)
	require.Equal(t, float64(models.LoyaltyPointsCap), out.PointsSpent)
	require.Equal(t, float64(models.LoyaltyPointsCap), out.Credited)

	require.Equal(t, 125.0, customerBalance(t, db, customer.ID))
	require.Equal(t, 0, loyaltyPoints(t, db, customer.ID, pump.ID))

	// Points are gone; a second redeem fails cleanly
	_, err = svc.Redeem(ctx, customer.ID, pump.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientPoints)
	require.Equal(t, 125.0, customerBalance(t, db, customer.ID))
}

func TestRedeemBelowCap(t *testing.T) {
	db := newTestDB(t)
	svc := newLoyaltyService(db)
	repo := repositories.NewLoyaltyRepository(db)
	ctx := context.Background()

	customer := createCustomer(t, db, "alice", "0811111111", 0, true)
	pump := createPump(t, db, "Station 1", 100)
	require.NoError(t, repo.AccrueTx(db, customer.ID, pump.ID, 40))

	_, err := svc.Redeem(ctx, customer.ID, pump.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientPoints)

	// Nothing moved
	require.Equal(t, 0.0, customerBalance(t, db, customer.ID))
	require.Equal(t, 40, loyaltyPoints(t, db, customer.ID, pump.ID))
}

func TestRedeemRequiresVerifiedCustomer(t *testing.T) {
	db := newTestDB(t)
	svc := newLoyaltyService(db)
	ctx := context.Background()

	customer := createCustomer(t, db, "alice", "0811111111", 0, false)
	pump := createPump(t, db, "Station 1", 100)

	_, err := svc.Redeem(ctx, customer.ID, pump.ID)
	require.ErrorIs(t, err, domain.ErrAccountNotVerified)
}

func TestSetThresholdAuthorization(t *testing.T) {
	db := newTestDB(t)
	svc := newLoyaltyService(db)
	ctx := context.Background()

	pump := createPump(t, db, "Station 1", 100)
	manager := createEmployee(t, db, "mgr", models.EmployeeTypeManager, true, &pump.ID)
	require.NoError(t, db.Model(&models.Pump{}).Where("id = ?", pump.ID).Update("manager_id", manager.ID).Error)
	other := createEmployee(t, db, "other", models.EmployeeTypeManager, true, nil)

	// Admin may change any pump
	updated, err := svc.SetThreshold(ctx, pump.ID, 50, 1, jwt.ActorAdmin)
	require.NoError(t, err)
	require.Equal(t, 50, updated.LoyaltyThreshold)

	// The pump's manager may change it
	updated, err = svc.SetThreshold(ctx, pump.ID, 75, manager.ID, jwt.ActorEmployee)
	require.NoError(t, err)
	require.Equal(t, 75, updated.LoyaltyThreshold)

	// Any other employee may not
	_, err = svc.SetThreshold(ctx, pump.ID, 10, other.ID, jwt.ActorEmployee)
	require.ErrorIs(t, err, domain.ErrForbidden)

	// Neither may a customer token
	_, err = svc.SetThreshold(ctx, pump.ID, 10, 1, jwt.ActorCustomer)
	require.ErrorIs(t, err, domain.ErrForbidden)

	// Rate must be at least 1
	_, err = svc.SetThreshold(ctx, pump.ID, 0, 1, jwt.ActorAdmin)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	var got models.Pump
	require.NoError(t, db.First(&got, pump.ID).Error)
	require.Equal(t, 75, got.LoyaltyThreshold)
}

func TestNewThresholdAppliesToFutureSales(t *testing.T) {
	db := newTestDB(t)
	loyaltySvc := newLoyaltyService(db)
	ledgerSvc := newLedgerService(db)
	ctx := context.Background()

	pump := createPump(t, db, "Station 1", 100)
	employee := createEmployee(t, db, "eve", models.EmployeeTypeRefueler, true, &pump.ID)
	customer := createCustomer(t, db, "alice", "0811111111", 1000, true)

	out, err := ledgerSvc.SettleFuelSale(ctx, employee.ID, &FuelSaleInput{
		CustomerPhone: customer.PhoneNumber,
		Amount:        200,
		PaymentMethod: models.PaymentMethodApp,
		FuelType:      models.FuelTypePetrol,
		FuelVolume:    5,
	}, "")
	require.NoError(t, err)
	require.Equal(t, 2, out.EarnedPoints)

	_, err = loyaltySvc.SetThreshold(ctx, pump.ID, 50, 1, jwt.ActorAdmin)
	require.NoError(t, err)

	// Earned balance is untouched; the new rate kicks in from here on
	require.Equal(t, 2, loyaltyPoints(t, db, customer.ID, pump.ID))

	out, err = ledgerSvc.SettleFuelSale(ctx, employee.ID, &FuelSaleInput{
		CustomerPhone: customer.PhoneNumber,
		Amount:        200,
		PaymentMethod: models.PaymentMethodApp,
		FuelType:      models.FuelTypePetrol,
		FuelVolume:    5,
	}, "")
	require.NoError(t, err)
	require.Equal(t, 4, out.EarnedPoints)
	require.Equal(t, 6, loyaltyPoints(t, db, customer.ID, pump.ID))
}
