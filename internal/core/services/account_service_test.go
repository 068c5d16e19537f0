package services

import (
	"context"
	"testing"

	"fuelpay-backend/internal/adapters/persistence/models"
	"fuelpay-backend/internal/adapters/persistence/repositories"
	"fuelpay-backend/internal/core/domain"
	"fuelpay-backend/internal/pkg/jwt"
	"fuelpay-backend/internal/pkg/password"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAccountService(db *gorm.DB) *AccountService {
	return NewAccountService(
		repositories.NewCustomerRepository(db),
		repositories.NewEmployeeRepository(db),
		repositories.NewPumpRepository(db),
	)
}

func newPumpService(db *gorm.DB) *PumpService {
	return NewPumpService(
		repositories.NewPumpRepository(db),
		repositories.NewEmployeeRepository(db),
	)
}

func TestChangePasswordVerifiesCurrent(t *testing.T) {
	db := newTestDB(t)
	svc := newAccountService(db)
	ctx := context.Background()

	customer := createCustomer(t, db, "alice", "0810000001", 0, true)

	err := svc.ChangePassword(ctx, models.AccountTypeCustomer, customer.ID, "wrong-password", "newpassword")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, models.AccountTypeCustomer, customer.ID, "password123", "short")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	err = svc.ChangePassword(ctx, models.AccountTypeCustomer, customer.ID, "password123", "newpassword")
	require.NoError(t, err)

	var updated models.Customer
	require.NoError(t, db.First(&updated, customer.ID).Error)
	require.True(t, password.Verify("newpassword", updated.Password))
	require.False(t, password.Verify("password123", updated.Password))
}

func TestChangePasswordEmployee(t *testing.T) {
	db := newTestDB(t)
	svc := newAccountService(db)
	ctx := context.Background()

	employee := createEmployee(t, db, "bob", models.EmployeeTypeRefueler, true, nil)

	err := svc.ChangePassword(ctx, models.AccountTypeEmployee, employee.ID, "password123", "newpassword")
	require.NoError(t, err)

	var updated models.Employee
	require.NoError(t, db.First(&updated, employee.ID).Error)
	require.True(t, password.Verify("newpassword", updated.Password))
}

func TestAddStaffAuthorization(t *testing.T) {
	db := newTestDB(t)
	svc := newPumpService(db)
	ctx := context.Background()

	pump := createPump(t, db, "north", 100)
	otherPump := createPump(t, db, "south", 100)

	manager := createEmployee(t, db, "mgr", models.EmployeeTypeManager, true, &pump.ID)
	require.NoError(t, db.Model(pump).Update("manager_id", manager.ID).Error)

	refueler := createEmployee(t, db, "ref", models.EmployeeTypeRefueler, false, nil)

	// The manager staffs their own pump; the new hire becomes employed there.
	staffed, err := svc.AddStaff(ctx, pump.ID, refueler.ID, manager.ID, jwt.ActorEmployee)
	require.NoError(t, err)
	require.True(t, staffed.IsEmployed)
	require.NotNil(t, staffed.PumpID)
	require.Equal(t, pump.ID, *staffed.PumpID)

	// But not somebody else's pump.
	_, err = svc.AddStaff(ctx, otherPump.ID, refueler.ID, manager.ID, jwt.ActorEmployee)
	require.ErrorIs(t, err, domain.ErrForbidden)

	// An admin can staff any pump.
	moved, err := svc.AddStaff(ctx, otherPump.ID, refueler.ID, 1, jwt.ActorAdmin)
	require.NoError(t, err)
	require.Equal(t, otherPump.ID, *moved.PumpID)

	// Only refuelers can be assigned as staff.
	_, err = svc.AddStaff(ctx, pump.ID, manager.ID, 1, jwt.ActorAdmin)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAssignManagerReplacesPrevious(t *testing.T) {
	db := newTestDB(t)
	svc := newPumpService(db)
	ctx := context.Background()

	pump := createPump(t, db, "west", 100)
	first := createEmployee(t, db, "m1", models.EmployeeTypeManager, true, nil)
	second := createEmployee(t, db, "m2", models.EmployeeTypeManager, true, nil)

	_, err := svc.AssignManager(ctx, pump.ID, first.ID)
	require.NoError(t, err)

	// Reassignment sticks even though the pump was loaded with the old
	// manager attached
	updated, err := svc.AssignManager(ctx, pump.ID, second.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.ManagerID)
	require.Equal(t, second.ID, *updated.ManagerID)

	var got models.Pump
	require.NoError(t, db.First(&got, pump.ID).Error)
	require.NotNil(t, got.ManagerID)
	require.Equal(t, second.ID, *got.ManagerID)
}

func TestDashboardStats(t *testing.T) {
	db := newTestDB(t)
	ledgerSvc := newLedgerService(db)
	dashSvc := NewDashboardService(db)
	ctx := context.Background()

	pump := createPump(t, db, "main", 100)
	employee := createEmployee(t, db, "staff", models.EmployeeTypeRefueler, true, &pump.ID)
	createEmployee(t, db, "former", models.EmployeeTypeRefueler, false, nil)
	payer := createCustomer(t, db, "payer", "0810000010", 500, true)
	createCustomer(t, db, "lurker", "0810000011", 0, false)

	_, err := ledgerSvc.TopUp(ctx, payer.ID, &TopUpInput{Amount: 200, Method: "promptpay"}, "")
	require.NoError(t, err)

	_, err = ledgerSvc.SettleFuelSale(ctx, employee.ID, &FuelSaleInput{
		CustomerPhone: payer.PhoneNumber,
		Amount:        150,
		FuelVolume:    4.2,
		FuelType:      "diesel",
		PaymentMethod: models.PaymentMethodApp,
	}, "")
	require.NoError(t, err)

	stats, err := dashSvc.GetStats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.Customers)
	require.Equal(t, int64(1), stats.VerifiedCustomers)
	require.Equal(t, int64(2), stats.Employees)
	require.Equal(t, int64(1), stats.ActiveEmployees)
	require.Equal(t, int64(1), stats.Pumps)
	require.Equal(t, int64(1), stats.FuelSales)
	require.InDelta(t, 4.2, stats.FuelSalesVolume, 0.001)
	require.InDelta(t, 150, stats.FuelSalesAmount, 0.001)
	require.Equal(t, int64(0), stats.Transfers)
	require.Equal(t, int64(1), stats.TopUps)
	require.InDelta(t, 200, stats.TopUpAmount, 0.001)
}

func TestEmployeeSalesOversight(t *testing.T) {
	db := newTestDB(t)
	ledgerSvc := newLedgerService(db)
	ctx := context.Background()

	pump := createPump(t, db, "east", 100)
	manager := createEmployee(t, db, "boss", models.EmployeeTypeManager, true, &pump.ID)
	require.NoError(t, db.Model(pump).Update("manager_id", manager.ID).Error)
	refueler := createEmployee(t, db, "hand", models.EmployeeTypeRefueler, true, &pump.ID)
	outsider := createEmployee(t, db, "else", models.EmployeeTypeManager, true, nil)
	customer := createCustomer(t, db, "buyer", "0810000020", 300, true)

	_, err := ledgerSvc.SettleFuelSale(ctx, refueler.ID, &FuelSaleInput{
		CustomerPhone: customer.PhoneNumber,
		Amount:        80,
		FuelVolume:    2.1,
		FuelType:      "petrol",
		PaymentMethod: models.PaymentMethodCash,
	}, "")
	require.NoError(t, err)

	// The refueler sees their own sales.
	mine, total, err := ledgerSvc.ListMyFuelSales(ctx, refueler.ID, 0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, mine, 1)

	// The pump's manager sees them too.
	sales, total, err := ledgerSvc.ListEmployeeFuelSales(ctx, manager.ID, jwt.ActorEmployee, refueler.ID, 0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, sales, 1)

	// An unrelated manager does not.
	_, _, err = ledgerSvc.ListEmployeeFuelSales(ctx, outsider.ID, jwt.ActorEmployee, refueler.ID, 0, 10)
	require.ErrorIs(t, err, domain.ErrForbidden)

	// An admin sees anyone.
	_, total, err = ledgerSvc.ListEmployeeFuelSales(ctx, 1, jwt.ActorAdmin, refueler.ID, 0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
}
