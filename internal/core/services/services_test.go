package services

import (
	"fmt"
	"testing"

	"fuelpay-backend/internal/adapters/persistence/models"
	"fuelpay-backend/internal/adapters/persistence/repositories"
	"fuelpay-backend/internal/pkg/password"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory database. Shared cache keeps the
// database alive across the pool's connections so concurrent transactions
// in a test see the same data.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func newLedgerService(db *gorm.DB) *LedgerService {
	return NewLedgerService(
		db,
		repositories.NewCustomerRepository(db),
		repositories.NewEmployeeRepository(db),
		repositories.NewPumpRepository(db),
		repositories.NewLedgerRepository(db),
		repositories.NewLoyaltyRepository(db),
		repositories.NewIdempotencyRepository(db),
		nil,
	)
}

func newVerificationService(db *gorm.DB) *VerificationService {
	return NewVerificationService(
		db,
		repositories.NewCustomerRepository(db),
		repositories.NewEmployeeRepository(db),
		repositories.NewChallengeRepository(db),
		nil,
	)
}

func newLoyaltyService(db *gorm.DB) *LoyaltyService {
	return NewLoyaltyService(
		db,
		repositories.NewCustomerRepository(db),
		repositories.NewPumpRepository(db),
		repositories.NewLoyaltyRepository(db),
		nil,
	)
}

func createCustomer(t *testing.T, db *gorm.DB, name, phone string, balance float64, verified bool) *models.Customer {
	t.Helper()
	hashed, err := password.Hash("password123")
	require.NoError(t, err)
	customer := &models.Customer{
		Name:        name,
		Email:       name + "@test.example",
		Password:    hashed,
		PhoneNumber: phone,
		Balance:     balance,
		IsVerified:  verified,
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func createEmployee(t *testing.T, db *gorm.DB, name string, empType string, employed bool, pumpID *uint) *models.Employee {
	t.Helper()
	hashed, err := password.Hash("password123")
	require.NoError(t, err)
	employee := &models.Employee{
		Name:        name,
		Email:       name + "@test.example",
		Password:    hashed,
		PhoneNumber: "09" + name,
		Type:        empType,
		IsEmployed:  employed,
		PumpID:      pumpID,
		IsVerified:  true,
	}
	require.NoError(t, db.Create(employee).Error)
	return employee
}

func createPump(t *testing.T, db *gorm.DB, name string, threshold int) *models.Pump {
	t.Helper()
	pump := &models.Pump{
		Name:             name,
		Location:         "Test Road",
		Latitude:         13.75,
		Longitude:        100.5,
		LoyaltyThreshold: threshold,
		AddedBy:          1,
	}
	require.NoError(t, db.Create(pump).Error)
	return pump
}

func customerBalance(t *testing.T, db *gorm.DB, id uint) float64 {
	t.Helper()
	var customer models.Customer
	require.NoError(t, db.First(&customer, id).Error)
	return customer.Balance
}

func customerPoints(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var customer models.Customer
	require.NoError(t, db.First(&customer, id).Error)
	return customer.Points
}

func loyaltyPoints(t *testing.T, db *gorm.DB, customerID, pumpID uint) int {
	t.Helper()
	var entry models.LoyaltyEntry
	err := db.Where("customer_id = ? AND pump_id = ?", customerID, pumpID).First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return 0
	}
	require.NoError(t, err)
	return entry.Points
}
