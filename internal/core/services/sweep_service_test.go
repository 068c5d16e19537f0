package services

import (
	"testing"
	"time"

	"fuelpay-backend/internal/adapters/persistence/models"
	"fuelpay-backend/internal/adapters/persistence/repositories"

	"github.com/stretchr/testify/require"
)

func TestSweepPurgesStaleAndExpired(t *testing.T) {
	db := newTestDB(t)
	svc := NewSweepService(
		repositories.NewCustomerRepository(db),
		repositories.NewEmployeeRepository(db),
		repositories.NewChallengeRepository(db),
		repositories.NewIdempotencyRepository(db),
	)

	// A never-verified customer past the grace window and a fresh one
	stale := createCustomer(t, db, "stale", "0811111111", 0, false)
	require.NoError(t, db.Model(&models.Customer{}).Where("id = ?", stale.ID).
		Update("created_at", time.Now().Add(-48*time.Hour)).Error)
	fresh := createCustomer(t, db, "fresh", "0822222222", 0, false)
	verified := createCustomer(t, db, "kept", "0833333333", 0, true)
	require.NoError(t, db.Model(&models.Customer{}).Where("id = ?", verified.ID).
		Update("created_at", time.Now().Add(-48*time.Hour)).Error)

	// One expired and one live verification code
	now := time.Now()
	require.NoError(t, db.Create(&models.VerificationChallenge{
		AccountType: models.AccountTypeCustomer, AccountID: fresh.ID,
		Purpose: models.ChallengePurposeSignup, Code: "111111",
		IssuedAt: now.Add(-time.Hour), ExpiresAt: now.Add(-45 * time.Minute),
	}).Error)
	require.NoError(t, db.Create(&models.VerificationChallenge{
		AccountType: models.AccountTypeCustomer, AccountID: fresh.ID,
		Purpose: models.ChallengePurposeSignup, Code: "222222",
		IssuedAt: now, ExpiresAt: now.Add(models.ChallengeTTL),
	}).Error)

	// One idempotency key past its replay window and one inside it
	require.NoError(t, db.Create(&models.IdempotencyKey{
		Key: "old-key", AccountID: verified.ID, Operation: models.OperationTopUp,
		RefID: 1, ExpiresAt: now.Add(-time.Minute),
	}).Error)
	require.NoError(t, db.Create(&models.IdempotencyKey{
		Key: "live-key", AccountID: verified.ID, Operation: models.OperationTopUp,
		RefID: 2, ExpiresAt: now.Add(models.IdempotencyWindow),
	}).Error)

	svc.Sweep()

	// Stale unverified customer gone, fresh and verified ones kept
	var customers []models.Customer
	require.NoError(t, db.Find(&customers).Error)
	require.Len(t, customers, 2)
	for _, c := range customers {
		require.NotEqual(t, stale.ID, c.ID)
	}

	var challenges []models.VerificationChallenge
	require.NoError(t, db.Find(&challenges).Error)
	require.Len(t, challenges, 1)
	require.Equal(t, "222222", challenges[0].Code)

	var keys []models.IdempotencyKey
	require.NoError(t, db.Find(&keys).Error)
	require.Len(t, keys, 1)
	require.Equal(t, "live-key", keys[0].Key)
}
