package services

import (
	"context"
	"testing"
	"time"

	"fuelpay-backend/internal/adapters/persistence/models"
	"fuelpay-backend/internal/core/domain"
	"fuelpay-backend/internal/pkg/password"

	"github.com/stretchr/testify/require"
)

func TestSignupVerificationFlow(t *testing.T) {
	db := newTestDB(t)
	svc := newVerificationService(db)
	ctx := context.Background()

	customer := createCustomer(t, db, "alice", "0811111111", 0, false)

	challenge, err := svc.IssueChallenge(ctx, models.AccountTypeCustomer, customer.ID, models.ChallengePurposeSignup)
	require.NoError(t, err)
	require.Len(t, challenge.Code, 6)
	require.True(t, challenge.IsLive(time.Now()))

	// Wrong code never consumes the challenge
	err = svc.ConfirmSignup(ctx, models.AccountTypeCustomer, customer.ID, "000000")
	if challenge.Code != "000000" {
		require.ErrorIs(t, err, domain.ErrCodeMismatch)
	}

	require.NoError(t, svc.ConfirmSignup(ctx, models.AccountTypeCustomer, customer.ID, challenge.Code))

	var got models.Customer
	require.NoError(t, db.First(&got, customer.ID).Error)
	require.True(t, got.IsVerified)

	var consumed models.VerificationChallenge
	require.NoError(t, db.First(&consumed, challenge.ID).Error)
	require.True(t, consumed.Consumed)
}

func TestConfirmSignupRejectsSecondAttempt(t *testing.T) {
	db := newTestDB(t)
	svc := newVerificationService(db)
	ctx := context.Background()

	customer := createCustomer(t, db, "alice", "0811111111", 0, false)

	challenge, err := svc.IssueChallenge(ctx, models.AccountTypeCustomer, customer.ID, models.ChallengePurposeSignup)
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmSignup(ctx, models.AccountTypeCustomer, customer.ID, challenge.Code))

	// The code is consumed and the account verified; a second attempt
	// fails even with the original code
	err = svc.ConfirmSignup(ctx, models.AccountTypeCustomer, customer.ID, challenge.Code)
	require.ErrorIs(t, err, domain.ErrAlreadyVerified)
}

func TestIssueChallengeOnVerifiedAccount(t *testing.T) {
	db := newTestDB(t)
	svc := newVerificationService(db)
	ctx := context.Background()

	customer := createCustomer(t, db, "alice", "0811111111", 0, true)

	_, err := svc.IssueChallenge(ctx, models.AccountTypeCustomer, customer.ID, models.ChallengePurposeSignup)
	require.ErrorIs(t, err, domain.ErrAlreadyVerified)
}

func TestExpiredChallengeCannotConfirm(t *testing.T) {
	db := newTestDB(t)
	svc := newVerificationService(db)
	ctx := context.Background()

	customer := createCustomer(t, db, "alice", "0811111111", 0, false)

	expired := &models.VerificationChallenge{
		AccountType: models.AccountTypeCustomer,
		AccountID:   customer.ID,
		Purpose:     models.ChallengePurposeSignup,
		Code:        "123456",
		IssuedAt:    time.Now().Add(-time.Hour),
		ExpiresAt:   time.Now().Add(-45 * time.Minute),
	}
	require.NoError(t, db.Create(expired).Error)

	err := svc.ConfirmSignup(ctx, models.AccountTypeCustomer, customer.ID, "123456")
	require.ErrorIs(t, err, domain.ErrChallengeExpired)

	var got models.Customer
	require.NoError(t, db.First(&got, customer.ID).Error)
	require.False(t, got.IsVerified)
}

func TestChallengeExpiryBoundary(t *testing.T) {
	db := newTestDB(t)
	svc := newVerificationService(db)
	ctx := context.Background()

	// A code one second past expiry is dead
	lapsed := createCustomer(t, db, "late", "0811111112", 0, false)
	require.NoError(t, db.Create(&models.VerificationChallenge{
		AccountType: models.AccountTypeCustomer,
		AccountID:   lapsed.ID,
		Purpose:     models.ChallengePurposeSignup,
		Code:        "111111",
		IssuedAt:    time.Now().Add(-models.ChallengeTTL),
		ExpiresAt:   time.Now().Add(-time.Second),
	}).Error)
	err := svc.ConfirmSignup(ctx, models.AccountTypeCustomer, lapsed.ID, "111111")
	require.ErrorIs(t, err, domain.ErrChallengeExpired)

	// A code with a second left still consumes
	fresh := createCustomer(t, db, "close", "0811111113", 0, false)
	require.NoError(t, db.Create(&models.VerificationChallenge{
		AccountType: models.AccountTypeCustomer,
		AccountID:   fresh.ID,
		Purpose:     models.ChallengePurposeSignup,
		Code:        "222222",
		IssuedAt:    time.Now(),
		ExpiresAt:   time.Now().Add(time.Second),
	}).Error)
	require.NoError(t, svc.ConfirmSignup(ctx, models.AccountTypeCustomer, fresh.ID, "222222"))

	var got models.Customer
	require.NoError(t, db.First(&got, fresh.ID).Error)
	require.True(t, got.IsVerified)
}

func TestReissueBlockedWhileLive(t *testing.T) {
	db := newTestDB(t)
	svc := newVerificationService(db)
	ctx := context.Background()

	customer := createCustomer(t, db, "alice", "0811111111", 0, false)

	first, err := svc.IssueChallenge(ctx, models.AccountTypeCustomer, customer.ID, models.ChallengePurposeSignup)
	require.NoError(t, err)

	// Reissue fails for as long as the first code is live, with the
	// remaining seconds surfaced
	_, err = svc.IssueChallenge(ctx, models.AccountTypeCustomer, customer.ID, models.ChallengePurposeSignup)
	require.ErrorIs(t, err, domain.ErrChallengeStillLive)
	require.Regexp(t, `try again in \d+ seconds`, err.Error())

	// Once the code lapses a fresh one can be issued
	require.NoError(t, db.Model(&models.VerificationChallenge{}).
		Where("id = ?", first.ID).
		Update("expires_at", time.Now().Add(-time.Second)).Error)

	second, err := svc.IssueChallenge(ctx, models.AccountTypeCustomer, customer.ID, models.ChallengePurposeSignup)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
}

func TestChallengePurposesAreSeparate(t *testing.T) {
	db := newTestDB(t)
	svc := newVerificationService(db)
	ctx := context.Background()

	customer := createCustomer(t, db, "alice", "0811111111", 0, false)

	signup, err := svc.IssueChallenge(ctx, models.AccountTypeCustomer, customer.ID, models.ChallengePurposeSignup)
	require.NoError(t, err)

	// A signup code cannot complete a password reset
	err = svc.CompletePasswordReset(ctx, models.AccountTypeCustomer, customer.Email, signup.Code, "newpassword1")
	require.ErrorIs(t, err, domain.ErrChallengeNotFound)
}

func TestPasswordResetFlow(t *testing.T) {
	db := newTestDB(t)
	svc := newVerificationService(db)
	ctx := context.Background()

	customer := createCustomer(t, db, "alice", "0811111111", 0, true)

	challenge, err := svc.BeginPasswordReset(ctx, models.AccountTypeCustomer, customer.Email)
	require.NoError(t, err)

	// Too-short replacement is rejected before the code is consumed
	err = svc.CompletePasswordReset(ctx, models.AccountTypeCustomer, customer.Email, challenge.Code, "abc")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, svc.CompletePasswordReset(ctx, models.AccountTypeCustomer, customer.Email, challenge.Code, "newpassword1"))

	var got models.Customer
	require.NoError(t, db.First(&got, customer.ID).Error)
	require.True(t, password.Verify("newpassword1", got.Password))

	// The code is one-time
	err = svc.CompletePasswordReset(ctx, models.AccountTypeCustomer, customer.Email, challenge.Code, "anotherpass1")
	require.ErrorIs(t, err, domain.ErrChallengeNotFound)
}

func TestPasswordResetRequiresVerifiedAccount(t *testing.T) {
	db := newTestDB(t)
	svc := newVerificationService(db)
	ctx := context.Background()

	customer := createCustomer(t, db, "alice", "0811111111", 0, false)

	_, err := svc.BeginPasswordReset(ctx, models.AccountTypeCustomer, customer.Email)
	require.ErrorIs(t, err, domain.ErrAccountNotVerified)
}

func TestEmployeeVerificationFlow(t *testing.T) {
	db := newTestDB(t)
	svc := newVerificationService(db)
	ctx := context.Background()

	employee := createEmployee(t, db, "eve", models.EmployeeTypeRefueler, true, nil)
	require.NoError(t, db.Model(&models.Employee{}).Where("id = ?", employee.ID).Update("is_verified", false).Error)

	challenge, err := svc.IssueChallenge(ctx, models.AccountTypeEmployee, employee.ID, models.ChallengePurposeSignup)
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmSignup(ctx, models.AccountTypeEmployee, employee.ID, challenge.Code))

	var got models.Employee
	require.NoError(t, db.First(&got, employee.ID).Error)
	require.True(t, got.IsVerified)
}
