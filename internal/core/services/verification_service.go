package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"fuelpay-backend/internal/adapters/persistence/models"
	"fuelpay-backend/internal/adapters/persistence/repositories"
	"fuelpay-backend/internal/core/domain"
	"fuelpay-backend/internal/pkg/password"

	"gorm.io/gorm"
)

// VerificationService handles one-time code issuance and consumption
type VerificationService struct {
	db            *gorm.DB
	customerRepo  repositories.CustomerRepository
	employeeRepo  repositories.EmployeeRepository
	challengeRepo *repositories.ChallengeRepository
	notifyService *NotificationService
}

// NewVerificationService creates a new verification service
func NewVerificationService(
	db *gorm.DB,
	customerRepo repositories.CustomerRepository,
	employeeRepo repositories.EmployeeRepository,
	challengeRepo *repositories.ChallengeRepository,
	notifyService *NotificationService,
) *VerificationService {
	return &VerificationService{
		db:            db,
		customerRepo:  customerRepo,
		employeeRepo:  employeeRepo,
		challengeRepo: challengeRepo,
		notifyService: notifyService,
	}
}

// account is the slice of Customer/Employee the verification flows need
type account struct {
	ID         uint
	IsVerified bool
	PushToken  string
}

// resolveAccount loads the account a challenge belongs to
func (s *VerificationService) resolveAccount(ctx context.Context, accountType string, accountID uint) (*account, error) {
	switch accountType {
	case models.AccountTypeCustomer:
		c, err := s.customerRepo.GetByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrCustomerNotFound
			}
			return nil, err
		}
		return &account{ID: c.ID, IsVerified: c.IsVerified, PushToken: c.PushToken}, nil
	case models.AccountTypeEmployee:
		e, err := s.employeeRepo.GetByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrEmployeeNotFound
			}
			return nil, err
		}
		return &account{ID: e.ID, IsVerified: e.IsVerified, PushToken: e.PushToken}, nil
	default:
		return nil, domain.ErrInvalidInput
	}
}

// resolveAccountByEmail finds the account for password-reset flows
func (s *VerificationService) resolveAccountByEmail(ctx context.Context, accountType, email string) (*account, error) {
	switch accountType {
	case models.AccountTypeCustomer:
		c, err := s.customerRepo.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrCustomerNotFound
			}
			return nil, err
		}
		return &account{ID: c.ID, IsVerified: c.IsVerified, PushToken: c.PushToken}, nil
	case models.AccountTypeEmployee:
		e, err := s.employeeRepo.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrEmployeeNotFound
			}
			return nil, err
		}
		return &account{ID: e.ID, IsVerified: e.IsVerified, PushToken: e.PushToken}, nil
	default:
		return nil, domain.ErrInvalidInput
	}
}

// IssueChallenge generates a fresh one-time code for an account and
// purpose and dispatches it. While a live code exists reissue fails with
// the seconds left until it lapses, so at most one code is ever redeemable.
func (s *VerificationService) IssueChallenge(ctx context.Context, accountType string, accountID uint, purpose string) (*models.VerificationChallenge, error) {
	if purpose != models.ChallengePurposeSignup && purpose != models.ChallengePurposePasswordReset {
		return nil, domain.ErrInvalidInput
	}

	acct, err := s.resolveAccount(ctx, accountType, accountID)
	if err != nil {
		return nil, err
	}

	if purpose == models.ChallengePurposeSignup && acct.IsVerified {
		return nil, domain.ErrAlreadyVerified
	}

	if live, err := s.challengeRepo.GetLive(ctx, accountType, accountID, purpose); err == nil {
		remaining := int(time.Until(live.ExpiresAt).Seconds()) + 1
		return nil, fmt.Errorf("%w, try again in %d seconds",
			domain.ErrChallengeStillLive, remaining)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	code, err := generateCode(6)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	challenge := &models.VerificationChallenge{
		AccountType: accountType,
		AccountID:   accountID,
		Purpose:     purpose,
		Code:        code,
		IssuedAt:    now,
		ExpiresAt:   now.Add(models.ChallengeTTL),
	}

	if err := s.challengeRepo.Create(ctx, challenge); err != nil {
		return nil, err
	}

	if s.notifyService != nil {
		go s.notifyService.SendVerificationCode(acct.PushToken, code, purpose)
	}

	return challenge, nil
}

// ConfirmSignup consumes a signup code and flips the account to verified.
// A second confirmation finds the account already verified and fails, so
// a consumed code can never appear to succeed twice.
func (s *VerificationService) ConfirmSignup(ctx context.Context, accountType string, accountID uint, code string) error {
	acct, err := s.resolveAccount(ctx, accountType, accountID)
	if err != nil {
		return err
	}

	if acct.IsVerified {
		return domain.ErrAlreadyVerified
	}

	challenge, err := s.challengeRepo.GetNewest(ctx, accountType, accountID, models.ChallengePurposeSignup)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrChallengeNotFound
		}
		return err
	}
	if !challenge.IsLive(time.Now()) {
		return domain.ErrChallengeExpired
	}

	if challenge.Code != code {
		return domain.ErrCodeMismatch
	}

	// Consume and verify atomically; the guarded consume re-checks expiry
	// so a code that lapsed between the read above and here still fails.
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.challengeRepo.ConsumeTx(tx, challenge.ID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrChallengeNotFound
		}

		model := accountModel(accountType)
		return tx.Model(model).
			Where("id = ?", accountID).
			Update("is_verified", true).Error
	})
}

// BeginPasswordReset issues a reset code to a verified account.
// Unverified accounts cannot reset: they have nothing to recover and the
// flow would leak whether an email is registered.
func (s *VerificationService) BeginPasswordReset(ctx context.Context, accountType, email string) (*models.VerificationChallenge, error) {
	acct, err := s.resolveAccountByEmail(ctx, accountType, email)
	if err != nil {
		return nil, err
	}

	if !acct.IsVerified {
		return nil, domain.ErrAccountNotVerified
	}

	return s.IssueChallenge(ctx, accountType, acct.ID, models.ChallengePurposePasswordReset)
}

// CompletePasswordReset consumes a reset code and installs the new password
func (s *VerificationService) CompletePasswordReset(ctx context.Context, accountType, email, code, newPassword string) error {
	if !password.Validate(newPassword) {
		return fmt.Errorf("%w: password must be at least %d characters",
			domain.ErrInvalidInput, password.MinLength)
	}

	acct, err := s.resolveAccountByEmail(ctx, accountType, email)
	if err != nil {
		return err
	}

	challenge, err := s.challengeRepo.GetNewest(ctx, accountType, acct.ID, models.ChallengePurposePasswordReset)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrChallengeNotFound
		}
		return err
	}
	if !challenge.IsLive(time.Now()) {
		return domain.ErrChallengeExpired
	}

	if challenge.Code != code {
		return domain.ErrCodeMismatch
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.challengeRepo.ConsumeTx(tx, challenge.ID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrChallengeNotFound
		}

		model := accountModel(accountType)
		return tx.Model(model).
			Where("id = ?", acct.ID).
			Update("password", hashed).Error
	})
}

// accountModel maps an account type to its GORM model
func accountModel(accountType string) interface{} {
	if accountType == models.AccountTypeEmployee {
		return &models.Employee{}
	}
	return &models.Customer{}
}

// generateCode generates a cryptographically secure numeric code
func generateCode(length int) (string, error) {
	result := ""
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		result += fmt.Sprintf("%d", n.Int64())
	}
	return result, nil
}
