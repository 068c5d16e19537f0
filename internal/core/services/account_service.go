package services

import (
	"context"
	"errors"
	"fmt"

	"fuelpay-backend/internal/adapters/persistence/models"
	"fuelpay-backend/internal/adapters/persistence/repositories"
	"fuelpay-backend/internal/core/domain"
	"fuelpay-backend/internal/pkg/password"

	"gorm.io/gorm"
)

// AccountService handles customer and employee profile management
type AccountService struct {
	customerRepo repositories.CustomerRepository
	employeeRepo repositories.EmployeeRepository
	pumpRepo     *repositories.PumpRepository
}

// NewAccountService creates a new account service
func NewAccountService(
	customerRepo repositories.CustomerRepository,
	employeeRepo repositories.EmployeeRepository,
	pumpRepo *repositories.PumpRepository,
) *AccountService {
	return &AccountService{
		customerRepo: customerRepo,
		employeeRepo: employeeRepo,
		pumpRepo:     pumpRepo,
	}
}

// GetCustomer gets a customer by ID
func (s *AccountService) GetCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

// UpdateProfileInput represents profile update input
type UpdateProfileInput struct {
	Name     string `json:"name,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// UpdateCustomerProfile updates a customer's editable profile fields.
// Balance, points and verification state are never writable here.
func (s *AccountService) UpdateCustomerProfile(ctx context.Context, id uint, input *UpdateProfileInput) (*models.Customer, error) {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		customer.Name = input.Name
	}
	if input.ImageURL != "" {
		customer.ImageURL = input.ImageURL
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// RegisterPushToken stores the device token notifications are sent to
func (s *AccountService) RegisterPushToken(ctx context.Context, accountType string, id uint, token string) error {
	switch accountType {
	case models.AccountTypeCustomer:
		customer, err := s.GetCustomer(ctx, id)
		if err != nil {
			return err
		}
		customer.PushToken = token
		return s.customerRepo.Update(ctx, customer)
	case models.AccountTypeEmployee:
		employee, err := s.GetEmployee(ctx, id)
		if err != nil {
			return err
		}
		employee.PushToken = token
		return s.employeeRepo.Update(ctx, employee)
	default:
		return domain.ErrInvalidInput
	}
}

// ChangePassword replaces an account's password after checking the old
// one. Distinct from the reset flow: here the caller is authenticated
// and must prove they know the current password.
func (s *AccountService) ChangePassword(ctx context.Context, accountType string, id uint, oldPassword, newPassword string) error {
	if !password.Validate(newPassword) {
		return fmt.Errorf("%w: password must be at least %d characters",
			domain.ErrInvalidInput, password.MinLength)
	}

	switch accountType {
	case models.AccountTypeCustomer:
		customer, err := s.GetCustomer(ctx, id)
		if err != nil {
			return err
		}
		if !password.Verify(oldPassword, customer.Password) {
			return domain.ErrInvalidCredentials
		}
		hashed, err := password.Hash(newPassword)
		if err != nil {
			return err
		}
		customer.Password = hashed
		return s.customerRepo.Update(ctx, customer)
	case models.AccountTypeEmployee:
		employee, err := s.GetEmployee(ctx, id)
		if err != nil {
			return err
		}
		if !password.Verify(oldPassword, employee.Password) {
			return domain.ErrInvalidCredentials
		}
		hashed, err := password.Hash(newPassword)
		if err != nil {
			return err
		}
		employee.Password = hashed
		return s.employeeRepo.Update(ctx, employee)
	default:
		return domain.ErrInvalidInput
	}
}

// ListCustomers lists customers for the back office
func (s *AccountService) ListCustomers(ctx context.Context, offset, limit int) ([]*models.Customer, int64, error) {
	return s.customerRepo.List(ctx, offset, limit)
}

// GetEmployee gets an employee by ID
func (s *AccountService) GetEmployee(ctx context.Context, id uint) (*models.Employee, error) {
	employee, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}
	return employee, nil
}

// ListEmployees lists employees for the back office
func (s *AccountService) ListEmployees(ctx context.Context, offset, limit int) ([]*models.Employee, int64, error) {
	return s.employeeRepo.List(ctx, offset, limit)
}

// UpdateEmploymentInput represents employment update input
type UpdateEmploymentInput struct {
	IsEmployed *bool `json:"is_employed,omitempty"`
	PumpID     *uint `json:"pump_id,omitempty"`
}

// UpdateEmployment activates or deactivates an employee and moves their
// pump assignment. Back office only.
func (s *AccountService) UpdateEmployment(ctx context.Context, employeeID uint, input *UpdateEmploymentInput) (*models.Employee, error) {
	employee, err := s.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	if input.PumpID != nil {
		if _, err := s.pumpRepo.GetByID(ctx, *input.PumpID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrPumpNotFound
			}
			return nil, err
		}
		employee.PumpID = input.PumpID
	}

	if input.IsEmployed != nil {
		employee.IsEmployed = *input.IsEmployed
		// Leaving employment releases the pump assignment
		if !*input.IsEmployed {
			employee.PumpID = nil
		}
	}

	if err := s.employeeRepo.Update(ctx, employee); err != nil {
		return nil, err
	}
	return employee, nil
}
