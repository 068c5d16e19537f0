package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"fuelpay-backend/internal/adapters/persistence/models"
	"fuelpay-backend/internal/adapters/persistence/repositories"
	"fuelpay-backend/internal/config"
	"fuelpay-backend/internal/core/domain"
	"fuelpay-backend/internal/pkg/jwt"
	"fuelpay-backend/internal/pkg/password"

	"gorm.io/gorm"
)

// AuthService handles signup and login for all account types
type AuthService struct {
	customerRepo  repositories.CustomerRepository
	employeeRepo  repositories.EmployeeRepository
	adminRepo     repositories.AdminRepository
	verifyService *VerificationService
	jwtConfig     config.JWTConfig
}

// NewAuthService creates a new auth service
func NewAuthService(
	customerRepo repositories.CustomerRepository,
	employeeRepo repositories.EmployeeRepository,
	adminRepo repositories.AdminRepository,
	verifyService *VerificationService,
	jwtConfig config.JWTConfig,
) *AuthService {
	return &AuthService{
		customerRepo:  customerRepo,
		employeeRepo:  employeeRepo,
		adminRepo:     adminRepo,
		verifyService: verifyService,
		jwtConfig:     jwtConfig,
	}
}

// SignupCustomerInput represents customer signup input
type SignupCustomerInput struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	PushToken   string `json:"push_token,omitempty"`
}

// SignupCustomer registers a customer account. The account starts
// unverified with zero balance; a signup code is dispatched immediately.
func (s *AuthService) SignupCustomer(ctx context.Context, input *SignupCustomerInput) (*models.Customer, error) {
	if !password.Validate(input.Password) {
		return nil, fmt.Errorf("%w: password must be at least %d characters",
			domain.ErrInvalidInput, password.MinLength)
	}

	exists, err := s.customerRepo.ExistsByEmailOrPhone(ctx, input.Email, input.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrAccountExists
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	customer := &models.Customer{
		Name:        input.Name,
		Email:       input.Email,
		Password:    hashed,
		PhoneNumber: input.PhoneNumber,
		PushToken:   input.PushToken,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrAccountExists
		}
		return nil, err
	}

	// Code delivery failure must not strand the signup; the client can
	// request a resend.
	if _, err := s.verifyService.IssueChallenge(ctx, models.AccountTypeCustomer, customer.ID, models.ChallengePurposeSignup); err != nil {
		log.Printf("⚠️ Failed to issue signup code for customer %d: %v", customer.ID, err)
	}

	return customer, nil
}

// SignupEmployeeInput represents employee signup input
type SignupEmployeeInput struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=manager refueler"`
	PushToken   string `json:"push_token,omitempty"`
}

// SignupEmployee registers an employee account. Employment and pump
// assignment stay off until an admin activates the account.
func (s *AuthService) SignupEmployee(ctx context.Context, input *SignupEmployeeInput) (*models.Employee, error) {
	if input.Type != models.EmployeeTypeManager && input.Type != models.EmployeeTypeRefueler {
		return nil, fmt.Errorf("%w: type must be %s or %s",
			domain.ErrInvalidInput, models.EmployeeTypeManager, models.EmployeeTypeRefueler)
	}

	if !password.Validate(input.Password) {
		return nil, fmt.Errorf("%w: password must be at least %d characters",
			domain.ErrInvalidInput, password.MinLength)
	}

	exists, err := s.employeeRepo.ExistsByEmailOrPhone(ctx, input.Email, input.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrAccountExists
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	employee := &models.Employee{
		Name:        input.Name,
		Email:       input.Email,
		Password:    hashed,
		PhoneNumber: input.PhoneNumber,
		Type:        input.Type,
		PushToken:   input.PushToken,
	}

	if err := s.employeeRepo.Create(ctx, employee); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrAccountExists
		}
		return nil, err
	}

	if _, err := s.verifyService.IssueChallenge(ctx, models.AccountTypeEmployee, employee.ID, models.ChallengePurposeSignup); err != nil {
		log.Printf("⚠️ Failed to issue signup code for employee %d: %v", employee.ID, err)
	}

	return employee, nil
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginOutput carries the access token and the account's public view
type LoginOutput struct {
	Token   string      `json:"token"`
	Account interface{} `json:"account"`
}

// LoginCustomer authenticates a customer and issues an access token
func (s *AuthService) LoginCustomer(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	customer, err := s.customerRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(input.Password, customer.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := jwt.Generate(customer.ID, jwt.ActorCustomer, customer.IsVerified,
		s.jwtConfig.Secret, s.jwtConfig.TokenHours)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{Token: token, Account: customer.ToResponse()}, nil
}

// LoginEmployee authenticates an employee and issues an access token
func (s *AuthService) LoginEmployee(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	employee, err := s.employeeRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(input.Password, employee.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := jwt.Generate(employee.ID, jwt.ActorEmployee, employee.IsVerified,
		s.jwtConfig.Secret, s.jwtConfig.TokenHours)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{Token: token, Account: employee.ToResponse()}, nil
}

// LoginAdmin authenticates a back-office admin and issues an access token
func (s *AuthService) LoginAdmin(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	admin, err := s.adminRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(input.Password, admin.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := jwt.Generate(admin.ID, jwt.ActorAdmin, true,
		s.jwtConfig.Secret, s.jwtConfig.TokenHours)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{Token: token, Account: admin}, nil
}
