package services

import (
	"context"
	"errors"

	"fuelpay-backend/internal/adapters/persistence/models"
	"fuelpay-backend/internal/adapters/persistence/repositories"
	"fuelpay-backend/internal/core/domain"
	"fuelpay-backend/internal/pkg/jwt"

	"gorm.io/gorm"
)

// PumpService handles pump lifecycle and staffing
type PumpService struct {
	pumpRepo     *repositories.PumpRepository
	employeeRepo repositories.EmployeeRepository
}

// NewPumpService creates a new pump service
func NewPumpService(pumpRepo *repositories.PumpRepository, employeeRepo repositories.EmployeeRepository) *PumpService {
	return &PumpService{
		pumpRepo:     pumpRepo,
		employeeRepo: employeeRepo,
	}
}

// CreatePumpInput represents pump creation input
type CreatePumpInput struct {
	Name             string  `json:"name" validate:"required"`
	Location         string  `json:"location" validate:"required"`
	Latitude         float64 `json:"latitude" validate:"required"`
	Longitude        float64 `json:"longitude" validate:"required"`
	LoyaltyThreshold int     `json:"loyalty_threshold,omitempty"`
}

// Create registers a new pump. Back office only.
func (s *PumpService) Create(ctx context.Context, input *CreatePumpInput, adminID uint) (*models.Pump, error) {
	threshold := input.LoyaltyThreshold
	if threshold == 0 {
		threshold = models.DefaultLoyaltyThreshold
	}
	if threshold < 1 {
		return nil, domain.ErrInvalidInput
	}

	pump := &models.Pump{
		Name:             input.Name,
		Location:         input.Location,
		Latitude:         input.Latitude,
		Longitude:        input.Longitude,
		LoyaltyThreshold: threshold,
		AddedBy:          adminID,
	}

	if err := s.pumpRepo.Create(ctx, pump); err != nil {
		return nil, err
	}
	return pump, nil
}

// GetByID gets a pump by ID
func (s *PumpService) GetByID(ctx context.Context, id uint) (*models.Pump, error) {
	pump, err := s.pumpRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPumpNotFound
		}
		return nil, err
	}
	return pump, nil
}

// List lists pumps with pagination
func (s *PumpService) List(ctx context.Context, offset, limit int) ([]*models.Pump, int64, error) {
	return s.pumpRepo.List(ctx, offset, limit)
}

// ListLocations lists pump coordinates for the customer map
func (s *PumpService) ListLocations(ctx context.Context) ([]*models.PumpLocation, error) {
	return s.pumpRepo.ListLocations(ctx)
}

// ListStaff lists the employees working a pump
func (s *PumpService) ListStaff(ctx context.Context, pumpID uint) ([]*models.Employee, error) {
	if _, err := s.GetByID(ctx, pumpID); err != nil {
		return nil, err
	}
	return s.employeeRepo.ListByPump(ctx, pumpID)
}

// AddStaff assigns a refueler to a pump and activates their employment.
// Admins may staff any pump; a manager only the pump they manage.
func (s *PumpService) AddStaff(ctx context.Context, pumpID, employeeID, actorID uint, actorRole string) (*models.Employee, error) {
	pump, err := s.GetByID(ctx, pumpID)
	if err != nil {
		return nil, err
	}

	if actorRole != jwt.ActorAdmin {
		if actorRole != jwt.ActorEmployee || pump.ManagerID == nil || *pump.ManagerID != actorID {
			return nil, domain.ErrForbidden
		}
	}

	employee, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}
	if employee.Type != models.EmployeeTypeRefueler {
		return nil, domain.ErrInvalidInput
	}

	employee.IsEmployed = true
	employee.PumpID = &pump.ID
	if err := s.employeeRepo.Update(ctx, employee); err != nil {
		return nil, err
	}

	employee.Pump = pump
	return employee, nil
}

// AssignManager puts a manager-type employee in charge of a pump.
// The employee must be employed; their own pump assignment follows.
func (s *PumpService) AssignManager(ctx context.Context, pumpID, employeeID uint) (*models.Pump, error) {
	pump, err := s.GetByID(ctx, pumpID)
	if err != nil {
		return nil, err
	}

	employee, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}

	if employee.Type != models.EmployeeTypeManager {
		return nil, domain.ErrInvalidInput
	}
	if !employee.IsEmployed {
		return nil, domain.ErrNotEmployed
	}

	pump.ManagerID = &employee.ID
	if err := s.pumpRepo.Update(ctx, pump); err != nil {
		return nil, err
	}

	employee.PumpID = &pump.ID
	if err := s.employeeRepo.Update(ctx, employee); err != nil {
		return nil, err
	}

	pump.Manager = employee
	return pump, nil
}
