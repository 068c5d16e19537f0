package repositories

import (
	"context"

	"fuelpay-backend/internal/adapters/persistence/models"
)

// CustomerRepository defines customer account data access
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uint) (*models.Customer, error)
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
	GetByPhoneNumber(ctx context.Context, phone string) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	List(ctx context.Context, offset, limit int) ([]*models.Customer, int64, error)
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	DeleteStaleUnverified(ctx context.Context, olderThanHours int) (int64, error)
}

// EmployeeRepository defines employee account data access
type EmployeeRepository interface {
	Create(ctx context.Context, employee *models.Employee) error
	GetByID(ctx context.Context, id uint) (*models.Employee, error)
	GetByEmail(ctx context.Context, email string) (*models.Employee, error)
	Update(ctx context.Context, employee *models.Employee) error
	ListByPump(ctx context.Context, pumpID uint) ([]*models.Employee, error)
	List(ctx context.Context, offset, limit int) ([]*models.Employee, int64, error)
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	DeleteStaleUnverified(ctx context.Context, olderThanHours int) (int64, error)
}

// AdminRepository defines back-office admin data access
type AdminRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
}
