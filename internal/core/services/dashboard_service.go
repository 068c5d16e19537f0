package services

import (
	"context"

	"fuelpay-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// DashboardService aggregates back-office overview numbers
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// Stats is the back-office overview payload
type Stats struct {
	Customers         int64   `json:"customers"`
	VerifiedCustomers int64   `json:"verified_customers"`
	Employees         int64   `json:"employees"`
	ActiveEmployees   int64   `json:"active_employees"`
	Pumps             int64   `json:"pumps"`
	FuelSales         int64   `json:"fuel_sales"`
	FuelSalesVolume   float64 `json:"fuel_sales_volume"`
	FuelSalesAmount   float64 `json:"fuel_sales_amount"`
	Transfers         int64   `json:"transfers"`
	TopUps            int64   `json:"top_ups"`
	TopUpAmount       float64 `json:"top_up_amount"`
}

// GetStats collects the network-wide counts and totals
func (s *DashboardService) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Customer{}).Count(&stats.Customers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Customer{}).Where("is_verified = ?", true).Count(&stats.VerifiedCustomers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Employee{}).Count(&stats.Employees).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Employee{}).Where("is_employed = ?", true).Count(&stats.ActiveEmployees).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Pump{}).Count(&stats.Pumps).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.FuelSale{}).Count(&stats.FuelSales).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.FuelSale{}).
		Select("COALESCE(SUM(fuel_volume), 0)").Scan(&stats.FuelSalesVolume).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.FuelSale{}).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.FuelSalesAmount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.FundsTransfer{}).Count(&stats.Transfers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.TopUp{}).Count(&stats.TopUps).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.TopUp{}).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.TopUpAmount).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
