package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Accounts: Customer / Employee / Admin
// ============================================================

// Customer represents customers table
type Customer struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	Email       string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password    string         `gorm:"size:255;not null" json:"-"`
	PhoneNumber string         `gorm:"uniqueIndex;size:20;not null" json:"phone_number"`
	ImageURL    string         `gorm:"size:255" json:"image_url"`
	PushToken   string         `gorm:"size:255" json:"-"`
	Balance     float64        `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	Points      int            `gorm:"not null;default:0" json:"points"`
	IsVerified  bool           `gorm:"default:false" json:"is_verified"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	LoyaltyPoints []LoyaltyEntry `gorm:"foreignKey:CustomerID" json:"loyalty_points,omitempty"`
}

func (Customer) TableName() string {
	return "customers"
}

// CustomerResponse DTO - public view, never carries password or challenge material
type CustomerResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	ImageURL    string    `json:"image_url,omitempty"`
	Balance     float64   `json:"balance"`
	Points      int       `json:"points"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c *Customer) ToResponse() *CustomerResponse {
	return &CustomerResponse{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
		ImageURL:    c.ImageURL,
		Balance:     c.Balance,
		Points:      c.Points,
		IsVerified:  c.IsVerified,
		CreatedAt:   c.CreatedAt,
	}
}

// Employee types
const (
	EmployeeTypeManager  = "manager"
	EmployeeTypeRefueler = "refueler"
)

// Employee represents employees table
type Employee struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	Email       string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password    string         `gorm:"size:255;not null" json:"-"`
	PhoneNumber string         `gorm:"uniqueIndex;size:20;not null" json:"phone_number"`
	ImageURL    string         `gorm:"size:255" json:"image_url"`
	PushToken   string         `gorm:"size:255" json:"-"`
	Type        string         `gorm:"size:20;not null" json:"type"`
	IsEmployed  bool           `gorm:"default:false" json:"is_employed"`
	PumpID      *uint          `gorm:"index" json:"pump_id"`
	IsVerified  bool           `gorm:"default:false" json:"is_verified"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Pump *Pump `gorm:"foreignKey:PumpID" json:"pump,omitempty"`
}

func (Employee) TableName() string {
	return "employees"
}

// EmployeeResponse DTO
type EmployeeResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	ImageURL    string    `json:"image_url,omitempty"`
	Type        string    `json:"type"`
	IsEmployed  bool      `json:"is_employed"`
	PumpID      *uint     `json:"pump_id"`
	PumpName    string    `json:"pump_name,omitempty"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   time.Time `json:"created_at"`
}

func (e *Employee) ToResponse() *EmployeeResponse {
	resp := &EmployeeResponse{
		ID:          e.ID,
		Name:        e.Name,
		Email:       e.Email,
		PhoneNumber: e.PhoneNumber,
		ImageURL:    e.ImageURL,
		Type:        e.Type,
		IsEmployed:  e.IsEmployed,
		PumpID:      e.PumpID,
		IsVerified:  e.IsVerified,
		CreatedAt:   e.CreatedAt,
	}
	if e.Pump != nil {
		resp.PumpName = e.Pump.Name
	}
	return resp
}

// Admin represents admins table (station network back office)
type Admin struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	ImageURL  string         `gorm:"size:255" json:"image_url"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Admin) TableName() string {
	return "admins"
}

// ============================================================
// Pump (merchant) accounts & loyalty
// ============================================================

// DefaultLoyaltyThreshold is the accrual rate a pump starts with:
// one point per 100 currency units of fuel sold.
const DefaultLoyaltyThreshold = 100

// LoyaltyPointsCap is the per-pump ceiling on a customer's points.
const LoyaltyPointsCap = 100

// Pump represents pumps table
type Pump struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Name             string         `gorm:"size:100;not null" json:"name"`
	Location         string         `gorm:"size:200;not null" json:"location"`
	Latitude         float64        `gorm:"not null" json:"latitude"`
	Longitude        float64        `gorm:"not null" json:"longitude"`
	Balance          float64        `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	LoyaltyThreshold int            `gorm:"not null;default:100" json:"loyalty_threshold"`
	AddedBy          uint           `gorm:"not null" json:"added_by"`
	ManagerID        *uint          `gorm:"index" json:"manager_id"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Manager   *Employee  `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	Employees []Employee `gorm:"foreignKey:PumpID" json:"employees,omitempty"`
}

func (Pump) TableName() string {
	return "pumps"
}

// PumpLocation DTO for the customer map screen
type PumpLocation struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p *Pump) ToLocation() *PumpLocation {
	return &PumpLocation{
		ID:        p.ID,
		Name:      p.Name,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
	}
}

// LoyaltyEntry is a customer's point balance at one pump.
// One row per (customer, pump), points never exceed LoyaltyPointsCap.
type LoyaltyEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CustomerID uint      `gorm:"not null;uniqueIndex:idx_loyalty_customer_pump" json:"customer_id"`
	PumpID     uint      `gorm:"not null;uniqueIndex:idx_loyalty_customer_pump" json:"pump_id"`
	Points     int       `gorm:"not null;default:0" json:"points"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Pump *Pump `gorm:"foreignKey:PumpID" json:"pump,omitempty"`
}

func (LoyaltyEntry) TableName() string {
	return "loyalty_entries"
}

// ============================================================
// Verification challenges
// ============================================================

// Account types owning a challenge
const (
	AccountTypeCustomer = "customer"
	AccountTypeEmployee = "employee"
)

// Challenge purposes - signup verification and password reset each get
// their own slot so a code issued for one flow can never consume the other.
const (
	ChallengePurposeSignup        = "signup"
	ChallengePurposePasswordReset = "password_reset"
)

// ChallengeTTL is how long a one-time code stays valid.
const ChallengeTTL = 15 * time.Minute

// VerificationChallenge represents verification_challenges table
type VerificationChallenge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AccountType string    `gorm:"size:20;not null;index:idx_challenge_owner" json:"account_type"`
	AccountID   uint      `gorm:"not null;index:idx_challenge_owner" json:"account_id"`
	Purpose     string    `gorm:"size:20;not null;index:idx_challenge_owner" json:"purpose"`
	Code        string    `gorm:"size:6;not null" json:"-"`
	IssuedAt    time.Time `gorm:"not null" json:"issued_at"`
	ExpiresAt   time.Time `gorm:"not null;index" json:"expires_at"`
	Consumed    bool      `gorm:"default:false" json:"consumed"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (VerificationChallenge) TableName() string {
	return "verification_challenges"
}

// IsLive reports whether the challenge can still be consumed.
func (vc *VerificationChallenge) IsLive(now time.Time) bool {
	return !vc.Consumed && now.Before(vc.ExpiresAt)
}

// ============================================================
// Ledger records (immutable)
// ============================================================

// Transfer kinds
const (
	TransferKindBalance = "balance"
	TransferKindPoints  = "points"
)

// FundsTransfer represents funds_transfers table
type FundsTransfer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"not null;index" json:"sender_id"`
	ReceiverID uint      `gorm:"not null;index" json:"receiver_id"`
	Amount     float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	Kind       string    `gorm:"size:10;not null" json:"kind"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	// Relations
	Sender   *Customer `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver *Customer `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}

func (FundsTransfer) TableName() string {
	return "funds_transfers"
}

// TopUp represents top_ups table
type TopUp struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CustomerID uint      `gorm:"not null;index" json:"customer_id"`
	Amount     float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	Method     string    `gorm:"size:50;not null" json:"method"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (TopUp) TableName() string {
	return "top_ups"
}

// Payment methods
const (
	PaymentMethodApp  = "app"
	PaymentMethodCash = "cash"
)

// Fuel types
const (
	FuelTypePetrol = "petrol"
	FuelTypeDiesel = "diesel"
	FuelTypeCNG    = "cng"
)

// FuelSale represents fuel_sales table
type FuelSale struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CustomerID    uint      `gorm:"not null;index" json:"customer_id"`
	EmployeeID    uint      `gorm:"not null;index" json:"employee_id"`
	PumpID        uint      `gorm:"not null;index" json:"pump_id"`
	Amount        float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	PaymentMethod string    `gorm:"size:10;not null" json:"payment_method"`
	FuelType      string    `gorm:"size:10;not null" json:"fuel_type"`
	FuelVolume    float64   `gorm:"type:decimal(10,3);not null" json:"fuel_volume"`
	EarnedPoints  int       `gorm:"not null;default:0" json:"earned_points"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	// Relations
	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Employee *Employee `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Pump     *Pump     `gorm:"foreignKey:PumpID" json:"pump,omitempty"`
}

func (FuelSale) TableName() string {
	return "fuel_sales"
}

// ============================================================
// Idempotency keys
// ============================================================

// Ledger operations recorded against an idempotency key
const (
	OperationTransfer = "transfer"
	OperationTopUp    = "topup"
	OperationFuelSale = "fuel_sale"
)

// IdempotencyWindow bounds how long a retried request replays the
// original result instead of producing a duplicate transaction.
const IdempotencyWindow = 24 * time.Hour

// IdempotencyKey represents idempotency_keys table
type IdempotencyKey struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:64;not null" json:"key"`
	AccountID uint      `gorm:"not null" json:"account_id"`
	Operation string    `gorm:"size:20;not null" json:"operation"`
	RefID     uint      `gorm:"not null" json:"ref_id"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Accounts
		&Customer{},
		&Employee{},
		&Admin{},
		&Pump{},
		// Loyalty
		&LoyaltyEntry{},
		// Verification
		&VerificationChallenge{},
		// Ledger
		&FundsTransfer{},
		&TopUp{},
		&FuelSale{},
		&IdempotencyKey{},
	)
}
