package config

import (
	"log"

	"fuelpay-backend/internal/adapters/persistence/models"
	"fuelpay-backend/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdmin(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdmin seeds the default back-office admin.
// Credentials come from ADMIN_EMAIL / ADMIN_PASSWORD; for development only,
// in production create admins through a secure process.
func (s *Seeder) seedAdmin() error {
	var count int64
	s.db.Model(&models.Admin{}).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	email := getEnv("ADMIN_EMAIL", "admin@fuelpay.example")
	hashedPassword, err := password.Hash(getEnv("ADMIN_PASSWORD", "admin123456"))
	if err != nil {
		return err
	}

	admin := &models.Admin{
		Name:     getEnv("ADMIN_NAME", "Network Admin"),
		Email:    email,
		Password: hashedPassword,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Email)
	return nil
}
