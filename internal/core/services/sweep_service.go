package services

import (
	"context"
	"log"
	"time"

	"fuelpay-backend/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// StaleAccountHours is the grace window a never-verified account gets
// before the sweep removes it.
const StaleAccountHours = 24

// SweepService runs the hourly housekeeping jobs: purging never-verified
// accounts past their grace window, expired verification codes and
// idempotency keys past their replay window.
type SweepService struct {
	customerRepo  repositories.CustomerRepository
	employeeRepo  repositories.EmployeeRepository
	challengeRepo *repositories.ChallengeRepository
	idemRepo      *repositories.IdempotencyRepository
	cron          *cron.Cron
}

// NewSweepService creates a new sweep service
func NewSweepService(
	customerRepo repositories.CustomerRepository,
	employeeRepo repositories.EmployeeRepository,
	challengeRepo *repositories.ChallengeRepository,
	idemRepo *repositories.IdempotencyRepository,
) *SweepService {
	return &SweepService{
		customerRepo:  customerRepo,
		employeeRepo:  employeeRepo,
		challengeRepo: challengeRepo,
		idemRepo:      idemRepo,
		cron:          cron.New(),
	}
}

// Start schedules the sweep jobs
func (s *SweepService) Start() {
	s.cron.AddFunc("@hourly", s.Sweep)
	s.cron.Start()
	log.Println("🚀 SweepService started (hourly)")
}

// Stop stops the scheduler and waits for a running sweep to finish
func (s *SweepService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 SweepService stopped")
}

// Sweep runs one housekeeping pass. Exported so an operator endpoint or
// test can trigger it outside the schedule.
func (s *SweepService) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if n, err := s.customerRepo.DeleteStaleUnverified(ctx, StaleAccountHours); err != nil {
		log.Printf("❌ Sweep stale customers error: %v", err)
	} else if n > 0 {
		log.Printf("🗑️ Swept %d never-verified customers", n)
	}

	if n, err := s.employeeRepo.DeleteStaleUnverified(ctx, StaleAccountHours); err != nil {
		log.Printf("❌ Sweep stale employees error: %v", err)
	} else if n > 0 {
		log.Printf("🗑️ Swept %d never-verified employees", n)
	}

	if n, err := s.challengeRepo.DeleteExpired(ctx); err != nil {
		log.Printf("❌ Sweep expired challenges error: %v", err)
	} else if n > 0 {
		log.Printf("🗑️ Swept %d expired verification codes", n)
	}

	if n, err := s.idemRepo.DeleteExpired(ctx); err != nil {
		log.Printf("❌ Sweep expired idempotency keys error: %v", err)
	} else if n > 0 {
		log.Printf("🗑️ Swept %d expired idempotency keys", n)
	}
}
