package services

import (
	"fmt"
	"time"

	"renthub/internal/models"
	"renthub/pkg/logger"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// LeaseScheduler runs the periodic housekeeping jobs: expiring agreements
// past their expiry date, re-driving assignment cascades left half-applied,
// and flagging overdue payments.
type LeaseScheduler struct {
	db             *gorm.DB
	cron           *cron.Cron
	requestService *PropertyRequestService
	paymentService *PaymentService
	spec           string
	running        bool
}

func NewLeaseScheduler(db *gorm.DB, requestService *PropertyRequestService, paymentService *PaymentService) *LeaseScheduler {
	return &LeaseScheduler{
		db:             db,
		cron:           cron.New(),
		requestService: requestService,
		paymentService: paymentService,
		spec:           "*/5 * * * *",
	}
}

// Start registers the jobs and starts the cron loop. One recovery pass runs
// immediately so a crash before the first tick does not delay repair.
func (s *LeaseScheduler) Start() error {
	if s.running {
		return fmt.Errorf("lease scheduler already running")
	}

	log := logger.GetLogger()
	log.Info("Starting lease scheduler")

	if _, err := s.cron.AddFunc(s.spec, s.runOnce); err != nil {
		return fmt.Errorf("register lease job: %v", err)
	}

	s.runOnce()

	s.cron.Start()
	s.running = true
	return nil
}

// Stop halts the cron loop.
func (s *LeaseScheduler) Stop() {
	if !s.running {
		return
	}
	logger.GetLogger().Info("Stopping lease scheduler")
	s.cron.Stop()
	s.running = false
}

// runOnce executes all housekeeping jobs, each failure logged independently.
func (s *LeaseScheduler) runOnce() {
	log := logger.GetLogger()

	expired, err := s.expireAgreements()
	if err != nil {
		log.Errorf("Agreement expiry pass failed: %v", err)
	} else if expired > 0 {
		log.Infof("Expired %d agreements", expired)
	}

	recovered, err := s.requestService.RecoverPendingAssignments()
	if err != nil {
		log.Errorf("Assignment recovery pass failed: %v", err)
	} else if recovered > 0 {
		log.Infof("Recovered %d pending assignments", recovered)
	}

	overdue, err := s.paymentService.MarkOverduePayments()
	if err != nil {
		log.Errorf("Overdue payment pass failed: %v", err)
	} else if overdue > 0 {
		log.Infof("Marked %d payments overdue", overdue)
	}
}

// expireAgreements moves active agreements past their expiry to Expired.
func (s *LeaseScheduler) expireAgreements() (int64, error) {
	result := s.db.Model(&models.Agreement{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?",
			models.AgreementStatusActive, time.Now()).
		Update("status", models.AgreementStatusExpired)
	return result.RowsAffected, result.Error
}
