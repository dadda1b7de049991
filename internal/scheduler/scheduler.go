package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"drivebook/internal/email"
	"drivebook/internal/logger"
	"drivebook/internal/metrics"
	"drivebook/internal/wallet"
)

// Scheduler runs the background maintenance jobs: releasing matured wallet
// credits and reporting the email queue depth.
type Scheduler struct {
	cron   *cron.Cron
	wallet wallet.Service
	email  *email.Service
}

func New(walletSvc wallet.Service, emailSvc *email.Service) *Scheduler {
	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		wallet: walletSvc,
		email:  emailSvc,
	}

	s.registerJobs()
	return s
}

func (s *Scheduler) registerJobs() {
	_, err := s.cron.AddFunc("@hourly", s.releaseMaturedFunds)
	if err != nil {
		logger.Error("Failed to register matured funds release job", "error", err)
	}

	_, err = s.cron.AddFunc("@every 1m", s.reportEmailQueue)
	if err != nil {
		logger.Error("Failed to register email queue gauge job", "error", err)
	}

	logger.Info("Cron jobs registered")
}

func (s *Scheduler) releaseMaturedFunds() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	released, err := s.wallet.ReleaseMaturedFunds(ctx)
	if err != nil {
		logger.Error("Matured funds release failed", "error", err)
		return
	}

	metrics.RecordPendingReleases(released)
	if released > 0 {
		logger.Info("Released matured booking credits", "count", released)
	}
}

func (s *Scheduler) reportEmailQueue() {
	if s.email == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	metrics.EmailQueueLength.Set(float64(s.email.QueueLength(ctx)))
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("Scheduler started")
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Scheduler stopped")
}
