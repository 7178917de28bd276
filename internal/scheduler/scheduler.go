package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/nkhandelwal3/sauda-backend/internal/config"
	"github.com/nkhandelwal3/sauda-backend/internal/service/export"
	"github.com/nkhandelwal3/sauda-backend/internal/service/reconcile"
)

// Scheduler runs the periodic reconciliation pass and, when sheets export is
// configured, the nightly deal progress export.
type Scheduler struct {
	cron         *cron.Cron
	reconcileSvc *reconcile.Service
	exportSvc    *export.Service
	cfg          config.Config
	logger       *zap.Logger
}

// NewScheduler creates a scheduler instance. exportSvc may be nil when the
// spreadsheet integration is not configured.
func NewScheduler(cfg config.Config, reconcileSvc *reconcile.Service, exportSvc *export.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:         cron.New(),
		reconcileSvc: reconcileSvc,
		exportSvc:    exportSvc,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")

	if _, err := s.cron.AddFunc(s.cfg.Jobs.ReconcileSchedule, s.runReconcile); err != nil {
		s.logger.Error("failed to schedule reconciliation pass", zap.Error(err))
	}

	if s.exportSvc != nil {
		if _, err := s.cron.AddFunc(s.cfg.Jobs.ExportSchedule, s.runExport); err != nil {
			s.logger.Error("failed to schedule progress export", zap.Error(err))
		}
	}

	s.cron.Start()
}

// Stop stops the cron loop.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runReconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report, err := s.reconcileSvc.Run(ctx)
	if err != nil {
		s.logger.Error("reconciliation pass failed", zap.Error(err))
		return
	}
	if report.Orphaned > 0 || report.Failed > 0 {
		s.logger.Warn("reconciliation pass found inconsistencies",
			zap.Int("scanned", report.Scanned),
			zap.Int("orphaned", report.Orphaned),
			zap.Int("reapplied", report.Reapplied),
			zap.Int("failed", report.Failed))
		return
	}
	s.logger.Info("reconciliation pass clean", zap.Int("scanned", report.Scanned))
}

func (s *Scheduler) runExport() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.exportSvc.ExportDealProgress(ctx); err != nil {
		s.logger.Error("scheduled progress export failed", zap.Error(err))
	}
}
