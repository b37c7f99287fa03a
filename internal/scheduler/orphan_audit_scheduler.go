package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/lego-inventory-backend/internal/app/model"
	"github.com/ikkim/lego-inventory-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const auditTimeout = time.Minute

// OrphanFinder lists parts that no set references
type OrphanFinder interface {
	FindOrphanParts(ctx context.Context) ([]model.Part, error)
}

// OrphanAuditScheduler periodically reports parts left behind by deleted or
// rebuilt sets. Nothing is removed; the report goes to the log.
type OrphanAuditScheduler struct {
	cron   *cron.Cron
	finder OrphanFinder
	spec   string
}

func NewOrphanAuditScheduler(finder OrphanFinder, spec string) *OrphanAuditScheduler {
	return &OrphanAuditScheduler{
		cron:   cron.New(),
		finder: finder,
		spec:   spec,
	}
}

// Start registers the audit job and starts the cron runner
func (s *OrphanAuditScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()
		_, _ = s.RunOnce(ctx)
	}); err != nil {
		logger.Error("Failed to add cron job for orphan part audit", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Orphan part audit scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// RunOnce performs a single audit and returns the number of orphans found
func (s *OrphanAuditScheduler) RunOnce(ctx context.Context) (int, error) {
	orphans, err := s.finder.FindOrphanParts(ctx)
	if err != nil {
		logger.Error("Orphan part audit failed", err)
		return 0, err
	}

	if len(orphans) == 0 {
		logger.Info("Orphan part audit found nothing", nil)
		return 0, nil
	}

	ids := make([]uint, len(orphans))
	for i, p := range orphans {
		ids[i] = p.ID
	}
	logger.Warn("Parts not referenced by any set", map[string]interface{}{
		"count":    len(orphans),
		"part_ids": ids,
	})
	return len(orphans), nil
}

// Stop waits for a running audit to finish
func (s *OrphanAuditScheduler) Stop() {
	logger.Info("Stopping orphan part audit scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Orphan part audit scheduler stopped", nil)
}
