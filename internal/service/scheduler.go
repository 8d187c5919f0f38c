package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/albarakah/umrah-backoffice/internal/domain"
	"github.com/albarakah/umrah-backoffice/internal/port"
)

var schedulerTracer = otel.Tracer("service/scheduler")

// closeWindow is how far ahead of departure a package stops taking
// bookings.
const closeWindow = 7 * 24 * time.Hour

// SchedulerService rolls package statuses forward on a timer: open
// packages close once departure is near, and closed or ongoing packages
// complete once their return date has passed.
type SchedulerService struct {
	packages port.PackageStore
	logger   *zap.Logger
	interval time.Duration
	now      func() time.Time
}

// NewSchedulerService creates a SchedulerService ticking at interval.
func NewSchedulerService(packages port.PackageStore, logger *zap.Logger, interval time.Duration) *SchedulerService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SchedulerService{
		packages: packages,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
}

// UpdatePackageStatuses runs one sweep and returns how many packages were
// closed and completed. It is safe to call manually between ticks.
func (s *SchedulerService) UpdatePackageStatuses(ctx context.Context) (closed, completed int, err error) {
	ctx, span := schedulerTracer.Start(ctx, "SchedulerService.UpdatePackageStatuses")
	defer span.End()

	today := s.now()
	closed, err = s.packages.ClosePackagesDepartingBy(ctx, today.Add(closeWindow).Format(domain.DateLayout))
	if err != nil {
		return 0, 0, err
	}
	completed, err = s.packages.CompletePackagesReturnedBefore(ctx, today.Format(domain.DateLayout))
	if err != nil {
		return closed, 0, err
	}

	span.SetAttributes(attribute.Int("packages.closed", closed), attribute.Int("packages.completed", completed))
	if closed > 0 || completed > 0 {
		s.logger.Info("package statuses updated",
			zap.Int("closed", closed),
			zap.Int("completed", completed))
	}
	return closed, completed, nil
}

// Run sweeps immediately, then on every tick until ctx is cancelled.
func (s *SchedulerService) Run(ctx context.Context) {
	if _, _, err := s.UpdatePackageStatuses(ctx); err != nil {
		s.logger.Error("package status sweep failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, _, err := s.UpdatePackageStatuses(ctx); err != nil {
				s.logger.Error("package status sweep failed", zap.Error(err))
			}
		}
	}
}
