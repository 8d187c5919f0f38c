package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/albarakah/umrah-backoffice/internal/domain"
	"github.com/albarakah/umrah-backoffice/internal/port"
)

var reportTracer = otel.Tracer("service/report")

// ReportService assembles dashboards and financial reports. The underlying
// aggregations are independent queries, so they fan out in parallel.
type ReportService struct {
	store  port.ReportStore
	audit  port.AuditStore
	logger *zap.Logger
}

// NewReportService creates a ReportService.
func NewReportService(store port.ReportStore, audit port.AuditStore, logger *zap.Logger) *ReportService {
	return &ReportService{store: store, audit: audit, logger: logger}
}

// Dashboard returns the headline figures.
func (s *ReportService) Dashboard(ctx context.Context) (*domain.DashboardSummary, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.Dashboard")
	defer span.End()

	return s.summary(ctx, "", "")
}

// FinancialReport returns the full report for a date range.
func (s *ReportService) FinancialReport(ctx context.Context, from, to string) (*domain.FinancialReport, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.FinancialReport")
	defer span.End()

	report := &domain.FinancialReport{From: from, To: to}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sum, err := s.summary(gctx, from, to)
		report.Summary = sum
		return err
	})
	g.Go(func() error {
		rows, err := s.store.CategoryBreakdown(gctx, domain.DirectionIncome, from, to)
		report.IncomeByCategory = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.store.CategoryBreakdown(gctx, domain.DirectionExpense, from, to)
		report.ExpenseByCategory = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.store.MonthlyTrend(gctx, from, to)
		report.MonthlyTrend = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.store.PackageProfits(gctx)
		report.PackageProfits = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

// ListAudit returns the audit trail, newest first.
func (s *ReportService) ListAudit(ctx context.Context, entity string, page, pageSize int) ([]domain.AuditEntry, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.ListAudit")
	defer span.End()

	return s.audit.ListAudit(ctx, entity, page, pageSize)
}

func (s *ReportService) summary(ctx context.Context, from, to string) (*domain.DashboardSummary, error) {
	sum := &domain.DashboardSummary{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		income, expense, err := s.store.TotalsByDirection(gctx, from, to)
		sum.TotalIncome = income
		sum.TotalExpense = expense
		return err
	})
	g.Go(func() error {
		receivables, debts, err := s.store.OutstandingTotals(gctx)
		sum.OutstandingReceivables = receivables
		sum.OutstandingDebts = debts
		return err
	})
	g.Go(func() error {
		n, err := s.store.CountActiveJamaah(gctx)
		sum.ActiveJamaah = n
		return err
	})
	g.Go(func() error {
		n, err := s.store.CountOpenPackages(gctx)
		sum.OpenPackages = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sum.NetBalance = sum.TotalIncome.Sub(sum.TotalExpense)
	return sum, nil
}
