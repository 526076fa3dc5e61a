package service

import (
	"context"
	"time"

	"audittracker/internal/apperror"
	"audittracker/internal/model"
	"audittracker/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTrendMonths = 6
	MaxTrendMonths     = 24
	topVessels         = 10
)

type DashboardService interface {
	Stats(ctx context.Context) (*model.DashboardStats, error)
	Charts(ctx context.Context) (*model.DashboardCharts, error)
	FindingsTrend(ctx context.Context, months int) ([]model.TrendPoint, error)
}

type dashboardService struct {
	repo repository.DashboardRepository
	now  func() time.Time
}

func NewDashboardService(repo repository.DashboardRepository) DashboardService {
	return &dashboardService{repo: repo, now: time.Now}
}

// Stats runs the headline counters concurrently.
func (s *dashboardService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	var (
		stats    model.DashboardStats
		findings map[string]int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Vessels, err = s.repo.CountVessels(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.AuditsByStatus, err = s.repo.CountAuditsByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		findings, err = s.repo.CountFindingsByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.OverdueFindings, err = s.repo.CountOverdueFindings(gctx, s.now())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperror.Internal(err)
	}

	for _, n := range stats.AuditsByStatus {
		stats.Audits += n
	}
	stats.OpenFindings = findings[model.FindingStatusOpen]
	stats.ClosedFindings = findings[model.FindingStatusClosed]
	stats.ClosureRate = closureRate(stats.OpenFindings, stats.ClosedFindings)
	return &stats, nil
}

// closureRate is the percentage of findings closed, rounded to two decimals.
func closureRate(open, closed int64) decimal.Decimal {
	total := open + closed
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(closed).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(total)).
		Round(2)
}

func (s *dashboardService) Charts(ctx context.Context) (*model.DashboardCharts, error) {
	var charts model.DashboardCharts
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		charts.AuditsByType, err = s.repo.AuditsByType(gctx)
		return err
	})
	g.Go(func() (err error) {
		charts.AuditsByParty, err = s.repo.AuditsByParty(gctx)
		return err
	})
	g.Go(func() (err error) {
		charts.FindingsBySeverity, err = s.repo.FindingsBySeverity(gctx)
		return err
	})
	g.Go(func() (err error) {
		charts.FindingsByVessel, err = s.repo.FindingsByVessel(gctx, topVessels)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperror.Internal(err)
	}
	return &charts, nil
}

// FindingsTrend returns opened and closed counts for each of the last months months,
// oldest first, including months with no activity.
func (s *dashboardService) FindingsTrend(ctx context.Context, months int) ([]model.TrendPoint, error) {
	if months <= 0 {
		months = DefaultTrendMonths
	}
	if months > MaxTrendMonths {
		months = MaxTrendMonths
	}

	now := s.now().UTC()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	var opened, closed []repository.MonthCount
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		opened, err = s.repo.FindingsOpenedByMonth(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		closed, err = s.repo.FindingsClosedByMonth(gctx, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperror.Internal(err)
	}
	return fillTrend(since, months, opened, closed), nil
}

func fillTrend(since time.Time, months int, opened, closed []repository.MonthCount) []model.TrendPoint {
	points := make([]model.TrendPoint, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		key := since.AddDate(0, i, 0).Format("2006-01")
		points[i] = model.TrendPoint{Month: key}
		index[key] = i
	}
	for _, m := range opened {
		if i, ok := index[m.Month]; ok {
			points[i].Opened = m.Count
		}
	}
	for _, m := range closed {
		if i, ok := index[m.Month]; ok {
			points[i].Closed = m.Count
		}
	}
	return points
}
