package repository

import (
	"context"
	"fmt"
	"time"

	"audittracker/internal/model"

	"gorm.io/gorm"
)

// MonthCount is a per-month count bucket keyed YYYY-MM.
type MonthCount struct {
	Month string
	Count int64
}

// DashboardRepository runs the read-only aggregate queries behind the dashboard.
// Soft-deleted rows never count.
type DashboardRepository interface {
	CountVessels(ctx context.Context) (int64, error)
	CountAuditsByStatus(ctx context.Context) (map[string]int64, error)
	CountFindingsByStatus(ctx context.Context) (map[string]int64, error)
	CountOverdueFindings(ctx context.Context, now time.Time) (int64, error)
	AuditsByType(ctx context.Context) ([]model.NamedCount, error)
	AuditsByParty(ctx context.Context) ([]model.NamedCount, error)
	FindingsBySeverity(ctx context.Context) ([]model.NamedCount, error)
	FindingsByVessel(ctx context.Context, limit int) ([]model.VesselFindings, error)
	FindingsOpenedByMonth(ctx context.Context, since time.Time) ([]MonthCount, error)
	FindingsClosedByMonth(ctx context.Context, since time.Time) ([]MonthCount, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) CountVessels(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Vessel{}).Count(&count).Error
	return count, err
}

func (r *dashboardRepository) countGrouped(ctx context.Context, table, column string) (map[string]int64, error) {
	var rows []struct {
		Key   string
		Count int64
	}
	if err := r.db.WithContext(ctx).Table(table).
		Select(column + " AS key, COUNT(*) AS count").
		Where("deleted_at IS NULL").
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count %s by %s: %w", table, column, err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Count
	}
	return out, nil
}

func (r *dashboardRepository) CountAuditsByStatus(ctx context.Context) (map[string]int64, error) {
	return r.countGrouped(ctx, "audits", "status")
}

func (r *dashboardRepository) CountFindingsByStatus(ctx context.Context) (map[string]int64, error) {
	return r.countGrouped(ctx, "findings", "status")
}

// CountOverdueFindings counts open findings whose due date is before now.
func (r *dashboardRepository) CountOverdueFindings(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Finding{}).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", model.FindingStatusOpen, now).
		Count(&count).Error
	return count, err
}

func (r *dashboardRepository) namedCounts(ctx context.Context, master, fk string) ([]model.NamedCount, error) {
	counts := make([]model.NamedCount, 0)
	err := r.db.WithContext(ctx).Table("audits").
		Select(master + ".name AS name, COUNT(audits.id) AS count").
		Joins("JOIN " + master + " ON " + master + ".id = audits." + fk).
		Where("audits.deleted_at IS NULL").
		Group(master + ".name").
		Order("count DESC, name ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count audits by %s: %w", master, err)
	}
	return counts, nil
}

func (r *dashboardRepository) AuditsByType(ctx context.Context) ([]model.NamedCount, error) {
	return r.namedCounts(ctx, "audit_types", "audit_type_id")
}

func (r *dashboardRepository) AuditsByParty(ctx context.Context) ([]model.NamedCount, error) {
	return r.namedCounts(ctx, "audit_parties", "audit_party_id")
}

func (r *dashboardRepository) FindingsBySeverity(ctx context.Context) ([]model.NamedCount, error) {
	counts := make([]model.NamedCount, 0)
	err := r.db.WithContext(ctx).Table("findings").
		Select("severity AS name, COUNT(*) AS count").
		Where("deleted_at IS NULL").
		Group("severity").
		Order("name ASC").
		Scan(&counts).Error
	return counts, err
}

func (r *dashboardRepository) FindingsByVessel(ctx context.Context, limit int) ([]model.VesselFindings, error) {
	rows := make([]model.VesselFindings, 0)
	err := r.db.WithContext(ctx).Table("findings").
		Select(`vessels.id AS vessel_id, vessels.name AS vessel_name,
			SUM(CASE WHEN findings.status = 'open' THEN 1 ELSE 0 END) AS open,
			SUM(CASE WHEN findings.status = 'closed' THEN 1 ELSE 0 END) AS closed`).
		Joins("JOIN audits ON audits.id = findings.audit_id").
		Joins("JOIN vessels ON vessels.id = audits.vessel_id").
		Where("findings.deleted_at IS NULL AND audits.deleted_at IS NULL").
		Group("vessels.id, vessels.name").
		Order("open DESC, vessel_name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count findings by vessel: %w", err)
	}
	return rows, nil
}

func (r *dashboardRepository) byMonth(ctx context.Context, column string, since time.Time) ([]MonthCount, error) {
	rows := make([]MonthCount, 0)
	err := r.db.WithContext(ctx).Table("findings").
		Select("to_char(date_trunc('month', "+column+"), 'YYYY-MM') AS month, COUNT(*) AS count").
		Where("deleted_at IS NULL AND "+column+" >= ?", since).
		Group("month").
		Order("month ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *dashboardRepository) FindingsOpenedByMonth(ctx context.Context, since time.Time) ([]MonthCount, error) {
	return r.byMonth(ctx, "created_at", since)
}

func (r *dashboardRepository) FindingsClosedByMonth(ctx context.Context, since time.Time) ([]MonthCount, error) {
	return r.byMonth(ctx, "closed_at", since)
}
